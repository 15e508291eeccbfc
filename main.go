package main

import "pybuilder/cmd"

func main() {
	cmd.Execute()
}
