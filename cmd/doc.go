// Package cmd defines the Cobra command tree for pybuilder.
// The root command builds and alt-installs the tag given as its argument;
// subcommands list tags, pick one interactively, and print the version.
package cmd
