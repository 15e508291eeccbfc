// Package runner executes external commands on behalf of the build.
//
// Two strategies implement Runner: ExecRunner spawns the process and waits for
// it, PrintRunner only writes the command line it would have run. Read-only
// queries (Output) are always executed so a dry run can still inspect the
// repository.
package runner
