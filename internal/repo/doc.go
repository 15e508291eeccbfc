// Package repo manages the local clone of the interpreter's source repository.
//
// Mutating operations (clone, checkout, pull, fetch) go through a
// runner.Runner so they can be printed instead of executed. Inspection that
// needs no subprocess (verifying the clone, reading local tags) uses go-git.
package repo
