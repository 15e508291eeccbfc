// Package tui implements the Bubble Tea tag picker.
// It shows the repository's tags newest first, narrows them with a substring
// filter, and returns the tag chosen with Enter so the caller can build it.
package tui
