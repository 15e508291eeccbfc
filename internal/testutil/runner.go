// Package testutil provides a scripted runner.Runner for tests.
package testutil

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"pybuilder/internal/runner"
)

// Response is what FakeRunner returns for a matching command.
type Response struct {
	Output []byte
	Err    error
	// Do runs before the response is returned, to simulate side effects.
	Do func(c runner.Command)
}

// FakeRunner records every command and answers from a script keyed by the
// command line ("git checkout main"). Unscripted commands succeed.
type FakeRunner struct {
	mu       sync.Mutex
	Script   map[string]Response
	Commands []runner.Command
}

var _ runner.Runner = (*FakeRunner)(nil)

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Script: map[string]Response{}}
}

// On scripts the response for the command line key.
func (f *FakeRunner) On(key string, r Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Script[key] = r
	return f
}

func (f *FakeRunner) answer(c runner.Command) Response {
	f.mu.Lock()
	f.Commands = append(f.Commands, c)
	r := f.Script[strings.Join(c.Argv(), " ")]
	f.mu.Unlock()

	if r.Do != nil {
		r.Do(c)
	}
	return r
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(_ context.Context, c runner.Command) error {
	return f.answer(c).Err
}

// Output implements runner.Runner.
func (f *FakeRunner) Output(_ context.Context, c runner.Command) ([]byte, error) {
	r := f.answer(c)
	return r.Output, r.Err
}

// Lines returns the recorded command lines.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Commands))
	for _, c := range f.Commands {
		out = append(out, strings.Join(c.Argv(), " "))
	}
	return out
}

// Fail builds a runner.ExitError for argv with the given exit code.
func Fail(code int, argv ...string) error {
	return &runner.ExitError{Command: runner.Cmd("", argv...), Code: code, Err: errExit(code)}
}

type errExit int

func (e errExit) Error() string {
	return "exit status " + strconv.Itoa(int(e))
}
