package execkit

import (
	"context"
	"sync"
)

// FakeRunner is a scripted Runner for tests. Responses are matched on the
// rendered command string; unmatched commands fall back to Default.
type FakeRunner struct {
	mu        sync.Mutex
	Responses map[string]Result
	Default   Result
	Calls     []Command
}

// NewFakeRunner creates a FakeRunner whose default response is a clean exit.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string]Result),
	}
}

// Script registers the result returned for the given command line.
func (f *FakeRunner) Script(commandLine string, result Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[commandLine] = result
}

// Run records the invocation and returns the scripted result, honouring
// context cancellation the way the real runner does.
func (f *FakeRunner) Run(ctx context.Context, cmd Command) Result {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	result, ok := f.Responses[cmd.String()]
	if !ok {
		result = f.Default
	}
	f.mu.Unlock()

	if ctx.Err() != nil {
		return Result{Cancelled: true, ExitCode: -1, Err: ctx.Err()}
	}
	return result
}

// CallLines returns the rendered command lines in invocation order.
func (f *FakeRunner) CallLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.String())
	}
	return lines
}
