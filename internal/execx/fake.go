package execx

import (
	"context"
	"strings"
	"sync"
)

// FakeRunner is a deterministic Runner used in tests to validate lifecycle
// and probing behaviour without spawning real processes. Responses are keyed
// by command prefix; unmatched invocations succeed with empty output.
type FakeRunner struct {
	mu    sync.Mutex
	rules []fakeRule
	calls []Spec
}

type fakeRule struct {
	prefix string
	result Result
	err    error
}

// NewFakeRunner constructs an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// Stub registers a canned response for any invocation whose rendered command
// starts with prefix. Later registrations win over earlier ones.
func (f *FakeRunner) Stub(prefix string, result Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append([]fakeRule{{prefix: prefix, result: result, err: err}}, f.rules...)
}

// Run records the invocation and replays the first matching stub.
func (f *FakeRunner) Run(_ context.Context, spec Spec) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, spec)
	command := spec.Command()
	for _, rule := range f.rules {
		if strings.HasPrefix(command, rule.prefix) {
			return rule.result, rule.err
		}
	}
	return Result{}, nil
}

// Calls returns every recorded invocation in order.
func (f *FakeRunner) Calls() []Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Spec, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsMatching counts recorded invocations whose command starts with prefix.
func (f *FakeRunner) CallsMatching(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if strings.HasPrefix(call.Command(), prefix) {
			n++
		}
	}
	return n
}

var _ Runner = (*FakeRunner)(nil)
