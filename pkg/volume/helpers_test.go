package volume

import (
	"context"
	"sync"

	"github.com/JBibu/zerobyte/pkg/common"
)

type runnerCall struct {
	name string
	args []string
}

type runResponse struct {
	result common.RunResult
	err    error
}

// fakeRunner records every command and replays queued responses in order.
// When the queue is empty it reports success. onRun, if set, runs after
// recording each call so tests can mutate the fake mount table.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []runnerCall
	responses []runResponse
	onRun     func(name string, args []string)
	block     chan struct{}
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (common.RunResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, runnerCall{name: name, args: args})
	var resp runResponse
	if len(r.responses) > 0 {
		resp = r.responses[0]
		r.responses = r.responses[1:]
	}
	onRun := r.onRun
	block := r.block
	r.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return common.RunResult{ExitCode: -1}, ctx.Err()
		}
	}
	if onRun != nil {
		onRun(name, args)
	}
	return resp.result, resp.err
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *fakeRunner) call(i int) runnerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

// fakeMounts is a MountTable backed by a map of target to fstype.
type fakeMounts struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeMounts() *fakeMounts {
	return &fakeMounts{entries: make(map[string]string)}
}

func (m *fakeMounts) FstypeAt(target string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fstype, ok := m.entries[target]
	return fstype, ok, nil
}

func (m *fakeMounts) set(target, fstype string) {
	m.mu.Lock()
	m.entries[target] = fstype
	m.mu.Unlock()
}

func (m *fakeMounts) remove(target string) {
	m.mu.Lock()
	delete(m.entries, target)
	m.mu.Unlock()
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
