package watchsync

import (
	"sync"

	pkgsync "github.com/agentstation/watchsync/pkg/sync"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for run events
type (
	// OperationHook is called after every executed operation
	OperationHook func(outcome pkgsync.Outcome)

	// RunCompleteHook is called when a run finishes, aborted or not
	RunCompleteHook func(result *pkgsync.Result)
)

// Hooks registers event callbacks.
type Hooks interface {
	// OnOperation registers a callback for every operation outcome
	OnOperation(OperationHook)

	// OnRunComplete registers a callback for finished runs
	OnRunComplete(RunCompleteHook)
}

// hooks manages event callbacks for runs
type hooks struct {
	mu            sync.RWMutex
	onOperation   []OperationHook
	onRunComplete []RunCompleteHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnOperation registers a callback for every operation outcome
func (c *client) OnOperation(fn OperationHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onOperation = append(c.hooks.onOperation, fn)
}

// OnRunComplete registers a callback for finished runs
func (c *client) OnRunComplete(fn RunCompleteHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRunComplete = append(c.hooks.onRunComplete, fn)
}

func (h *hooks) triggerOperation(o pkgsync.Outcome) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onOperation {
		fn(o)
	}
}

func (h *hooks) triggerRunComplete(r *pkgsync.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRunComplete {
		fn(r)
	}
}
