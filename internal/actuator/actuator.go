// Package actuator injects pointer input into the operating system.
package actuator

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ayusman/phantomtouch/internal/click"
)

// Pointer is the output side of the control pipeline. Calls are fire-and-forget:
// backends log their own failures and never report them to the caller.
type Pointer interface {
	MoveTo(x, y int)
	Click(button click.Button)
	ScrollBy(amount int)
}

// Backend names accepted by New.
const (
	BackendRobotgo = "robotgo"
	BackendPlugin  = "plugin"
	BackendNone    = "none"
)

// LogPointer is a dry-run backend that only logs what it would do.
type LogPointer struct {
	logger *slog.Logger
}

// NewLogPointer creates a dry-run pointer. A nil logger uses slog.Default.
func NewLogPointer(logger *slog.Logger) *LogPointer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPointer{logger: logger.With("component", "actuator", "backend", BackendNone)}
}

func (p *LogPointer) MoveTo(x, y int) {
	p.logger.Debug("move", "x", x, "y", y)
}

func (p *LogPointer) Click(button click.Button) {
	p.logger.Info("click", "button", button)
}

func (p *LogPointer) ScrollBy(amount int) {
	p.logger.Info("scroll", "amount", amount)
}

// Op is the kind of a recorded pointer call.
type Op string

const (
	OpMove   Op = "move"
	OpClick  Op = "click"
	OpScroll Op = "scroll"
)

// Call is one recorded pointer call.
type Call struct {
	Op     Op
	X, Y   int
	Button click.Button
	Amount int
}

func (c Call) String() string {
	switch c.Op {
	case OpMove:
		return fmt.Sprintf("move(%d,%d)", c.X, c.Y)
	case OpClick:
		return fmt.Sprintf("click(%s)", c.Button)
	case OpScroll:
		return fmt.Sprintf("scroll(%d)", c.Amount)
	default:
		return string(c.Op)
	}
}

// Recorder keeps every call in order. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) MoveTo(x, y int) {
	r.record(Call{Op: OpMove, X: x, Y: y})
}

func (r *Recorder) Click(button click.Button) {
	r.record(Call{Op: OpClick, Button: button})
}

func (r *Recorder) ScrollBy(amount int) {
	r.record(Call{Op: OpScroll, Amount: amount})
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns the number of recorded calls of the given kind.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset discards all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Toggle forwards to the wrapped pointer only while enabled. Disabling it
// pauses output without touching any pipeline state.
type Toggle struct {
	mu      sync.RWMutex
	next    Pointer
	enabled bool
}

// NewToggle wraps next, starting in the given state.
func NewToggle(next Pointer, enabled bool) *Toggle {
	return &Toggle{next: next, enabled: enabled}
}

// SetEnabled turns forwarding on or off.
func (t *Toggle) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Enabled reports whether calls are forwarded.
func (t *Toggle) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func (t *Toggle) MoveTo(x, y int) {
	if t.Enabled() {
		t.next.MoveTo(x, y)
	}
}

func (t *Toggle) Click(button click.Button) {
	if t.Enabled() {
		t.next.Click(button)
	}
}

func (t *Toggle) ScrollBy(amount int) {
	if t.Enabled() {
		t.next.ScrollBy(amount)
	}
}
