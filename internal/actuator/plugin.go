package actuator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ayusman/phantomtouch/internal/click"
	"github.com/ayusman/phantomtouch/internal/plugin"
)

// DefaultQueueSize bounds the number of pending plugin requests.
const DefaultQueueSize = 64

// runner executes one plugin request. *plugin.Executor satisfies it.
type runner interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

type moveParams struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type clickParams struct {
	Button string `json:"button"`
}

type scrollParams struct {
	Amount int `json:"amount"`
}

// PluginPointer forwards pointer calls to an external plugin executable.
// Requests are queued and run by a single worker so the frame loop never
// waits on a subprocess; when the queue is full the request is dropped.
type PluginPointer struct {
	plugin *plugin.Plugin
	exec   runner
	logger *slog.Logger

	mu      sync.RWMutex
	closed  bool
	queue   chan *plugin.Request
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	dropped atomic.Int64
}

// NewPluginPointer starts the worker for p. Call Close to stop it.
func NewPluginPointer(p *plugin.Plugin, exec *plugin.Executor, queueSize int) *PluginPointer {
	return newPluginPointer(p, exec, queueSize)
}

func newPluginPointer(p *plugin.Plugin, exec runner, queueSize int) *PluginPointer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	pp := &PluginPointer{
		plugin: p,
		exec:   exec,
		logger: slog.Default().With("component", "actuator", "backend", BackendPlugin, "plugin", p.Manifest.Name),
		queue:  make(chan *plugin.Request, queueSize),
		cancel: cancel,
	}
	pp.wg.Add(1)
	go pp.run(ctx)
	return pp
}

func (p *PluginPointer) MoveTo(x, y int) {
	p.enqueue(string(OpMove), moveParams{X: x, Y: y})
}

func (p *PluginPointer) Click(button click.Button) {
	p.enqueue(string(OpClick), clickParams{Button: string(button)})
}

func (p *PluginPointer) ScrollBy(amount int) {
	p.enqueue(string(OpScroll), scrollParams{Amount: amount})
}

// Dropped returns the number of requests discarded because the queue was full.
func (p *PluginPointer) Dropped() int64 {
	return p.dropped.Load()
}

// Close drains pending requests and stops the worker.
func (p *PluginPointer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	return nil
}

func (p *PluginPointer) enqueue(action string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		p.logger.Warn("encode request", "action", action, "error", err)
		return
	}
	req := &plugin.Request{Action: action, Params: raw}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- req:
	default:
		p.dropped.Add(1)
		p.logger.Debug("queue full, request dropped", "action", action)
	}
}

func (p *PluginPointer) run(ctx context.Context) {
	defer p.wg.Done()
	for req := range p.queue {
		if _, err := p.exec.Execute(ctx, p.plugin, req); err != nil {
			p.logger.Warn("plugin request failed", "action", req.Action, "error", err)
		}
	}
}
