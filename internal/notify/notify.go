// Package notify routes host notices to the request that raised them.
//
// The Host notifier is created once per process and is what the exchange rate
// validation filter wraps; each HTTP request installs its own Collector in the
// context so that notices travel back with the form reply.
package notify

import (
	"context"
	"sync"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"
)

type collectorKey struct{}

// Collector accumulates the notices raised while handling one form event.
type Collector struct {
	mu      sync.Mutex
	notices []model.Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(n model.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices returns a copy of everything collected so far.
func (c *Collector) Notices() []model.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

func FromContext(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok
}

// Host delivers notices to the collector found in the context.
type Host struct {
	log *logger.Logger
}

func NewHost(log *logger.Logger) *Host {
	return &Host{log: log}
}

func (h *Host) Throw(ctx context.Context, message, title string) {
	h.deliver(ctx, model.Notice{Kind: model.NoticeError, Message: message, Title: title, Indicator: "red"})
}

func (h *Host) Msgprint(ctx context.Context, message, title, indicator string, alert bool) {
	h.deliver(ctx, model.Notice{Kind: model.NoticeMessage, Message: message, Title: title, Indicator: indicator, Alert: alert})
}

func (h *Host) deliver(ctx context.Context, n model.Notice) {
	c, ok := FromContext(ctx)
	if !ok {
		// background work has no form to show it on
		h.log.Warn("Notice without a form", "kind", n.Kind, "message", n.Message)
		return
	}
	c.Add(n)
}

var _ ports.Notifier = (*Host)(nil)
