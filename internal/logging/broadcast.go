package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LogEntry 推送到前端的一条日志。
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// BroadcastHandler 包装下游处理器，额外保存最近的日志并转发给 EventEmitter。
type BroadcastHandler struct {
	next    slog.Handler
	Emitter *EventEmitter

	ring  *ring
	attrs []slog.Attr
	group string
}

// NewBroadcastHandler capacity 为内存中保留的最近日志条数。
func NewBroadcastHandler(next slog.Handler, capacity int, emitter *EventEmitter) *BroadcastHandler {
	if emitter == nil {
		emitter = NewEventEmitter(nil)
	}
	return &BroadcastHandler{
		next:    next,
		Emitter: emitter,
		ring:    newRing(capacity),
	}
}

func (h *BroadcastHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *BroadcastHandler) Handle(ctx context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	entry := LogEntry{
		Time:    t.Format(time.RFC3339Nano),
		Level:   levelName(r.Level),
		Message: formatMessage(r, h.attrs, h.group),
	}
	h.ring.add(entry)
	h.Emitter.Emit(entry)
	return h.next.Handle(ctx, r)
}

func (h *BroadcastHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *BroadcastHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// Recent 返回最近 limit 条日志（旧的在前）。limit <= 0 返回全部。
func (h *BroadcastHandler) Recent(limit int) []LogEntry {
	return h.ring.last(limit)
}

// ring 固定容量的环形缓冲。
type ring struct {
	mu    sync.Mutex
	items []LogEntry
	next  int
	full  bool
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1000
	}
	return &ring{items: make([]LogEntry, capacity)}
}

func (r *ring) add(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.next] = e
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring) last(limit int) []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ordered []LogEntry
	if r.full {
		ordered = append(ordered, r.items[r.next:]...)
		ordered = append(ordered, r.items[:r.next]...)
	} else {
		ordered = append(ordered, r.items[:r.next]...)
	}
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}
