package logging

import (
	"context"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventLogBatch 前端订阅的批量日志事件名。
const EventLogBatch = "log:batch"

// Sink 把事件投递到前端。
type Sink func(ctx context.Context, name string, data ...interface{})

// WailsSink 通过 Wails Runtime Events 推送。
func WailsSink(ctx context.Context, name string, data ...interface{}) {
	runtime.EventsEmit(ctx, name, data...)
}

// EventEmitter 批量把日志推送到前端，DOM 就绪后才启动。
type EventEmitter struct {
	mu   sync.Mutex
	sink Sink

	batchSize     int
	flushInterval time.Duration

	queue chan LogEntry
	stop  chan struct{}
	done  chan struct{}
}

// NewEventEmitter sink 为 nil 时使用 WailsSink。
func NewEventEmitter(sink Sink) *EventEmitter {
	if sink == nil {
		sink = WailsSink
	}
	return &EventEmitter{
		sink:          sink,
		batchSize:     10,
		flushInterval: 100 * time.Millisecond,
	}
}

// Start 启动发送循环，重复调用无效果。
func (e *EventEmitter) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.queue != nil {
		return
	}

	// 有界队列：前端消费慢时丢弃，日志主路径不被阻塞
	e.queue = make(chan LogEntry, e.batchSize*200)
	e.stop = make(chan struct{})
	e.done = make(chan struct{})

	go e.loop(ctx, e.queue, e.stop, e.done)
}

// Stop 停止并尽量刷出剩余日志。
func (e *EventEmitter) Stop() {
	e.mu.Lock()
	stop, done := e.stop, e.done
	e.queue, e.stop, e.done = nil, nil, nil
	e.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// IsEnabled 返回是否已启动。
func (e *EventEmitter) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue != nil
}

// Emit 非阻塞入队；队满时 ERROR/WARN 挤掉最旧的一条。
func (e *EventEmitter) Emit(entry LogEntry) {
	e.mu.Lock()
	queue := e.queue
	e.mu.Unlock()
	if queue == nil {
		return
	}

	select {
	case queue <- entry:
		return
	default:
	}

	if entry.Level != "ERROR" && entry.Level != "WARN" {
		return
	}
	select {
	case <-queue:
	default:
	}
	select {
	case queue <- entry:
	default:
	}
}

func (e *EventEmitter) loop(ctx context.Context, queue <-chan LogEntry, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.flushInterval)
	defer ticker.Stop()

	buf := make([]LogEntry, 0, e.batchSize)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		batch := make([]LogEntry, len(buf))
		copy(batch, buf)
		e.sink(ctx, EventLogBatch, batch)
		buf = buf[:0]
	}
	push := func(entry LogEntry) {
		buf = append(buf, entry)
		if len(buf) >= e.batchSize {
			flush()
		}
	}

	for {
		select {
		case <-stop:
			for {
				select {
				case entry := <-queue:
					push(entry)
				default:
					flush()
					return
				}
			}
		case entry := <-queue:
			push(entry)
		case <-ticker.C:
			flush()
		}
	}
}
