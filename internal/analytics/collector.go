package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/kafka"
)

const maxBatch = 100

// Collector buffers events and publishes them in batches from a single
// goroutine so that the query path never waits on Kafka. Events are dropped
// when the buffer is full.
type Collector struct {
	publisher kafka.Publisher
	eventCh   chan any
	logger    *slog.Logger
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	started   atomic.Bool
	dropped   atomic.Uint64
}

func NewCollector(publisher kafka.Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan any, bufferSize),
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
	}
}

// Start launches the publish loop. Cancelling ctx flushes what is buffered
// and stops the loop.
func (c *Collector) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				batch, open := c.fill([]any{event})
				c.publish(ctx, batch)
				if !open {
					return
				}
			case <-ctx.Done():
				c.drain()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues event without blocking.
func (c *Collector) Track(event any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		n := c.dropped.Add(1)
		c.logger.Warn("analytics event dropped (buffer full)", "dropped_total", n)
	}
}

// Close stops accepting events and waits until the buffer is published.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.eventCh)
		c.mu.Unlock()
	})
	if c.started.Load() {
		<-c.done
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (c *Collector) Dropped() uint64 {
	return c.dropped.Load()
}

// fill adds already-buffered events to batch without blocking. It reports
// false once the channel is closed.
func (c *Collector) fill(batch []any) ([]any, bool) {
	for len(batch) < maxBatch {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch, false
			}
			batch = append(batch, event)
		default:
			return batch, true
		}
	}
	return batch, true
}

func (c *Collector) drain() {
	for {
		batch, open := c.fill(nil)
		if len(batch) > 0 {
			c.publish(context.Background(), batch)
		}
		if !open || len(batch) == 0 {
			return
		}
	}
}

func (c *Collector) publish(ctx context.Context, batch []any) {
	events := make([]kafka.Event, len(batch))
	for i, event := range batch {
		events[i] = kafka.Event{Key: eventKey(event), Value: event}
	}
	if err := c.publisher.PublishBatch(ctx, events); err != nil {
		c.logger.Error("failed to publish analytics events", "count", len(events), "error", err)
	}
}

func eventKey(event any) string {
	switch e := event.(type) {
	case SearchEvent:
		return string(e.Type)
	case IndexEvent:
		return string(e.Type)
	default:
		return "analytics"
	}
}
