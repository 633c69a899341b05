// Package log provides a telemetry sink that writes pipeline events to the
// application logger. Events carry identifiers, outcomes and timings only;
// raw user text never reaches the sink.
package log

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klartext/klartext/internal/core/ports/driven"
	"github.com/klartext/klartext/internal/logger"
)

// Ensure Sink implements the interface.
var _ driven.TelemetrySink = (*Sink)(nil)

// defaultBufferSize bounds the event channel. When the buffer is full,
// events are dropped rather than blocking the pipeline.
const defaultBufferSize = 256

// Sink logs telemetry events asynchronously.
type Sink struct {
	events  chan driven.TelemetryEvent
	done    chan struct{}
	dropped int
	mu      sync.Mutex
	once    sync.Once
}

// NewSink creates a sink and starts its drain goroutine.
func NewSink() *Sink {
	s := &Sink{
		events: make(chan driven.TelemetryEvent, defaultBufferSize),
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

// Record accepts one event. Never blocks: events are dropped when the
// buffer is full.
func (s *Sink) Record(event driven.TelemetryEvent) {
	select {
	case s.events <- event:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Flush stops the drain goroutine after the buffered events are written.
func (s *Sink) Flush() {
	s.once.Do(func() {
		close(s.events)
		<-s.done
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropped > 0 {
		logger.Warn("Telemetry dropped %d events", s.dropped)
		s.dropped = 0
	}
}

// Dropped returns the number of events dropped since the last Flush.
func (s *Sink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Sink) drain() {
	defer close(s.done)
	for event := range s.events {
		logger.Debug("telemetry %s", format(event))
	}
}

// format renders an event as key=value pairs, skipping empty fields.
func format(event driven.TelemetryEvent) string {
	parts := []string{"kind=" + event.Kind}
	if event.DocumentID != "" {
		parts = append(parts, "document="+event.DocumentID)
	}
	if event.ChunkID != "" {
		parts = append(parts, "chunk="+event.ChunkID)
	}
	if event.Provider != "" {
		parts = append(parts, "provider="+event.Provider)
	}
	if event.Outcome != "" {
		parts = append(parts, "outcome="+event.Outcome)
	}
	if event.Attempt > 0 {
		parts = append(parts, fmt.Sprintf("attempt=%d", event.Attempt))
	}
	if event.Duration > 0 {
		parts = append(parts, fmt.Sprintf("duration=%s", event.Duration))
	}
	return strings.Join(parts, " ")
}
