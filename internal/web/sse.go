// Package web pushes room changes to dashboards over server-sent events
package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"

	"github.com/navikt/roomboard/internal/metrics"
	"github.com/navikt/roomboard/internal/utils"
)

const (
	// StreamID is the single stream every dashboard subscribes to
	StreamID = "rooms"

	// EventUpdate carries the ID of a room whose rooms or appointments changed
	EventUpdate = "update"
	// EventRefresh tells clients to re-read statuses because the clock moved
	EventRefresh = "refresh"
)

// Broadcaster publishes room events on an SSE stream. Besides write
// notifications it emits a periodic refresh, since slot states change
// as time passes even when nothing is written.
type Broadcaster struct {
	server          *sse.Server
	logger          *zap.Logger
	refreshInterval time.Duration
	clock           func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewBroadcaster creates a broadcaster with the rooms stream ready for subscribers.
// A refreshInterval of zero or less disables refresh events.
func NewBroadcaster(logger *zap.Logger, refreshInterval time.Duration) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := sse.New()
	server.AutoReplay = false
	server.AutoStream = false
	server.Headers = map[string]string{
		"X-Accel-Buffering": "no", // Disable nginx proxy buffering
		"Cache-Control":     "no-cache, no-transform",
	}

	b := &Broadcaster{
		server:          server,
		logger:          logger,
		refreshInterval: refreshInterval,
		clock:           time.Now,
		stop:            make(chan struct{}),
	}

	server.OnSubscribe = func(streamID string, _ *sse.Subscriber) {
		metrics.SSESubscribers.Inc()
		b.logger.Debug("SSE client connected", zap.String("stream", streamID))
	}
	server.OnUnsubscribe = func(streamID string, _ *sse.Subscriber) {
		metrics.SSESubscribers.Dec()
		b.logger.Debug("SSE client disconnected", zap.String("stream", streamID))
	}

	server.CreateStream(StreamID)
	return b
}

// ServeHTTP subscribes the client to the rooms stream
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !isEventStreamSupported(r) {
		http.Error(w, "This endpoint requires EventStream support", http.StatusNotAcceptable)
		return
	}

	if r.URL.Query().Get("stream") != StreamID {
		r = r.Clone(r.Context())
		query := r.URL.Query()
		query.Set("stream", StreamID)
		r.URL.RawQuery = query.Encode()
	}

	b.server.ServeHTTP(w, r)
}

// NotifyRoomUpdate publishes an update event for a room; it matches the
// service's update callback signature
func (b *Broadcaster) NotifyRoomUpdate(roomID string) {
	b.logger.Debug("publishing room update", utils.SafeString("room_id", roomID))
	b.publish(EventUpdate, roomID)
}

func (b *Broadcaster) publish(event, data string) {
	b.server.Publish(StreamID, &sse.Event{
		ID:    []byte(strconv.FormatInt(b.clock().UnixNano(), 10)),
		Event: []byte(event),
		Data:  []byte(data),
	})
	metrics.SSEEvents.WithLabelValues(event).Inc()
}

// Start emits refresh events until ctx is cancelled or Close is called
func (b *Broadcaster) Start(ctx context.Context) {
	if b.refreshInterval <= 0 {
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ticker := time.NewTicker(b.refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-b.stop:
				return
			case <-ticker.C:
				b.publish(EventRefresh, b.clock().Format(time.RFC3339))
			}
		}
	}()
}

// Close stops the refresh loop and disconnects all subscribers
func (b *Broadcaster) Close() {
	b.stopOnce.Do(func() {
		close(b.stop)
		b.wg.Wait()
		b.server.Close()
	})
}

// isEventStreamSupported checks if the client accepts event streams
func isEventStreamSupported(r *http.Request) bool {
	accepts := r.Header.Get("Accept")

	return accepts == "" ||
		strings.Contains(accepts, "*/*") ||
		strings.Contains(accepts, "text/event-stream")
}
