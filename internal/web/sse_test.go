package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/r3labs/sse/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/navikt/roomboard/internal/metrics"
)

// subscribe connects an SSE client to url and returns the channel receiving its events
func subscribe(t *testing.T, url, stream string) <-chan *sse.Event {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	events := make(chan *sse.Event, 16)
	client := sse.NewClient(url)
	require.NoError(t, client.SubscribeChanWithContext(ctx, stream, events))
	return events
}

// waitForEvent drains events until one named name arrives
func waitForEvent(t *testing.T, events <-chan *sse.Event, name string) *sse.Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event channel closed")
			if ev != nil && string(ev.Event) == name {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %q event received", name)
			return nil
		}
	}
}

func TestNewBroadcaster(t *testing.T) {
	b := NewBroadcaster(nil, time.Minute)
	defer b.Close()

	assert.NotNil(t, b.server)
	assert.True(t, b.server.StreamExists(StreamID))
	assert.False(t, b.server.AutoReplay)
}

func TestBroadcaster_RejectsNonEventStreamClients(t *testing.T) {
	b := NewBroadcaster(zap.NewNop(), 0)
	defer b.Close()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/events", nil)
	request.Header.Set("Accept", "application/json")

	b.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotAcceptable, recorder.Code)
}

func TestIsEventStreamSupported(t *testing.T) {
	tests := []struct {
		accept   string
		expected bool
	}{
		{"", true},
		{"*/*", true},
		{"text/event-stream", true},
		{"text/html, text/event-stream;q=0.9", true},
		{"application/json", false},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/events", nil)
			request.Header.Set("Accept", tt.accept)
			assert.Equal(t, tt.expected, isEventStreamSupported(request))
		})
	}
}

func TestBroadcaster_NotifyRoomUpdate(t *testing.T) {
	b := NewBroadcaster(zap.NewNop(), 0)
	server := httptest.NewServer(b)
	defer server.Close()
	defer b.Close()

	// The stream query parameter is optional
	events := subscribe(t, server.URL, "")

	before := testutil.ToFloat64(metrics.SSEEvents.WithLabelValues(EventUpdate))
	b.NotifyRoomUpdate("fjord")

	ev := waitForEvent(t, events, EventUpdate)
	assert.Equal(t, "fjord", string(ev.Data))
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SSEEvents.WithLabelValues(EventUpdate)))
}

func TestBroadcaster_ExplicitStream(t *testing.T) {
	b := NewBroadcaster(zap.NewNop(), 0)
	server := httptest.NewServer(b)
	defer server.Close()
	defer b.Close()

	events := subscribe(t, server.URL, StreamID)
	b.NotifyRoomUpdate("ask")

	ev := waitForEvent(t, events, EventUpdate)
	assert.Equal(t, "ask", string(ev.Data))
}

func TestBroadcaster_RefreshEvents(t *testing.T) {
	b := NewBroadcaster(zap.NewNop(), 20*time.Millisecond)
	fixed := time.Date(2025, 5, 7, 9, 10, 0, 0, time.UTC)
	b.clock = func() time.Time { return fixed }

	server := httptest.NewServer(b)
	defer server.Close()
	defer b.Close()

	events := subscribe(t, server.URL, StreamID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)

	ev := waitForEvent(t, events, EventRefresh)
	assert.Equal(t, "2025-05-07T09:10:00Z", string(ev.Data))
}

func TestBroadcaster_StartStopsOnContext(t *testing.T) {
	b := NewBroadcaster(zap.NewNop(), 5*time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh loop did not stop after context cancellation")
	}
}

func TestBroadcaster_CloseIsIdempotent(t *testing.T) {
	b := NewBroadcaster(zap.NewNop(), time.Millisecond)
	b.Start(context.Background())

	assert.NotPanics(t, func() {
		b.Close()
		b.Close()
	})
}
