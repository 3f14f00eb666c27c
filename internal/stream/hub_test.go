package stream_test

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ctrmdash/internal/coordinator"
	"ctrmdash/internal/domain"
	"ctrmdash/internal/stream"
)

type fakeSource struct {
	mu   sync.Mutex
	subs []chan coordinator.Event
}

func (f *fakeSource) Subscribe(buffer int) (<-chan coordinator.Event, func()) {
	ch := make(chan coordinator.Event, buffer)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()
	return ch, func() {}
}

func (f *fakeSource) send(ev coordinator.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		ch <- ev
	}
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

// go test -v --run ^TestHubForwardsEvents$
func TestHubForwardsEvents(t *testing.T) {
	src := &fakeSource{}
	hub := stream.NewHub(zap.NewNop(), src, stream.Config{})
	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	defer conn.Close()

	require.Eventually(t, func() bool { return src.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.Clients())

	src.send(coordinator.Event{
		ID:      "ev-1",
		Type:    coordinator.EventFiltersChanged,
		Session: coordinator.Session{Filters: domain.FilterState{Commodity: "WTI"}},
	})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var got coordinator.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "ev-1", got.ID)
	assert.Equal(t, coordinator.EventFiltersChanged, got.Type)
	assert.Equal(t, "WTI", got.Session.Filters.Commodity)
}

// go test -v --run ^TestHubDropsClosedClient$
func TestHubDropsClosedClient(t *testing.T) {
	src := &fakeSource{}
	hub := stream.NewHub(zap.NewNop(), src, stream.Config{})
	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

// go test -v --run ^TestHubRejectsForeignOrigin$
func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := stream.NewHub(zap.NewNop(), &fakeSource{}, stream.Config{AllowedOrigin: "http://dash.local"})
	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.local"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
