package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub/pubsubtest"
	"github.com/syntrixbase/itemdeck/internal/events"
	"github.com/syntrixbase/itemdeck/internal/gateway/config"
	"github.com/syntrixbase/itemdeck/internal/state"
)

type readerFunc func(ctx context.Context) (state.State, error)

func (f readerFunc) Read(ctx context.Context) (state.State, error) { return f(ctx) }

type testEnv struct {
	srv      *Server
	store    *state.MemoryStore
	consumer *pubsubtest.MockConsumer
	ts       *httptest.Server
	cancel   context.CancelFunc
	runErr   chan error
}

func testRealtimeConfig() config.RealtimeConfig {
	return config.DefaultGatewayConfig().Realtime
}

func newTestEnv(t *testing.T, reader state.Reader, cfg config.RealtimeConfig) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    state.NewMemoryStore(),
		consumer: pubsubtest.NewMockConsumer(),
		runErr:   make(chan error, 1),
	}
	if reader == nil {
		reader = env.store
	}
	env.srv = NewServer(reader, env.consumer, cfg, nil)

	mux := http.NewServeMux()
	env.srv.RegisterRoutes(mux, "", "/api")
	env.ts = httptest.NewServer(mux)

	ctx, cancel := context.WithCancel(context.Background())
	env.cancel = cancel
	go func() { env.runErr <- env.srv.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		env.ts.Close()
	})
	return env
}

func (e *testEnv) dial(t *testing.T, path string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *testEnv) publish(t *testing.T, s state.State) *pubsubtest.MockMessage {
	t.Helper()
	data, err := events.NewStateReplaced(s, time.Now()).Encode()
	require.NoError(t, err)
	msg := pubsubtest.NewMockMessage(events.SubjectStateReplaced, data)
	require.Eventually(t, func() bool { return e.consumer.Send(msg) }, 2*time.Second, 10*time.Millisecond)
	return msg
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestNewServer_Panics(t *testing.T) {
	assert.Panics(t, func() { NewServer(nil, pubsubtest.NewMockConsumer(), testRealtimeConfig(), nil) })
	assert.Panics(t, func() { NewServer(state.NewMemoryStore(), nil, testRealtimeConfig(), nil) })
}

func TestWatch_SnapshotThenUpdates(t *testing.T) {
	env := newTestEnv(t, nil, testRealtimeConfig())
	_, err := env.store.Replace(context.Background(), state.State{SelectedIDs: []int{7}})
	require.NoError(t, err)

	conn := env.dial(t, "/api/state/watch", nil)
	snap := readMessage(t, conn)
	assert.Equal(t, TypeSnapshot, snap.Type)
	assert.Equal(t, uint64(1), snap.State.Version)
	assert.Equal(t, []int{7}, snap.State.SelectedIDs)

	next, err := env.store.Replace(context.Background(), state.State{SortedOrder: []int{3, 1}})
	require.NoError(t, err)
	msg := env.publish(t, next)

	got := readMessage(t, conn)
	assert.Equal(t, TypeState, got.Type)
	assert.Equal(t, uint64(2), got.State.Version)
	assert.Equal(t, []int{3, 1}, got.State.SortedOrder)
	assert.Eventually(t, msg.IsAcked, time.Second, 10*time.Millisecond)
}

func TestWatch_SkipsStatesNotNewerThanSnapshot(t *testing.T) {
	env := newTestEnv(t, nil, testRealtimeConfig())
	first, err := env.store.Replace(context.Background(), state.State{SelectedIDs: []int{1}})
	require.NoError(t, err)

	conn := env.dial(t, "/state/watch", nil)
	assert.Equal(t, uint64(1), readMessage(t, conn).State.Version)

	env.publish(t, first)
	env.publish(t, state.State{SelectedIDs: []int{2}, Version: 2})

	got := readMessage(t, conn)
	assert.Equal(t, uint64(2), got.State.Version)
	assert.Equal(t, []int{2}, got.State.SelectedIDs)
}

func TestWatch_MalformedEventIsAcked(t *testing.T) {
	env := newTestEnv(t, nil, testRealtimeConfig())
	conn := env.dial(t, "/state/watch", nil)
	readMessage(t, conn)

	bad := pubsubtest.NewMockMessage(events.SubjectStateReplaced, []byte("{"))
	require.Eventually(t, func() bool { return env.consumer.Send(bad) }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, bad.IsAcked, time.Second, 10*time.Millisecond)

	env.publish(t, state.State{Version: 1})
	assert.Equal(t, uint64(1), readMessage(t, conn).State.Version)
}

func TestWatch_SnapshotFailureClosesConnection(t *testing.T) {
	reader := readerFunc(func(context.Context) (state.State, error) {
		return state.State{}, state.ErrStorageUnavailable
	})
	env := newTestEnv(t, reader, testRealtimeConfig())
	conn := env.dial(t, "/state/watch", nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr))
}

func TestWatch_OriginCheck(t *testing.T) {
	cfg := testRealtimeConfig()
	cfg.AllowedOrigins = []string{"http://allowed.example"}
	env := newTestEnv(t, nil, cfg)
	url := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/state/watch"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := env.dial(t, "/state/watch", http.Header{"Origin": {"http://allowed.example"}})
	assert.Equal(t, TypeSnapshot, readMessage(t, conn).Type)
}

func TestRun_ShutdownClosesWatchers(t *testing.T) {
	env := newTestEnv(t, nil, testRealtimeConfig())
	conn := env.dial(t, "/state/watch", nil)
	readMessage(t, conn)

	env.cancel()
	select {
	case err := <-env.runErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}

func TestRun_SubscribeError(t *testing.T) {
	consumer := pubsubtest.NewMockConsumer()
	consumer.SetError(errors.New("no broker"))
	srv := NewServer(state.NewMemoryStore(), consumer, testRealtimeConfig(), nil)

	err := srv.Run(context.Background())
	assert.EqualError(t, err, "no broker")
}

func TestCheckOrigin(t *testing.T) {
	cfg := testRealtimeConfig()
	srv := NewServer(state.NewMemoryStore(), pubsubtest.NewMockConsumer(), cfg, nil)

	r := httptest.NewRequest(http.MethodGet, "/state/watch", nil)
	assert.True(t, srv.checkOrigin(r))
	r.Header.Set("Origin", "http://anything.example")
	assert.True(t, srv.checkOrigin(r))

	srv.cfg.AllowedOrigins = []string{"http://a.example"}
	assert.False(t, srv.checkOrigin(r))
	r.Header.Set("Origin", "http://a.example")
	assert.True(t, srv.checkOrigin(r))
}
