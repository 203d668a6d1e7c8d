package feed

import (
	"bufio"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"boxoffice/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func forecastEvent(id, month string) models.ForecastEvent {
	return models.ForecastEvent{Type: models.ForecastCreatedEvent, ID: id, BestMonth: month, PredictedValue: 214.1}
}

func decodeLine(t *testing.T, line string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(line)), v))
}

func TestTCPReplaysBacklogThenLive(t *testing.T) {
	hub := NewHub(1, nil)
	hub.Publish(forecastEvent("f-0", "June"))
	hub.Publish(forecastEvent("f-1", "December"))

	srv := NewServer("127.0.0.1:0", hub, nil)
	addr, err := srv.Listen()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()
	r := bufio.NewReader(conn)

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	var h hello
	decodeLine(t, line, &h)
	assert.Equal(t, hello{Type: helloEvent, Transport: transportTCP, Backlog: 1, Published: 2}, h)

	line, err = r.ReadString('\n')
	require.NoError(t, err)
	var replayed models.ForecastEvent
	decodeLine(t, line, &replayed)
	assert.Equal(t, "f-1", replayed.ID)
	assert.Equal(t, "December", replayed.BestMonth)

	require.Eventually(t, func() bool { return hub.Stats().TCPClients == 1 }, time.Second, 10*time.Millisecond)

	// Type defaults to forecast.created.
	hub.Publish(models.ForecastEvent{ID: "f-2", BestMonth: "April"})
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	var live models.ForecastEvent
	decodeLine(t, line, &live)
	assert.Equal(t, models.ForecastCreatedEvent, live.Type)
	assert.Equal(t, "f-2", live.ID)

	st := hub.Stats()
	assert.Equal(t, 1, st.Backlog)
	assert.Equal(t, 3, st.Published)

	require.NoError(t, srv.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed server did not stop")
	}
	assert.Equal(t, 0, hub.Stats().TCPClients)
}

func TestWSReplaysBacklogThenLive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(DefaultBacklog, nil)
	hub.Publish(forecastEvent("f-1", "December"))

	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	ts := httptest.NewServer(r)
	defer ts.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	var h hello
	decodeLine(t, string(msg), &h)
	assert.Equal(t, transportWS, h.Transport)
	assert.Equal(t, 1, h.Backlog)

	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"id":"f-1"`)

	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(forecastEvent("f-2", "May"))
	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"id":"f-2"`)

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return hub.Stats().WSClients == 0 }, time.Second, 10*time.Millisecond)
}

func TestBacklogKeepsNewest(t *testing.T) {
	hub := NewHub(2, nil)
	for _, id := range []string{"a", "b", "c"} {
		hub.Publish(forecastEvent(id, "May"))
	}
	require.Len(t, hub.recent, 2)
	assert.Contains(t, string(hub.recent[0]), `"id":"b"`)
	assert.Contains(t, string(hub.recent[1]), `"id":"c"`)

	off := NewHub(0, nil)
	off.Publish(forecastEvent("a", "May"))
	assert.Equal(t, Stats{Published: 1}, off.Stats())
}

func TestCloseBeforeRun(t *testing.T) {
	hub := NewHub(DefaultBacklog, nil)
	srv := NewServer("127.0.0.1:0", hub, nil)
	require.NoError(t, srv.Close())

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run blocked after Close")
	}

	_, err := srv.Listen()
	assert.ErrorIs(t, err, net.ErrClosed)

	client, server := net.Pipe()
	defer client.Close()
	assert.ErrorIs(t, hub.subscribe(tcpSubscriber{conn: server}), net.ErrClosed)
	assert.Equal(t, 0, hub.Stats().TCPClients)
}
