package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/config"
	"github.com/chatrelay/chatrelay-server/internal/core"
	"github.com/chatrelay/chatrelay-server/internal/store/sqlite"
)

type testEnv struct {
	ts       *httptest.Server
	registry *core.Registry
	store    *sqlite.SQLiteStore
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	registry := core.NewRegistry(true)
	cast := core.NewBroadcaster(registry, time.Second, &logger)
	bridge := core.NewBridge(st, time.Second, &logger)
	relay := core.NewRelay(registry, cast, bridge, &logger)

	server := NewServer(relay, st, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, registry: registry, store: st}
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

func dialChat(t *testing.T, ctx context.Context, env *testEnv, name string, userID, roomID int64) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("name", name)
	header.Set("userId", strconv.FormatInt(userID, 10))
	header.Set("chatRoomId", strconv.FormatInt(roomID, 10))

	conn, _, err := websocket.Dial(ctx, env.wsURL(), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("dial %s: %v", name, err)
	}
	return conn
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()

	readCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	typ, data, err := conn.Read(readCtx)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if typ != websocket.MessageText {
		t.Fatalf("unexpected frame type: %v", typ)
	}
	return string(data)
}
