package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/coder/websocket"
)

// Connects two users to the same room, sends one message from the first and
// verifies the second receives the relay frame.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	roomID := flag.Int64("room", 1, "chat room id")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sender, err := dial(ctx, *addr, "smoke-sender", 9001, *roomID)
	if err != nil {
		return fmt.Errorf("dial sender: %w", err)
	}
	defer sender.Close(websocket.StatusNormalClosure, "bye")

	receiver, err := dial(ctx, *addr, "smoke-receiver", 9002, *roomID)
	if err != nil {
		return fmt.Errorf("dial receiver: %w", err)
	}
	defer receiver.Close(websocket.StatusNormalClosure, "bye")

	// Drain the receiver's own join announcement.
	if _, _, err := receiver.Read(ctx); err != nil {
		return fmt.Errorf("read join announcement: %w", err)
	}

	if err := sender.Write(ctx, websocket.MessageText, []byte(*text)); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	want := "smoke-sender : " + *text
	for {
		_, data, err := receiver.Read(ctx)
		if err != nil {
			return fmt.Errorf("read relay: %w", err)
		}
		if string(data) == want {
			fmt.Printf("OK: received %q\n", want)
			return nil
		}
	}
}

func dial(ctx context.Context, addr, name string, userID, roomID int64) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("name", name)
	header.Set("userId", strconv.FormatInt(userID, 10))
	header.Set("chatRoomId", strconv.FormatInt(roomID, 10))

	conn, _, err := websocket.Dial(ctx, addr, &websocket.DialOptions{HTTPHeader: header})
	return conn, err
}
