package main

import (
	"context"
	"fmt"
	"time"

	rawhttp "github.com/jayo-projects/jayo-http-sub002"
)

func main() {
	fmt.Println("=== HTTP/1.1 request ===")
	httpDemo()

	fmt.Println("\n=== WebSocket echo ===")
	websocketDemo()
}

func httpDemo() {
	sender := rawhttp.NewSender()
	ctx := context.Background()

	opts := rawhttp.Options{
		Host:            "example.com",
		Port:            443,
		Scheme:          "https",
		ReuseConnection: true,
		ConnTimeout:     10 * time.Second,
		ReadTimeout:     10 * time.Second,
	}

	req := []byte("GET / HTTP/1.1\r\nHost: example.com\r\nConnection: keep-alive\r\n\r\n")

	resp, err := sender.Do(ctx, req, opts)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	defer resp.Body.Close()
	defer resp.Raw.Close()

	fmt.Printf("status: %s\n", resp.StatusLine)
	fmt.Printf("body bytes: %d\n", resp.BodyBytes)
	fmt.Printf("connected to: %s (reused=%v)\n", resp.ConnectedIP, resp.ConnectionReused)
}

func websocketDemo() {
	sender := rawhttp.NewSender()
	ctx := context.Background()

	conn, subprotocol, err := sender.DialWebSocket(ctx, "wss://echo.websocket.events/", rawhttp.WebSocketOptions{
		Deflate: true,
	})
	if err != nil {
		fmt.Printf("dial error: %v\n", err)
		return
	}
	defer conn.Close(1000, "done")

	if subprotocol != "" {
		fmt.Printf("negotiated subprotocol: %s\n", subprotocol)
	}

	conn.StartPingLoop()

	if err := conn.WriteMessage(rawhttp.OpText, []byte("hello")); err != nil {
		fmt.Printf("write error: %v\n", err)
		return
	}

	msg, err := conn.ReadMessage()
	if err != nil {
		fmt.Printf("read error: %v\n", err)
		return
	}
	fmt.Printf("echoed: %s\n", msg.Payload)
}
