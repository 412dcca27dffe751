package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TradeSim/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFeedHandleFrame(t *testing.T) {
	f := NewPriceFeed("ws://unused", "", 0, 0, logger.NewNop())

	f.handleFrame([]byte(`{"type":"price","data":[{"s":"bitcoin","p":"64000.5","t":2000},{"s":"eth","p":0,"t":2000}]}`))
	f.handleFrame([]byte(`{"type":"price","data":[{"s":"bitcoin","p":63000,"t":1000}]}`))
	f.handleFrame([]byte(`{"type":"ping"}`))
	f.handleFrame([]byte(`not json`))

	price, at, ok := f.LastPrice("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 64000.5, price)
	assert.Equal(t, time.UnixMilli(2000).UTC(), at)

	_, _, ok = f.LastPrice("eth")
	assert.False(t, ok, "non-positive prices are dropped")
}

func TestPriceFeedStreamsFromServer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var msg subscribeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		subscribed <- msg.Currency
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"price","data":[{"s":"solana","p":"150.25","t":1700000000000}]}`))
		// hold the connection until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := NewPriceFeed("ws"+strings.TrimPrefix(srv.URL, "http"), "", 10*time.Millisecond, time.Second, logger.NewNop())
	require.NoError(t, f.Connect(ctx))
	require.NoError(t, f.Subscribe(ctx, []string{"solana"}))
	assert.Equal(t, "solana", <-subscribed)

	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, _, ok := f.LastPrice("solana")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	price, _, _ := f.LastPrice("solana")
	assert.Equal(t, 150.25, price)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
