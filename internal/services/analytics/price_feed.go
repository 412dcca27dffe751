package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	drepo "TradeSim/internal/domain/repository"
	"TradeSim/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// PriceFeed implements a PriceFeed backed by the backend's price WebSocket.
// It only remembers the latest tick per currency.
type PriceFeed struct {
	websocketURL   string
	token          string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu         sync.RWMutex
	conn       *websocket.Conn
	connected  bool
	subscribed []string
	last       map[string]priceTick
	writeMu    sync.Mutex
}

type priceTick struct {
	price float64
	at    time.Time
}

var _ drepo.PriceFeed = (*PriceFeed)(nil)

// NewPriceFeed creates a new WebSocket PriceFeed.
func NewPriceFeed(websocketURL, token string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) *PriceFeed {
	if reconnectDelay <= 0 {
		reconnectDelay = 2 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &PriceFeed{
		websocketURL:   websocketURL,
		token:          token,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
		last:           make(map[string]priceTick),
	}
}

// Connect establishes the WebSocket connection.
func (f *PriceFeed) Connect(ctx context.Context) error {
	u := f.websocketURL
	if f.token != "" {
		u = fmt.Sprintf("%s?token=%s", f.websocketURL, url.QueryEscape(f.token))
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("price feed connect: %w", err)
	}
	f.mu.Lock()
	f.conn = conn
	f.connected = true
	f.mu.Unlock()
	f.log.Info("price feed connected", logger.String("url", f.websocketURL))
	return nil
}

type subscribeMessage struct {
	Type     string `json:"type"`
	Currency string `json:"currency_id"`
}

// Subscribe asks the backend for price ticks of currencyIDs.
// The set is remembered and replayed after a reconnect.
func (f *PriceFeed) Subscribe(ctx context.Context, currencyIDs []string) error {
	f.mu.Lock()
	conn := f.conn
	for _, id := range currencyIDs {
		if !contains(f.subscribed, id) {
			f.subscribed = append(f.subscribed, id)
		}
	}
	f.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("price feed not connected")
	}
	for _, id := range currencyIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.writeJSON(conn, subscribeMessage{Type: "subscribe", Currency: id}); err != nil {
			return fmt.Errorf("subscribe %s: %w", id, err)
		}
		f.log.Debug("price feed subscribed", logger.String("currency_id", id))
	}
	return nil
}

type wsTick struct {
	Currency string          `json:"s"`
	Price    decimal.Decimal `json:"p"`
	T        int64           `json:"t"` // ms
}

type wsMessage struct {
	Type string   `json:"type"`
	Data []wsTick `json:"data"`
}

// Run reads ticks until ctx is cancelled, reconnecting after read failures.
func (f *PriceFeed) Run(ctx context.Context) error {
	go f.pingLoop(ctx)
	for {
		err := f.readLoop(ctx)
		if ctx.Err() != nil {
			return nil
		}
		f.log.Warn("price feed read failed, reconnecting", logger.Error(err), logger.Duration("delay_ms", f.reconnectDelay))
		if err := f.reconnect(ctx); err != nil && ctx.Err() == nil {
			f.log.Error("price feed reconnect failed", logger.Error(err))
		}
	}
}

func (f *PriceFeed) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(f.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.mu.RLock()
			conn := f.conn
			f.mu.RUnlock()
			if conn != nil {
				f.writeMu.Lock()
				_ = conn.WriteMessage(websocket.PingMessage, nil)
				f.writeMu.Unlock()
			}
		}
	}
}

func (f *PriceFeed) readLoop(ctx context.Context) error {
	f.mu.RLock()
	conn := f.conn
	f.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("price feed conn nil")
	}

	// unblock ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("price feed read: %w", err)
		}
		f.handleFrame(b)
	}
}

func (f *PriceFeed) handleFrame(b []byte) {
	var m wsMessage
	if err := json.Unmarshal(b, &m); err != nil {
		// ignore non-price frames
		return
	}
	if m.Type != "price" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range m.Data {
		if d.Currency == "" || !d.Price.IsPositive() {
			continue
		}
		at := time.UnixMilli(d.T).UTC()
		if prev, ok := f.last[d.Currency]; ok && prev.at.After(at) {
			continue
		}
		f.last[d.Currency] = priceTick{price: d.Price.InexactFloat64(), at: at}
	}
}

// LastPrice returns the most recent streamed price for currencyID.
func (f *PriceFeed) LastPrice(currencyID string) (float64, time.Time, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.last[currencyID]
	return t.price, t.at, ok
}

func (f *PriceFeed) reconnect(ctx context.Context) error {
	_ = f.Close()
	select {
	case <-time.After(f.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := f.Connect(ctx); err != nil {
		return err
	}
	f.mu.RLock()
	ids := append([]string(nil), f.subscribed...)
	f.mu.RUnlock()
	return f.Subscribe(ctx, ids)
}

func (f *PriceFeed) writeJSON(conn *websocket.Conn, v interface{}) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// Close closes the WS connection.
func (f *PriceFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	if f.conn != nil {
		err := f.conn.Close()
		f.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (f *PriceFeed) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
