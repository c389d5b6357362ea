package posfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"RetailPulse/internal/domain/models"
	drepo "RetailPulse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a SalesStream backed by the point-of-sale gateway
// WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	storeIDs       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new point-of-sale SalesStream.
func New(apiKey, websocketURL string, storeIDs []string, reconnectDelay, pingInterval time.Duration) drepo.SalesStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		storeIDs:       storeIDs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("posfeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("posfeed: connected")
	return nil
}

// Subscribe subscribes to configured store feeds.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("posfeed not connected")
	}
	for _, s := range c.storeIDs {
		msg := map[string]string{"type": "subscribe", "store": s}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		log.Printf("posfeed: subscribed %s", s)
	}
	return nil
}

type posSale struct {
	Product string  `json:"product"`
	Store   string  `json:"store"`
	Qty     float64 `json:"qty"`
	Price   float64 `json:"price"`
	T       int64   `json:"t"` // ms
}

type posMessage struct {
	Type string    `json:"type"`
	Data []posSale `json:"data"`
}

// Read streams SalesEvent values and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.SalesEvent, <-chan error) {
	events := make(chan *models.SalesEvent, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("posfeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("posfeed read: %w", err)
					return
				}
				var m posMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-sale frames
					continue
				}
				if m.Type != "sale" {
					continue
				}
				for _, d := range m.Data {
					sec := d.T / 1000
					e := &models.SalesEvent{
						ProductID: d.Product,
						StoreID:   d.Store,
						Timestamp: sec,
						Quantity:  d.Qty,
						UnitPrice: d.Price,
					}
					select {
					case events <- e:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return events, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
