// Package events publishes accepted-bid notifications for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// BidEvent is emitted after a bid is committed
type BidEvent struct {
	EventID       string    `json:"event_id"`
	AuctionID     string    `json:"auction_id"`
	BidID         string    `json:"bid_id"`
	Bidder        string    `json:"bidder"`
	Price         float64   `json:"price"`
	PreviousPrice float64   `json:"previous_price"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher delivers bid events. Delivery is best effort.
type Publisher interface {
	PublishBid(ctx context.Context, event BidEvent) error
}

// DefaultSubjectPrefix is used when no prefix is configured
const DefaultSubjectPrefix = "auctions"

// NATSPublisher publishes events as JSON on <prefix>.bids.<auctionID>
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("events: nats url is required")
	}
	conn, err := nats.Connect(url,
		nats.Name("auction-marketplace"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("events: connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: normalizePrefix(prefix)}, nil
}

// PublishBid marshals and publishes one event
func (p *NATSPublisher) PublishBid(_ context.Context, event BidEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal bid event: %w", err)
	}
	if err := p.conn.Publish(Subject(p.prefix, event.AuctionID), data); err != nil {
		return fmt.Errorf("events: publish bid event: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// Subject returns the subject a bid event for auctionID is published on
func Subject(prefix, auctionID string) string {
	return fmt.Sprintf("%s.bids.%s", normalizePrefix(prefix), auctionID)
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return DefaultSubjectPrefix
	}
	return prefix
}

// NoopPublisher discards events
type NoopPublisher struct{}

func (NoopPublisher) PublishBid(context.Context, BidEvent) error { return nil }

// Recorder keeps published events in memory, used by tests and local runs
type Recorder struct {
	mu     sync.Mutex
	events []BidEvent
	Err    error
}

func (r *Recorder) PublishBid(_ context.Context, event BidEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events in publish order
func (r *Recorder) Events() []BidEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BidEvent(nil), r.events...)
}
