package notify

import (
	"context"
	"log"
	"sync"
)

// Notification channels, each rendered by the device bridge with a fixed
// importance and visibility level.
const (
	ChannelStockAlerts = "stock-alerts"
	ChannelPurchases   = "purchases"
	ChannelSales       = "sales"
)

// Data keys routed back to the presentation layer when a notification is
// tapped.
const (
	DataType       = "type"
	DataItemName   = "itemName"
	DataCreditID   = "creditId"
	DataPurchaseID = "purchaseId"
	DataScreen     = "screen"
)

type Notification struct {
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Channel string            `json:"channel"`
	Data    map[string]string `json:"data"`
}

// Notifier is the external delivery channel. Sends are best effort: the ledger
// logs failures and never fails the owning operation on one.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the process log. The real device bridge
// is an external collaborator wired in by the embedding application.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, n Notification) error {
	log.Printf("[notify] %s: %s (%s)", n.Title, n.Body, n.Channel)
	return nil
}

// Recorder captures sent notifications for assertions in tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *Recorder) Send(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, n)
	return nil
}

func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}
