package alert

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"shopledger/backend/internal/clock"
	"shopledger/backend/internal/domain"
	"shopledger/backend/internal/kv"
	"shopledger/backend/internal/notify"
)

const (
	defaultInterval = 30 * time.Minute
	startupDelay    = 5 * time.Second
)

// LedgerReader is the slice of the ledger the policy engine scans.
type LedgerReader interface {
	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)
	ListCredits(ctx context.Context) ([]domain.CreditRecord, error)
}

// Engine periodically evaluates the low-stock and credit-due policies and
// pushes matching alerts through the notification channel, gated by the
// configured business and quiet hours and throttled per alert key.
type Engine struct {
	settings *SettingsStore
	reader   LedgerReader
	notifier notify.Notifier
	clock    clock.Clock

	interval time.Duration
	delay    time.Duration
	checkCh  chan struct{}

	// reschedule queues a deferred RequestCheck; swapped out in tests.
	reschedule func(d time.Duration)
}

func NewEngine(store kv.Store, reader LedgerReader, notifier notify.Notifier, clk clock.Clock, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = defaultInterval
	}
	if clk == nil {
		clk = clock.System()
	}
	e := &Engine{
		settings: NewSettingsStore(store),
		reader:   reader,
		notifier: notifier,
		clock:    clk,
		interval: interval,
		delay:    startupDelay,
		checkCh:  make(chan struct{}, 1),
	}
	e.reschedule = func(d time.Duration) {
		time.AfterFunc(d, e.RequestCheck)
	}
	return e
}

// Settings exposes the settings store so the embedding application can read
// and edit alert configuration.
func (e *Engine) Settings() *SettingsStore {
	return e.settings
}

// RequestCheck asks for a re-evaluation soon. Requests arriving while one is
// already pending collapse into it.
func (e *Engine) RequestCheck() {
	select {
	case e.checkCh <- struct{}{}:
	default:
	}
}

// Run evaluates once shortly after startup, then on every tick and on every
// debounced ad hoc request, until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	startup := time.NewTimer(e.delay)
	defer startup.Stop()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-startup.C:
		case <-ticker.C:
		case <-e.checkCh:
		}
		if err := e.CheckNow(ctx); err != nil {
			log.Printf("[alerts] check failed: %v", err)
		}
	}
}

// CheckNow runs one full policy evaluation against the current ledger state.
func (e *Engine) CheckNow(ctx context.Context) error {
	settings, err := e.settings.Load(ctx)
	if err != nil {
		return err
	}
	now := e.clock.Now()

	if settings.QuietHours.Enabled {
		quiet, err := inWindow(now, settings.QuietHours.Start, settings.QuietHours.End)
		if err != nil {
			return fmt.Errorf("quiet hours: %w", err)
		}
		if quiet {
			// Pick the low-stock scan back up when business hours open.
			if wait, err := untilNext(now, settings.BusinessHours.Start); err == nil {
				e.reschedule(wait)
			}
			return nil
		}
	}

	open, err := inWindow(now, settings.BusinessHours.Start, settings.BusinessHours.End)
	if err != nil {
		return fmt.Errorf("business hours: %w", err)
	}
	if !open {
		return nil
	}

	if settings.LowStockEnabled {
		if err := e.checkLowStock(ctx, now, settings); err != nil {
			return err
		}
	}
	if settings.CreditReminderEnabled {
		if err := e.checkCreditDue(ctx, now, settings); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkLowStock(ctx context.Context, now time.Time, settings domain.AlertSettings) error {
	items, err := e.reader.ListInventory(ctx)
	if err != nil {
		return err
	}
	lastTimes, err := e.settings.LastAlertTimes(ctx)
	if err != nil {
		return err
	}

	fired := false
	for _, item := range items {
		if item.MinStockAlert <= 0 || item.CartonQuantity > item.MinStockAlert {
			continue
		}
		key := LowStockKey(item.ItemName)
		if !frequencyElapsed(settings.StockAlertFrequency, lastTimes[key], now) {
			continue
		}

		e.send(ctx, notify.Notification{
			Title:   "Low Stock",
			Body:    fmt.Sprintf("%s is down to %d carton(s) (alert at %d)", item.ItemName, item.CartonQuantity, item.MinStockAlert),
			Channel: notify.ChannelStockAlerts,
			Data: map[string]string{
				notify.DataType:     "low_stock",
				notify.DataItemName: item.ItemName,
				notify.DataScreen:   "inventory",
			},
		})
		lastTimes[key] = now.UnixMilli()
		fired = true
	}

	if !fired {
		return nil
	}
	return e.settings.SaveLastAlertTimes(ctx, lastTimes)
}

// checkCreditDue fires one reminder per credit inside the window. There is no
// throttle for this category; a credit keeps reminding every run until paid or
// past due.
func (e *Engine) checkCreditDue(ctx context.Context, now time.Time, settings domain.AlertSettings) error {
	credits, err := e.reader.ListCredits(ctx)
	if err != nil {
		return err
	}

	for _, credit := range credits {
		if credit.PaymentStatus == domain.PaymentPaid {
			continue
		}
		days := daysUntil(now, credit.DueDate)
		if days <= 0 || days > settings.CreditReminderDays {
			continue
		}

		e.send(ctx, notify.Notification{
			Title:   "Credit Due Soon",
			Body:    fmt.Sprintf("%s owes %.2f for %s, due in %d day(s)", credit.CustomerName, credit.RemainingBalance, credit.ItemName, days),
			Channel: notify.ChannelStockAlerts,
			Data: map[string]string{
				notify.DataType:     "credit_due",
				notify.DataCreditID: credit.ID,
				notify.DataScreen:   "credits",
			},
		})
	}
	return nil
}

func (e *Engine) send(ctx context.Context, n notify.Notification) {
	if err := e.notifier.Send(ctx, n); err != nil {
		log.Printf("[alerts] WARN: notification %q failed: %v", n.Title, err)
	}
}

func frequencyElapsed(freq domain.AlertFrequency, lastMilli int64, now time.Time) bool {
	if lastMilli == 0 {
		return true
	}
	elapsed := now.UnixMilli() - lastMilli
	switch freq {
	case domain.FrequencyImmediate:
		return true
	case domain.FrequencyWeekly:
		return elapsed >= (7 * 24 * time.Hour).Milliseconds()
	default: // daily
		return elapsed >= (24 * time.Hour).Milliseconds()
	}
}

func daysUntil(now time.Time, due time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}
