package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shopledger/backend/internal/domain"
	"shopledger/backend/internal/kv/memory"
	"shopledger/backend/internal/notify"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

type fakeScheduler struct {
	mu       sync.Mutex
	requests int
}

func (f *fakeScheduler) RequestCheck() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
}

func (f *fakeScheduler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

type failingNotifier struct{}

func (failingNotifier) Send(_ context.Context, _ notify.Notification) error {
	return fmt.Errorf("channel unavailable")
}

func newTestService(t *testing.T) (*Service, *notify.Recorder, *fakeScheduler) {
	t.Helper()

	recorder := &notify.Recorder{}
	scheduler := &fakeScheduler{}
	clk := &fakeClock{now: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}

	svc := New(memory.New(), clk, recorder)
	svc.AttachAlerts(scheduler)
	svc.recheckDelay = 0
	return svc, recorder, scheduler
}

func seedPurchase(t *testing.T, svc *Service, name string, cartons int, perCarton int) domain.PurchaseRecord {
	t.Helper()

	purchase, err := svc.RecordPurchase(context.Background(), domain.PurchaseRequest{
		ItemName:               name,
		CartonQuantity:         cartons,
		QuantityPerCarton:      perCarton,
		PurchasePricePerCarton: 84,
		PurchasePricePerPiece:  14,
		PricePerCarton:         120,
		PricePerPiece:          20,
		Source:                 "Acme Distributors",
	})
	if err != nil {
		t.Fatalf("seed purchase failed: %v", err)
	}
	return purchase
}

func TestRecordSaleDecrementsInventory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		ItemName:          "Rice",
		CartonQuantity:    3,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if sale.CartonQuantity != 3 || sale.TotalAmount != 150 {
		t.Fatalf("unexpected sale record: %+v", sale)
	}

	items, err := svc.ListInventory(ctx)
	if err != nil {
		t.Fatalf("list inventory failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 inventory item, got %d", len(items))
	}
	if items[0].CartonQuantity != 7 {
		t.Fatalf("expected 7 cartons after sale, got %d", items[0].CartonQuantity)
	}
	if items[0].TotalQuantity != 42 {
		t.Fatalf("expected total quantity 42, got %d", items[0].TotalQuantity)
	}

	sales, err := svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 1 || sales[0].CartonQuantity != 3 {
		t.Fatalf("expected one sale of 3 cartons, got %+v", sales)
	}
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	_, err := svc.RecordSale(ctx, domain.SaleRequest{
		ItemName:          "Rice",
		CartonQuantity:    20,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
	})
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError, got %v", err)
	}
	if stockErr.Requested != 20 || stockErr.Available != 10 {
		t.Fatalf("unexpected shortfall: %+v", stockErr)
	}

	// Aborted before any write: no sale, inventory untouched.
	sales, err := svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sales after rejected sale, got %d", len(sales))
	}
	items, _ := svc.ListInventory(ctx)
	if items[0].CartonQuantity != 10 {
		t.Fatalf("expected inventory unchanged at 10, got %d", items[0].CartonQuantity)
	}
}

func TestRecordSaleUnknownItem(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RecordSale(context.Background(), domain.SaleRequest{
		ItemName:          "Ghost",
		CartonQuantity:    1,
		QuantityPerCarton: 1,
	})
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError for unknown item, got %v", err)
	}
	if stockErr.Available != 0 {
		t.Fatalf("expected 0 available, got %d", stockErr.Available)
	}
}

func TestRecordPurchaseCreatesNewItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordPurchase(ctx, domain.PurchaseRequest{
		ItemName:               "Oil",
		CartonQuantity:         5,
		QuantityPerCarton:      12,
		PurchasePricePerCarton: 84,
		Source:                 "Acme Distributors",
	})
	if err != nil {
		t.Fatalf("record purchase failed: %v", err)
	}

	items, err := svc.ListInventory(ctx)
	if err != nil {
		t.Fatalf("list inventory failed: %v", err)
	}
	if len(items) != 1 || items[0].ItemName != "Oil" || items[0].CartonQuantity != 5 {
		t.Fatalf("expected new Oil row with 5 cartons, got %+v", items)
	}
	if items[0].TotalQuantity != 60 {
		t.Fatalf("expected total quantity 60, got %d", items[0].TotalQuantity)
	}
}

func TestRecordPurchaseMergesExistingItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	_, err := svc.RecordPurchase(ctx, domain.PurchaseRequest{
		ItemName:               "Rice",
		CartonQuantity:         5,
		QuantityPerCarton:      6,
		PurchasePricePerCarton: 90,
		PricePerCarton:         130,
		Source:                 "Acme Distributors",
	})
	if err != nil {
		t.Fatalf("second purchase failed: %v", err)
	}

	items, _ := svc.ListInventory(ctx)
	if len(items) != 1 {
		t.Fatalf("expected merged single row, got %d rows", len(items))
	}
	if items[0].CartonQuantity != 15 {
		t.Fatalf("expected 15 cartons after merge, got %d", items[0].CartonQuantity)
	}
	if items[0].PurchasePricePerCarton != 90 || items[0].PricePerCarton != 130 {
		t.Fatalf("expected latest purchase prices to win, got %+v", items[0])
	}
}

func TestRecordPurchaseDifferentSourceCreatesSeparateRow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	_, err := svc.RecordPurchase(ctx, domain.PurchaseRequest{
		ItemName:          "Rice",
		CartonQuantity:    4,
		QuantityPerCarton: 6,
		Source:            "Harbor Wholesale",
	})
	if err != nil {
		t.Fatalf("purchase from second source failed: %v", err)
	}

	items, _ := svc.ListInventory(ctx)
	if len(items) != 2 {
		t.Fatalf("expected separate rows per source, got %d", len(items))
	}
}

func TestRecordCreditDefaultsUnpaidAndDecrements(t *testing.T) {
	svc, _, scheduler := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	credit, err := svc.RecordCredit(ctx, domain.CreditRequest{
		CustomerName:      "Abebe",
		ItemName:          "Rice",
		CartonQuantity:    2,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
		TotalAmount:       100,
		AmountPaid:        40,
		RemainingBalance:  60,
		DueDate:           time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("record credit failed: %v", err)
	}
	if credit.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("expected default Unpaid status, got %s", credit.PaymentStatus)
	}

	items, _ := svc.ListInventory(ctx)
	if items[0].CartonQuantity != 8 {
		t.Fatalf("expected 8 cartons after credit, got %d", items[0].CartonQuantity)
	}
	// A credit requests an immediate reminder scan on top of the deferred one.
	if scheduler.count() < 2 {
		t.Fatalf("expected immediate and deferred alert checks, got %d", scheduler.count())
	}
}

func TestCreditValidationRequiresBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedPurchase(t, svc, "Rice", 10, 6)

	_, err := svc.RecordCredit(context.Background(), domain.CreditRequest{
		CustomerName:      "Abebe",
		ItemName:          "Rice",
		CartonQuantity:    1,
		QuantityPerCarton: 6,
		TotalAmount:       100,
		AmountPaid:        40,
		RemainingBalance:  0,
		DueDate:           time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	found := false
	for _, f := range validationErr.Fields {
		if f == "remainingBalance" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected remainingBalance named, got %v", validationErr.Fields)
	}
}

func TestSaleReturnRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		ItemName:          "Rice",
		CartonQuantity:    3,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	if err := svc.ReturnSale(ctx, sale.ID); err != nil {
		t.Fatalf("return sale failed: %v", err)
	}

	items, _ := svc.ListInventory(ctx)
	if items[0].CartonQuantity != 10 {
		t.Fatalf("expected cartons restored to 10, got %d", items[0].CartonQuantity)
	}
	sales, _ := svc.ListSales(ctx)
	if len(sales) != 0 {
		t.Fatalf("expected sale removed, got %d", len(sales))
	}

	if err := svc.ReturnSale(ctx, sale.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second return to fail lookup, got %v", err)
	}
}

func TestReturnRecreatesRemovedItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 2, 6)

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		ItemName:          "Rice",
		CartonQuantity:    2,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	items, _ := svc.ListInventory(ctx)
	if len(items) != 0 {
		t.Fatalf("expected row removed at zero, got %+v", items)
	}

	if err := svc.ReturnSale(ctx, sale.ID); err != nil {
		t.Fatalf("return sale failed: %v", err)
	}
	items, _ = svc.ListInventory(ctx)
	if len(items) != 1 || items[0].CartonQuantity != 2 {
		t.Fatalf("expected recreated row with 2 cartons, got %+v", items)
	}
	if items[0].Source != "Returned Acme Distributors" {
		t.Fatalf("expected returned source tag, got %q", items[0].Source)
	}
}

func TestDeletePurchaseRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	purchase := seedPurchase(t, svc, "Oil", 5, 12)

	if err := svc.DeletePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("delete purchase failed: %v", err)
	}

	items, _ := svc.ListInventory(ctx)
	if len(items) != 0 {
		t.Fatalf("expected inventory back to pre-purchase state, got %+v", items)
	}
	purchases, _ := svc.ListPurchases(ctx)
	if len(purchases) != 0 {
		t.Fatalf("expected purchase removed, got %d", len(purchases))
	}
}

func TestDeletePurchaseClampsAtZero(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	purchase := seedPurchase(t, svc, "Oil", 5, 12)

	_, err := svc.RecordSale(ctx, domain.SaleRequest{
		ItemName:          "Oil",
		CartonQuantity:    3,
		QuantityPerCarton: 12,
		PricePerCarton:    120,
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	// 2 cartons remain; reversing the 5-carton purchase clamps at zero and
	// drops the row.
	if err := svc.DeletePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("delete purchase failed: %v", err)
	}
	items, _ := svc.ListInventory(ctx)
	if len(items) != 0 {
		t.Fatalf("expected row clamped away, got %+v", items)
	}
}

func TestTransferCreditToSale(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	credit, err := svc.RecordCredit(ctx, domain.CreditRequest{
		CustomerName:      "Abebe",
		ItemName:          "Rice",
		CartonQuantity:    2,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
		TotalAmount:       100,
		AmountPaid:        0,
		RemainingBalance:  100,
		DueDate:           time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("record credit failed: %v", err)
	}
	itemsBefore, _ := svc.ListInventory(ctx)

	sale, err := svc.TransferCreditToSale(ctx, credit.ID)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if sale.PaymentStatus != domain.PaymentPaid || !sale.FromCreditTransfer {
		t.Fatalf("expected paid transfer sale, got %+v", sale)
	}

	credits, _ := svc.ListCredits(ctx)
	if len(credits) != 0 {
		t.Fatalf("expected credit removed, got %d", len(credits))
	}
	sales, _ := svc.ListSales(ctx)
	if len(sales) != 1 {
		t.Fatalf("expected one sale, got %d", len(sales))
	}

	// The credit already decremented inventory; the transfer must not.
	itemsAfter, _ := svc.ListInventory(ctx)
	if itemsAfter[0].CartonQuantity != itemsBefore[0].CartonQuantity {
		t.Fatalf("expected inventory unchanged by transfer, got %d -> %d",
			itemsBefore[0].CartonQuantity, itemsAfter[0].CartonQuantity)
	}
}

func TestUpdateCreditPayment(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	credit, err := svc.RecordCredit(ctx, domain.CreditRequest{
		CustomerName:      "Abebe",
		ItemName:          "Rice",
		CartonQuantity:    2,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
		TotalAmount:       100,
		AmountPaid:        0,
		RemainingBalance:  100,
		DueDate:           time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("record credit failed: %v", err)
	}

	updated, err := svc.UpdateCreditPayment(ctx, credit.ID, domain.CreditPaymentUpdate{
		AmountPaid:       60,
		RemainingBalance: 40,
	})
	if err != nil {
		t.Fatalf("update credit payment failed: %v", err)
	}
	if updated.PaymentStatus != domain.PaymentPartiallyPaid {
		t.Fatalf("expected Partially Paid, got %s", updated.PaymentStatus)
	}

	_, err = svc.UpdateCreditPayment(ctx, credit.ID, domain.CreditPaymentUpdate{
		AmountPaid:       60,
		RemainingBalance: 10,
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for broken balance, got %v", err)
	}

	updated, err = svc.UpdateCreditPayment(ctx, credit.ID, domain.CreditPaymentUpdate{
		AmountPaid:       100,
		RemainingBalance: 0,
	})
	if err != nil {
		t.Fatalf("final payment failed: %v", err)
	}
	if updated.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("expected Paid after settling, got %s", updated.PaymentStatus)
	}
}

func TestScopePartitionsCollections(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetActiveScope(ctx, "shop-a"); err != nil {
		t.Fatalf("set scope failed: %v", err)
	}
	seedPurchase(t, svc, "Rice", 10, 6)

	if err := svc.SetActiveScope(ctx, "shop-b"); err != nil {
		t.Fatalf("switch scope failed: %v", err)
	}
	items, err := svc.ListInventory(ctx)
	if err != nil {
		t.Fatalf("list inventory failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected shop-b inventory empty, got %+v", items)
	}

	if err := svc.SetActiveScope(ctx, "shop-a"); err != nil {
		t.Fatalf("switch back failed: %v", err)
	}
	items, _ = svc.ListInventory(ctx)
	if len(items) != 1 {
		t.Fatalf("expected shop-a inventory visible again, got %d", len(items))
	}
}

func TestSaleSchedulesAlertRecheck(t *testing.T) {
	svc, recorder, scheduler := newTestService(t)
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	before := scheduler.count()
	_, err := svc.RecordSale(ctx, domain.SaleRequest{
		ItemName:          "Rice",
		CartonQuantity:    1,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if scheduler.count() != before+1 {
		t.Fatalf("expected one alert recheck after sale")
	}

	found := false
	for _, n := range recorder.Sent() {
		if n.Channel == notify.ChannelSales {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a sale notification")
	}
}

func TestNotificationFailureDoesNotFailSale(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	svc := New(memory.New(), clk, failingNotifier{})
	svc.recheckDelay = 0
	ctx := context.Background()
	seedPurchase(t, svc, "Rice", 10, 6)

	_, err := svc.RecordSale(ctx, domain.SaleRequest{
		ItemName:          "Rice",
		CartonQuantity:    1,
		QuantityPerCarton: 6,
		PricePerCarton:    50,
	})
	if err != nil {
		t.Fatalf("sale must not fail on notification error, got %v", err)
	}
}
