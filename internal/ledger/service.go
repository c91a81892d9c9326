package ledger

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"shopledger/backend/internal/clock"
	"shopledger/backend/internal/domain"
	"shopledger/backend/internal/kv"
	"shopledger/backend/internal/notify"
	"shopledger/backend/internal/xid"
)

const defaultRecheckDelay = time.Second

// AlertScheduler receives the "re-evaluate soon" requests the ledger raises
// after mutating writes. The alert engine debounces them.
type AlertScheduler interface {
	RequestCheck()
}

// Service is the transactional ledger over the four collections. Every
// operation is a read-modify-write of whole collections; a per-collection
// mutex serializes those cycles so two racing writers cannot both act on the
// same stale read. There is still no cross-collection atomicity: a crash
// between the record write and the inventory write leaves the record persisted
// with inventory untouched.
type Service struct {
	store    kv.Store
	clock    clock.Clock
	notifier notify.Notifier

	alerts       AlertScheduler
	recheckDelay time.Duration

	// Lock order when holding more than one: inventory, sales, purchases,
	// credits.
	invMu       sync.Mutex
	salesMu     sync.Mutex
	purchasesMu sync.Mutex
	creditsMu   sync.Mutex
}

func New(store kv.Store, clk clock.Clock, notifier notify.Notifier) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{
		store:        store,
		clock:        clk,
		notifier:     notifier,
		recheckDelay: defaultRecheckDelay,
	}
}

// AttachAlerts wires the alert engine in after construction; the engine itself
// needs the service to read inventory and credits.
func (s *Service) AttachAlerts(alerts AlertScheduler) {
	s.alerts = alerts
}

// ActiveScope returns the scope tag partitioning the collections, empty when
// no scope has been selected.
func (s *Service) ActiveScope(ctx context.Context) (string, error) {
	scope, _, err := s.store.Get(ctx, keySelectedScope)
	if err != nil {
		return "", &kv.StorageError{Op: "get", Key: keySelectedScope, Err: err}
	}
	return scope, nil
}

func (s *Service) SetActiveScope(ctx context.Context, scope string) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		if err := s.store.Remove(ctx, keySelectedScope); err != nil {
			return &kv.StorageError{Op: "remove", Key: keySelectedScope, Err: err}
		}
		return nil
	}
	if err := s.store.Set(ctx, keySelectedScope, scope); err != nil {
		return &kv.StorageError{Op: "set", Key: keySelectedScope, Err: err}
	}
	return nil
}

func (s *Service) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	scope, err := s.ActiveScope(ctx)
	if err != nil {
		return nil, err
	}
	items, err := loadCollection[domain.InventoryItem](ctx, s.store, keyInventory)
	if err != nil {
		return nil, err
	}
	return filterScope(items, scope, func(i domain.InventoryItem) string { return i.ScopeID }), nil
}

func (s *Service) ListSales(ctx context.Context) ([]domain.SaleRecord, error) {
	scope, err := s.ActiveScope(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := loadCollection[domain.SaleRecord](ctx, s.store, keySales)
	if err != nil {
		return nil, err
	}
	return filterScope(sales, scope, func(r domain.SaleRecord) string { return r.ScopeID }), nil
}

func (s *Service) ListPurchases(ctx context.Context) ([]domain.PurchaseRecord, error) {
	scope, err := s.ActiveScope(ctx)
	if err != nil {
		return nil, err
	}
	purchases, err := loadCollection[domain.PurchaseRecord](ctx, s.store, keyPurchases)
	if err != nil {
		return nil, err
	}
	return filterScope(purchases, scope, func(r domain.PurchaseRecord) string { return r.ScopeID }), nil
}

func (s *Service) ListCredits(ctx context.Context) ([]domain.CreditRecord, error) {
	scope, err := s.ActiveScope(ctx)
	if err != nil {
		return nil, err
	}
	credits, err := loadCollection[domain.CreditRecord](ctx, s.store, keyCredits)
	if err != nil {
		return nil, err
	}
	return filterScope(credits, scope, func(r domain.CreditRecord) string { return r.ScopeID }), nil
}

// RecordSale checks stock, appends the sale and decrements inventory. The
// sale write lands before the inventory write; see the Service doc for what a
// crash in between leaves behind.
func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (domain.SaleRecord, error) {
	if err := validateSaleRequest(req); err != nil {
		return domain.SaleRecord{}, err
	}
	scope, err := s.ActiveScope(ctx)
	if err != nil {
		return domain.SaleRecord{}, err
	}

	s.invMu.Lock()
	defer s.invMu.Unlock()
	s.salesMu.Lock()
	defer s.salesMu.Unlock()

	items, err := loadCollection[domain.InventoryItem](ctx, s.store, keyInventory)
	if err != nil {
		return domain.SaleRecord{}, err
	}
	i := findItemByName(items, scope, req.ItemName)
	if i < 0 {
		return domain.SaleRecord{}, &StockError{ItemName: req.ItemName, Unit: "cartons", Requested: req.CartonQuantity, Available: 0}
	}
	if items[i].CartonQuantity < req.CartonQuantity {
		return domain.SaleRecord{}, &StockError{ItemName: req.ItemName, Unit: "cartons", Requested: req.CartonQuantity, Available: items[i].CartonQuantity}
	}
	if items[i].QuantityPerCarton < req.QuantityPerCarton {
		return domain.SaleRecord{}, &StockError{ItemName: req.ItemName, Unit: "pieces per carton", Requested: req.QuantityPerCarton, Available: items[i].QuantityPerCarton}
	}

	now := s.clock.Now()
	saleDate := req.SaleDate
	if saleDate.IsZero() {
		saleDate = now
	}
	sale := domain.SaleRecord{
		ID:                xid.New("sale"),
		SaleDate:          saleDate,
		ItemName:          req.ItemName,
		CartonQuantity:    req.CartonQuantity,
		QuantityPerCarton: req.QuantityPerCarton,
		TotalQuantity:     req.CartonQuantity * req.QuantityPerCarton,
		PricePerCarton:    req.PricePerCarton,
		PricePerPiece:     req.PricePerPiece,
		TotalAmount:       float64(req.CartonQuantity) * req.PricePerCarton,
		Source:            items[i].Source,
		ScopeID:           scope,
	}

	sales, err := loadCollection[domain.SaleRecord](ctx, s.store, keySales)
	if err != nil {
		return domain.SaleRecord{}, err
	}
	if err := saveCollection(ctx, s.store, keySales, append(sales, sale)); err != nil {
		return domain.SaleRecord{}, err
	}

	items, err = decrementItem(items, scope, req.ItemName, req.CartonQuantity, now)
	if err != nil {
		return domain.SaleRecord{}, err
	}
	if err := saveCollection(ctx, s.store, keyInventory, items); err != nil {
		return domain.SaleRecord{}, err
	}

	s.sendBestEffort(ctx, notify.Notification{
		Title:   "Sale Recorded",
		Body:    fmt.Sprintf("%d carton(s) of %s sold for %.2f", sale.CartonQuantity, sale.ItemName, sale.TotalAmount),
		Channel: notify.ChannelSales,
		Data: map[string]string{
			notify.DataType:     "sale",
			notify.DataItemName: sale.ItemName,
			notify.DataScreen:   "sales",
		},
	})
	s.scheduleRecheck()

	return sale, nil
}

// RecordPurchase appends the purchase and merges it into inventory. There is
// no stock precondition on this path.
func (s *Service) RecordPurchase(ctx context.Context, req domain.PurchaseRequest) (domain.PurchaseRecord, error) {
	scope, err := s.ActiveScope(ctx)
	if err != nil {
		return domain.PurchaseRecord{}, err
	}

	now := s.clock.Now()
	purchaseDate := req.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = now
	}
	incoming := domain.InventoryItem{
		ItemName:               strings.TrimSpace(req.ItemName),
		ItemCode:               strings.TrimSpace(req.ItemCode),
		CartonQuantity:         req.CartonQuantity,
		QuantityPerCarton:      req.QuantityPerCarton,
		PricePerPiece:          req.PricePerPiece,
		PricePerCarton:         req.PricePerCarton,
		PurchasePricePerPiece:  req.PurchasePricePerPiece,
		PurchasePricePerCarton: req.PurchasePricePerCarton,
		Source:                 strings.TrimSpace(req.Source),
		MinStockAlert:          req.MinStockAlert,
	}
	if err := validateItem(incoming); err != nil {
		return domain.PurchaseRecord{}, err
	}

	purchase := domain.PurchaseRecord{
		ID:                     xid.New("purchase"),
		PurchaseDate:           purchaseDate,
		ItemName:               incoming.ItemName,
		ItemCode:               incoming.ItemCode,
		CartonQuantity:         req.CartonQuantity,
		QuantityPerCarton:      req.QuantityPerCarton,
		TotalQuantity:          req.CartonQuantity * req.QuantityPerCarton,
		PurchasePricePerCarton: req.PurchasePricePerCarton,
		PurchasePricePerPiece:  req.PurchasePricePerPiece,
		PricePerCarton:         req.PricePerCarton,
		PricePerPiece:          req.PricePerPiece,
		TotalAmount:            float64(req.CartonQuantity) * req.PurchasePricePerCarton,
		Source:                 incoming.Source,
		MinStockAlert:          req.MinStockAlert,
		ScopeID:                scope,
	}

	s.invMu.Lock()
	defer s.invMu.Unlock()
	s.purchasesMu.Lock()
	defer s.purchasesMu.Unlock()

	purchases, err := loadCollection[domain.PurchaseRecord](ctx, s.store, keyPurchases)
	if err != nil {
		return domain.PurchaseRecord{}, err
	}
	if err := saveCollection(ctx, s.store, keyPurchases, append(purchases, purchase)); err != nil {
		return domain.PurchaseRecord{}, err
	}

	items, err := loadCollection[domain.InventoryItem](ctx, s.store, keyInventory)
	if err != nil {
		return domain.PurchaseRecord{}, err
	}
	items, err = upsertFromPurchase(items, scope, incoming, now)
	if err != nil {
		return domain.PurchaseRecord{}, err
	}
	if err := saveCollection(ctx, s.store, keyInventory, items); err != nil {
		return domain.PurchaseRecord{}, err
	}

	s.sendBestEffort(ctx, notify.Notification{
		Title:   "Purchase Recorded",
		Body:    fmt.Sprintf("%d carton(s) of %s purchased from %s", purchase.CartonQuantity, purchase.ItemName, purchase.Source),
		Channel: notify.ChannelPurchases,
		Data: map[string]string{
			notify.DataType:       "purchase",
			notify.DataPurchaseID: purchase.ID,
			notify.DataScreen:     "purchases",
		},
	})
	s.scheduleRecheck()

	return purchase, nil
}

// RecordCredit behaves like a sale with customer and payment tracking on top.
func (s *Service) RecordCredit(ctx context.Context, req domain.CreditRequest) (domain.CreditRecord, error) {
	if err := validateCreditRequest(req); err != nil {
		return domain.CreditRecord{}, err
	}
	scope, err := s.ActiveScope(ctx)
	if err != nil {
		return domain.CreditRecord{}, err
	}

	s.invMu.Lock()
	defer s.invMu.Unlock()
	s.creditsMu.Lock()
	defer s.creditsMu.Unlock()

	items, err := loadCollection[domain.InventoryItem](ctx, s.store, keyInventory)
	if err != nil {
		return domain.CreditRecord{}, err
	}
	i := findItemByName(items, scope, req.ItemName)
	if i < 0 {
		return domain.CreditRecord{}, &StockError{ItemName: req.ItemName, Unit: "cartons", Requested: req.CartonQuantity, Available: 0}
	}
	if items[i].CartonQuantity < req.CartonQuantity {
		return domain.CreditRecord{}, &StockError{ItemName: req.ItemName, Unit: "cartons", Requested: req.CartonQuantity, Available: items[i].CartonQuantity}
	}
	if items[i].QuantityPerCarton < req.QuantityPerCarton {
		return domain.CreditRecord{}, &StockError{ItemName: req.ItemName, Unit: "pieces per carton", Requested: req.QuantityPerCarton, Available: items[i].QuantityPerCarton}
	}

	now := s.clock.Now()
	creditDate := req.CreditDate
	if creditDate.IsZero() {
		creditDate = now
	}
	status := req.PaymentStatus
	if status == "" {
		status = domain.PaymentUnpaid
	}
	credit := domain.CreditRecord{
		ID:                xid.New("credit"),
		CreditDate:        creditDate,
		CustomerName:      req.CustomerName,
		ItemName:          req.ItemName,
		CartonQuantity:    req.CartonQuantity,
		QuantityPerCarton: req.QuantityPerCarton,
		TotalQuantity:     req.CartonQuantity * req.QuantityPerCarton,
		PricePerCarton:    req.PricePerCarton,
		PricePerPiece:     req.PricePerPiece,
		TotalAmount:       req.TotalAmount,
		PaymentStatus:     status,
		AmountPaid:        req.AmountPaid,
		RemainingBalance:  req.RemainingBalance,
		DueDate:           req.DueDate,
		Source:            items[i].Source,
		ScopeID:           scope,
	}

	credits, err := loadCollection[domain.CreditRecord](ctx, s.store, keyCredits)
	if err != nil {
		return domain.CreditRecord{}, err
	}
	if err := saveCollection(ctx, s.store, keyCredits, append(credits, credit)); err != nil {
		return domain.CreditRecord{}, err
	}

	items, err = decrementItem(items, scope, req.ItemName, req.CartonQuantity, now)
	if err != nil {
		return domain.CreditRecord{}, err
	}
	if err := saveCollection(ctx, s.store, keyInventory, items); err != nil {
		return domain.CreditRecord{}, err
	}

	s.scheduleRecheck()
	// A fresh credit may already be inside the reminder window.
	if s.alerts != nil {
		s.alerts.RequestCheck()
	}

	return credit, nil
}

// ReturnSale removes the sale and restores its cartons. Returning an id that
// was already returned fails the lookup and nothing else.
func (s *Service) ReturnSale(ctx context.Context, saleID string) error {
	s.invMu.Lock()
	defer s.invMu.Unlock()
	s.salesMu.Lock()
	defer s.salesMu.Unlock()

	sales, err := loadCollection[domain.SaleRecord](ctx, s.store, keySales)
	if err != nil {
		return err
	}
	i := indexByID(sales, saleID, func(r domain.SaleRecord) string { return r.ID })
	if i < 0 {
		return ErrNotFound
	}
	sale := sales[i]
	if err := saveCollection(ctx, s.store, keySales, append(sales[:i], sales[i+1:]...)); err != nil {
		return err
	}

	return s.restoreInventory(ctx, sale.ScopeID, sale.ItemName, sale.CartonQuantity, sale.QuantityPerCarton, domain.InventoryItem{
		Source:         sale.Source,
		PricePerCarton: sale.PricePerCarton,
		PricePerPiece:  sale.PricePerPiece,
	})
}

// ReturnCredit removes the credit and restores its cartons.
func (s *Service) ReturnCredit(ctx context.Context, creditID string) error {
	s.invMu.Lock()
	defer s.invMu.Unlock()
	s.creditsMu.Lock()
	defer s.creditsMu.Unlock()

	credits, err := loadCollection[domain.CreditRecord](ctx, s.store, keyCredits)
	if err != nil {
		return err
	}
	i := indexByID(credits, creditID, func(r domain.CreditRecord) string { return r.ID })
	if i < 0 {
		return ErrNotFound
	}
	credit := credits[i]
	if err := saveCollection(ctx, s.store, keyCredits, append(credits[:i], credits[i+1:]...)); err != nil {
		return err
	}

	return s.restoreInventory(ctx, credit.ScopeID, credit.ItemName, credit.CartonQuantity, credit.QuantityPerCarton, domain.InventoryItem{
		Source:         credit.Source,
		PricePerCarton: credit.PricePerCarton,
		PricePerPiece:  credit.PricePerPiece,
	})
}

// TransferCreditToSale converts a settled credit into a sale record. The
// credit already decremented inventory when it was created, so the new sale is
// flagged to skip the decrement.
func (s *Service) TransferCreditToSale(ctx context.Context, creditID string) (domain.SaleRecord, error) {
	s.salesMu.Lock()
	defer s.salesMu.Unlock()
	s.creditsMu.Lock()
	defer s.creditsMu.Unlock()

	credits, err := loadCollection[domain.CreditRecord](ctx, s.store, keyCredits)
	if err != nil {
		return domain.SaleRecord{}, err
	}
	i := indexByID(credits, creditID, func(r domain.CreditRecord) string { return r.ID })
	if i < 0 {
		return domain.SaleRecord{}, ErrNotFound
	}
	credit := credits[i]
	if err := saveCollection(ctx, s.store, keyCredits, append(credits[:i], credits[i+1:]...)); err != nil {
		return domain.SaleRecord{}, err
	}

	sale := domain.SaleRecord{
		ID:                 xid.New("sale"),
		SaleDate:           s.clock.Now(),
		ItemName:           credit.ItemName,
		CartonQuantity:     credit.CartonQuantity,
		QuantityPerCarton:  credit.QuantityPerCarton,
		TotalQuantity:      credit.CartonQuantity * credit.QuantityPerCarton,
		PricePerCarton:     credit.PricePerCarton,
		PricePerPiece:      credit.PricePerPiece,
		TotalAmount:        credit.TotalAmount,
		Source:             credit.Source,
		PaymentStatus:      domain.PaymentPaid,
		FromCreditTransfer: true,
		ScopeID:            credit.ScopeID,
	}
	sales, err := loadCollection[domain.SaleRecord](ctx, s.store, keySales)
	if err != nil {
		return domain.SaleRecord{}, err
	}
	if err := saveCollection(ctx, s.store, keySales, append(sales, sale)); err != nil {
		return domain.SaleRecord{}, err
	}

	return sale, nil
}

// DeletePurchase removes the purchase and reverses its inventory effect,
// clamped at zero when other operations have consumed part of it.
func (s *Service) DeletePurchase(ctx context.Context, purchaseID string) error {
	s.invMu.Lock()
	defer s.invMu.Unlock()
	s.purchasesMu.Lock()
	defer s.purchasesMu.Unlock()

	purchases, err := loadCollection[domain.PurchaseRecord](ctx, s.store, keyPurchases)
	if err != nil {
		return err
	}
	i := indexByID(purchases, purchaseID, func(r domain.PurchaseRecord) string { return r.ID })
	if i < 0 {
		return ErrNotFound
	}
	purchase := purchases[i]
	if err := saveCollection(ctx, s.store, keyPurchases, append(purchases[:i], purchases[i+1:]...)); err != nil {
		return err
	}

	items, err := loadCollection[domain.InventoryItem](ctx, s.store, keyInventory)
	if err != nil {
		return err
	}
	j := findItemByNameSource(items, purchase.ScopeID, purchase.ItemName, purchase.Source)
	if j < 0 {
		// The row is already gone; nothing left to reverse.
		return nil
	}
	items[j].CartonQuantity -= purchase.CartonQuantity
	if items[j].CartonQuantity <= 0 {
		items = append(items[:j], items[j+1:]...)
	} else {
		items[j].LastUpdated = s.clock.Now()
		recompute(&items[j])
	}
	return saveCollection(ctx, s.store, keyInventory, items)
}

// UpdateCreditPayment edits the payment fields of a credit, holding the
// amountPaid + remainingBalance == totalAmount invariant.
func (s *Service) UpdateCreditPayment(ctx context.Context, creditID string, update domain.CreditPaymentUpdate) (domain.CreditRecord, error) {
	s.creditsMu.Lock()
	defer s.creditsMu.Unlock()

	credits, err := loadCollection[domain.CreditRecord](ctx, s.store, keyCredits)
	if err != nil {
		return domain.CreditRecord{}, err
	}
	i := indexByID(credits, creditID, func(r domain.CreditRecord) string { return r.ID })
	if i < 0 {
		return domain.CreditRecord{}, ErrNotFound
	}

	if update.AmountPaid < 0 || update.RemainingBalance < 0 {
		return domain.CreditRecord{}, &ValidationError{Fields: []string{"amountPaid", "remainingBalance"}}
	}
	if math.Abs(update.AmountPaid+update.RemainingBalance-credits[i].TotalAmount) > balanceTolerance {
		return domain.CreditRecord{}, &ValidationError{Fields: []string{"remainingBalance"}}
	}

	credits[i].AmountPaid = update.AmountPaid
	credits[i].RemainingBalance = update.RemainingBalance
	if update.PaymentStatus != "" {
		credits[i].PaymentStatus = update.PaymentStatus
	} else if update.RemainingBalance <= balanceTolerance {
		credits[i].PaymentStatus = domain.PaymentPaid
	} else if update.AmountPaid > 0 {
		credits[i].PaymentStatus = domain.PaymentPartiallyPaid
	}

	if err := saveCollection(ctx, s.store, keyCredits, credits); err != nil {
		return domain.CreditRecord{}, err
	}
	return credits[i], nil
}

// UpdateInventoryItem applies a direct edit from the inventory screen. An edit
// to exactly zero cartons deletes the row.
func (s *Service) UpdateInventoryItem(ctx context.Context, itemName string, edit domain.InventoryEdit) error {
	scope, err := s.ActiveScope(ctx)
	if err != nil {
		return err
	}

	s.invMu.Lock()
	defer s.invMu.Unlock()

	items, err := loadCollection[domain.InventoryItem](ctx, s.store, keyInventory)
	if err != nil {
		return err
	}
	items, err = applyEdit(items, scope, itemName, edit, s.clock.Now())
	if err != nil {
		return err
	}
	return saveCollection(ctx, s.store, keyInventory, items)
}

// restoreInventory runs with invMu already held by the calling return path.
func (s *Service) restoreInventory(ctx context.Context, scope string, name string, cartons int, perCarton int, prices domain.InventoryItem) error {
	items, err := loadCollection[domain.InventoryItem](ctx, s.store, keyInventory)
	if err != nil {
		return err
	}
	items = restoreItem(items, scope, name, cartons, perCarton, prices, s.clock.Now())
	return saveCollection(ctx, s.store, keyInventory, items)
}

func (s *Service) sendBestEffort(ctx context.Context, n notify.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		log.Printf("[ledger] WARN: notification %q failed: %v", n.Title, err)
	}
}

// scheduleRecheck gives the just-written inventory mutation a moment to settle
// before the alert scan reads it. Best effort, fire and forget.
func (s *Service) scheduleRecheck() {
	if s.alerts == nil {
		return
	}
	if s.recheckDelay <= 0 {
		s.alerts.RequestCheck()
		return
	}
	time.AfterFunc(s.recheckDelay, s.alerts.RequestCheck)
}

const balanceTolerance = 1e-6

func validateSaleRequest(req domain.SaleRequest) error {
	var fields []string
	if strings.TrimSpace(req.ItemName) == "" {
		fields = append(fields, "itemName")
	}
	if req.CartonQuantity < 1 {
		fields = append(fields, "cartonQuantity")
	}
	if req.QuantityPerCarton < 1 {
		fields = append(fields, "quantityPerCarton")
	}
	if req.PricePerCarton < 0 {
		fields = append(fields, "pricePerCarton")
	}
	if req.PricePerPiece < 0 {
		fields = append(fields, "pricePerPiece")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateCreditRequest(req domain.CreditRequest) error {
	var fields []string
	if strings.TrimSpace(req.CustomerName) == "" {
		fields = append(fields, "customerName")
	}
	if strings.TrimSpace(req.ItemName) == "" {
		fields = append(fields, "itemName")
	}
	if req.CartonQuantity < 1 {
		fields = append(fields, "cartonQuantity")
	}
	if req.QuantityPerCarton < 1 {
		fields = append(fields, "quantityPerCarton")
	}
	if req.TotalAmount < 0 {
		fields = append(fields, "totalAmount")
	}
	if req.AmountPaid < 0 {
		fields = append(fields, "amountPaid")
	}
	if req.DueDate.IsZero() {
		fields = append(fields, "dueDate")
	}
	if math.Abs(req.AmountPaid+req.RemainingBalance-req.TotalAmount) > balanceTolerance {
		fields = append(fields, "remainingBalance")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func indexByID[T any](records []T, id string, idOf func(T) string) int {
	for i, r := range records {
		if idOf(r) == id {
			return i
		}
	}
	return -1
}
