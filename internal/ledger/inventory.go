package ledger

import (
	"strings"
	"time"

	"shopledger/backend/internal/domain"
)

// recompute keeps the derived total in step with the carton fields.
func recompute(item *domain.InventoryItem) {
	item.TotalQuantity = item.CartonQuantity * item.QuantityPerCarton
}

func validateItem(item domain.InventoryItem) error {
	var fields []string
	if strings.TrimSpace(item.ItemName) == "" {
		fields = append(fields, "itemName")
	}
	if strings.TrimSpace(item.Source) == "" {
		fields = append(fields, "source")
	}
	if item.CartonQuantity < 0 {
		fields = append(fields, "cartonQuantity")
	}
	if item.QuantityPerCarton < 0 {
		fields = append(fields, "quantityPerCarton")
	}
	if item.PricePerPiece < 0 {
		fields = append(fields, "pricePerPiece")
	}
	if item.PricePerCarton < 0 {
		fields = append(fields, "pricePerCarton")
	}
	if item.PurchasePricePerPiece < 0 {
		fields = append(fields, "purchasePricePerPiece")
	}
	if item.PurchasePricePerCarton < 0 {
		fields = append(fields, "purchasePricePerCarton")
	}
	if item.MinStockAlert < 0 {
		fields = append(fields, "minStockAlert")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func findItemByName(items []domain.InventoryItem, scope string, name string) int {
	for i, item := range items {
		if item.ItemName == name && (item.ScopeID == "" || item.ScopeID == scope) {
			return i
		}
	}
	return -1
}

func findItemByNameSource(items []domain.InventoryItem, scope string, name string, source string) int {
	for i, item := range items {
		if item.ItemName == name && item.Source == source && (item.ScopeID == "" || item.ScopeID == scope) {
			return i
		}
	}
	return -1
}

// upsertFromPurchase merges a purchased item into an existing row matched by
// (itemName, source): cartons add up, the latest purchase's prices win. A row
// is never removed on this path, even at zero cartons.
func upsertFromPurchase(items []domain.InventoryItem, scope string, incoming domain.InventoryItem, now time.Time) ([]domain.InventoryItem, error) {
	if err := validateItem(incoming); err != nil {
		return nil, err
	}

	i := findItemByNameSource(items, scope, incoming.ItemName, incoming.Source)
	if i < 0 {
		incoming.ScopeID = scope
		incoming.CreatedAt = now
		incoming.LastPurchaseDate = now
		incoming.LastUpdated = now
		recompute(&incoming)
		return append(items, incoming), nil
	}

	existing := &items[i]
	existing.CartonQuantity += incoming.CartonQuantity
	existing.QuantityPerCarton = incoming.QuantityPerCarton
	existing.PricePerPiece = incoming.PricePerPiece
	existing.PricePerCarton = incoming.PricePerCarton
	existing.PurchasePricePerPiece = incoming.PurchasePricePerPiece
	existing.PurchasePricePerCarton = incoming.PurchasePricePerCarton
	if incoming.ItemCode != "" {
		existing.ItemCode = incoming.ItemCode
	}
	if incoming.MinStockAlert > 0 {
		existing.MinStockAlert = incoming.MinStockAlert
	}
	existing.LastPurchaseDate = now
	existing.LastUpdated = now
	recompute(existing)
	return items, nil
}

// decrementItem subtracts sold or credited cartons. A row that reaches zero or
// below is dropped from the collection entirely.
func decrementItem(items []domain.InventoryItem, scope string, name string, cartons int, now time.Time) ([]domain.InventoryItem, error) {
	i := findItemByName(items, scope, name)
	if i < 0 {
		return nil, ErrNotFound
	}

	items[i].CartonQuantity -= cartons
	if items[i].CartonQuantity <= 0 {
		return append(items[:i], items[i+1:]...), nil
	}
	items[i].LastUpdated = now
	recompute(&items[i])
	return items, nil
}

// applyEdit replaces quantities and prices from a direct inventory edit. The
// row is removed only when the edited carton count is exactly zero, which
// mirrors the sale path's removal but not the purchase path's keep-forever.
func applyEdit(items []domain.InventoryItem, scope string, name string, edit domain.InventoryEdit, now time.Time) ([]domain.InventoryItem, error) {
	var fields []string
	if edit.CartonQuantity < 0 {
		fields = append(fields, "cartonQuantity")
	}
	if edit.QuantityPerCarton < 0 {
		fields = append(fields, "quantityPerCarton")
	}
	if edit.PricePerCarton < 0 {
		fields = append(fields, "pricePerCarton")
	}
	if edit.PricePerPiece < 0 {
		fields = append(fields, "pricePerPiece")
	}
	if edit.MinStockAlert < 0 {
		fields = append(fields, "minStockAlert")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	i := findItemByName(items, scope, name)
	if i < 0 {
		return nil, ErrNotFound
	}

	if edit.CartonQuantity == 0 {
		return append(items[:i], items[i+1:]...), nil
	}

	items[i].CartonQuantity = edit.CartonQuantity
	items[i].QuantityPerCarton = edit.QuantityPerCarton
	items[i].PricePerCarton = edit.PricePerCarton
	items[i].PricePerPiece = edit.PricePerPiece
	items[i].MinStockAlert = edit.MinStockAlert
	items[i].LastUpdated = now
	recompute(&items[i])
	return items, nil
}

// restoreItem re-adds returned cartons, recreating the row under a
// "Returned ..." source when the original has already been removed.
func restoreItem(items []domain.InventoryItem, scope string, name string, cartons int, perCarton int, prices domain.InventoryItem, now time.Time) []domain.InventoryItem {
	i := findItemByName(items, scope, name)
	if i >= 0 {
		items[i].CartonQuantity += cartons
		items[i].LastUpdated = now
		recompute(&items[i])
		return items
	}

	source := "Returned"
	if prices.Source != "" {
		source = "Returned " + prices.Source
	}
	restored := domain.InventoryItem{
		ItemName:               name,
		CartonQuantity:         cartons,
		QuantityPerCarton:      perCarton,
		PricePerPiece:          prices.PricePerPiece,
		PricePerCarton:         prices.PricePerCarton,
		PurchasePricePerPiece:  prices.PurchasePricePerPiece,
		PurchasePricePerCarton: prices.PurchasePricePerCarton,
		Source:                 source,
		CreatedAt:              now,
		LastUpdated:            now,
		ScopeID:                scope,
	}
	recompute(&restored)
	return append(items, restored)
}
