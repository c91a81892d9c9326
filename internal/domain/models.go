package domain

import "time"

// PaymentStatus tracks how much of a credit has been settled.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "Unpaid"
	PaymentPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentPaid          PaymentStatus = "Paid"
	PaymentPending       PaymentStatus = "Pending"
)

// AlertFrequency gates how often a low-stock alert may re-fire for one item.
type AlertFrequency string

const (
	FrequencyImmediate AlertFrequency = "immediate"
	FrequencyDaily     AlertFrequency = "daily"
	FrequencyWeekly    AlertFrequency = "weekly"
)

// InventoryItem is the single source of truth for on-hand stock.
// TotalQuantity is always CartonQuantity * QuantityPerCarton.
type InventoryItem struct {
	ItemName               string    `json:"itemName"`
	ItemCode               string    `json:"itemCode,omitempty"`
	CartonQuantity         int       `json:"cartonQuantity"`
	QuantityPerCarton      int       `json:"quantityPerCarton"`
	TotalQuantity          int       `json:"totalQuantity"`
	PricePerPiece          float64   `json:"pricePerPiece"`
	PricePerCarton         float64   `json:"pricePerCarton"`
	PurchasePricePerPiece  float64   `json:"purchasePricePerPiece"`
	PurchasePricePerCarton float64   `json:"purchasePricePerCarton"`
	Source                 string    `json:"source"`
	MinStockAlert          int       `json:"minStockAlert,omitempty"`
	LastPurchaseDate       time.Time `json:"lastPurchaseDate"`
	CreatedAt              time.Time `json:"createdAt"`
	LastUpdated            time.Time `json:"lastUpdated"`
	ScopeID                string    `json:"scopeId,omitempty"`
}

type SaleRecord struct {
	ID                 string        `json:"id"`
	SaleDate           time.Time     `json:"saleDate"`
	ItemName           string        `json:"itemName"`
	CartonQuantity     int           `json:"cartonQuantity"`
	QuantityPerCarton  int           `json:"quantityPerCarton"`
	TotalQuantity      int           `json:"totalQuantity"`
	PricePerCarton     float64       `json:"pricePerCarton"`
	PricePerPiece      float64       `json:"pricePerPiece"`
	TotalAmount        float64       `json:"totalAmount"`
	Source             string        `json:"source,omitempty"`
	PaymentStatus      PaymentStatus `json:"paymentStatus,omitempty"`
	FromCreditTransfer bool          `json:"fromCreditTransfer,omitempty"`
	ScopeID            string        `json:"scopeId,omitempty"`
}

type PurchaseRecord struct {
	ID                     string    `json:"id"`
	PurchaseDate           time.Time `json:"purchaseDate"`
	ItemName               string    `json:"itemName"`
	ItemCode               string    `json:"itemCode,omitempty"`
	CartonQuantity         int       `json:"cartonQuantity"`
	QuantityPerCarton      int       `json:"quantityPerCarton"`
	TotalQuantity          int       `json:"totalQuantity"`
	PurchasePricePerCarton float64   `json:"purchasePricePerCarton"`
	PurchasePricePerPiece  float64   `json:"purchasePricePerPiece"`
	PricePerCarton         float64   `json:"pricePerCarton"`
	PricePerPiece          float64   `json:"pricePerPiece"`
	TotalAmount            float64   `json:"totalAmount"`
	Source                 string    `json:"source"`
	MinStockAlert          int       `json:"minStockAlert,omitempty"`
	ScopeID                string    `json:"scopeId,omitempty"`
}

type CreditRecord struct {
	ID                string        `json:"id"`
	CreditDate        time.Time     `json:"creditDate"`
	CustomerName      string        `json:"customerName"`
	ItemName          string        `json:"itemName"`
	CartonQuantity    int           `json:"cartonQuantity"`
	QuantityPerCarton int           `json:"quantityPerCarton"`
	TotalQuantity     int           `json:"totalQuantity"`
	PricePerCarton    float64       `json:"pricePerCarton"`
	PricePerPiece     float64       `json:"pricePerPiece"`
	TotalAmount       float64       `json:"totalAmount"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	AmountPaid        float64       `json:"amountPaid"`
	RemainingBalance  float64       `json:"remainingBalance"`
	DueDate           time.Time     `json:"dueDate"`
	Source            string        `json:"source,omitempty"`
	ScopeID           string        `json:"scopeId,omitempty"`
}

// TimeWindow is a daily window with "HH:MM" bounds. A window whose start is
// after its end wraps past midnight (e.g. 22:00-07:00).
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type QuietWindow struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type AlertSettings struct {
	LowStockEnabled       bool           `json:"lowStockEnabled"`
	CreditReminderEnabled bool           `json:"creditReminderEnabled"`
	StockAlertFrequency   AlertFrequency `json:"stockAlertFrequency"`
	CreditReminderDays    int            `json:"creditReminderDays"`
	BusinessHours         TimeWindow     `json:"businessHours"`
	QuietHours            QuietWindow    `json:"quietHours"`
}

type SaleRequest struct {
	ItemName          string    `json:"itemName"`
	CartonQuantity    int       `json:"cartonQuantity"`
	QuantityPerCarton int       `json:"quantityPerCarton"`
	PricePerCarton    float64   `json:"pricePerCarton"`
	PricePerPiece     float64   `json:"pricePerPiece"`
	SaleDate          time.Time `json:"saleDate,omitempty"`
}

type PurchaseRequest struct {
	ItemName               string    `json:"itemName"`
	ItemCode               string    `json:"itemCode,omitempty"`
	CartonQuantity         int       `json:"cartonQuantity"`
	QuantityPerCarton      int       `json:"quantityPerCarton"`
	PurchasePricePerCarton float64   `json:"purchasePricePerCarton"`
	PurchasePricePerPiece  float64   `json:"purchasePricePerPiece"`
	PricePerCarton         float64   `json:"pricePerCarton"`
	PricePerPiece          float64   `json:"pricePerPiece"`
	Source                 string    `json:"source"`
	MinStockAlert          int       `json:"minStockAlert,omitempty"`
	PurchaseDate           time.Time `json:"purchaseDate,omitempty"`
}

type CreditRequest struct {
	CustomerName      string        `json:"customerName"`
	ItemName          string        `json:"itemName"`
	CartonQuantity    int           `json:"cartonQuantity"`
	QuantityPerCarton int           `json:"quantityPerCarton"`
	PricePerCarton    float64       `json:"pricePerCarton"`
	PricePerPiece     float64       `json:"pricePerPiece"`
	TotalAmount       float64       `json:"totalAmount"`
	AmountPaid        float64       `json:"amountPaid"`
	RemainingBalance  float64       `json:"remainingBalance"`
	PaymentStatus     PaymentStatus `json:"paymentStatus,omitempty"`
	DueDate           time.Time     `json:"dueDate"`
	CreditDate        time.Time     `json:"creditDate,omitempty"`
}

type CreditPaymentUpdate struct {
	AmountPaid       float64       `json:"amountPaid"`
	RemainingBalance float64       `json:"remainingBalance"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
}

// InventoryEdit is a direct quantity/price edit from the inventory screen,
// as opposed to a purchase-driven merge.
type InventoryEdit struct {
	CartonQuantity    int     `json:"cartonQuantity"`
	QuantityPerCarton int     `json:"quantityPerCarton"`
	PricePerCarton    float64 `json:"pricePerCarton"`
	PricePerPiece     float64 `json:"pricePerPiece"`
	MinStockAlert     int     `json:"minStockAlert"`
}
