package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is one line item of the cleaned order dataset. Several lines may
// share an OrderID.
type OrderLine struct {
	OrderID             string
	CustomerID          string
	OrderStatus         string
	ProductCategory     *string
	Price               decimal.Decimal
	PurchasedAt         time.Time
	EstimatedDeliveryAt time.Time
}

// Window is an inclusive range of calendar dates. Time of day is ignored on
// both ends.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type YearlyRevenue struct {
	Year       int             `json:"year"`
	Value      decimal.Decimal `json:"value"`
	OrderCount int             `json:"order_count"`
}

type StatusRevenue struct {
	OrderStatus string          `json:"order_status"`
	Price       decimal.Decimal `json:"price"`
}

// CategoryCount counts order lines, not distinct orders. A nil Category is
// the bucket for lines without a category.
type CategoryCount struct {
	Category   *string `json:"product_category_name_english"`
	OrderCount int     `json:"order_count"`
}

type RFM struct {
	CustomerID   string          `json:"customer_id"`
	LastPurchase time.Time       `json:"last_purchase"`
	Recency      int             `json:"recency"`
	Frequency    int             `json:"frequency"`
	Monetary     decimal.Decimal `json:"monetary"`
}

// RFMSummary holds the means over an RFM table. Every field is null when the
// table is empty.
type RFMSummary struct {
	Customers    int                 `json:"customers"`
	AvgRecency   *float64            `json:"avg_recency"`
	AvgFrequency *float64            `json:"avg_frequency"`
	AvgMonetary  decimal.NullDecimal `json:"avg_monetary"`
}

type BestCustomers struct {
	ByRecency   []RFM `json:"by_recency"`
	ByFrequency []RFM `json:"by_frequency"`
	ByMonetary  []RFM `json:"by_monetary"`
}

// Report bundles every table derived for one window.
type Report struct {
	Window           Window          `json:"window"`
	Rows             int             `json:"rows"`
	YearlyRevenue    []YearlyRevenue `json:"yearly_revenue"`
	StatusRevenue    []StatusRevenue `json:"status_revenue"`
	TopCategories    []CategoryCount `json:"top_categories"`
	BottomCategories []CategoryCount `json:"bottom_categories"`
	RFM              []RFM           `json:"rfm"`
	RFMSummary       RFMSummary      `json:"rfm_summary"`
	BestCustomers    BestCustomers   `json:"best_customers"`
}

// Bounds is the purchase date range covered by a loaded dataset.
type Bounds struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}
