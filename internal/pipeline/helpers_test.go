package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"commerce-dashboard/internal/models"
)

func line(customer, order, price, purchased string) models.OrderLine {
	return models.OrderLine{
		OrderID:     order,
		CustomerID:  customer,
		OrderStatus: "delivered",
		Price:       decimal.RequireFromString(price),
		PurchasedAt: mustTime(purchased),
	}
}

func withStatus(l models.OrderLine, status string) models.OrderLine {
	l.OrderStatus = status
	return l
}

func withCategory(l models.OrderLine, category string) models.OrderLine {
	l.ProductCategory = &category
	return l
}

func mustTime(value string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	panic("bad test timestamp " + value)
}

func window(start, end string) models.Window {
	return models.Window{Start: mustTime(start), End: mustTime(end)}
}

func exampleLines() []models.OrderLine {
	return []models.OrderLine{
		line("A", "1", "10", "2021-01-05 09:30:00"),
		line("A", "2", "20", "2021-02-10 18:45:00"),
		line("B", "3", "5", "2021-01-20 07:00:00"),
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
