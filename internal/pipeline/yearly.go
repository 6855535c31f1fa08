package pipeline

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"commerce-dashboard/internal/models"
)

type monthBucket struct {
	revenue decimal.Decimal
	orders  map[string]struct{}
}

// YearlyRevenue resamples lines into month-start buckets (summed price,
// distinct orders) and then folds the months into calendar years. Only years
// with at least one purchase get a row. Rows are sorted by year.
func YearlyRevenue(lines []models.OrderLine) []models.YearlyRevenue {
	months := make(map[time.Time]*monthBucket)
	for _, line := range lines {
		key := monthStart(line.PurchasedAt)
		bucket := months[key]
		if bucket == nil {
			bucket = &monthBucket{revenue: decimal.Zero, orders: make(map[string]struct{})}
			months[key] = bucket
		}
		bucket.revenue = bucket.revenue.Add(line.Price)
		bucket.orders[line.OrderID] = struct{}{}
	}

	years := make(map[int]*models.YearlyRevenue)
	for month, bucket := range months {
		year := month.Year()
		row := years[year]
		if row == nil {
			row = &models.YearlyRevenue{Year: year, Value: decimal.Zero}
			years[year] = row
		}
		row.Value = row.Value.Add(bucket.revenue)
		row.OrderCount += len(bucket.orders)
	}

	result := make([]models.YearlyRevenue, 0, len(years))
	for _, row := range years {
		result = append(result, *row)
	}
	slices.SortFunc(result, func(a, b models.YearlyRevenue) int {
		return a.Year - b.Year
	})
	return result
}
