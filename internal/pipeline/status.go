package pipeline

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"commerce-dashboard/internal/models"
)

// StatusLimit caps the number of rows StatusRevenue returns.
const StatusLimit = 10

// StatusRevenue sums price per order status, highest first. Equal sums are
// ordered by status name.
func StatusRevenue(lines []models.OrderLine) []models.StatusRevenue {
	groups := make(map[string]decimal.Decimal)
	for _, line := range lines {
		sum, ok := groups[line.OrderStatus]
		if !ok {
			sum = decimal.Zero
		}
		groups[line.OrderStatus] = sum.Add(line.Price)
	}

	result := make([]models.StatusRevenue, 0, len(groups))
	for status, price := range groups {
		result = append(result, models.StatusRevenue{OrderStatus: status, Price: price})
	}
	slices.SortFunc(result, func(a, b models.StatusRevenue) int {
		if c := b.Price.Cmp(a.Price); c != 0 {
			return c
		}
		return strings.Compare(a.OrderStatus, b.OrderStatus)
	})
	return Head(result, StatusLimit)
}
