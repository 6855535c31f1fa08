package pipeline

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"commerce-dashboard/internal/models"
)

// BestCustomersLimit is the number of customers ranked per RFM dimension.
const BestCustomersLimit = 5

type customerBucket struct {
	last     time.Time
	orders   map[string]struct{}
	monetary decimal.Decimal
}

// RFM derives recency, frequency and monetary value per customer. Recency is
// measured in days from the latest purchase date of the whole table, so it
// shifts with the filter window even for customers whose own orders are
// unchanged. An empty table yields an empty result.
func RFM(lines []models.OrderLine) []models.RFM {
	customers := make(map[string]*customerBucket)
	var recent time.Time
	for _, line := range lines {
		purchased := DateOf(line.PurchasedAt)
		if purchased.After(recent) {
			recent = purchased
		}

		bucket := customers[line.CustomerID]
		if bucket == nil {
			bucket = &customerBucket{
				last:     purchased,
				orders:   make(map[string]struct{}),
				monetary: decimal.Zero,
			}
			customers[line.CustomerID] = bucket
		}
		if purchased.After(bucket.last) {
			bucket.last = purchased
		}
		bucket.orders[line.OrderID] = struct{}{}
		bucket.monetary = bucket.monetary.Add(line.Price)
	}

	result := make([]models.RFM, 0, len(customers))
	for id, bucket := range customers {
		result = append(result, models.RFM{
			CustomerID:   id,
			LastPurchase: bucket.last,
			Recency:      int(dayNumber(recent) - dayNumber(bucket.last)),
			Frequency:    len(bucket.orders),
			Monetary:     bucket.monetary,
		})
	}
	slices.SortFunc(result, func(a, b models.RFM) int {
		return strings.Compare(a.CustomerID, b.CustomerID)
	})
	return result
}

// SummarizeRFM averages each RFM dimension, rounding half to even. Recency
// keeps one decimal, frequency and monetary keep two. Means over an empty
// table are left undefined.
func SummarizeRFM(rows []models.RFM) models.RFMSummary {
	summary := models.RFMSummary{Customers: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	var recency, frequency int
	monetary := decimal.Zero
	for _, row := range rows {
		recency += row.Recency
		frequency += row.Frequency
		monetary = monetary.Add(row.Monetary)
	}

	n := float64(len(rows))
	avgRecency := roundTo(float64(recency)/n, 1)
	avgFrequency := roundTo(float64(frequency)/n, 2)
	summary.AvgRecency = &avgRecency
	summary.AvgFrequency = &avgFrequency
	summary.AvgMonetary = decimal.NewNullDecimal(monetary.Div(decimal.NewFromInt(int64(len(rows)))).RoundBank(2))
	return summary
}

// RankCustomers picks the n most recent, most frequent and highest spending
// customers. Ties keep customer id order.
func RankCustomers(rows []models.RFM, n int) models.BestCustomers {
	return models.BestCustomers{
		ByRecency: rankBy(rows, n, func(a, b models.RFM) int {
			return a.Recency - b.Recency
		}),
		ByFrequency: rankBy(rows, n, func(a, b models.RFM) int {
			return b.Frequency - a.Frequency
		}),
		ByMonetary: rankBy(rows, n, func(a, b models.RFM) int {
			return b.Monetary.Cmp(a.Monetary)
		}),
	}
}

func rankBy(rows []models.RFM, n int, cmp func(a, b models.RFM) int) []models.RFM {
	ranked := slices.Clone(rows)
	slices.SortStableFunc(ranked, func(a, b models.RFM) int {
		if c := cmp(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.CustomerID, b.CustomerID)
	})
	return Head(ranked, n)
}

// dayNumber counts days since the Unix epoch for a UTC midnight from DateOf.
func dayNumber(t time.Time) int64 {
	return t.Unix() / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60

// roundTo rounds half to even at the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
