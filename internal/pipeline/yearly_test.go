package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-dashboard/internal/models"
)

func TestYearlyRevenueSumsMonthlyDistinctOrders(t *testing.T) {
	lines := []models.OrderLine{
		line("A", "o1", "10.50", "2017-01-03 10:00:00"),
		line("A", "o1", "4.50", "2017-01-03 10:00:00"),
		line("B", "o2", "7", "2017-03-09 10:00:00"),
		line("C", "o3", "100", "2018-07-01 00:00:00"),
		// an order spanning a month boundary counts once per month
		line("C", "o4", "1", "2018-07-31 23:59:59"),
		line("C", "o4", "1", "2018-08-01 00:00:01"),
	}

	got := YearlyRevenue(lines)
	require.Len(t, got, 2)

	assert.Equal(t, 2017, got[0].Year)
	assertDecimal(t, "22", got[0].Value)
	assert.Equal(t, 2, got[0].OrderCount)

	assert.Equal(t, 2018, got[1].Year)
	assertDecimal(t, "102", got[1].Value)
	assert.Equal(t, 3, got[1].OrderCount)
}

func TestYearlyRevenueSkipsYearsWithoutOrders(t *testing.T) {
	lines := []models.OrderLine{
		line("A", "o1", "1", "2016-10-01 00:00:00"),
		line("B", "o2", "2", "2018-02-01 00:00:00"),
	}

	got := YearlyRevenue(lines)
	require.Len(t, got, 2)
	assert.Equal(t, 2016, got[0].Year)
	assert.Equal(t, 2018, got[1].Year)
}

func TestYearlyRevenueTotalsMatchFilteredRows(t *testing.T) {
	lines := exampleLines()
	lines = append(lines, line("C", "9", "0.1", "2022-05-05 00:00:00"))

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}

	sum := decimal.Zero
	for _, row := range YearlyRevenue(lines) {
		sum = sum.Add(row.Value)
	}
	assert.True(t, total.Equal(sum), "expected %s, got %s", total, sum)
}

func TestYearlyRevenueEmpty(t *testing.T) {
	got := YearlyRevenue(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}
