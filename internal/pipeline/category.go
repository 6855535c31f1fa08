package pipeline

import (
	"slices"
	"strings"

	"commerce-dashboard/internal/models"
)

// CategoryLimit is how many rows the dashboard shows from each category view.
const CategoryLimit = 10

// TopCategories counts order lines per product category, largest count first.
// Every line counts, even when several share an order id. Lines without a category
// are counted in a bucket of their own.
func TopCategories(lines []models.OrderLine) []models.CategoryCount {
	return countCategories(lines)
}

// BottomCategories is TopCategories in reverse: smallest count first.
func BottomCategories(lines []models.OrderLine) []models.CategoryCount {
	return reversed(countCategories(lines))
}

func countCategories(lines []models.OrderLine) []models.CategoryCount {
	named := make(map[string]int)
	missing := 0
	for _, line := range lines {
		if line.ProductCategory == nil {
			missing++
			continue
		}
		named[*line.ProductCategory]++
	}

	result := make([]models.CategoryCount, 0, len(named)+1)
	for name, count := range named {
		result = append(result, models.CategoryCount{Category: &name, OrderCount: count})
	}
	if missing > 0 {
		result = append(result, models.CategoryCount{OrderCount: missing})
	}
	slices.SortFunc(result, compareCategoryCounts)
	return result
}

// compareCategoryCounts orders by count descending, then by name with the
// missing-category bucket last.
func compareCategoryCounts(a, b models.CategoryCount) int {
	if a.OrderCount != b.OrderCount {
		if a.OrderCount > b.OrderCount {
			return -1
		}
		return 1
	}
	switch {
	case a.Category == nil && b.Category == nil:
		return 0
	case a.Category == nil:
		return 1
	case b.Category == nil:
		return -1
	}
	return strings.Compare(*a.Category, *b.Category)
}

func reversed[T any](rows []T) []T {
	out := slices.Clone(rows)
	slices.Reverse(out)
	return out
}
