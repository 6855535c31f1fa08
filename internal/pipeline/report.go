package pipeline

import "commerce-dashboard/internal/models"

// Compute filters lines to w and derives every dashboard table from the
// filtered rows. Nothing is reused between calls.
func Compute(lines []models.OrderLine, w models.Window) models.Report {
	filtered := Filter(lines, w)
	top := TopCategories(filtered)
	rfm := RFM(filtered)

	return models.Report{
		Window:           w,
		Rows:             len(filtered),
		YearlyRevenue:    YearlyRevenue(filtered),
		StatusRevenue:    StatusRevenue(filtered),
		TopCategories:    Head(top, CategoryLimit),
		BottomCategories: Head(reversed(top), CategoryLimit),
		RFM:              rfm,
		RFMSummary:       SummarizeRFM(rfm),
		BestCustomers:    RankCustomers(rfm, BestCustomersLimit),
	}
}
