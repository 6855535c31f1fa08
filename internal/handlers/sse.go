package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"commerce-dashboard/internal/models"
	"commerce-dashboard/internal/services"
)

var summaryTemplate = template.Must(template.New("rfmSummary").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format(time.DateOnly) },
	"orNA": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	},
}).Parse(`
<div id="summary-content">
<p class="window">{{date .Window.Start}} to {{date .Window.End}}: {{.Rows}} order lines</p>
<div class="metrics">
<div class="metric"><span>Average Recency (days)</span><strong>{{orNA .RFMSummary.AvgRecency}}</strong></div>
<div class="metric"><span>Average Frequency</span><strong>{{orNA .RFMSummary.AvgFrequency}}</strong></div>
<div class="metric"><span>Average Monetary</span><strong>{{if .RFMSummary.AvgMonetary.Valid}}${{.RFMSummary.AvgMonetary.Decimal.StringFixed 2}}{{else}}n/a{{end}}</strong></div>
</div>
<table class="modern-table">
<thead><tr><th>Customer</th><th>Recency</th><th>Frequency</th><th>Monetary</th></tr></thead>
<tbody>
{{range .BestCustomers.ByMonetary}}<tr>
<td>{{.CustomerID}}</td>
<td>{{.Recency}}</td>
<td>{{.Frequency}}</td>
<td><strong>${{.Monetary.StringFixed 2}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

const invalidWindow = `<div id="summary-content" class="error">Invalid date range</div>`

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderSummary(report models.Report) (string, error) {
	var buf strings.Builder
	err := summaryTemplate.Execute(&buf, report)
	return buf.String(), err
}

// signalWindow reads the window from Datastar signals, falling back to plain
// query parameters.
func signalWindow(r *http.Request) (windowParams, error) {
	var params windowParams
	if err := datastar.ReadSignals(r, &params); err != nil {
		return windowParams{}, err
	}
	if params.Start == "" && params.End == "" {
		params = windowFromQuery(r)
	}
	return params, nil
}

// HandleReport recomputes every table for the requested window, patches the
// summary element and pushes chart data as signals.
func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	params, readErr := signalWindow(r)

	sse := datastar.NewSSE(w, r)

	if readErr != nil {
		h.logger.Warn("read signals", "error", readErr)
		sse.PatchElements(invalidWindow)
		return
	}

	win, err := params.resolve(h.analytics.DefaultWindow())
	if err != nil {
		h.logger.Warn("invalid window", "error", err)
		sse.PatchElements(invalidWindow)
		return
	}

	report := h.analytics.Report(r.Context(), win)

	html, err := h.renderSummary(report)
	if err != nil {
		h.logger.Error("render rfm summary", "error", err)
		return
	}
	sse.PatchElements(html)

	signals, err := json.Marshal(map[string]any{
		"yearlyData":    report.YearlyRevenue,
		"statusData":    report.StatusRevenue,
		"topData":       report.TopCategories,
		"bottomData":    report.BottomCategories,
		"bestByRecency": report.BestCustomers.ByRecency,
		"bestByFreq":    report.BestCustomers.ByFrequency,
		"bestByMoney":   report.BestCustomers.ByMonetary,
	})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
