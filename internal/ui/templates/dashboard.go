// Package templates holds the dashboard page components.
package templates

import (
	"context"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"

	"commerce-dashboard/internal/models"
)

// chartScript draws the charts from the signals /sse/report pushes. Prices
// arrive as decimal strings.
const chartScript = `<script>
const charts = {};

function drawChart(id, config) {
  const canvas = document.getElementById(id);
  if (!canvas || typeof Chart === 'undefined') {
    return;
  }
  if (charts[id]) {
    charts[id].destroy();
  }
  charts[id] = new Chart(canvas, config);
}

function barChart(id, labels, values, label, horizontal) {
  drawChart(id, {
    type: 'bar',
    data: {labels: labels, datasets: [{label: label, data: values, backgroundColor: '#72BCD4'}]},
    options: {indexAxis: horizontal ? 'y' : 'x', plugins: {legend: {display: false}}}
  });
}

function renderYearly(rows) {
  drawChart('yearly-chart', {
    type: 'line',
    data: {
      labels: rows.map(r => r.year),
      datasets: [{
        label: 'Revenue',
        data: rows.map(r => Number(r.value)),
        borderColor: '#88D66C',
        pointStyle: 'rectRot',
        pointRadius: 8,
        borderWidth: 2
      }]
    },
    options: {plugins: {legend: {display: false}}}
  });
}

function renderStatus(rows) {
  barChart('status-chart', rows.map(r => r.order_status), rows.map(r => Number(r.price)), 'Revenue', true);
}

function renderCategories(id, rows) {
  barChart(id, rows.map(r => r.product_category_name_english ?? 'unknown'), rows.map(r => r.order_count), 'Order lines', true);
}

function renderCustomers(id, rows, field) {
  barChart(id, rows.map(r => r.customer_id), rows.map(r => Number(r[field])), field, false);
}
</script>`

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>E-Commerce Public Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
` + chartScript + `
</head>
<body data-signals="{page: 'home', start: '{{.Start}}', end: '{{.End}}', yearlyData: [], statusData: [], topData: [], bottomData: [], bestByRecency: [], bestByFreq: [], bestByMoney: []}"
      data-on-load="@get('/sse/report')">
<header>
<h1>E-Commerce Public Dashboard</h1>
</header>
<nav class="menu">
<h2>Menu</h2>
<button type="button" data-on-click="$page = 'home'">Home</button>
<button type="button" data-on-click="$page = 'viz'">Data Visualization</button>
</nav>
<section id="home" data-show="$page == 'home'">
<h2>Welcome to Dashboard</h2>
{{range .Quotes}}<blockquote>{{.}}</blockquote>
{{end}}</section>
<main id="visualization" data-show="$page == 'viz'">
<aside class="period">
<label>Period Time</label>
<input type="date" min="{{.Min}}" max="{{.Max}}" data-bind-start data-on-change="@get('/sse/report')">
<input type="date" min="{{.Min}}" max="{{.Max}}" data-bind-end data-on-change="@get('/sse/report')">
</aside>
<section><h2>Total Revenue Yearly</h2><canvas id="yearly-chart" data-effect="renderYearly($yearlyData)"></canvas></section>
<section><h2>Total Revenue by Status</h2><canvas id="status-chart" data-effect="renderStatus($statusData)"></canvas></section>
<section><h2>Top 10 vs Bottom 10 Orders by Product Category</h2>
<canvas id="top-chart" data-effect="renderCategories('top-chart', $topData)"></canvas>
<canvas id="bottom-chart" data-effect="renderCategories('bottom-chart', $bottomData)"></canvas>
</section>
<section><h2>Best Customer Based on RFM Parameters</h2>
<div id="summary-content">Loading…</div>
<div class="best-customers">
<figure><figcaption>By Recency (days)</figcaption><canvas id="best-recency" data-effect="renderCustomers('best-recency', $bestByRecency, 'recency')"></canvas></figure>
<figure><figcaption>By Frequency</figcaption><canvas id="best-frequency" data-effect="renderCustomers('best-frequency', $bestByFreq, 'frequency')"></canvas></figure>
<figure><figcaption>By Monetary</figcaption><canvas id="best-monetary" data-effect="renderCustomers('best-monetary', $bestByMoney, 'monetary')"></canvas></figure>
</div>
</section>
</main>
<footer>{{.Footer}}</footer>
</body>
</html>`))

var welcomeQuotes = []string{
	"We are not what we know but what we are willing to learn.",
	"Good people are good because they've come to wisdom through failure.",
	"Your word is a lamp for my feet, a light for my path.",
	"The first problem for all of us, men and women, is not to learn, but to unlearn.",
}

type dashboardData struct {
	Start, End string
	Min, Max   string
	Footer     string
	Quotes     []string
}

// Dashboard renders the page shell. Tables are streamed in afterwards over
// /sse/report, starting from the full bounds of the dataset.
func Dashboard(bounds models.Bounds) templ.Component {
	data := dashboardData{
		Start:  bounds.Min.Format(time.DateOnly),
		End:    bounds.Max.Format(time.DateOnly),
		Min:    bounds.Min.Format(time.DateOnly),
		Max:    bounds.Max.Format(time.DateOnly),
		Footer: "Order analytics dashboard",
		Quotes: welcomeQuotes,
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return dashboardPage.Execute(w, data)
	})
}
