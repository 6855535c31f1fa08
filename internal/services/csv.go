package services

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"commerce-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

const (
	colOrderID           = "order_id"
	colCustomerID        = "customer_id"
	colOrderStatus       = "order_status"
	colCategory          = "product_category_name_english"
	colPrice             = "price"
	colPurchaseTimestamp = "order_purchase_timestamp"
	colEstimatedDelivery = "order_estimated_delivery_date"
)

var requiredColumns = []string{
	colOrderID,
	colCustomerID,
	colOrderStatus,
	colCategory,
	colPrice,
	colPurchaseTimestamp,
	colEstimatedDelivery,
}

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrNoRecords     = errors.New("no records found")
)

var timestampLayouts = []string{
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

func (c columnIndex) get(record []string, name string) string {
	i := c[name]
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// readOrderLines parses every record of filename. Any malformed record fails
// the whole load.
func readOrderLines(ctx context.Context, filename string) ([]models.OrderLine, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 1024*1024))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var lines []models.OrderLine
	batch := make([][]string, 0, batchSize)
	offset := 1

	flush := func() error {
		parsed, err := parseBatch(ctx, batch, cols, offset)
		if err != nil {
			return err
		}
		lines = append(lines, parsed...)
		offset += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	if len(lines) == 0 {
		return nil, ErrNoRecords
	}
	return lines, nil
}

// parseBatch splits batch across workers; output order matches input order.
func parseBatch(ctx context.Context, batch [][]string, cols columnIndex, offset int) ([]models.OrderLine, error) {
	out := make([]models.OrderLine, len(batch))
	if len(batch) == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	chunk := (len(batch) + maxWorkers - 1) / maxWorkers
	for lo := 0; lo < len(batch); lo += chunk {
		hi := min(lo+chunk, len(batch))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				line, err := parseOrderLine(batch[i], cols)
				if err != nil {
					return fmt.Errorf("record %d: %w", offset+i, err)
				}
				out[i] = line
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseOrderLine(record []string, cols columnIndex) (models.OrderLine, error) {
	price, err := decimal.NewFromString(cols.get(record, colPrice))
	if err != nil {
		return models.OrderLine{}, fmt.Errorf("invalid price %q: %w", cols.get(record, colPrice), err)
	}
	if price.IsNegative() {
		return models.OrderLine{}, fmt.Errorf("negative price %s", price)
	}

	purchasedAt, err := parseTimestamp(cols.get(record, colPurchaseTimestamp))
	if err != nil {
		return models.OrderLine{}, fmt.Errorf("invalid %s: %w", colPurchaseTimestamp, err)
	}

	var estimated time.Time
	if raw := cols.get(record, colEstimatedDelivery); raw != "" {
		if estimated, err = parseTimestamp(raw); err != nil {
			return models.OrderLine{}, fmt.Errorf("invalid %s: %w", colEstimatedDelivery, err)
		}
	}

	line := models.OrderLine{
		OrderID:             cols.get(record, colOrderID),
		CustomerID:          cols.get(record, colCustomerID),
		OrderStatus:         cols.get(record, colOrderStatus),
		Price:               price,
		PurchasedAt:         purchasedAt,
		EstimatedDeliveryAt: estimated,
	}
	if category := cols.get(record, colCategory); category != "" {
		line.ProductCategory = &category
	}
	return line, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
