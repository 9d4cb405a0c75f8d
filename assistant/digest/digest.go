package digest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
)

// Required CSV columns; extra columns are ignored.
var requiredColumns = []string{"Date", "Product", "Sales_Units", "Revenue"}

const dateLayout = "2006-01-02"

// LoadHistory reads and preprocesses the sales history CSV. Rows with an
// unparseable date, non-numeric units/revenue, or negative units are
// dropped, mirroring how the dataset is cleaned before summarization.
// Zero-unit rows are kept; they count toward totals and carry a zero
// per-unit price.
func LoadHistory(path string) ([]contractx.SalesRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sales history: %w", err)
	}
	defer f.Close()

	records, dropped, err := parseHistory(f)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("path", path).
		Int("rows", len(records)).
		Int("dropped", dropped).
		Msg("sales history loaded")

	return records, nil
}

func parseHistory(r io.Reader) ([]contractx.SalesRecord, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read sales history header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, 0, fmt.Errorf("%w: required column %q not found", contractx.ErrValidation, col)
		}
	}

	var (
		records []contractx.SalesRecord
		dropped int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read sales history row: %w", err)
		}

		rec, ok := parseRow(row, idx)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	return records, dropped, nil
}

func parseRow(row []string, idx map[string]int) (contractx.SalesRecord, bool) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.Parse(dateLayout, get("Date"))
	if err != nil {
		return contractx.SalesRecord{}, false
	}
	product := get("Product")
	if product == "" {
		return contractx.SalesRecord{}, false
	}
	units, err := strconv.Atoi(get("Sales_Units"))
	if err != nil || units < 0 {
		return contractx.SalesRecord{}, false
	}
	revenue, err := strconv.ParseFloat(get("Revenue"), 64)
	if err != nil {
		return contractx.SalesRecord{}, false
	}

	// Zero-unit rows are valid data, not noise; they just carry no price.
	var pricePerUnit float64
	if units > 0 {
		pricePerUnit = revenue / float64(units)
	}

	_, week := date.ISOWeek()
	month := int(date.Month())

	return contractx.SalesRecord{
		Date:         date,
		Product:      product,
		SalesUnits:   units,
		Revenue:      revenue,
		Year:         date.Year(),
		Month:        month,
		Week:         week,
		Quarter:      (month-1)/3 + 1,
		PricePerUnit: pricePerUnit,
	}, true
}

// Build summarizes the preprocessed rows into the digest embedded in model
// prompts. The digest is immutable after construction.
func Build(records []contractx.SalesRecord) (contractx.SalesDigest, error) {
	if len(records) == 0 {
		return contractx.SalesDigest{}, fmt.Errorf("%w: sales history is empty", contractx.ErrValidation)
	}

	minDate, maxDate := records[0].Date, records[0].Date
	var products []string
	seen := make(map[string]bool)
	perProduct := make(map[string][]contractx.SalesRecord)

	for _, rec := range records {
		if rec.Date.Before(minDate) {
			minDate = rec.Date
		}
		if rec.Date.After(maxDate) {
			maxDate = rec.Date
		}
		if !seen[rec.Product] {
			seen[rec.Product] = true
			products = append(products, rec.Product)
		}
		perProduct[rec.Product] = append(perProduct[rec.Product], rec)
	}

	stats := make(map[string]contractx.ProductStats, len(products))
	for _, product := range products {
		rows := perProduct[product]
		var units int
		var revenue, price float64
		for _, rec := range rows {
			units += rec.SalesUnits
			revenue += rec.Revenue
			price += rec.PricePerUnit
		}
		n := float64(len(rows))
		stats[product] = contractx.ProductStats{
			TotalSalesUnits:          units,
			TotalRevenue:             revenue,
			AverageSalesUnitsPerWeek: float64(units) / n,
			AverageRevenuePerWeek:    revenue / n,
			AveragePricePerUnit:      price / n,
		}
	}

	digest := contractx.SalesDigest{
		DataPeriod: contractx.DataPeriod{
			StartDate: minDate.Format(dateLayout),
			EndDate:   maxDate.Format(dateLayout),
		},
		Products:          products,
		TotalRecords:      len(records),
		ProductStatistics: stats,
		MonthlyTrends:     trendTotals(records, func(r contractx.SalesRecord) int { return r.Month }),
		QuarterlyTrends:   trendTotals(records, func(r contractx.SalesRecord) int { return r.Quarter }),
	}

	return digest, nil
}

func trendTotals(records []contractx.SalesRecord, bucket func(contractx.SalesRecord) int) map[int]map[int]map[string]int {
	trends := make(map[int]map[int]map[string]int)
	for _, rec := range records {
		year := trends[rec.Year]
		if year == nil {
			year = make(map[int]map[string]int)
			trends[rec.Year] = year
		}
		b := bucket(rec)
		byProduct := year[b]
		if byProduct == nil {
			byProduct = make(map[string]int)
			year[b] = byProduct
		}
		byProduct[rec.Product] += rec.SalesUnits
	}
	return trends
}

// JSON serializes a digest for prompt embedding.
func JSON(d contractx.SalesDigest) (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal sales digest: %w", err)
	}
	return string(raw), nil
}
