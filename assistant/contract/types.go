package contract

import "time"

// TimePeriodUnknown is the sentinel the extractor emits when the question
// does not mention a recognizable time period. Callers branch on it; it is
// never represented as an empty string.
const TimePeriodUnknown = "unknown"

// SalesRecord is one preprocessed row of the historical sales dataset.
type SalesRecord struct {
	Date         time.Time `json:"date"`
	Product      string    `json:"product"`
	SalesUnits   int       `json:"sales_units"`
	Revenue      float64   `json:"revenue"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Week         int       `json:"week"`
	Quarter      int       `json:"quarter"`
	PricePerUnit float64   `json:"price_per_unit"`
}

// ProductStats aggregates one product's rows.
type ProductStats struct {
	TotalSalesUnits          int     `json:"total_sales_units"`
	TotalRevenue             float64 `json:"total_revenue"`
	AverageSalesUnitsPerWeek float64 `json:"average_sales_units_per_week"`
	AverageRevenuePerWeek    float64 `json:"average_revenue_per_week"`
	AveragePricePerUnit      float64 `json:"average_price_per_unit"`
}

// DataPeriod is the inclusive date range covered by the dataset.
type DataPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SalesDigest is the compact statistical summary of the sales history that
// is embedded into model prompts. Built once per dataset load; read-only
// afterwards.
type SalesDigest struct {
	DataPeriod        DataPeriod              `json:"data_period"`
	Products          []string                `json:"products"`
	TotalRecords      int                     `json:"total_records"`
	ProductStatistics map[string]ProductStats `json:"product_statistics"`

	// MonthlyTrends and QuarterlyTrends hold unit totals keyed
	// year -> month/quarter -> product.
	MonthlyTrends   map[int]map[int]map[string]int `json:"monthly_trends"`
	QuarterlyTrends map[int]map[int]map[string]int `json:"quarterly_trends"`
}

// ExtractedQuery is the structured result of the query extraction stage.
type ExtractedQuery struct {
	AnswerText string   `json:"response_text"`
	Products   []string `json:"products"`
	TimePeriod string   `json:"time_period"`
}

// HasProducts reports whether the model identified any products.
func (q ExtractedQuery) HasProducts() bool {
	return len(q.Products) > 0
}

// HasTimePeriod reports whether the model recognized a time period.
func (q ExtractedQuery) HasTimePeriod() bool {
	return q.TimePeriod != "" && q.TimePeriod != TimePeriodUnknown
}

// InventoryRecord is one stock entry of the static catalog.
type InventoryRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	QuantityInStock int    `json:"quantity_in_stock"`
}

// InventoryAnswer is the natural-language inventory answer with the catalog
// id that grounded it. SourceID is empty when no record existed.
type InventoryAnswer struct {
	AnswerText string `json:"answer"`
	SourceID   string `json:"source"`
}

// Impact vocabulary used across insight entries. Unrecognized values are
// rendered unannotated, not rejected.
const (
	ImpactPositive = "Positive"
	ImpactNegative = "Negative"
	ImpactNeutral  = "Neutral"
)

type MarketTrend struct {
	Name        string `json:"trend"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
}

type CompetitorMove struct {
	Name        string `json:"competitor"`
	Action      string `json:"action"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
}

type Regulation struct {
	Name        string `json:"regulation"`
	Timeline    string `json:"timeline"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
}

// MarketInsights is the structured market commentary returned by the
// augmentation stage.
type MarketInsights struct {
	MarketTrends             []MarketTrend    `json:"market_trends"`
	CompetitiveLandscape     []CompetitorMove `json:"competitive_landscape"`
	RegulatoryConsiderations []Regulation     `json:"regulatory_considerations"`
}

// AugmentedResult pairs the original extraction with market insights. It is
// only constructed once both stages succeeded; there is no partial form.
type AugmentedResult struct {
	Query    ExtractedQuery `json:"query"`
	Insights MarketInsights `json:"market_insights"`
}
