// Package pricing derives tiered sale prices, profitability, bulk
// discounts, and margin risk classifications from a cost figure.
package pricing

import (
	"fmt"
	"math"
	"sort"

	"dapurmanis/engine/internal/domain"
)

// Rounding units per tier and the discount/analysis constants.
const (
	EconomyRoundingUnit  = 500.0
	StandardRoundingUnit = 1000.0
	PremiumRoundingUnit  = 1000.0
	BulkRoundingUnit     = 100.0

	ElasticityBucketSize = 5000.0

	// MinimumSustainableMargin is the margin floor below which a price
	// point is classified as high risk and not profitable.
	MinimumSustainableMargin = 20.0
)

type Config struct {
	MinimumProfitMargin float64
	DefaultProfitMargin float64

	// FixedCostReference is the fixed-cost figure used for break-even
	// volume estimates.
	FixedCostReference float64
}

func DefaultConfig() Config {
	return Config{
		MinimumProfitMargin: 10,
		DefaultProfitMargin: 30,
		FixedCostReference:  1000,
	}
}

type Tier struct {
	Price        float64 `json:"price"`
	Margin       float64 `json:"margin"`
	RoundingUnit float64 `json:"-"`
}

type Tiers struct {
	Economy  Tier `json:"economy"`
	Standard Tier `json:"standard"`
	Premium  Tier `json:"premium"`
}

type Profitability struct {
	ProfitAmount    float64 `json:"profit_amount"`
	ProfitMargin    float64 `json:"profit_margin"`
	BreakEvenVolume int     `json:"break_even_volume"`
}

type MarginRisk struct {
	Level      string `json:"level"`
	Profitable bool   `json:"profitable"`
	Reason     string `json:"reason"`
}

type BulkQuote struct {
	Tier            string  `json:"tier"`
	DiscountPercent float64 `json:"discount_percent"`
	UnitPrice       float64 `json:"unit_price"`
	TotalPrice      float64 `json:"total_price"`
}

type ElasticityPoint struct {
	Price            float64 `json:"price"`
	AverageQuantity  float64 `json:"average_quantity"`
	ProjectedRevenue float64 `json:"projected_revenue"`
}

// ElasticityResult is a revenue-maximizing heuristic over bucketed
// historical prices, not a regression-based elasticity model.
type ElasticityResult struct {
	Points       []ElasticityPoint `json:"points"`
	OptimalPrice float64           `json:"optimal_price"`
}

type Result struct {
	Tiers           Tiers                    `json:"tiers"`
	Profitability   map[string]Profitability `json:"profitability"`
	Recommendations []string                 `json:"recommendations"`
	Risk            MarginRisk               `json:"risk"`
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.MinimumProfitMargin <= 0 {
		cfg.MinimumProfitMargin = DefaultConfig().MinimumProfitMargin
	}
	if cfg.DefaultProfitMargin <= 0 {
		cfg.DefaultProfitMargin = DefaultConfig().DefaultProfitMargin
	}
	if cfg.FixedCostReference <= 0 {
		cfg.FixedCostReference = DefaultConfig().FixedCostReference
	}
	return &Engine{cfg: cfg}
}

func roundUpTo(value float64, unit float64) float64 {
	if unit <= 0 {
		return value
	}
	return math.Ceil(value/unit) * unit
}

// Tiers derives the three price points from a cost. Rounding is always
// up, so a rounded price never drops below its margin-implied floor.
func (e *Engine) Tiers(cost float64) Tiers {
	return Tiers{
		Economy: Tier{
			Price:        roundUpTo(cost*(1+e.cfg.MinimumProfitMargin/100), EconomyRoundingUnit),
			Margin:       e.cfg.MinimumProfitMargin,
			RoundingUnit: EconomyRoundingUnit,
		},
		Standard: Tier{
			Price:        roundUpTo(cost*(1+e.cfg.DefaultProfitMargin/100), StandardRoundingUnit),
			Margin:       e.cfg.DefaultProfitMargin,
			RoundingUnit: StandardRoundingUnit,
		},
		Premium: Tier{
			Price:        roundUpTo(cost*2, PremiumRoundingUnit),
			Margin:       100,
			RoundingUnit: PremiumRoundingUnit,
		},
	}
}

func (e *Engine) Profitability(price float64, cost float64) Profitability {
	profit := price - cost
	var margin float64
	if price > 0 {
		margin = profit / price * 100
	}
	breakEven := 0
	if profit > 0 {
		breakEven = int(math.Ceil(e.cfg.FixedCostReference / profit))
	}
	return Profitability{
		ProfitAmount:    profit,
		ProfitMargin:    margin,
		BreakEvenVolume: breakEven,
	}
}

// Recommendations returns threshold-driven text advisories for a
// tiered pricing against its underlying cost.
func (e *Engine) Recommendations(tiers Tiers, cost float64) []string {
	recs := make([]string, 0, 3)
	if tiers.Standard.Price > 0 && cost > tiers.Standard.Price*0.70 {
		recs = append(recs, "Biaya produksi melebihi 70% dari harga standar. Pertimbangkan efisiensi bahan atau naikkan harga.")
	}
	if tiers.Economy.Price < cost*1.2 {
		recs = append(recs, "Harga ekonomis terlalu rendah, risiko kerugian tinggi.")
	}
	if tiers.Premium.Price > cost*2.5 {
		recs = append(recs, "Harga premium memberi ruang margin yang sangat sehat.")
	}
	return recs
}

// Analyze runs tiers, per-tier profitability, recommendations, and risk
// classification in one pass.
func (e *Engine) Analyze(cost float64) Result {
	tiers := e.Tiers(cost)
	return Result{
		Tiers: tiers,
		Profitability: map[string]Profitability{
			"economy":  e.Profitability(tiers.Economy.Price, cost),
			"standard": e.Profitability(tiers.Standard.Price, cost),
			"premium":  e.Profitability(tiers.Premium.Price, cost),
		},
		Recommendations: e.Recommendations(tiers, cost),
		Risk:            e.ClassifyMarginRisk(marginOf(tiers.Standard.Price, cost), e.cfg.DefaultProfitMargin),
	}
}

func marginOf(price float64, cost float64) float64 {
	if price <= 0 {
		return 0
	}
	return (price - cost) / price * 100
}

// DynamicAdjust recomputes each tier's price under demand, competition,
// and season factors, preserving the tier's rounding unit. Demand is
// clamped to [0.5, 1.5] and competition to [0.8, 1.2].
func (e *Engine) DynamicAdjust(tiers Tiers, demand float64, competition float64, season float64) Tiers {
	demand = clamp(demand, 0.5, 1.5)
	competition = clamp(competition, 0.8, 1.2)
	if season <= 0 {
		season = 1.0
	}

	adjust := func(t Tier) Tier {
		t.Price = roundUpTo(t.Price*demand*competition*season, t.RoundingUnit)
		return t
	}

	tiers.Economy = adjust(tiers.Economy)
	tiers.Standard = adjust(tiers.Standard)
	tiers.Premium = adjust(tiers.Premium)
	return tiers
}

func clamp(v float64, lo float64, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BulkPrice applies the tiered quantity discount table and rounds the
// discounted unit price up to the nearest 100.
func BulkPrice(basePrice float64, quantity int) BulkQuote {
	var tier string
	var discount float64
	switch {
	case quantity >= 100:
		tier, discount = "wholesale", 20
	case quantity >= 50:
		tier, discount = "bulk", 15
	case quantity >= 20:
		tier, discount = "volume", 10
	case quantity >= 10:
		tier, discount = "small-bulk", 5
	default:
		tier, discount = "retail", 0
	}

	unitPrice := roundUpTo(basePrice*(1-discount/100), BulkRoundingUnit)
	return BulkQuote{
		Tier:            tier,
		DiscountPercent: discount,
		UnitPrice:       unitPrice,
		TotalPrice:      unitPrice * float64(quantity),
	}
}

// AnalyzeElasticity buckets historical sale prices into 5000-unit
// ranges, averages quantity per bucket, and recommends the bucket with
// the highest projected revenue.
func AnalyzeElasticity(records []domain.SalesRecord) ElasticityResult {
	if len(records) == 0 {
		return ElasticityResult{}
	}

	type bucket struct {
		totalQty int
		count    int
	}
	buckets := make(map[float64]*bucket)
	for _, r := range records {
		key := math.Floor(r.Price/ElasticityBucketSize) * ElasticityBucketSize
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.totalQty += r.Quantity
		b.count++
	}

	points := make([]ElasticityPoint, 0, len(buckets))
	for price, b := range buckets {
		avg := float64(b.totalQty) / float64(b.count)
		points = append(points, ElasticityPoint{
			Price:            price,
			AverageQuantity:  avg,
			ProjectedRevenue: price * avg,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Price < points[j].Price })

	best := points[0]
	for _, p := range points[1:] {
		if p.ProjectedRevenue > best.ProjectedRevenue {
			best = p
		}
	}

	return ElasticityResult{Points: points, OptimalPrice: best.Price}
}

// ClassifyMarginRisk classifies a margin against the sustainable floor
// and a target margin.
func (e *Engine) ClassifyMarginRisk(margin float64, targetMargin float64) MarginRisk {
	switch {
	case margin < MinimumSustainableMargin:
		return MarginRisk{
			Level:      "HIGH",
			Profitable: false,
			Reason:     fmt.Sprintf("margin %.1f%% di bawah batas minimum %.0f%%", margin, MinimumSustainableMargin),
		}
	case margin < targetMargin*0.8:
		return MarginRisk{
			Level:      "MEDIUM",
			Profitable: true,
			Reason:     fmt.Sprintf("margin %.1f%% di bawah 80%% dari target %.0f%%", margin, targetMargin),
		}
	default:
		return MarginRisk{Level: "LOW", Profitable: true, Reason: "margin sehat"}
	}
}
