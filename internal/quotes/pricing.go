package quotes

import "github.com/wolfman30/sports-travel-platform/internal/money"

// PriceLine is one adjustment step of a price computation.
type PriceLine struct {
	Name         string       `json:"name"`
	Percentage   money.Amount `json:"percentage"`
	Value        money.Amount `json:"value"`
	Delta        money.Amount `json:"delta"`
	RunningTotal money.Amount `json:"runningTotal"`
}

// PriceBreakdown explains how a final price was reached.
type PriceBreakdown struct {
	BasePrice  money.Amount `json:"basePrice"`
	Travelers  int          `json:"numberOfTravelers"`
	Subtotal   money.Amount `json:"subtotal"`
	Lines      []PriceLine  `json:"lines"`
	Adjusted   money.Amount `json:"adjusted"`
	FinalPrice money.Amount `json:"finalPrice"`
	Clamped    bool         `json:"clamped"`
}

// Breakdown starts from basePrice × travelers and applies each adjustment
// in insertion order: first its percentage of the running total, then its
// absolute value. The final price is rounded to paise and never negative.
func Breakdown(basePrice money.Amount, travelers int, adjustments Adjustments) PriceBreakdown {
	subtotal := basePrice.MulInt(travelers)
	b := PriceBreakdown{
		BasePrice: basePrice,
		Travelers: travelers,
		Subtotal:  subtotal,
		Lines:     make([]PriceLine, 0, adjustments.Len()),
	}

	running := subtotal
	adjustments.Each(func(name string, adj Adjustment) bool {
		before := running
		running = running.Add(running.Percent(adj.Percentage))
		running = running.Add(adj.Value)
		b.Lines = append(b.Lines, PriceLine{
			Name:         name,
			Percentage:   adj.Percentage,
			Value:        adj.Value,
			Delta:        running.Sub(before),
			RunningTotal: running,
		})
		return true
	})

	b.Adjusted = running
	b.Clamped = running.IsNegative()
	b.FinalPrice = running.Max0().Round(2)
	return b
}

// ComputeFinalPrice is the price used both when a quote is generated and
// whenever it is recomputed or redisplayed.
func ComputeFinalPrice(basePrice money.Amount, travelers int, adjustments Adjustments) money.Amount {
	return Breakdown(basePrice, travelers, adjustments).FinalPrice
}
