package series

import (
	"PriceDash/internal/model"
)

// Merge combines the cached series with incoming rows. Duplicate (symbol, date)
// pairs keep the incoming row. The result is sorted and prices are rounded, so
// merging the same batch twice changes nothing.
func Merge(old Series, incoming []model.PricePoint) Series {
	seen := make(map[model.Key]int, len(old)+len(incoming))
	merged := make(Series, 0, len(old)+len(incoming))
	add := func(p model.PricePoint) {
		p = canonical(p)
		if i, ok := seen[p.Key()]; ok {
			merged[i] = p
			return
		}
		seen[p.Key()] = len(merged)
		merged = append(merged, p)
	}
	for _, p := range old {
		add(p)
	}
	for _, p := range incoming {
		add(p)
	}
	sortPoints(merged)
	return merged
}

// NewRows returns the incoming rows whose (symbol, date) pair is not in old.
// Duplicates within incoming collapse to the last one. These are the only rows
// that need to be appended to the backing store.
func NewRows(old Series, incoming []model.PricePoint) []model.PricePoint {
	existing := make(map[model.Key]bool, len(old))
	for _, p := range old {
		existing[canonical(p).Key()] = true
	}
	index := make(map[model.Key]int)
	var out []model.PricePoint
	for _, p := range incoming {
		p = canonical(p)
		k := p.Key()
		if existing[k] {
			continue
		}
		if i, ok := index[k]; ok {
			out[i] = p
			continue
		}
		index[k] = len(out)
		out = append(out, p)
	}
	sortPoints(out)
	return out
}

func canonical(p model.PricePoint) model.PricePoint {
	return model.PricePoint{
		Symbol: model.NormalizeSymbol(p.Symbol),
		Date:   model.Day(p.Date),
		Price:  model.Round2(p.Price),
	}
}
