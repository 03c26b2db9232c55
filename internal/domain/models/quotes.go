package models

// PricePoint is one daily quote for an instrument. Dates are ISO YYYY-MM-DD,
// unique per series and strictly ascending. Points are immutable once stored;
// only the external sync collaborator appends them.
type PricePoint struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adj_close"`
	Volume   float64 `json:"volume"`
}

// Closes extracts the close column from a series.
func Closes(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Close
	}
	return out
}

// Volumes extracts the volume column from a series.
func Volumes(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Volume
	}
	return out
}
