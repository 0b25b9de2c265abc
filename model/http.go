package model

type PlacementSummary struct {
	FragmentID string  `json:"fragment_id"`
	Style      Style   `json:"style"`
	From       int     `json:"from"`
	To         int     `json:"to"`
	Overall    float64 `json:"overall"`
}

type GenerateResponse struct {
	Notes      Phrase             `json:"notes"`
	Bars       int                `json:"bars"`
	Complete   bool               `json:"complete"`
	Uncovered  []int              `json:"uncovered"`
	Placements []PlacementSummary `json:"placements"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
