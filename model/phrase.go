package model

type Note struct {
	Pitch    uint8   `json:"pitch"`
	Velocity uint8   `json:"velocity"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

func (n Note) End() float64 {
	return n.Start + n.Duration
}

// Phrase is ordered by Start. Times are in beats.
type Phrase = []Note
