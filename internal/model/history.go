package model

// Trend describes the short-term direction of a price series.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// Arrow returns the display glyph for the trend.
func (t Trend) Arrow() string {
	switch t {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// PriceHistory is a bounded FIFO of observed prices for one token/exchange
// pair. It only feeds the trend arrow in the terminal display and has no
// influence on scanning.
type PriceHistory struct {
	capacity int
	points   []TokenPrice
}

// NewPriceHistory creates a history bounded to capacity points. A capacity
// below 1 falls back to 1.
func NewPriceHistory(capacity int) *PriceHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &PriceHistory{capacity: capacity}
}

// Push appends a point, evicting the oldest when the window is full.
func (h *PriceHistory) Push(p TokenPrice) {
	h.points = append(h.points, p)
	if len(h.points) > h.capacity {
		h.points = h.points[1:]
	}
}

// Len returns the number of retained points.
func (h *PriceHistory) Len() int {
	return len(h.points)
}

// Latest returns the most recent point and whether one exists.
func (h *PriceHistory) Latest() (TokenPrice, bool) {
	if len(h.points) == 0 {
		return TokenPrice{}, false
	}
	return h.points[len(h.points)-1], true
}

// Trend compares the latest price against the previous one.
func (h *PriceHistory) Trend() Trend {
	if len(h.points) < 2 {
		return TrendFlat
	}
	prev := h.points[len(h.points)-2].Price
	last := h.points[len(h.points)-1].Price
	switch last.Cmp(prev) {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	default:
		return TrendFlat
	}
}

// Points returns a copy of the retained points, oldest first.
func (h *PriceHistory) Points() []TokenPrice {
	out := make([]TokenPrice, len(h.points))
	copy(out, h.points)
	return out
}
