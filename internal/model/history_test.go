package model

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(price string) TokenPrice {
	return TokenPrice{Token: "WETH", Exchange: "dex_a", Price: decimal.RequireFromString(price)}
}

func TestPriceHistory_BoundedFIFO(t *testing.T) {
	h := NewPriceHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(point(fmt.Sprintf("%d", i*100)))
	}

	assert.Equal(t, 3, h.Len())
	points := h.Points()
	require.Len(t, points, 3)
	assert.True(t, points[0].Price.Equal(decimal.NewFromInt(300)), "oldest surviving point")
	assert.True(t, points[2].Price.Equal(decimal.NewFromInt(500)))

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.True(t, latest.Price.Equal(decimal.NewFromInt(500)))
}

func TestPriceHistory_Trend(t *testing.T) {
	h := NewPriceHistory(10)
	assert.Equal(t, TrendFlat, h.Trend(), "empty history is flat")

	h.Push(point("100"))
	assert.Equal(t, TrendFlat, h.Trend(), "single point is flat")

	h.Push(point("101"))
	assert.Equal(t, TrendUp, h.Trend())

	h.Push(point("99"))
	assert.Equal(t, TrendDown, h.Trend())

	h.Push(point("99"))
	assert.Equal(t, TrendFlat, h.Trend())
}

func TestPriceHistory_TinyCapacity(t *testing.T) {
	h := NewPriceHistory(0)
	h.Push(point("100"))
	h.Push(point("200"))
	assert.Equal(t, 1, h.Len())

	_, ok := h.Latest()
	assert.True(t, ok)
}

func TestTrend_Arrows(t *testing.T) {
	assert.Equal(t, "↑", TrendUp.Arrow())
	assert.Equal(t, "↓", TrendDown.Arrow())
	assert.Equal(t, "→", TrendFlat.Arrow())
}
