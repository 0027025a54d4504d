package matching

import (
	"testing"

	"embermatch/internal/book"
	"embermatch/internal/common"

	"github.com/stretchr/testify/assert"
)

func TestMatchFillsAtMakerPriceUnderPriceTimePriority(t *testing.T) {
	asks := book.NewAskBook()
	asks.Add(common.NewOrder(1, common.Sell, common.Limit, 100, 5))
	asks.Add(common.NewOrder(2, common.Sell, common.Limit, 100, 5))

	taker := common.NewOrder(3, common.Buy, common.Limit, 100, 7)
	fills := Match(taker, asks, false)

	assert.Len(t, fills, 2)
	assert.Equal(t, common.OrderID(1), fills[0].MakerID)
	assert.Equal(t, uint64(5), fills[0].Qty)
	assert.Equal(t, common.OrderID(2), fills[1].MakerID)
	assert.Equal(t, uint64(2), fills[1].Qty)
	assert.Equal(t, uint64(0), taker.Remaining)
}

func TestMatchStopsAtUntradableLevel(t *testing.T) {
	asks := book.NewAskBook()
	asks.Add(common.NewOrder(1, common.Sell, common.Limit, 100, 5))
	asks.Add(common.NewOrder(2, common.Sell, common.Limit, 105, 5))

	taker := common.NewOrder(3, common.Buy, common.Limit, 100, 10)
	fills := Match(taker, asks, false)

	assert.Len(t, fills, 1)
	assert.Equal(t, uint64(5), taker.Remaining)
	_, _, ok := asks.Best()
	assert.True(t, ok)
}

func TestMatchMarketOrderIgnoresPrice(t *testing.T) {
	asks := book.NewAskBook()
	asks.Add(common.NewOrder(1, common.Sell, common.Limit, 500, 3))

	taker := common.NewOrder(2, common.Buy, common.Market, 0, 3)
	fills := Match(taker, asks, true)

	assert.Len(t, fills, 1)
	assert.Equal(t, uint64(500), fills[0].Price)
	assert.Equal(t, uint64(0), taker.Remaining)
}

func TestMatchRemovesExhaustedLevelFromBook(t *testing.T) {
	asks := book.NewAskBook()
	asks.Add(common.NewOrder(1, common.Sell, common.Limit, 100, 5))

	taker := common.NewOrder(2, common.Buy, common.Limit, 100, 5)
	Match(taker, asks, false)

	assert.Equal(t, 0, asks.Len())
}
