package book

import (
	"testing"

	"embermatch/internal/common"

	"github.com/stretchr/testify/assert"
)

func TestBidBookBestFirstOrdering(t *testing.T) {
	bids := NewBidBook()
	bids.Add(common.NewOrder(1, common.Buy, common.Limit, 99, 5))
	bids.Add(common.NewOrder(2, common.Buy, common.Limit, 101, 5))
	bids.Add(common.NewOrder(3, common.Buy, common.Limit, 100, 5))

	price, _, ok := bids.Best()
	assert.True(t, ok)
	assert.Equal(t, uint64(101), price, "best bid is the highest price")

	var seen []uint64
	it := bids.IterFromBest()
	for it.Next() {
		seen = append(seen, it.Level().Price)
	}
	assert.Equal(t, []uint64{101, 100, 99}, seen)
}

func TestAskBookBestFirstOrdering(t *testing.T) {
	asks := NewAskBook()
	asks.Add(common.NewOrder(1, common.Sell, common.Limit, 105, 5))
	asks.Add(common.NewOrder(2, common.Sell, common.Limit, 101, 5))

	price, _, ok := asks.Best()
	assert.True(t, ok)
	assert.Equal(t, uint64(101), price, "best ask is the lowest price")
}

func TestRemoveLevelLeavesNoEmptyLevel(t *testing.T) {
	asks := NewAskBook()
	asks.Add(common.NewOrder(1, common.Sell, common.Limit, 100, 5))
	assert.Equal(t, 1, asks.Len())

	asks.RemoveLevel(100)
	assert.Equal(t, 0, asks.Len())
	_, _, ok := asks.Best()
	assert.False(t, ok)
}

func TestRemoveOrderDeletesLevelOnceEmptied(t *testing.T) {
	bids := NewBidBook()
	bids.Add(common.NewOrder(1, common.Buy, common.Limit, 100, 5))

	assert.True(t, bids.RemoveOrder(100, 1))
	assert.Equal(t, 0, bids.Len())
	assert.False(t, bids.RemoveOrder(100, 1), "already removed")
}

func TestRemoveOrderLeavesSiblingsAtSameLevel(t *testing.T) {
	bids := NewBidBook()
	bids.Add(common.NewOrder(1, common.Buy, common.Limit, 100, 5))
	bids.Add(common.NewOrder(2, common.Buy, common.Limit, 100, 5))

	assert.True(t, bids.RemoveOrder(100, 1))
	_, level, ok := bids.Best()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), level.TotalQuantity())
	assert.Equal(t, common.OrderID(2), level.Front().ID)
}

func TestLiquidityUpToStopsEarly(t *testing.T) {
	asks := NewAskBook()
	asks.Add(common.NewOrder(1, common.Sell, common.Limit, 101, 2))
	asks.Add(common.NewOrder(2, common.Sell, common.Limit, 102, 2))
	asks.Add(common.NewOrder(3, common.Sell, common.Limit, 103, 10))

	levels, qty := asks.LiquidityUpTo(common.Buy, 102, 3)
	assert.Equal(t, 2, levels, "should stop after the second tradable level")
	assert.Equal(t, uint64(4), qty)

	levels, qty = asks.LiquidityUpTo(common.Buy, 101, 10)
	assert.Equal(t, 1, levels, "level at 102 is not tradable against a limit of 101")
	assert.Equal(t, uint64(2), qty)
}
