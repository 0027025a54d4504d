package book

import (
	"embermatch/internal/common"

	"github.com/tidwall/btree"
)

// priceLevels is the teacher's PriceLevels = btree.BTreeG[*PriceLevel]
// alias, generalized to carry its own side-aware comparator instead of
// hard-coding bid/ask at the type level.
type priceLevels = btree.BTreeG[*PriceLevel]

// SideBook is a price-ordered collection of PriceLevels for one side of the
// market. The comparator passed to NewBidBook/NewAskBook fixes traversal
// order — descending for bids, ascending for asks — so "best" is always
// whatever the tree considers its minimum, with no key negation anywhere.
type SideBook struct {
	levels *priceLevels
}

// NewBidBook returns a SideBook ordered highest-price-first.
func NewBidBook() *SideBook {
	return &SideBook{levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price > b.Price
	})}
}

// NewAskBook returns a SideBook ordered lowest-price-first.
func NewAskBook() *SideBook {
	return &SideBook{levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price < b.Price
	})}
}

// Add finds or creates the PriceLevel for order.Price and appends order to
// it.
func (sb *SideBook) Add(order *common.Order) {
	level, ok := sb.levels.GetMut(&PriceLevel{Price: order.Price})
	if !ok {
		level = newPriceLevel(order.Price)
		level.Append(order)
		sb.levels.Set(level)
		return
	}
	level.Append(order)
}

// Best returns the first (price, level) in best-first order, or
// (0, nil, false) if the book is empty.
func (sb *SideBook) Best() (uint64, *PriceLevel, bool) {
	level, ok := sb.levels.Min()
	if !ok {
		return 0, nil, false
	}
	return level.Price, level, true
}

// RemoveLevel deletes the level at price. A no-op if none exists.
func (sb *SideBook) RemoveLevel(price uint64) {
	sb.levels.Delete(&PriceLevel{Price: price})
}

// RemoveOrder cancels the order with id out of the level at price, deleting
// the level too if that empties it. It reports whether id was found.
func (sb *SideBook) RemoveOrder(price uint64, id common.OrderID) bool {
	level, ok := sb.levels.GetMut(&PriceLevel{Price: price})
	if !ok {
		return false
	}
	if !level.Remove(id) {
		return false
	}
	if level.IsEmpty() {
		sb.RemoveLevel(price)
	}
	return true
}

// Len reports the number of distinct price levels.
func (sb *SideBook) Len() int {
	return sb.levels.Len()
}

// IterFromBest returns a restartable best-first sequence of levels, taken
// as a snapshot at call time via Scan so a Matcher walk is never disturbed
// by RemoveLevel calls it triggers on the very levels already visited.
func (sb *SideBook) IterFromBest() *LevelIterator {
	snapshot := make([]*PriceLevel, 0, sb.levels.Len())
	sb.levels.Scan(func(level *PriceLevel) bool {
		snapshot = append(snapshot, level)
		return true
	})
	return &LevelIterator{levels: snapshot, idx: -1}
}

// LevelIterator walks a SideBook snapshot best-first. Call Next until it
// returns false; Level is only valid after a true-returning Next.
type LevelIterator struct {
	levels []*PriceLevel
	idx    int
}

func (it *LevelIterator) Next() bool {
	it.idx++
	return it.idx < len(it.levels)
}

func (it *LevelIterator) Level() *PriceLevel {
	return it.levels[it.idx]
}

// Tradable reports whether a level at levelPrice can trade against a taker
// on takerSide holding limit (ignored for market orders, pass marketOrder
// true). For a Buy taker, an Ask level at P is tradable iff P <= limit; for
// a Sell taker, a Bid level at P is tradable iff P >= limit.
func Tradable(takerSide common.Side, limit uint64, levelPrice uint64, marketOrder bool) bool {
	if marketOrder {
		return true
	}
	if takerSide == common.Buy {
		return levelPrice <= limit
	}
	return levelPrice >= limit
}

// LiquidityUpTo walks this book best-first, summing TotalQuantity across
// levels tradable against limit for a taker on takerSide, stopping as soon
// as the cumulative sum reaches targetQty. It never mutates the book.
func (sb *SideBook) LiquidityUpTo(takerSide common.Side, limit, targetQty uint64) (levelsTouched int, cumulativeQty uint64) {
	it := sb.IterFromBest()
	for it.Next() {
		level := it.Level()
		if !Tradable(takerSide, limit, level.Price, false) {
			break
		}
		levelsTouched++
		cumulativeQty += level.TotalQuantity()
		if cumulativeQty >= targetQty {
			return levelsTouched, cumulativeQty
		}
	}
	return levelsTouched, cumulativeQty
}
