package matching

import (
	"embermatch/internal/common"

	"github.com/tidwall/btree"
)

// stopLevel is a FIFO queue of stops armed at one stop price, mirroring
// book.PriceLevel's shape but for StopOrders instead of Orders.
type stopLevel struct {
	price uint64
	stops []*common.StopOrder
}

func (l *stopLevel) append(s *common.StopOrder) {
	l.stops = append(l.stops, s)
}

func (l *stopLevel) popFront() *common.StopOrder {
	if len(l.stops) == 0 {
		return nil
	}
	s := l.stops[0]
	l.stops[0] = nil
	l.stops = l.stops[1:]
	return s
}

func (l *stopLevel) isEmpty() bool {
	return len(l.stops) == 0
}

// remove deletes the stop with the given id from anywhere in the queue,
// reporting whether it was found.
func (l *stopLevel) remove(id common.StopID) bool {
	for i, s := range l.stops {
		if s.ID != id {
			continue
		}
		l.stops = append(l.stops[:i], l.stops[i+1:]...)
		return true
	}
	return false
}

// StopStore is a price-indexed collection of armed stop/stop-limit orders,
// kept as two side-ordered btrees — grounded on the same
// tidwall/btree-backed pattern as book.SideBook, reused here per spec §9's
// instruction to replace the source's disjoint, inconsistently-accessed
// stop maps with one coherent structure. Bids scan descending by stop
// price and asks ascending, so among the stops one last-trade-price has
// armed, the highest buy stop and the lowest sell stop fire first.
type StopStore struct {
	bidStops *btree.BTreeG[*stopLevel]
	askStops *btree.BTreeG[*stopLevel]
}

func NewStopStore() *StopStore {
	return &StopStore{
		bidStops: btree.NewBTreeG(func(a, b *stopLevel) bool { return a.price > b.price }),
		askStops: btree.NewBTreeG(func(a, b *stopLevel) bool { return a.price < b.price }),
	}
}

func (s *StopStore) treeFor(side common.Side) *btree.BTreeG[*stopLevel] {
	if side == common.Buy {
		return s.bidStops
	}
	return s.askStops
}

// Arm inserts a stop into the appropriate side's queue at its stop price,
// FIFO within price.
func (s *StopStore) Arm(stop *common.StopOrder) {
	tree := s.treeFor(stop.Side)
	level, ok := tree.GetMut(&stopLevel{price: stop.StopPrice})
	if !ok {
		level = &stopLevel{price: stop.StopPrice}
		level.append(stop)
		tree.Set(level)
		return
	}
	level.append(stop)
}

// Best returns the first stop level in side's scan order (highest buy stop,
// lowest sell stop) without removing it, or false if side's store is empty.
func (s *StopStore) Best(side common.Side) (*stopLevel, bool) {
	return s.treeFor(side).Min()
}

// DequeueTriggered pops the front stop from the first level, in side's scan
// order, whose price satisfies lastTrade under side's arming rule, removing
// the level once it empties. It returns (nil, false) when nothing is ready.
func (s *StopStore) DequeueTriggered(side common.Side, lastTrade uint64) (*common.StopOrder, bool) {
	tree := s.treeFor(side)
	var level *stopLevel
	tree.Scan(func(l *stopLevel) bool {
		if (side == common.Buy && lastTrade >= l.price) || (side != common.Buy && lastTrade <= l.price) {
			level = l
			return false
		}
		return true
	})
	if level == nil {
		return nil, false
	}

	stop := level.popFront()
	if level.isEmpty() {
		tree.Delete(&stopLevel{price: level.price})
	}
	return stop, true
}

// Cancel removes the armed stop with id at price on side, deleting the
// level too if that empties it. It reports whether id was found.
func (s *StopStore) Cancel(side common.Side, price uint64, id common.StopID) bool {
	tree := s.treeFor(side)
	level, ok := tree.GetMut(&stopLevel{price: price})
	if !ok {
		return false
	}
	if !level.remove(id) {
		return false
	}
	if level.isEmpty() {
		tree.Delete(&stopLevel{price: price})
	}
	return true
}
