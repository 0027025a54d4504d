// Package engine wires PriceLevel/SideBook/Matcher/OrderRouter/TriggerLoop
// into the single-threaded cooperative actor spec §5 describes: one
// goroutine owns EngineState end to end, requests arrive over a bounded
// channel, and no lock is ever taken inside the core.
package engine

import (
	"embermatch/internal/book"
	"embermatch/internal/common"
	"embermatch/internal/events"
	"embermatch/internal/matching"
)

// restLocation records where a resting order or armed stop lives, so
// Cancel can go straight to the right PriceLevel/stopLevel instead of
// scanning the book.
type restLocation struct {
	side  common.Side
	price uint64
}

// state is the engine's entire mutable core. Every field is touched only
// from the consumer loop goroutine (loop.go) — there is deliberately no
// mutex here, per spec §5.
type state struct {
	bids  *book.SideBook
	asks  *book.SideBook
	stops *matching.StopStore

	orderLocations map[common.OrderID]restLocation
	stopLocations  map[common.StopID]restLocation

	nextOrderID uint64
	nextStopID  uint64

	lastTrade  uint64
	tradeKnown bool

	router *matching.Router
	loop   *matching.TriggerLoop
}

func newState(sink events.EventSink) *state {
	s := &state{
		bids:           book.NewBidBook(),
		asks:           book.NewAskBook(),
		stops:          matching.NewStopStore(),
		orderLocations: make(map[common.OrderID]restLocation),
		stopLocations:  make(map[common.StopID]restLocation),
	}

	s.router = &matching.Router{
		Bids:   s.bids,
		Asks:   s.asks,
		Stops:  s.stops,
		IDs:    s,
		Prices: s,
		Sink:   sink,
		Seq:    &events.Sequencer{},
	}
	s.router.OnRest = func(id common.OrderID, side common.Side, price uint64) {
		s.orderLocations[id] = restLocation{side: side, price: price}
	}
	s.router.OnArm = func(id common.StopID, side common.Side, price uint64) {
		s.stopLocations[id] = restLocation{side: side, price: price}
	}
	s.loop = &matching.TriggerLoop{Stops: s.stops, Router: s.router}

	return s
}

// NextOrderID implements matching.IDAllocator.
func (s *state) NextOrderID() common.OrderID {
	s.nextOrderID++
	return common.OrderID(s.nextOrderID)
}

// NextStopID implements matching.IDAllocator.
func (s *state) NextStopID() common.StopID {
	s.nextStopID++
	return common.StopID(s.nextStopID)
}

// LastTradePrice implements matching.PriceTracker.
func (s *state) LastTradePrice() (uint64, bool) { return s.lastTrade, s.tradeKnown }

// SetLastTradePrice implements matching.PriceTracker.
func (s *state) SetLastTradePrice(p uint64) { s.lastTrade, s.tradeKnown = p, true }

func (s *state) cancelOrder(id common.OrderID) error {
	loc, ok := s.orderLocations[id]
	if !ok {
		return matching.ErrNotFound
	}
	delete(s.orderLocations, id)
	return s.router.CancelOrder(id, loc.side, loc.price)
}

func (s *state) cancelStop(id common.StopID) error {
	loc, ok := s.stopLocations[id]
	if !ok {
		return matching.ErrNotFound
	}
	delete(s.stopLocations, id)
	return s.router.CancelStop(id, loc.side, loc.price)
}

// depth reports up to maxLevels (price, aggregate_qty) pairs best-first for
// side, per the Query API in spec §6.
func (s *state) depth(side common.Side, maxLevels int) []DepthLevel {
	sb := s.sideBook(side)
	it := sb.IterFromBest()
	var out []DepthLevel
	for len(out) < maxLevels && it.Next() {
		lvl := it.Level()
		out = append(out, DepthLevel{Price: lvl.Price, Qty: lvl.TotalQuantity()})
	}
	return out
}

func (s *state) sideBook(side common.Side) *book.SideBook {
	if side == common.Buy {
		return s.bids
	}
	return s.asks
}

func (s *state) bestBid() (uint64, bool) {
	price, _, ok := s.bids.Best()
	return price, ok
}

func (s *state) bestAsk() (uint64, bool) {
	price, _, ok := s.asks.Best()
	return price, ok
}

func (s *state) spread() (uint64, bool) {
	bid, okBid := s.bestBid()
	ask, okAsk := s.bestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}
