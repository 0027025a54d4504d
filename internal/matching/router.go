package matching

import (
	"errors"
	"fmt"

	"embermatch/internal/book"
	"embermatch/internal/common"
	"embermatch/internal/events"

	"github.com/google/uuid"
)

// IDAllocator hands out fresh, monotonically increasing ids from disjoint
// order/stop namespaces. EngineState is the only implementation.
type IDAllocator interface {
	NextOrderID() common.OrderID
	NextStopID() common.StopID
}

// PriceTracker exposes the engine's last-trade-price, the sole signal that
// drives stop arming and triggering.
type PriceTracker interface {
	LastTradePrice() (uint64, bool)
	SetLastTradePrice(uint64)
}

// Router dispatches each inbound request to the matching policy for its
// order type (spec §4.4). It owns no state of its own beyond what is wired
// in at construction — EngineState is the sole owner of the books, the
// stop store, the id counters, and the last-trade-price.
type Router struct {
	Bids   *book.SideBook
	Asks   *book.SideBook
	Stops  *StopStore
	IDs    IDAllocator
	Prices PriceTracker
	Sink   events.EventSink
	Seq    *events.Sequencer

	// OnRest and OnArm, if set, are called whenever an order starts
	// resting in a SideBook or a stop starts being armed in the StopStore.
	// EngineState uses these to maintain the side/price index that makes
	// CancelOrder/CancelStop lookups possible without scanning the books.
	OnRest func(id common.OrderID, side common.Side, price uint64)
	OnArm  func(id common.StopID, side common.Side, price uint64)
}

func (r *Router) books(side common.Side) (own, opp *book.SideBook) {
	if side == common.Buy {
		return r.Bids, r.Asks
	}
	return r.Asks, r.Bids
}

func (r *Router) publish(e events.Event) {
	e.Seq = r.Seq.Next()
	r.Sink.Publish(e)
}

// recordFills publishes a Trade event per fill and updates last-trade-price
// to the final fill's price, per spec §4.3.
func (r *Router) recordFills(fills []Fill) {
	for _, f := range fills {
		r.publish(events.Event{
			Kind:      events.Trade,
			Ref:       uuid.New(),
			OrderID:   f.TakerID,
			CounterID: f.MakerID,
			Price:     f.Price,
			Qty:       f.Qty,
		})
	}
	if len(fills) > 0 {
		r.Prices.SetLastTradePrice(fills[len(fills)-1].Price)
	}
}

func validateCommon(side common.Side, qty uint64) error {
	if side != common.Buy && side != common.Sell {
		return fmt.Errorf("%w: unknown side %d", ErrInvalidRequest, side)
	}
	if qty == 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidRequest)
	}
	return nil
}

// SubmitLimit implements spec §4.4's Limit policy: match first, rest any
// remainder in the order's own book.
func (r *Router) SubmitLimit(side common.Side, price, qty uint64) (common.OrderID, error) {
	if err := validateCommon(side, qty); err != nil {
		return 0, err
	}
	if price == 0 {
		return 0, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}

	id := r.IDs.NextOrderID()
	taker := common.NewOrder(id, side, common.Limit, price, qty)
	r.publish(events.Event{Kind: events.OrderAccepted, OrderID: id, Side: side, Price: price, Qty: qty})

	own, opp := r.books(side)
	fills := Match(taker, opp, false)
	r.recordFills(fills)

	if taker.Remaining > 0 {
		own.Add(taker)
		r.publish(events.Event{Kind: events.Resting, OrderID: id, Price: price, Remaining: taker.Remaining})
		if r.OnRest != nil {
			r.OnRest(id, side, price)
		}
	}
	return id, nil
}

// SubmitMarket implements spec §4.4's Market policy: fail fast on an empty
// opposing book; otherwise match with unlimited price tolerance and cancel
// any quantity the book could not cover.
func (r *Router) SubmitMarket(side common.Side, qty uint64) (common.OrderID, error) {
	if err := validateCommon(side, qty); err != nil {
		return 0, err
	}

	_, opp := r.books(side)
	if _, _, ok := opp.Best(); !ok {
		return 0, fmt.Errorf("%w: opposing book is empty", ErrNoLiquidity)
	}

	id := r.IDs.NextOrderID()
	taker := common.NewOrder(id, side, common.Market, 0, qty)
	r.publish(events.Event{Kind: events.OrderAccepted, OrderID: id, Side: side, Qty: qty})

	fills := Match(taker, opp, true)
	r.recordFills(fills)

	if taker.Remaining > 0 {
		r.publish(events.Event{Kind: events.Cancelled, OrderID: id, Reason: events.ReasonNoLiquidity, Remaining: taker.Remaining})
	}
	return id, nil
}

// SubmitFOK implements spec §4.4's Fill-or-Kill policy: probe liquidity
// read-only before any mutation, then execute only if the probe guarantees
// a full fill.
func (r *Router) SubmitFOK(side common.Side, price, qty uint64) (common.OrderID, error) {
	if err := validateCommon(side, qty); err != nil {
		return 0, err
	}
	if price == 0 {
		return 0, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}

	id := r.IDs.NextOrderID()
	_, opp := r.books(side)

	_, cumulative := opp.LiquidityUpTo(side, price, qty)
	if cumulative < qty {
		r.publish(events.Event{Kind: events.Cancelled, OrderID: id, Reason: events.ReasonInsufficientLiquidity, Remaining: qty})
		return id, nil
	}

	taker := common.NewOrder(id, side, common.FOK, price, qty)
	r.publish(events.Event{Kind: events.OrderAccepted, OrderID: id, Side: side, Price: price, Qty: qty})

	fills := Match(taker, opp, false)
	r.recordFills(fills)

	invariant(taker.Remaining == 0, "FOK probe guaranteed a full fill but execution left a remainder")
	return id, nil
}

// SubmitIOC implements spec §4.4's Immediate-or-Cancel policy: match once,
// never rest any remainder.
func (r *Router) SubmitIOC(side common.Side, price, qty uint64) (common.OrderID, error) {
	if err := validateCommon(side, qty); err != nil {
		return 0, err
	}
	if price == 0 {
		return 0, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}

	id := r.IDs.NextOrderID()
	taker := common.NewOrder(id, side, common.IOC, price, qty)
	r.publish(events.Event{Kind: events.OrderAccepted, OrderID: id, Side: side, Price: price, Qty: qty})

	_, opp := r.books(side)
	fills := Match(taker, opp, false)
	r.recordFills(fills)

	if taker.Remaining > 0 {
		r.publish(events.Event{Kind: events.Cancelled, OrderID: id, Reason: events.ReasonNoMatch, Remaining: taker.Remaining})
	}
	return id, nil
}

// SubmitStop implements spec §4.4's Stop/StopLimit policy: trigger
// immediately if already armed by the known last-trade-price, otherwise
// arm it in the StopStore for TriggerLoop to find later.
func (r *Router) SubmitStop(side common.Side, stopPrice, qty uint64, mode common.StopMode, limitPrice uint64) (common.StopID, error) {
	if err := validateCommon(side, qty); err != nil {
		return 0, err
	}
	if stopPrice == 0 {
		return 0, fmt.Errorf("%w: stop price must be positive", ErrInvalidRequest)
	}
	if mode != common.TriggerMarket && mode != common.TriggerLimit {
		return 0, fmt.Errorf("%w: unknown stop mode %d", ErrInvalidRequest, mode)
	}
	if mode == common.TriggerLimit && limitPrice == 0 {
		return 0, fmt.Errorf("%w: limit price must be positive", ErrInvalidRequest)
	}

	stopID := r.IDs.NextStopID()
	stop := &common.StopOrder{ID: stopID, Side: side, StopPrice: stopPrice, Quantity: qty, Mode: mode, LimitPrice: limitPrice}

	if last, known := r.Prices.LastTradePrice(); known && stop.Armed(last) {
		r.trigger(stop)
		return stopID, nil
	}

	r.Stops.Arm(stop)
	r.publish(events.Event{Kind: events.StopArmed, StopID: stopID, Side: side, Price: stopPrice})
	if r.OnArm != nil {
		r.OnArm(stopID, side, stopPrice)
	}
	return stopID, nil
}

// CancelOrder cancels a resting order previously reported at side/price via
// OnRest. It returns ErrNotFound if no such order is currently resting
// there — already filled, already cancelled, or never rested at all.
func (r *Router) CancelOrder(id common.OrderID, side common.Side, price uint64) error {
	own, _ := r.books(side)
	if !own.RemoveOrder(price, id) {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	r.publish(events.Event{Kind: events.Cancelled, OrderID: id, Reason: events.ReasonRequested, Price: price})
	return nil
}

// CancelStop cancels an armed stop previously reported at side/price via
// OnArm. It returns ErrNotFound if no such stop is currently armed there.
func (r *Router) CancelStop(id common.StopID, side common.Side, price uint64) error {
	if !r.Stops.Cancel(side, price, id) {
		return fmt.Errorf("%w: stop %d", ErrNotFound, id)
	}
	r.publish(events.Event{Kind: events.Cancelled, StopID: id, Reason: events.ReasonRequested, Price: price})
	return nil
}

// trigger converts an armed stop into a fresh Market or Limit order,
// consuming a regular order id, and re-enters the router. A triggered
// Market leg can legitimately find the opposing book empty by the time it
// fires — that is a market condition, not a bug, and is reported as
// Rejected rather than treated as an internal invariant violation.
func (r *Router) trigger(stop *common.StopOrder) {
	r.publish(events.Event{Kind: events.StopTriggered, StopID: stop.ID, Side: stop.Side, Qty: stop.Quantity})

	var err error
	switch stop.Mode {
	case common.TriggerMarket:
		_, err = r.SubmitMarket(stop.Side, stop.Quantity)
	case common.TriggerLimit:
		_, err = r.SubmitLimit(stop.Side, stop.LimitPrice, stop.Quantity)
	}
	switch {
	case err == nil:
	case errors.Is(err, ErrNoLiquidity):
		r.publish(events.Event{Kind: events.Rejected, StopID: stop.ID, Reason: events.ReasonNoLiquidity})
	default:
		// SubmitStop already validated side/qty/price/mode at arming time,
		// so any other error here means that validation and triggering have
		// fallen out of sync — a bug worth a hard abort to find quickly.
		invariant(false, fmt.Sprintf("triggered stop %d failed to submit: %v", stop.ID, err))
	}
}
