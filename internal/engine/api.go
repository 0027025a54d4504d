package engine

import (
	"context"
	"fmt"

	"embermatch/internal/common"
)

// SubmitLimit implements the Limit arm of the Submit API (spec §6): match
// immediately against the opposing book, then rest any remainder.
func (e *Engine) SubmitLimit(ctx context.Context, side common.Side, price, qty uint64) (common.OrderID, error) {
	reply := make(chan submitReply, 1)
	if err := e.send(ctx, submitLimitReq{side: side, price: price, qty: qty, reply: reply}); err != nil {
		return 0, err
	}
	r, err := recv(ctx, reply)
	if err != nil {
		return 0, err
	}
	return r.id, r.err
}

// SubmitMarket implements the Market arm of the Submit API.
func (e *Engine) SubmitMarket(ctx context.Context, side common.Side, qty uint64) (common.OrderID, error) {
	reply := make(chan submitReply, 1)
	if err := e.send(ctx, submitMarketReq{side: side, qty: qty, reply: reply}); err != nil {
		return 0, err
	}
	r, err := recv(ctx, reply)
	if err != nil {
		return 0, err
	}
	return r.id, r.err
}

// SubmitFOK implements the Fok arm of the Submit API.
func (e *Engine) SubmitFOK(ctx context.Context, side common.Side, price, qty uint64) (common.OrderID, error) {
	reply := make(chan submitReply, 1)
	if err := e.send(ctx, submitFOKReq{side: side, price: price, qty: qty, reply: reply}); err != nil {
		return 0, err
	}
	r, err := recv(ctx, reply)
	if err != nil {
		return 0, err
	}
	return r.id, r.err
}

// SubmitIOC implements the Ioc arm of the Submit API.
func (e *Engine) SubmitIOC(ctx context.Context, side common.Side, price, qty uint64) (common.OrderID, error) {
	reply := make(chan submitReply, 1)
	if err := e.send(ctx, submitIOCReq{side: side, price: price, qty: qty, reply: reply}); err != nil {
		return 0, err
	}
	r, err := recv(ctx, reply)
	if err != nil {
		return 0, err
	}
	return r.id, r.err
}

// SubmitStop implements the Stop arm of the Submit API. mode selects
// Market-on-trigger or Limit-on-trigger; limitPrice is ignored unless mode
// is common.TriggerLimit.
func (e *Engine) SubmitStop(ctx context.Context, side common.Side, stopPrice, qty uint64, mode common.StopMode, limitPrice uint64) (common.StopID, error) {
	reply := make(chan submitStopReply, 1)
	if err := e.send(ctx, submitStopReq{side: side, stopPrice: stopPrice, qty: qty, mode: mode, limitPrice: limitPrice, reply: reply}); err != nil {
		return 0, err
	}
	r, err := recv(ctx, reply)
	if err != nil {
		return 0, err
	}
	return r.id, r.err
}

// CancelOrder implements the Cancel{OrderId} arm of the Submit API.
func (e *Engine) CancelOrder(ctx context.Context, id common.OrderID) error {
	reply := make(chan error, 1)
	if err := e.send(ctx, cancelOrderReq{id: id, reply: reply}); err != nil {
		return err
	}
	return recvErr(ctx, reply)
}

// CancelStop implements the Cancel{StopId} arm of the Submit API.
func (e *Engine) CancelStop(ctx context.Context, id common.StopID) error {
	reply := make(chan error, 1)
	if err := e.send(ctx, cancelStopReq{id: id, reply: reply}); err != nil {
		return err
	}
	return recvErr(ctx, reply)
}

// BestBid returns the highest resting bid price, or false if the bid book
// is empty.
func (e *Engine) BestBid(ctx context.Context) (uint64, bool, error) {
	v, err := e.query(ctx, func(s *state) any {
		price, ok := s.bestBid()
		return [2]any{price, ok}
	})
	if err != nil {
		return 0, false, err
	}
	arr := v.([2]any)
	return arr[0].(uint64), arr[1].(bool), nil
}

// BestAsk returns the lowest resting ask price, or false if the ask book
// is empty.
func (e *Engine) BestAsk(ctx context.Context) (uint64, bool, error) {
	v, err := e.query(ctx, func(s *state) any {
		price, ok := s.bestAsk()
		return [2]any{price, ok}
	})
	if err != nil {
		return 0, false, err
	}
	arr := v.([2]any)
	return arr[0].(uint64), arr[1].(bool), nil
}

// Depth returns up to maxLevels (price, aggregate_qty) pairs best-first for
// side.
func (e *Engine) Depth(ctx context.Context, side common.Side, maxLevels int) ([]DepthLevel, error) {
	v, err := e.query(ctx, func(s *state) any {
		return s.depth(side, maxLevels)
	})
	if err != nil {
		return nil, err
	}
	return v.([]DepthLevel), nil
}

// Spread returns best_ask - best_bid, or false if either side is empty.
func (e *Engine) Spread(ctx context.Context) (uint64, bool, error) {
	v, err := e.query(ctx, func(s *state) any {
		spread, ok := s.spread()
		return [2]any{spread, ok}
	})
	if err != nil {
		return 0, false, err
	}
	arr := v.([2]any)
	return arr[0].(uint64), arr[1].(bool), nil
}

// LastTradePrice returns the most recent trade price, or false if no trade
// has occurred yet.
func (e *Engine) LastTradePrice(ctx context.Context) (uint64, bool, error) {
	v, err := e.query(ctx, func(s *state) any {
		price, known := s.LastTradePrice()
		return [2]any{price, known}
	})
	if err != nil {
		return 0, false, err
	}
	arr := v.([2]any)
	return arr[0].(uint64), arr[1].(bool), nil
}

func (e *Engine) query(ctx context.Context, fn func(*state) any) (any, error) {
	reply := make(chan any, 1)
	if err := e.send(ctx, queryReq{fn: fn, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.t.Dying():
		return nil, fmt.Errorf("engine is shutting down")
	case v := <-reply:
		return v, nil
	}
}

func (e *Engine) send(ctx context.Context, req request) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.t.Dying():
		return fmt.Errorf("engine is shutting down")
	case e.requests <- req:
		return nil
	}
}

func recv[T any](ctx context.Context, reply <-chan T) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-reply:
		return r, nil
	}
}

func recvErr(ctx context.Context, reply <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-reply:
		return err
	}
}
