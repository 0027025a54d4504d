package matching

import "embermatch/internal/common"

// TriggerLoop drains a StopStore against the router's current
// last-trade-price after every trade-producing submission, per spec §4.5.
// A triggered stop can itself produce trades that arm the price further, so
// draining repeats on both sides until one full pass dequeues nothing —
// this is the cascade the source's single unclosed scan loop never
// correctly closed (spec §9).
type TriggerLoop struct {
	Stops  *StopStore
	Router *Router
}

// Drain repeatedly triggers the best-armed stop on either side until
// neither side has anything ready at the current last-trade-price. It must
// be called after every Router submission that may have moved
// last-trade-price, never interleaved within one.
func (t *TriggerLoop) Drain() {
	for {
		fired := false
		for _, side := range [...]common.Side{common.Buy, common.Sell} {
			last, known := t.Router.Prices.LastTradePrice()
			if !known {
				return
			}
			if stop, ok := t.Stops.DequeueTriggered(side, last); ok {
				t.Router.trigger(stop)
				fired = true
			}
		}
		if !fired {
			return
		}
	}
}
