package common

import "fmt"

// StopOrder is an armed stop/stop-limit order sitting in a StopStore queue.
// Its id namespace is disjoint from Order's. It is destroyed the moment it
// triggers (becoming a fresh Order) or is explicitly cancelled.
type StopOrder struct {
	ID         StopID
	Side       Side
	StopPrice  uint64
	Quantity   uint64
	Mode       StopMode
	LimitPrice uint64 // only meaningful when Mode == TriggerLimit
}

func (s *StopOrder) String() string {
	if s.Mode == TriggerLimit {
		return fmt.Sprintf("StopOrder[id=%d side=%s stop=%d qty=%d mode=%s limit=%d]",
			s.ID, s.Side, s.StopPrice, s.Quantity, s.Mode, s.LimitPrice)
	}
	return fmt.Sprintf("StopOrder[id=%d side=%s stop=%d qty=%d mode=%s]",
		s.ID, s.Side, s.StopPrice, s.Quantity, s.Mode)
}

// Armed reports whether lastTrade already satisfies this stop's trigger
// condition: a Buy stop arms when the market has risen to or above its
// stop price; a Sell stop arms when the market has fallen to or below it.
func (s *StopOrder) Armed(lastTrade uint64) bool {
	if s.Side == Buy {
		return lastTrade >= s.StopPrice
	}
	return lastTrade <= s.StopPrice
}
