package matching

import (
	"embermatch/internal/book"
	"embermatch/internal/common"
)

// Fill records one maker/taker pairing produced by a Match call. Price is
// always the maker's resting price, never the taker's limit, per spec §4.3.
type Fill struct {
	TakerID common.OrderID
	MakerID common.OrderID
	Price   uint64
	Qty     uint64
}

// Match walks opp best-first and fills taker against resting liquidity
// under price-time priority, mutating both taker and every maker order it
// touches. marketOrder disables the tradability check (a Market order
// accepts any price). It returns the fills generated, in generation order,
// and never mutates EngineState directly — the caller (OrderRouter) decides
// what the fills mean for last-trade-price and for resting/cancelling the
// taker's remainder.
func Match(taker *common.Order, opp *book.SideBook, marketOrder bool) []Fill {
	var fills []Fill

	it := opp.IterFromBest()
	for taker.Remaining > 0 && it.Next() {
		level := it.Level()
		if !book.Tradable(taker.Side, taker.Price, level.Price, marketOrder) {
			break
		}

		for !level.IsEmpty() && taker.Remaining > 0 {
			maker := level.Front()
			q := min(maker.Remaining, taker.Remaining)

			maker.Remaining -= q
			taker.Remaining -= q
			level.TotalQty -= q

			fills = append(fills, Fill{
				TakerID: taker.ID,
				MakerID: maker.ID,
				Price:   level.Price,
				Qty:     q,
			})

			invariant(maker.Remaining <= maker.Original, "maker remaining underflowed")
			invariant(taker.Remaining <= taker.Original, "taker remaining underflowed")

			if maker.Remaining == 0 {
				level.PopFront()
			}
		}

		if level.IsEmpty() {
			opp.RemoveLevel(level.Price)
		}
	}

	return fills
}
