package matching

import (
	"testing"

	"embermatch/internal/book"
	"embermatch/internal/common"
	"embermatch/internal/events"

	"github.com/stretchr/testify/assert"
)

// testIDs is a trivial IDAllocator for tests, disjoint order/stop counters
// starting at 1.
type testIDs struct {
	order uint64
	stop  uint64
}

func (t *testIDs) NextOrderID() common.OrderID {
	t.order++
	return common.OrderID(t.order)
}

func (t *testIDs) NextStopID() common.StopID {
	t.stop++
	return common.StopID(t.stop)
}

// testPrices is a trivial PriceTracker for tests.
type testPrices struct {
	price uint64
	known bool
}

func (p *testPrices) LastTradePrice() (uint64, bool) { return p.price, p.known }
func (p *testPrices) SetLastTradePrice(price uint64) { p.price, p.known = price, true }

func newTestRouter() (*Router, *events.RecordingSink) {
	sink := &events.RecordingSink{}
	r := &Router{
		Bids:   book.NewBidBook(),
		Asks:   book.NewAskBook(),
		Stops:  NewStopStore(),
		IDs:    &testIDs{},
		Prices: &testPrices{},
		Sink:   sink,
		Seq:    &events.Sequencer{},
	}
	return r, sink
}

func kinds(sink *events.RecordingSink) []events.Kind {
	ks := make([]events.Kind, len(sink.Events))
	for i, e := range sink.Events {
		ks[i] = e.Kind
	}
	return ks
}

func TestSubmitLimitRestsWhenBookIsEmpty(t *testing.T) {
	r, sink := newTestRouter()

	id, err := r.SubmitLimit(common.Buy, 100, 10)
	assert.NoError(t, err)
	assert.Equal(t, common.OrderID(1), id)
	assert.Equal(t, []events.Kind{events.OrderAccepted, events.Resting}, kinds(sink))
	assert.Equal(t, 1, r.Bids.Len())
}

func TestSubmitLimitMatchesAgainstRestingOrder(t *testing.T) {
	r, sink := newTestRouter()
	_, _ = r.SubmitLimit(common.Sell, 100, 10)
	sink.Events = nil

	id, err := r.SubmitLimit(common.Buy, 100, 10)
	assert.NoError(t, err)
	assert.Equal(t, []events.Kind{events.OrderAccepted, events.Trade}, kinds(sink))
	assert.Equal(t, 0, r.Asks.Len())
	_ = id
}

func TestSubmitLimitRejectsZeroPrice(t *testing.T) {
	r, _ := newTestRouter()
	_, err := r.SubmitLimit(common.Buy, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSubmitLimitRejectsZeroQuantity(t *testing.T) {
	r, _ := newTestRouter()
	_, err := r.SubmitLimit(common.Buy, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSubmitMarketFailsFastOnEmptyBook(t *testing.T) {
	r, _ := newTestRouter()
	_, err := r.SubmitMarket(common.Buy, 10)
	assert.ErrorIs(t, err, ErrNoLiquidity)
}

func TestSubmitMarketCancelsUnfilledRemainder(t *testing.T) {
	r, sink := newTestRouter()
	_, _ = r.SubmitLimit(common.Sell, 100, 5)
	sink.Events = nil

	_, err := r.SubmitMarket(common.Buy, 10)
	assert.NoError(t, err)
	assert.Equal(t, []events.Kind{events.OrderAccepted, events.Trade, events.Cancelled}, kinds(sink))
}

func TestSubmitFOKKillsWithoutMutatingBookWhenLiquidityInsufficient(t *testing.T) {
	r, sink := newTestRouter()
	_, _ = r.SubmitLimit(common.Sell, 100, 3)
	sink.Events = nil

	_, err := r.SubmitFOK(common.Buy, 100, 10)
	assert.NoError(t, err)
	assert.Equal(t, []events.Kind{events.Cancelled}, kinds(sink))
	assert.Equal(t, 1, r.Asks.Len())
	_, level, _ := r.Asks.Best()
	assert.Equal(t, uint64(3), level.TotalQuantity())
}

func TestSubmitFOKFillsAcrossMultipleLevelsWhenLiquiditySufficient(t *testing.T) {
	r, sink := newTestRouter()
	_, _ = r.SubmitLimit(common.Sell, 100, 5)
	_, _ = r.SubmitLimit(common.Sell, 101, 5)
	sink.Events = nil

	_, err := r.SubmitFOK(common.Buy, 101, 10)
	assert.NoError(t, err)
	assert.Contains(t, kinds(sink), events.Trade)
	assert.Equal(t, 0, r.Asks.Len())
}

func TestSubmitIOCCancelsRemainderInsteadOfResting(t *testing.T) {
	r, sink := newTestRouter()
	_, _ = r.SubmitLimit(common.Sell, 100, 3)
	sink.Events = nil

	_, err := r.SubmitIOC(common.Buy, 100, 10)
	assert.NoError(t, err)
	assert.Equal(t, []events.Kind{events.OrderAccepted, events.Trade, events.Cancelled}, kinds(sink))
	assert.Equal(t, 0, r.Bids.Len())
}

func TestSubmitStopArmsWhenNotYetTriggerable(t *testing.T) {
	r, sink := newTestRouter()
	_, err := r.SubmitStop(common.Buy, 110, 5, common.TriggerMarket, 0)
	assert.NoError(t, err)
	assert.Equal(t, []events.Kind{events.StopArmed}, kinds(sink))
}

func TestSubmitStopTriggersImmediatelyWhenAlreadyArmed(t *testing.T) {
	r, sink := newTestRouter()
	_, _ = r.SubmitLimit(common.Sell, 100, 10)
	r.Prices.SetLastTradePrice(0)
	sink.Events = nil

	// Set last-trade-price to 110 directly on the tracker (no trade), then
	// submit a buy-stop whose trigger condition that price already satisfies.
	r.Prices.(*testPrices).price = 110
	r.Prices.(*testPrices).known = true

	_, err := r.SubmitStop(common.Buy, 100, 5, common.TriggerMarket, 0)
	assert.NoError(t, err)
	assert.Contains(t, kinds(sink), events.StopTriggered)
}

func TestSubmitStopRejectsUnknownMode(t *testing.T) {
	r, _ := newTestRouter()
	_, err := r.SubmitStop(common.Buy, 100, 5, common.StopMode(99), 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
