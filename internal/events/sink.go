package events

import "github.com/rs/zerolog/log"

// LogSink implements EventSink by writing one structured zerolog line per
// event, in the style the teacher's server and worker pool log connection
// lifecycle events.
type LogSink struct{}

func (LogSink) Publish(e Event) {
	entry := log.Info().
		Uint64("seq", e.Seq).
		Str("kind", e.Kind.String())

	switch e.Kind {
	case OrderAccepted:
		entry.Uint64("order_id", uint64(e.OrderID)).Str("side", e.Side.String())
	case Trade:
		entry.
			Uint64("taker_id", uint64(e.OrderID)).
			Uint64("maker_id", uint64(e.CounterID)).
			Uint64("price", e.Price).
			Uint64("qty", e.Qty).
			Str("ref", e.Ref.String())
	case Resting:
		entry.Uint64("order_id", uint64(e.OrderID)).Uint64("price", e.Price).Uint64("remaining", e.Remaining)
	case Cancelled:
		entry.Uint64("order_id", uint64(e.OrderID)).Str("reason", e.Reason.String())
	case StopArmed:
		entry.Uint64("stop_id", uint64(e.StopID)).Uint64("stop_price", e.Price)
	case StopTriggered:
		entry.Uint64("stop_id", uint64(e.StopID)).Uint64("order_id", uint64(e.OrderID))
	case BookEmpty:
		entry.Str("side", e.Side.String())
	case Rejected:
		entry.Str("reason", e.Reason.String())
	}

	entry.Msg("engine event")
}

// FanoutSink publishes every event to each of its sinks in order, letting
// the engine stay unaware of how many observers are attached.
type FanoutSink struct {
	Sinks []EventSink
}

func (f FanoutSink) Publish(e Event) {
	for _, s := range f.Sinks {
		s.Publish(e)
	}
}

// RecordingSink accumulates every event it receives in memory. It is meant
// for tests, which assert against Events after driving the engine.
type RecordingSink struct {
	Events []Event
}

func (r *RecordingSink) Publish(e Event) {
	r.Events = append(r.Events, e)
}
