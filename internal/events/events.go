// Package events defines the engine's output event grammar (spec §4.6) and
// the EventSink consumer interface. Event naming is grounded on the
// other_examples femto-style EventType enum (ORDER_EVENT, EXECUTION_EVENT,
// REJECT_EVENT, ...), generalized to the richer grammar this engine needs.
package events

import (
	"sync/atomic"

	"embermatch/internal/common"

	"github.com/google/uuid"
)

// Kind identifies which fields of an Event are populated.
type Kind uint8

const (
	OrderAccepted Kind = iota
	Trade
	Resting
	Cancelled
	StopArmed
	StopTriggered
	BookEmpty
	Rejected
)

func (k Kind) String() string {
	switch k {
	case OrderAccepted:
		return "ORDER_ACCEPTED"
	case Trade:
		return "TRADE"
	case Resting:
		return "RESTING"
	case Cancelled:
		return "CANCELLED"
	case StopArmed:
		return "STOP_ARMED"
	case StopTriggered:
		return "STOP_TRIGGERED"
	case BookEmpty:
		return "BOOK_EMPTY"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Reason qualifies Cancelled and Rejected events per spec §7's taxonomy.
type Reason uint8

const (
	NoReason Reason = iota
	ReasonInsufficientLiquidity
	ReasonNoMatch
	ReasonInvalidRequest
	ReasonNoLiquidity
	ReasonNotFound
	ReasonRequested
)

func (r Reason) String() string {
	switch r {
	case ReasonInsufficientLiquidity:
		return "INSUFFICIENT_LIQUIDITY"
	case ReasonNoMatch:
		return "NO_MATCH"
	case ReasonInvalidRequest:
		return "INVALID_REQUEST"
	case ReasonNoLiquidity:
		return "NO_LIQUIDITY"
	case ReasonNotFound:
		return "NOT_FOUND"
	case ReasonRequested:
		return "REQUESTED"
	default:
		return "NONE"
	}
}

// Event is a tagged union over the engine's output grammar. Only the fields
// relevant to Kind are populated; the rest are zero.
type Event struct {
	Seq    uint64
	Kind   Kind
	Ref    uuid.UUID // trade correlation id; zero value for non-Trade events

	OrderID    common.OrderID
	CounterID  common.OrderID // maker id on a Trade, counterparty otherwise unused
	StopID     common.StopID
	Side       common.Side
	Price      uint64
	Qty        uint64
	Remaining  uint64
	Reason     Reason
}

// Sequencer assigns contiguous, strictly increasing sequence numbers to
// events. Shared by every producer feeding a given EngineState, but in
// practice only the single consumer goroutine ever calls Next.
type Sequencer struct {
	next atomic.Uint64
}

// Next returns the next sequence number, starting at 1.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// EventSink receives events in the order the engine generates them.
// Implementations are pure consumers — the engine never reads back from a
// sink — and are invoked synchronously from the engine's single consumer
// goroutine, so a sink that must not block the engine is responsible for
// buffering internally.
type EventSink interface {
	Publish(Event)
}
