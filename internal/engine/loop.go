package engine

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"embermatch/internal/events"
)

// requestChanSize bounds the producer/consumer queue spec §5 describes.
// Producers block once it fills — the engine never drops a request.
const requestChanSize = 256

// Engine is the single-threaded cooperative matching engine. Every
// mutating and read operation is funneled through one consumer goroutine,
// collapsing the teacher's WorkerPool down to exactly one worker since
// spec §5 forbids any concurrency inside the core.
type Engine struct {
	requests chan request
	t        *tomb.Tomb
}

// New starts the engine's consumer goroutine, publishing every event it
// generates to sink. Call Close to stop it.
func New(sink events.EventSink) *Engine {
	e := &Engine{
		requests: make(chan request, requestChanSize),
		t:        new(tomb.Tomb),
	}
	s := newState(sink)
	e.t.Go(func() error {
		return e.run(s)
	})
	return e
}

// Close signals the consumer goroutine to stop after draining no further
// requests and waits for it to exit.
func (e *Engine) Close() error {
	e.t.Kill(nil)
	return e.t.Wait()
}

func (e *Engine) run(s *state) error {
	log.Info().Msg("engine consumer loop starting")
	for {
		select {
		case <-e.t.Dying():
			log.Info().Msg("engine consumer loop stopping")
			return nil
		case req := <-e.requests:
			e.apply(s, req)
		}
	}
}

// apply executes one request to completion against s and replies. Nothing
// here may block or hand control back to another request mid-match, per
// spec §5.
func (e *Engine) apply(s *state, req request) {
	switch r := req.(type) {
	case submitLimitReq:
		id, err := s.router.SubmitLimit(r.side, r.price, r.qty)
		if err == nil {
			s.loop.Drain()
		}
		r.reply <- submitReply{id: id, err: err}

	case submitMarketReq:
		id, err := s.router.SubmitMarket(r.side, r.qty)
		if err == nil {
			s.loop.Drain()
		}
		r.reply <- submitReply{id: id, err: err}

	case submitFOKReq:
		id, err := s.router.SubmitFOK(r.side, r.price, r.qty)
		if err == nil {
			s.loop.Drain()
		}
		r.reply <- submitReply{id: id, err: err}

	case submitIOCReq:
		id, err := s.router.SubmitIOC(r.side, r.price, r.qty)
		if err == nil {
			s.loop.Drain()
		}
		r.reply <- submitReply{id: id, err: err}

	case submitStopReq:
		id, err := s.router.SubmitStop(r.side, r.stopPrice, r.qty, r.mode, r.limitPrice)
		if err == nil {
			s.loop.Drain()
		}
		r.reply <- submitStopReply{id: id, err: err}

	case cancelOrderReq:
		r.reply <- s.cancelOrder(r.id)

	case cancelStopReq:
		r.reply <- s.cancelStop(r.id)

	case queryReq:
		r.reply <- r.fn(s)
	}
}
