package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"embermatch/internal/common"
	"embermatch/internal/engine"
	"embermatch/internal/events"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	eng := engine.New(events.LogSink{})
	defer eng.Close()

	demo(ctx, eng)

	<-ctx.Done()
}

// demo drives a handful of requests through the engine so the event stream
// has something to show on startup. A real deployment replaces this with
// whatever transport sits in front of the engine.
func demo(ctx context.Context, eng *engine.Engine) {
	if _, err := eng.SubmitLimit(ctx, common.Sell, 101, 5); err != nil {
		log.Error().Err(err).Msg("demo submit failed")
		return
	}
	if _, err := eng.SubmitLimit(ctx, common.Buy, 101, 3); err != nil {
		log.Error().Err(err).Msg("demo submit failed")
		return
	}
	if bid, ok, err := eng.BestBid(ctx); err == nil && ok {
		log.Info().Uint64("best_bid", bid).Msg("demo query")
	}
}
