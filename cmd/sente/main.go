package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fgantt/sente/config"
	"github.com/fgantt/sente/eval"
	"github.com/fgantt/sente/position"
	"github.com/fgantt/sente/search"
)

func main() {
	var (
		sfen       = flag.String("sfen", position.StartSFEN, "position to analyze, in SFEN")
		depth      = flag.Int("depth", 8, "maximum search depth in plies")
		budget     = flag.Duration("time", 0, "time budget (0 = unlimited)")
		threads    = flag.Int("threads", 0, "search threads (0 = config default)")
		configPath = flag.String("config", "", "optional config file")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().AnErr("err", err).Msg("bad-config")
	}
	if *threads > 0 {
		cfg.Threads = *threads
	}

	p, err := position.FromSFEN(*sfen)
	if err != nil {
		log.Fatal().AnErr("err", err).Str("sfen", *sfen).Msg("bad-sfen")
	}

	s := &search.Solver{}
	if err := s.Init(p, eval.NewMaterial(), cfg); err != nil {
		log.Fatal().AnErr("err", err).Msg("solver-init")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("interrupted, stopping search")
		s.RequestStop()
		cancel()
	}()

	val, pv, err := s.Solve(ctx, *depth, *budget)
	if err != nil {
		log.Fatal().AnErr("err", err).Msg("search-failed")
	}
	if len(pv) == 0 {
		log.Fatal().Msg("no legal moves in position")
	}

	snap := s.Stats()
	log.Info().
		Uint64("nodes", snap.Nodes).
		Uint64("qnodes", snap.QNodes).
		Uint64("tt-hits", snap.TTHits).
		Uint64("beta-cutoffs", snap.BetaCutoffs).
		Msg("search-stats")

	fmt.Printf("bestmove %s\n", pv[0])
	fmt.Printf("value %d\n", val)
	fmt.Print("pv")
	for _, m := range pv {
		fmt.Printf(" %s", m)
	}
	fmt.Println()
}
