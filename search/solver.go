package search

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/fgantt/sente/config"
	"github.com/fgantt/sente/eval"
	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/movegen"
	"github.com/fgantt/sente/position"
	"github.com/fgantt/sente/zobrist"
)

type repKey struct {
	key     uint64
	barrier bool
}

// rootMove carries the running valuation of a top-level move across
// iterative-deepening passes; the list is re-sorted by value between
// iterations so the strongest candidate is searched first.
type rootMove struct {
	m     move.Move
	value int16
}

// Solver runs iterative-deepening negamax over a position. One Solver
// owns its position, move generator, and ordering tables; with more
// than one thread it clones them per helper thread (LazySMP) and
// shares only the transposition table and statistics.
type Solver struct {
	cfg        config.Config
	zobrist    *zobrist.Zobrist
	game       *position.Position
	stmMovegen *movegen.Standard
	evaluator  eval.Evaluator
	orderer    *Orderer

	gameCopies []*position.Position
	movegens   []*movegen.Standard
	orderers   []*Orderer

	initialMoves [][]rootMove
	keyHistory   [][]repKey

	principalVariation PVLine
	lastIterationPV    PVLine
	bestPVValue        int16

	ttable *TranspositionTable
	stats  Stats
	timer  *Timer

	requestedPlies int
	threads        int
	initialHashKey uint64
}

// Init wires the solver to a position. The position is not copied;
// the caller must not touch it while a solve is in progress.
func (s *Solver) Init(p *position.Position, e eval.Evaluator, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	s.game = p
	s.evaluator = e
	s.zobrist = &zobrist.Zobrist{}
	s.zobrist.Initialize()
	s.stmMovegen = movegen.NewStandard()
	s.ttable = &TranspositionTable{}
	s.ttable.SetSingleThreadedMode()
	s.threads = cfg.Threads
	if s.threads < 1 {
		s.threads = max(1, runtime.NumCPU()-1)
	}
	s.stats.Reset()
	s.orderer = NewOrderer(&s.cfg, s.stmMovegen, &s.stats)
	return nil
}

func (s *Solver) SetThreads(threads int) {
	if threads < 2 {
		s.threads = 1
	} else {
		s.threads = threads
	}
}

// PrincipalVariation returns the PV of the last completed iteration.
func (s *Solver) PrincipalVariation() PVLine {
	return s.principalVariation
}

func (s *Solver) Stats() Snapshot {
	return s.stats.snapshot(s.ttable)
}

// RequestStop asks a running solve to wind down cooperatively.
func (s *Solver) RequestStop() {
	if s.timer != nil {
		s.timer.RequestStop()
	}
}

func (s *Solver) makeGameCopies() {
	log.Debug().Int("threads", s.threads).Msg("make-game-copies")
	s.gameCopies = s.gameCopies[:0]
	s.movegens = s.movegens[:0]
	s.orderers = s.orderers[:0]
	for i := 0; i < s.threads-1; i++ {
		s.gameCopies = append(s.gameCopies, s.game.Copy())
		mg := movegen.NewStandard()
		s.movegens = append(s.movegens, mg)
		s.orderers = append(s.orderers, NewOrderer(&s.cfg, mg, &s.stats))
	}
}

func (s *Solver) rootMoveList(thread int) []move.Move {
	return lo.Map(s.initialMoves[thread], func(r rootMove, _ int) move.Move {
		return r.m
	})
}

func (s *Solver) sortRootMoves(thread int) {
	sort.SliceStable(s.initialMoves[thread], func(i, j int) bool {
		return s.initialMoves[thread][i].value > s.initialMoves[thread][j].value
	})
}

// priorPVMove exposes the previous iteration's move at this ply as an
// ordering hint. Purely advisory.
func (s *Solver) priorPVMove(ply int) move.Move {
	if ply < len(s.lastIterationPV.Moves) {
		return s.lastIterationPV.Moves[ply]
	}
	return move.NoMove
}

// searchAtDepth runs one iterative-deepening step at the given depth,
// wrapping the root negamax in an aspiration window seeded from the
// previous iteration. A fail outside the window re-searches with the
// window opened on the failing side.
func (s *Solver) searchAtDepth(ctx context.Context, depth, thread int, pv *PVLine) (int16, error) {
	α := int16(-HugeNumber)
	β := int16(HugeNumber)
	useAsp := s.cfg.UseAspiration && depth > 1 && !IsMateScore(s.bestPVValue)
	window := int16(s.cfg.AspirationWindow)
	if useAsp {
		α = max16(-HugeNumber, s.bestPVValue-window)
		β = min16(HugeNumber, s.bestPVValue+window)
	}
	for {
		pv.Clear()
		val, err := s.negamax(ctx, s.initialHashKey, depth, 0, α, β, pv, thread, false)
		if err != nil {
			return val, err
		}
		if !useAsp || (val > α && val < β) {
			return val, nil
		}
		// Fail outside the window: widen the failing side and retry.
		if val <= α {
			α = -HugeNumber
		} else {
			β = HugeNumber
		}
	}
}

func (s *Solver) iterativelyDeepen(ctx context.Context, plies int) error {
	// LazySMP needs a depth-1 pre-pass before helpers fan out, so a
	// one-ply search runs single-threaded regardless of thread count.
	if s.threads > 1 && plies >= 2 {
		return s.iterativelyDeepenLazySMP(ctx, plies)
	}
	s.keyHistory = make([][]repKey, 1)
	s.pushKey(0, s.initialHashKey, false)

	s.initialMoves = make([][]rootMove, 1)
	s.initialMoves[0] = lo.Map(s.stmMovegen.LegalMoves(s.game), func(m move.Move, _ int) rootMove {
		return rootMove{m: m, value: -HugeNumber}
	})
	if len(s.initialMoves[0]) == 0 {
		return errors.New("no legal moves to search")
	}
	s.seedRootOrder(0)

	for d := 1; d <= plies; d++ {
		log.Debug().Int("depth", d).Msg("deepening-iteratively")
		var pv PVLine
		val, err := s.searchAtDepth(ctx, d, 0, &pv)
		if err != nil {
			if errors.Is(err, errStopped) || errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				// Out of time mid-iteration. The previous completed
				// iteration stands.
				return nil
			}
			return err
		}
		s.sortRootMoves(0)
		s.principalVariation = pv.Clone()
		s.lastIterationPV = pv.Clone()
		s.bestPVValue = val
		log.Info().Int16("value", val).Int("depth", d).
			Str("pv", pv.NLBString()).Msg("best-val")
		if IsMateScore(val) {
			// A forced mate only gets rediscovered at higher depths.
			break
		}
	}
	return nil
}

func (s *Solver) iterativelyDeepenLazySMP(ctx context.Context, plies int) error {
	s.makeGameCopies()
	log.Info().Int("threads", s.threads).Msg("using-lazy-smp")
	s.keyHistory = make([][]repKey, s.threads)
	for t := 0; t < s.threads; t++ {
		s.pushKey(t, s.initialHashKey, false)
	}

	rootMoves := s.stmMovegen.LegalMoves(s.game)
	if len(rootMoves) == 0 {
		return errors.New("no legal moves to search")
	}
	s.initialMoves = make([][]rootMove, s.threads)
	s.initialMoves[0] = lo.Map(rootMoves, func(m move.Move, _ int) rootMove {
		return rootMove{m: m, value: -HugeNumber}
	})
	s.seedRootOrder(0)

	// A depth-1 pass gives every root move a real valuation before the
	// helper threads fan out.
	var pv PVLine
	if _, err := s.negamax(ctx, s.initialHashKey, 1, 0, -HugeNumber, HugeNumber, &pv, 0, false); err != nil {
		return nil
	}
	s.sortRootMoves(0)
	for t := 1; t < s.threads; t++ {
		s.initialMoves[t] = make([]rootMove, len(s.initialMoves[0]))
		copy(s.initialMoves[t], s.initialMoves[0])
	}

	for d := 2; d <= plies; d++ {
		log.Debug().Int("depth", d).Msg("deepening-iteratively")

		g := errgroup.Group{}
		cancels := make([]context.CancelFunc, s.threads-1)
		for t := 1; t < s.threads; t++ {
			t := t
			// Helpers search staggered depths; their scores are thrown
			// away, they exist to fill the shared table.
			helperDepth := d + t%3
			helperCtx, cancel := context.WithCancel(ctx)
			cancels[t-1] = cancel
			g.Go(func() error {
				var helperPV PVLine
				_, err := s.negamax(helperCtx, s.initialHashKey, helperDepth,
					0, -HugeNumber, HugeNumber, &helperPV, t, false)
				if err != nil {
					log.Debug().Int("thread", t).AnErr("err", err).Msg("helper-exited")
				}
				switch {
				case t == 1:
					s.sortRootMoves(t)
				case t == 2:
					// keep the original order
				default:
					// Shuffled root order decorrelates the helpers.
					frand.Shuffle(len(s.initialMoves[t]), func(i, j int) {
						s.initialMoves[t][i], s.initialMoves[t][j] = s.initialMoves[t][j], s.initialMoves[t][i]
					})
				}
				return err
			})
		}

		var pv PVLine
		val, err := s.searchAtDepth(ctx, d, 0, &pv)
		for _, c := range cancels {
			c()
		}
		werr := g.Wait()
		stopped := func(e error) bool {
			return e == nil || errors.Is(e, errStopped) ||
				errors.Is(e, context.Canceled) || errors.Is(e, context.DeadlineExceeded)
		}
		if !stopped(err) {
			return err
		}
		if !stopped(werr) {
			return werr
		}
		if err != nil {
			return nil
		}

		s.sortRootMoves(0)
		s.principalVariation = pv.Clone()
		s.lastIterationPV = pv.Clone()
		s.bestPVValue = val
		log.Info().Int16("value", val).Int("depth", d).
			Str("pv", pv.NLBString()).Msg("best-val")
		if IsMateScore(val) {
			break
		}
	}
	return nil
}

// seedRootOrder gives the very first iteration a sane order before any
// valuations exist: winning captures and promotions first.
func (s *Solver) seedRootOrder(thread int) {
	g := s.gameFor(thread)
	moves := s.rootMoveList(thread)
	s.ordererFor(thread).Order(g, moves, OrderContext{PosKey: s.initialHashKey})
	for i, m := range moves {
		s.initialMoves[thread][i] = rootMove{m: m, value: -HugeNumber}
	}
}

// Solve searches the position for up to plies depth within budget
// (zero budget means unlimited) and returns the value and principal
// variation of the deepest completed iteration.
func (s *Solver) Solve(ctx context.Context, plies int, budget time.Duration) (int16, []move.Move, error) {
	if s.game == nil {
		return 0, nil, errors.New("solver not initialized")
	}
	if plies < 1 {
		plies = 1
	}
	if plies > s.cfg.MaxDepth {
		plies = s.cfg.MaxDepth
	}
	log.Debug().Int("plies", plies).Dur("budget", budget).Msg("alphabeta-solve-config")
	s.requestedPlies = plies
	tstart := time.Now()
	s.initialHashKey = s.zobrist.Hash(s.game)
	s.timer = NewTimer(budget)

	if s.cfg.TTMemFraction > 0 {
		if s.ttable == nil {
			s.ttable = &TranspositionTable{}
		}
		if s.threads > 1 {
			s.ttable.SetMultiThreadedMode()
		} else {
			s.ttable.SetSingleThreadedMode()
		}
		// The table persists across solves so a repeat search can reuse
		// it; a generation bump demotes the stale entries instead of
		// clearing them.
		if s.ttable.table == nil {
			s.ttable.Reset(s.cfg.TTMemFraction, s.cfg.TTMinPower)
		} else {
			s.ttable.NewGeneration()
		}
	} else {
		s.ttable = nil
	}

	s.stats.Reset()
	s.orderer.Reset()
	for _, o := range s.orderers {
		o.Reset()
	}
	s.principalVariation = PVLine{}
	s.lastIterationPV = PVLine{}
	s.bestPVValue = -HugeNumber

	g := &errgroup.Group{}
	done := make(chan bool)
	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.stats.Nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})
	g.Go(func() error {
		err := s.iterativelyDeepen(ctx, plies)
		done <- true
		return err
	})
	err := g.Wait()

	if s.principalVariation.GetPVMove() == move.NoMove && err == nil {
		// Budget too small for even one iteration; fall back to the
		// best-seeded root move rather than returning nothing.
		if len(s.initialMoves) > 0 && len(s.initialMoves[0]) > 0 {
			s.principalVariation.Update(s.initialMoves[0][0].m, PVLine{}, s.bestPVValue)
		}
	}

	ev := log.Info()
	if s.ttable != nil {
		ev = ev.Uint64("ttable-created", s.ttable.created.Load()).
			Uint64("ttable-lookups", s.ttable.lookups.Load()).
			Uint64("ttable-hits", s.ttable.hits.Load()).
			Uint64("ttable-t2collisions", s.ttable.t2collisions.Load())
	}
	ev.Uint64("nodes", s.stats.Nodes.Load()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")

	return s.bestPVValue, s.principalVariation.Moves, err
}

// BestMove is the convenience wrapper most callers want.
func (s *Solver) BestMove(ctx context.Context, plies int, budget time.Duration) (move.Move, int16, error) {
	val, seq, err := s.Solve(ctx, plies, budget)
	if err != nil {
		return move.NoMove, 0, err
	}
	if len(seq) == 0 {
		return move.NoMove, val, errors.New("search found no move")
	}
	return seq[0], val, nil
}
