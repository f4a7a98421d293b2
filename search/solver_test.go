package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/fgantt/sente/config"
	"github.com/fgantt/sente/eval"
	"github.com/fgantt/sente/position"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.TTMemFraction = 0.01
	cfg.TTMinPower = 14
	return cfg
}

func solverFor(t *testing.T, sfen string, cfg config.Config) *Solver {
	t.Helper()
	p, err := position.FromSFEN(sfen)
	if err != nil {
		t.Fatalf("bad sfen %q: %v", sfen, err)
	}
	s := &Solver{}
	if err := s.Init(p, eval.NewMaterial(), cfg); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestMateInOne(t *testing.T) {
	is := is.New(t)
	// Gold drop on the king's head, anchored by the silver.
	s := solverFor(t, "4k4/9/5S3/9/9/9/9/9/4K4 b G 1", testConfig())

	val, seq, err := s.Solve(context.Background(), 3, 0)
	is.NoErr(err)
	is.True(len(seq) > 0)
	is.Equal(seq[0].String(), "G*5b")
	is.Equal(val, MateIn(1))
}

func TestMateInOneAnyOrderingConfig(t *testing.T) {
	is := is.New(t)
	// The mating move must be found no matter which ordering aids are on.
	cfg := testConfig()
	cfg.UseKillers = false
	cfg.UseHistory = false
	cfg.UseCounterMoves = false
	cfg.UseIID = false
	cfg.UseAspiration = false
	s := solverFor(t, "4k4/9/5S3/9/9/9/9/9/4K4 b G 1", cfg)

	val, seq, err := s.Solve(context.Background(), 1, 0)
	is.NoErr(err)
	is.Equal(seq[0].String(), "G*5b")
	is.Equal(val, MateIn(1))
}

func TestWarmTableIdempotence(t *testing.T) {
	is := is.New(t)
	s := solverFor(t, position.StartSFEN, testConfig())

	_, cold, err := s.Solve(context.Background(), 4, 0)
	is.NoErr(err)

	// Second solve runs against a warm table. The table is an
	// optimization; it must not change the chosen move.
	_, warm, err := s.Solve(context.Background(), 4, 0)
	is.NoErr(err)
	is.Equal(cold[0], warm[0])

	snap := s.Stats()
	is.True(snap.TTLookups > 0)
	hitRate := float64(snap.TTHits) / float64(snap.TTLookups)
	is.True(hitRate > 0.9) // full reuse on a repeated search
}

func TestZugzwangNullMoveSkipped(t *testing.T) {
	is := is.New(t)
	// Bare kings plus a pawn in hand: far below the zugzwang material
	// threshold, so null-move pruning must stand down everywhere.
	s := solverFor(t, "4k4/9/9/9/9/9/9/9/4K4 b P 1", testConfig())

	_, _, err := s.Solve(context.Background(), 4, 0)
	is.NoErr(err)

	snap := s.Stats()
	is.True(snap.NullMoveSkippedEndgame > 0)
	is.Equal(snap.NullMoveCutoffs, uint64(0))
}

func TestTinyBudgetStillReturnsAMove(t *testing.T) {
	is := is.New(t)
	s := solverFor(t, position.StartSFEN, testConfig())

	_, seq, err := s.Solve(context.Background(), 30, time.Millisecond)
	is.NoErr(err)
	is.True(len(seq) > 0)
}

func TestContextCancellation(t *testing.T) {
	is := is.New(t)
	s := solverFor(t, position.StartSFEN, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, seq, err := s.Solve(ctx, 40, 0)
	is.NoErr(err)
	is.True(len(seq) > 0)
	is.True(time.Since(start) < 5*time.Second)
}

func TestQuiescenceHardCap(t *testing.T) {
	is := is.New(t)
	cfg := testConfig()
	cfg.QSMaxPly = 2
	// A capture-rich middlegame; the cap must hold regardless of how
	// forcing the exchanges look.
	s := solverFor(t, "lnsgkgsnl/1r5b1/pppppBppp/9/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL b P 1", cfg)

	_, seq, err := s.Solve(context.Background(), 2, 0)
	is.NoErr(err)
	is.True(len(seq) > 0)
	is.True(s.Stats().QNodes > 0)
}

func TestNoLegalMoves(t *testing.T) {
	is := is.New(t)
	// Black king cornered by a dragon its own king defends: checkmate,
	// nothing to search.
	s := solverFor(t, "9/9/9/9/9/9/1k7/+r8/K8 b - 1", testConfig())

	_, _, err := s.Solve(context.Background(), 3, 0)
	is.True(err != nil)
}

func TestLazySMPFindsSameMate(t *testing.T) {
	is := is.New(t)
	cfg := testConfig()
	cfg.Threads = 4
	s := solverFor(t, "4k4/9/5S3/9/9/9/9/9/4K4 b G 1", cfg)

	val, seq, err := s.Solve(context.Background(), 4, 0)
	is.NoErr(err)
	is.Equal(seq[0].String(), "G*5b")
	is.Equal(val, MateIn(1))
}

func TestPruningNeverWorsensTheSearch(t *testing.T) {
	is := is.New(t)
	sfen := "4k4/9/5S3/9/9/9/9/9/4K4 b G 1"

	// Zero-pruning baseline.
	baseline := testConfig()
	baseline.UseNullMove = false
	baseline.UseLMR = false
	baseline.UseFutility = false
	baseline.UseIID = false
	s := solverFor(t, sfen, baseline)
	baseVal, baseSeq, err := s.Solve(context.Background(), 3, 0)
	is.NoErr(err)
	is.Equal(baseSeq[0].String(), "G*5b")

	// Null move alone off, then everything on: pruning is a speed
	// optimization and must never pick a worse move.
	nullOff := testConfig()
	nullOff.UseNullMove = false
	for _, cfg := range []config.Config{nullOff, testConfig()} {
		s := solverFor(t, sfen, cfg)
		val, seq, err := s.Solve(context.Background(), 3, 0)
		is.NoErr(err)
		is.Equal(seq[0], baseSeq[0])
		is.True(val >= baseVal)
	}
}

func TestThreadedDepthOneStillReturnsAMove(t *testing.T) {
	is := is.New(t)
	cfg := testConfig()
	cfg.Threads = 4
	s := solverFor(t, "4k4/9/5S3/9/9/9/9/9/4K4 b G 1", cfg)

	// One ply leaves no room for helper threads; the search runs
	// single-threaded instead of refusing.
	val, seq, err := s.Solve(context.Background(), 1, 0)
	is.NoErr(err)
	is.Equal(seq[0].String(), "G*5b")
	is.Equal(val, MateIn(1))
}

func TestQuiescenceEvadesCheckAtTheCap(t *testing.T) {
	is := is.New(t)
	cfg := testConfig()
	cfg.QSMaxPly = 1
	// Black to move, in check from an undefended adjacent rook: the only
	// good continuation is the capture, which the depth cap must not
	// stand-pat away.
	s := solverFor(t, "k8/9/9/9/9/9/9/4r4/4K4 b - 1", cfg)
	s.timer = NewTimer(0)

	key := s.zobrist.Hash(s.game)
	val, err := s.quiescence(context.Background(), key, -HugeNumber, HugeNumber, 0, cfg.QSMaxPly, 0)
	is.NoErr(err)
	is.True(val > 0) // the rook comes off the board
}

func TestStatsResetBetweenSolves(t *testing.T) {
	is := is.New(t)
	s := solverFor(t, position.StartSFEN, testConfig())

	_, _, err := s.Solve(context.Background(), 3, 0)
	is.NoErr(err)
	first := s.Stats().Nodes

	_, _, err = s.Solve(context.Background(), 2, 0)
	is.NoErr(err)
	second := s.Stats().Nodes
	is.True(second > 0)
	is.True(second < first) // counters restart per solve
}
