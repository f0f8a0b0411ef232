package settlement

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

type fakeBetStore struct {
	bets   map[string]*PendingBet
	status map[string]string
}

func (f *fakeBetStore) ListPendingBets(_ context.Context, matchID string) ([]PendingBet, error) {
	var out []PendingBet
	for id, b := range f.bets {
		if b.MatchID == matchID && f.status[id] == "PENDING" {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBetStore) MarkSettled(_ context.Context, betID, status string) (bool, error) {
	if f.status[betID] != "PENDING" {
		return false, nil
	}
	f.status[betID] = status
	return true, nil
}

type fakeLiveStore struct {
	entries map[string]*LiveEntry
	scores  map[string][3]int // entryID -> {scoreFinal, bonusTotal, totalPoints}
	writes  int
}

func (f *fakeLiveStore) ListEntries(_ context.Context, _ string) ([]LiveEntry, error) {
	var out []LiveEntry
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeLiveStore) WriteScore(_ context.Context, entryID string, scoreFinal, bonusTotal, totalPoints int) error {
	f.scores[entryID] = [3]int{scoreFinal, bonusTotal, totalPoints}
	f.writes++
	return nil
}

type dayBetKey struct {
	entryID string
	day     int
	matchID string
}

type fakeChallengeStore struct {
	bets    []ChallengeDayBet
	settled map[dayBetKey]int
	totals  map[string]int
}

func (f *fakeChallengeStore) ListUnsettledDayBets(_ context.Context, matchID string) ([]ChallengeDayBet, error) {
	var out []ChallengeDayBet
	for _, b := range f.bets {
		if b.MatchID != matchID {
			continue
		}
		if _, done := f.settled[dayBetKey{b.EntryID, b.Day, b.MatchID}]; done {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeChallengeStore) SettleDayBet(_ context.Context, entryID string, day int, matchID string, points int) (bool, error) {
	k := dayBetKey{entryID, day, matchID}
	if _, done := f.settled[k]; done {
		return false, nil
	}
	f.settled[k] = points
	return true, nil
}

func (f *fakeChallengeStore) RecomputeEntryTotal(_ context.Context, entryID string) error {
	total := 0
	for k, pts := range f.settled {
		if k.entryID == entryID {
			total += pts
		}
	}
	f.totals[entryID] = total
	return nil
}

type creditCall struct {
	playerID string
	cents    int64
	ref      string
}

type fakeSettleWallet struct {
	credits  []creditCall
	seenRefs map[string]bool
}

func (f *fakeSettleWallet) Credit(_ context.Context, playerID string, cents int64, ref string) (int64, error) {
	if f.seenRefs[ref] {
		return cents, nil
	}
	f.seenRefs[ref] = true
	f.credits = append(f.credits, creditCall{playerID, cents, ref})
	return cents, nil
}

type capturePublisher struct{ events []events.BetSettled }

func (c *capturePublisher) PublishBetSettled(_ context.Context, e events.BetSettled) error {
	c.events = append(c.events, e)
	return nil
}

type settleFixture struct {
	settler    *Settler
	bets       *fakeBetStore
	live       *fakeLiveStore
	challenges *fakeChallengeStore
	wallet     *fakeSettleWallet
	pub        *capturePublisher
}

func newSettleFixture() *settleFixture {
	f := &settleFixture{
		bets:       &fakeBetStore{bets: map[string]*PendingBet{}, status: map[string]string{}},
		live:       &fakeLiveStore{entries: map[string]*LiveEntry{}, scores: map[string][3]int{}},
		challenges: &fakeChallengeStore{settled: map[dayBetKey]int{}, totals: map[string]int{}},
		wallet:     &fakeSettleWallet{seenRefs: map[string]bool{}},
		pub:        &capturePublisher{},
	}
	f.settler = &Settler{
		Log:        zap.NewNop(),
		Bets:       f.bets,
		Live:       f.live,
		Challenges: f.challenges,
		Wcli:       f.wallet,
		Pub:        f.pub,
		Now:        func() time.Time { return time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *settleFixture) addBet(id, playerID, matchID, prediction string, stake int64, odd float64) {
	f.bets.bets[id] = &PendingBet{ID: id, PlayerID: playerID, MatchID: matchID, Prediction: prediction, StakeCents: stake, OddValue: odd}
	f.bets.status[id] = "PENDING"
}

func finished(matchID string, home, away int, keys ...events.BonusAnswerKey) events.MatchFinished {
	return events.MatchFinished{
		MatchID:    matchID,
		FinalScore: events.Score{Home: home, Away: away},
		BonusKeys:  keys,
		FinishedAt: time.Date(2025, 6, 10, 17, 50, 0, 0, time.UTC),
	}
}

func TestSettleCreditsWinnersWithCeiling(t *testing.T) {
	f := newSettleFixture()
	f.addBet("b1", "p1", "m1", "home", 1_000, 1.85) // vencedora: teto de 1850
	f.addBet("b2", "p2", "m1", "away", 500, 3.0)    // perdedora
	f.addBet("b3", "p3", "m1", "draw", 333, 3.33)   // perdedora

	if err := f.settler.HandleMatchFinished(context.Background(), finished("m1", 2, 1)); err != nil {
		t.Fatalf("HandleMatchFinished: %v", err)
	}

	if f.bets.status["b1"] != "WON" || f.bets.status["b2"] != "LOST" || f.bets.status["b3"] != "LOST" {
		t.Fatalf("status: %+v", f.bets.status)
	}
	if len(f.wallet.credits) != 1 {
		t.Fatalf("créditos: %+v", f.wallet.credits)
	}
	c := f.wallet.credits[0]
	if c.playerID != "p1" || c.cents != 1850 || c.ref != "bet-win:b1" {
		t.Fatalf("crédito do ganho: %+v", c)
	}
	if len(f.pub.events) != 3 {
		t.Fatalf("eventos publicados: %d", len(f.pub.events))
	}
}

func TestWinCentsRoundsUp(t *testing.T) {
	cases := []struct {
		stake int64
		odd   float64
		want  int64
	}{
		{1_000, 1.85, 1_850},
		{333, 1.5, 500}, // 499.5 arredonda pra cima
		{100, 2.001, 201},
		{100, 3.0, 300},
	}
	for _, tc := range cases {
		if got := WinCents(tc.stake, tc.odd); got != tc.want {
			t.Errorf("WinCents(%d, %v) = %d, want %d", tc.stake, tc.odd, got, tc.want)
		}
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	f := newSettleFixture()
	f.addBet("b1", "p1", "m1", "home", 1_000, 2.0)

	ev := finished("m1", 1, 0)
	if err := f.settler.HandleMatchFinished(context.Background(), ev); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := f.settler.HandleMatchFinished(context.Background(), ev); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(f.wallet.credits) != 1 {
		t.Fatalf("replay creditou de novo: %+v", f.wallet.credits)
	}
	if f.bets.status["b1"] != "WON" {
		t.Fatalf("status final: %s", f.bets.status["b1"])
	}
}

func TestScoreLiveEntriesWithBonusKeys(t *testing.T) {
	f := newSettleFixture()
	f.live.entries["e1"] = &LiveEntry{
		ID: "e1", PlayerID: "p1", PredHome: 2, PredAway: 1,
		Answers: map[string]string{"q1": "yes", "q2": "no", "q3": "maybe"},
	}
	f.live.entries["e2"] = &LiveEntry{
		ID: "e2", PlayerID: "p2", PredHome: 0, PredAway: 3, MidtimeEdit: true,
	}

	ev := finished("m1", 2, 1,
		events.BonusAnswerKey{QuestionID: "q1", Correct: "yes"},
		events.BonusAnswerKey{QuestionID: "q2", Correct: "yes"},
		events.BonusAnswerKey{QuestionID: "q3", Correct: "maybe"},
	)
	if err := f.settler.HandleMatchFinished(context.Background(), ev); err != nil {
		t.Fatalf("HandleMatchFinished: %v", err)
	}

	// e1: placar exato = 60, bônus q1 e q3 corretos = 20
	if got := f.live.scores["e1"]; got != [3]int{60, 20, 80} {
		t.Fatalf("e1: %v", got)
	}
	// e2: tudo errado com malus de edição: 0 pontos
	if got := f.live.scores["e2"]; got != [3]int{0, 0, 0} {
		t.Fatalf("e2: %v", got)
	}
}

func TestScoreLiveEntriesRecomputeIsStable(t *testing.T) {
	f := newSettleFixture()
	f.live.entries["e1"] = &LiveEntry{ID: "e1", PlayerID: "p1", PredHome: 1, PredAway: 1}

	ev := finished("m1", 1, 1)
	_ = f.settler.HandleMatchFinished(context.Background(), ev)
	first := f.live.scores["e1"]
	_ = f.settler.HandleMatchFinished(context.Background(), ev)

	if f.live.scores["e1"] != first {
		t.Fatalf("recomputo mudou o resultado: %v != %v", f.live.scores["e1"], first)
	}
	if f.live.writes != 2 {
		t.Fatalf("esperava regravação no replay, writes=%d", f.live.writes)
	}
}

func TestChallengeDayBetsSettleWithBooster(t *testing.T) {
	f := newSettleFixture()
	f.challenges.bets = []ChallengeDayBet{
		{EntryID: "ce1", Day: 1, MatchID: "m1", Prediction: "home", AmountCents: 600, OddValue: 1.5},
		{EntryID: "ce1", Day: 2, MatchID: "m1", Prediction: "home", AmountCents: 400, OddValue: 2.0, Booster: "DOUBLE"},
		{EntryID: "ce2", Day: 1, MatchID: "m1", Prediction: "away", AmountCents: 1_000, OddValue: 4.0},
	}

	ev := finished("m1", 3, 0)
	if err := f.settler.HandleMatchFinished(context.Background(), ev); err != nil {
		t.Fatalf("HandleMatchFinished: %v", err)
	}

	// ce1 dia 1: ceil(600*1.5/100) = 9; dia 2 com DOUBLE: ceil(400*2/100)*2 = 16
	if pts := f.challenges.settled[dayBetKey{"ce1", 1, "m1"}]; pts != 9 {
		t.Fatalf("dia 1: %d pontos, want 9", pts)
	}
	if pts := f.challenges.settled[dayBetKey{"ce1", 2, "m1"}]; pts != 16 {
		t.Fatalf("dia 2: %d pontos, want 16", pts)
	}
	if f.challenges.totals["ce1"] != 25 {
		t.Fatalf("total ce1: %d, want 25", f.challenges.totals["ce1"])
	}
	// ce2 errou: liquidada com zero
	if pts, ok := f.challenges.settled[dayBetKey{"ce2", 1, "m1"}]; !ok || pts != 0 {
		t.Fatalf("ce2: settled=%v pontos=%d", ok, pts)
	}

	// replay não muda totais
	_ = f.settler.HandleMatchFinished(context.Background(), ev)
	if f.challenges.totals["ce1"] != 25 {
		t.Fatalf("replay mudou o total: %d", f.challenges.totals["ce1"])
	}
}
