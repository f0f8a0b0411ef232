package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

var simStart = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

// runSim roda a simulação até o fim com ticks de 2s e devolve os updates por partida
func runSim(t *testing.T, seed int64) map[string][]events.MatchUpdate {
	t.Helper()
	e := NewEngine(rand.New(rand.NewSource(seed)), "match-feed-simulator", simStart, DefaultFixtures())

	byMatch := map[string][]events.MatchUpdate{}
	now := simStart
	for i := 0; i < 300 && !e.Done(); i++ {
		now = now.Add(2 * time.Second)
		for _, u := range e.Tick(now) {
			byMatch[u.MatchID] = append(byMatch[u.MatchID], u)
		}
	}
	if !e.Done() {
		t.Fatal("simulação não terminou dentro do limite de ticks")
	}
	return byMatch
}

func TestPhasesProgressInOrder(t *testing.T) {
	rank := map[string]int{
		events.PhaseScheduled: 0,
		events.PhaseLive:      1,
		events.PhaseHalftime:  2,
		events.PhaseFinished:  3,
	}

	for matchID, updates := range runSim(t, 42) {
		if len(updates) == 0 {
			t.Fatalf("%s: nenhum update", matchID)
		}
		sawHalftime := false
		prev := ""
		for _, u := range updates {
			if prev == "" {
				prev = u.Phase
				continue
			}
			if u.Phase == events.PhaseHalftime {
				sawHalftime = true
			}
			// único retrocesso permitido: HALFTIME volta pra LIVE no segundo tempo
			if rank[u.Phase] < rank[prev] && !(prev == events.PhaseHalftime && u.Phase == events.PhaseLive) {
				t.Fatalf("%s: fase regrediu %s -> %s", matchID, prev, u.Phase)
			}
			prev = u.Phase
		}
		if !sawHalftime {
			t.Errorf("%s: nunca passou pelo intervalo", matchID)
		}
		if last := updates[len(updates)-1]; last.Phase != events.PhaseFinished {
			t.Errorf("%s: último update na fase %s", matchID, last.Phase)
		}
	}
}

func TestScoreAndVersionAreMonotonic(t *testing.T) {
	for matchID, updates := range runSim(t, 7) {
		for i := 1; i < len(updates); i++ {
			prevU, u := updates[i-1], updates[i]
			if u.Version <= prevU.Version {
				t.Fatalf("%s: versão não monotônica: %d depois de %d", matchID, u.Version, prevU.Version)
			}
			if u.Score.Home < prevU.Score.Home || u.Score.Away < prevU.Score.Away {
				t.Fatalf("%s: placar regrediu: %+v depois de %+v", matchID, u.Score, prevU.Score)
			}
		}
	}
}

func TestBonusKeysOnlyOnFinish(t *testing.T) {
	for matchID, updates := range runSim(t, 99) {
		for i, u := range updates {
			final := i == len(updates)-1
			if final {
				if u.Phase != events.PhaseFinished || len(u.BonusKeys) != 4 {
					t.Fatalf("%s: update final sem gabarito completo: %+v", matchID, u)
				}
				assertKeysMatchScore(t, matchID, u)
			} else if len(u.BonusKeys) != 0 {
				t.Fatalf("%s: gabarito vazou antes do fim (update %d)", matchID, i)
			}
		}
	}
}

func assertKeysMatchScore(t *testing.T, matchID string, u events.MatchUpdate) {
	t.Helper()
	keys := map[string]string{}
	for _, k := range u.BonusKeys {
		keys[k.QuestionID] = k.Correct
	}

	bothScore := u.Score.Home > 0 && u.Score.Away > 0
	if got := keys["q_both_score"] == "yes"; got != bothScore {
		t.Errorf("%s: q_both_score=%s com placar %+v", matchID, keys["q_both_score"], u.Score)
	}
	over := u.Score.Home+u.Score.Away > 2
	if got := keys["q_over_2_goals"] == "yes"; got != over {
		t.Errorf("%s: q_over_2_goals=%s com placar %+v", matchID, keys["q_over_2_goals"], u.Score)
	}
	if u.Score.Home+u.Score.Away == 0 && keys["q_first_goal"] != "none" {
		t.Errorf("%s: q_first_goal=%s num 0x0", matchID, keys["q_first_goal"])
	}
}

func TestSimulationIsReproducible(t *testing.T) {
	a := runSim(t, 1234)
	b := runSim(t, 1234)

	if len(a) != len(b) {
		t.Fatalf("quantidades de partidas diferem: %d != %d", len(a), len(b))
	}
	for matchID, ua := range a {
		ub := b[matchID]
		if len(ua) != len(ub) {
			t.Fatalf("%s: %d updates != %d", matchID, len(ua), len(ub))
		}
		last, lastB := ua[len(ua)-1], ub[len(ub)-1]
		if last.Score != lastB.Score || last.Version != lastB.Version {
			t.Fatalf("%s: resultado final difere com a mesma seed", matchID)
		}
	}
}
