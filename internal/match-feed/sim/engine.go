package sim

import (
	"math/rand"
	"time"

	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

// Durações do relógio simulado: o dia de jogos inteiro cabe em poucos
// minutos de execução local
const (
	halfDuration     = 60 * time.Second
	halftimeDuration = 15 * time.Second
	goalChancePct    = 12 // chance de gol por tick, por partida LIVE
)

// Fixture descreve uma partida do catálogo do feed
type Fixture struct {
	MatchID   string
	HomeTeam  string
	AwayTeam  string
	KickoffIn time.Duration // offset a partir do início da simulação
}

// DefaultFixtures retorna o catálogo padrão, com pontapés escalonados
func DefaultFixtures() []Fixture {
	return []Fixture{
		{MatchID: "MATCH_001", HomeTeam: "Flamengo", AwayTeam: "Palmeiras", KickoffIn: 10 * time.Second},
		{MatchID: "MATCH_002", HomeTeam: "Grêmio", AwayTeam: "Internacional", KickoffIn: 25 * time.Second},
		{MatchID: "MATCH_003", HomeTeam: "Corinthians", AwayTeam: "Santos", KickoffIn: 40 * time.Second},
		{MatchID: "MATCH_004", HomeTeam: "São Paulo", AwayTeam: "Vasco", KickoffIn: 55 * time.Second},
	}
}

type matchSim struct {
	fixture   Fixture
	kickoffAt time.Time
	phase     string
	score     events.Score
	version   int
	done      bool
}

// Engine avança o estado das partidas simuladas a cada tick.
// Fases: SCHEDULED -> LIVE -> HALFTIME -> LIVE -> FINISHED.
// O RNG é injetado: com a mesma seed a simulação inteira se repete.
type Engine struct {
	rng     *rand.Rand
	source  string
	matches []*matchSim
}

func NewEngine(rng *rand.Rand, source string, start time.Time, fixtures []Fixture) *Engine {
	e := &Engine{rng: rng, source: source}
	for _, f := range fixtures {
		e.matches = append(e.matches, &matchSim{
			fixture:   f,
			kickoffAt: start.Add(f.KickoffIn),
			phase:     events.PhaseScheduled,
		})
	}
	return e
}

// Tick avança todas as partidas até o instante `now` e retorna os updates
// a emitir. Um update sai quando a fase muda ou quando sai gol.
func (e *Engine) Tick(now time.Time) []events.MatchUpdate {
	var out []events.MatchUpdate
	for _, m := range e.matches {
		if upd, ok := e.advance(m, now); ok {
			out = append(out, upd)
		}
	}
	return out
}

// Done informa se todas as partidas já terminaram
func (e *Engine) Done() bool {
	for _, m := range e.matches {
		if !m.done {
			return false
		}
	}
	return true
}

func (e *Engine) advance(m *matchSim, now time.Time) (events.MatchUpdate, bool) {
	if m.done {
		return events.MatchUpdate{}, false
	}

	target := e.phaseAt(m, now)
	scored := false
	if target == events.PhaseLive && e.rng.Intn(100) < goalChancePct {
		if e.rng.Intn(2) == 0 {
			m.score.Home++
		} else {
			m.score.Away++
		}
		scored = true
	}

	if target == m.phase && !scored {
		return events.MatchUpdate{}, false
	}
	m.phase = target
	m.version++

	upd := events.MatchUpdate{
		MatchID:   m.fixture.MatchID,
		HomeTeam:  m.fixture.HomeTeam,
		AwayTeam:  m.fixture.AwayTeam,
		Phase:     m.phase,
		Score:     m.score,
		KickoffAt: m.kickoffAt,
		UpdatedAt: now,
		Source:    e.source,
		Version:   m.version,
	}

	if m.phase == events.PhaseFinished {
		m.done = true
		upd.BonusKeys = e.resolveBonusKeys(m)
	}
	return upd, true
}

// phaseAt calcula a fase da partida no instante dado
func (e *Engine) phaseAt(m *matchSim, now time.Time) string {
	switch {
	case now.Before(m.kickoffAt):
		return events.PhaseScheduled
	case now.Before(m.kickoffAt.Add(halfDuration)):
		return events.PhaseLive
	case now.Before(m.kickoffAt.Add(halfDuration + halftimeDuration)):
		return events.PhaseHalftime
	case now.Before(m.kickoffAt.Add(2*halfDuration + halftimeDuration)):
		return events.PhaseLive
	default:
		return events.PhaseFinished
	}
}

// resolveBonusKeys fecha o gabarito das perguntas bônus no apito final.
// As respostas derivadas do placar ficam consistentes com o resultado;
// as demais são sorteadas.
func (e *Engine) resolveBonusKeys(m *matchSim) []events.BonusAnswerKey {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	firstGoal := "none"
	if m.score.Home+m.score.Away > 0 {
		if e.rng.Intn(2) == 0 {
			firstGoal = "home"
		} else {
			firstGoal = "away"
		}
	}
	return []events.BonusAnswerKey{
		{QuestionID: "q_both_score", Correct: yesNo(m.score.Home > 0 && m.score.Away > 0)},
		{QuestionID: "q_over_2_goals", Correct: yesNo(m.score.Home+m.score.Away > 2)},
		{QuestionID: "q_first_goal", Correct: firstGoal},
		{QuestionID: "q_red_card", Correct: yesNo(e.rng.Intn(100) < 20)},
	}
}
