package settlement

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
	"github.com/radieske/fan-arena-platform-poc/pkg/scoring"
)

// BetStore acessa as apostas 1x2 a liquidar.
// MarkSettled é condicional ao status PENDING: retorna false quando a aposta
// já estava em estado terminal (replay do evento), e a liquidação é pulada.
type BetStore interface {
	ListPendingBets(ctx context.Context, matchID string) ([]PendingBet, error)
	MarkSettled(ctx context.Context, betID, status string) (bool, error)
}

// LiveStore acessa as previsões de placar da partida.
// WriteScore grava a linha inteira de pontos (recomputo, nunca incremento),
// então reprocessar o evento com o mesmo gabarito produz o mesmo resultado.
type LiveStore interface {
	ListEntries(ctx context.Context, matchID string) ([]LiveEntry, error)
	WriteScore(ctx context.Context, entryID string, scoreFinal, bonusTotal, totalPoints int) error
}

// ChallengeStore acessa as apostas de dia de desafio feitas sobre a partida
type ChallengeStore interface {
	ListUnsettledDayBets(ctx context.Context, matchID string) ([]ChallengeDayBet, error)
	SettleDayBet(ctx context.Context, entryID string, day int, matchID string, points int) (bool, error)
	RecomputeEntryTotal(ctx context.Context, entryID string) error
}

// Wallet credita os ganhos das apostas vencedoras
type Wallet interface {
	Credit(ctx context.Context, playerID string, cents int64, externalRef string) (int64, error)
}

// Publisher emite bet_settled para os consumidores de downstream
type Publisher interface {
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

// Settler processa eventos match_finished: liquida apostas, pontua previsões
// ao vivo e pontua as apostas de dia dos desafios.
type Settler struct {
	Log        *zap.Logger
	Bets       BetStore
	Live       LiveStore
	Challenges ChallengeStore
	Wcli       Wallet
	Pub        Publisher
	Now        func() time.Time
}

// WinCents calcula o ganho de uma aposta vencedora: teto de stake × odd
func WinCents(stakeCents int64, oddValue float64) int64 {
	return int64(math.Ceil(float64(stakeCents) * oddValue))
}

// DayBetPoints calcula os pontos de uma aposta de dia de desafio vencedora.
// Proporcional ao risco alocado do pool diário; booster DOUBLE dobra.
func DayBetPoints(amountCents int64, oddValue float64, booster string) int {
	pts := int(math.Ceil(float64(amountCents) * oddValue / 100))
	if booster == "DOUBLE" {
		pts *= 2
	}
	return pts
}

// HandleMatchFinished executa a liquidação completa de uma partida.
// Cada etapa é idempotente por conta própria (update condicional ou
// recomputo), então o evento pode ser reentregue sem efeito duplicado.
func (s *Settler) HandleMatchFinished(ctx context.Context, ev events.MatchFinished) error {
	if err := s.settleBets(ctx, ev); err != nil {
		return err
	}
	if err := s.scoreLiveEntries(ctx, ev); err != nil {
		return err
	}
	return s.scoreChallengeBets(ctx, ev)
}

func (s *Settler) settleBets(ctx context.Context, ev events.MatchFinished) error {
	bets, err := s.Bets.ListPendingBets(ctx, ev.MatchID)
	if err != nil {
		return err
	}
	actual := Outcome(ev.FinalScore.Home, ev.FinalScore.Away)

	for _, b := range bets {
		status := "LOST"
		if b.Prediction == actual {
			status = "WON"
		}

		applied, err := s.Bets.MarkSettled(ctx, b.ID, status)
		if err != nil {
			return err
		}
		out := events.BetSettled{
			BetID:    b.ID,
			PlayerID: b.PlayerID,
			MatchID:  b.MatchID,
			Status:   status,
			Ts:       s.Now(),
		}
		if !applied {
			// aposta já terminal: replay do evento, nada a creditar
			out.AlreadyFinal = true
			if err := s.Pub.PublishBetSettled(ctx, out); err != nil {
				s.Log.Warn("publish bet_settled", zap.String("betId", b.ID), zap.Error(err))
			}
			continue
		}

		if status == "WON" {
			win := WinCents(b.StakeCents, b.OddValue)
			ref := "bet-win:" + b.ID
			if _, err := s.Wcli.Credit(ctx, b.PlayerID, win, ref); err != nil {
				// o ref idempotente torna o retry do evento seguro
				return err
			}
			out.WinCents = win
			out.CreditRef = ref
		}

		if err := s.Pub.PublishBetSettled(ctx, out); err != nil {
			s.Log.Warn("publish bet_settled", zap.String("betId", b.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *Settler) scoreLiveEntries(ctx context.Context, ev events.MatchFinished) error {
	entries, err := s.Live.ListEntries(ctx, ev.MatchID)
	if err != nil {
		return err
	}

	keys := make(map[string]string, len(ev.BonusKeys))
	for _, k := range ev.BonusKeys {
		keys[k.QuestionID] = k.Correct
	}

	for _, e := range entries {
		answers := make([]scoring.BonusAnswer, 0, len(e.Answers))
		for qid, submitted := range e.Answers {
			answers = append(answers, scoring.BonusAnswer{Submitted: submitted, Correct: keys[qid]})
		}

		b := scoring.Evaluate(
			scoring.Prediction{Home: e.PredHome, Away: e.PredAway},
			scoring.Result{Home: ev.FinalScore.Home, Away: ev.FinalScore.Away},
			e.MidtimeEdit,
			answers,
		)
		if err := s.Live.WriteScore(ctx, e.ID, b.ScoreFinal, b.BonusTotal, b.TotalPoints); err != nil {
			return err
		}
	}
	return nil
}

func (s *Settler) scoreChallengeBets(ctx context.Context, ev events.MatchFinished) error {
	bets, err := s.Challenges.ListUnsettledDayBets(ctx, ev.MatchID)
	if err != nil {
		return err
	}
	actual := Outcome(ev.FinalScore.Home, ev.FinalScore.Away)

	touched := make(map[string]struct{})
	for _, b := range bets {
		points := 0
		if b.Prediction == actual {
			points = DayBetPoints(b.AmountCents, b.OddValue, b.Booster)
		}
		applied, err := s.Challenges.SettleDayBet(ctx, b.EntryID, b.Day, b.MatchID, points)
		if err != nil {
			return err
		}
		if applied {
			touched[b.EntryID] = struct{}{}
		}
	}

	// total da inscrição é sempre recomputado da soma, nunca incrementado
	for entryID := range touched {
		if err := s.Challenges.RecomputeEntryTotal(ctx, entryID); err != nil {
			return err
		}
	}
	return nil
}
