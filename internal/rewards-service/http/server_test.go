package http

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/dto"
	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/selector"
	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/streak"
)

type spinRecord struct{ playerID, tier, rewardID string }

type fakeRewardsRepo struct {
	spins     map[string]int // key: player/tier
	history   []spinRecord
	streakDay map[string]int
	lastClaim map[string]time.Time
}

func newFakeRewardsRepo() *fakeRewardsRepo {
	return &fakeRewardsRepo{
		spins:     map[string]int{},
		streakDay: map[string]int{},
		lastClaim: map[string]time.Time{},
	}
}

func spinKey(playerID, tier string) string { return playerID + "/" + tier }

func (f *fakeRewardsRepo) DecrementSpin(_ context.Context, playerID, tier string) (int, error) {
	k := spinKey(playerID, tier)
	if f.spins[k] <= 0 {
		return 0, repo.ErrNoSpinsAvailable
	}
	f.spins[k]--
	return f.spins[k], nil
}

func (f *fakeRewardsRepo) GetSpins(_ context.Context, playerID, tier string) (int, error) {
	return f.spins[spinKey(playerID, tier)], nil
}

func (f *fakeRewardsRepo) RecordSpin(_ context.Context, _, playerID, tier, rewardID string) error {
	f.history = append(f.history, spinRecord{playerID, tier, rewardID})
	return nil
}

func (f *fakeRewardsRepo) GetStreak(_ context.Context, playerID string) (*repo.Streak, error) {
	s := &repo.Streak{PlayerID: playerID, CurrentDay: f.streakDay[playerID]}
	if last, ok := f.lastClaim[playerID]; ok {
		s.LastClaimAt = last
	}
	return s, nil
}

func (f *fakeRewardsRepo) ClaimStreak(_ context.Context, playerID string, now time.Time) (int, error) {
	var last time.Time
	if t, ok := f.lastClaim[playerID]; ok {
		last = t
	}
	elig := streak.Evaluate(last, now)
	if elig == streak.AlreadyClaimed {
		return 0, repo.ErrAlreadyClaimed
	}
	day := streak.NextDay(f.streakDay[playerID], elig)
	f.streakDay[playerID] = day
	f.lastClaim[playerID] = now
	return day, nil
}

type mintRecord struct {
	playerID string
	cents    int64
	tier     string
}

type fakeMintWallet struct {
	credits []mintRecord
	tickets []mintRecord
}

func (f *fakeMintWallet) Credit(_ context.Context, playerID string, cents int64, _ string) (int64, error) {
	f.credits = append(f.credits, mintRecord{playerID: playerID, cents: cents})
	return cents, nil
}

func (f *fakeMintWallet) IssueTicket(_ context.Context, playerID, tier string, _ time.Time) (string, error) {
	f.tickets = append(f.tickets, mintRecord{playerID: playerID, tier: tier})
	return "ticket-1", nil
}

var rewardsNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type rewardsFixture struct {
	srv    http.Handler
	repo   *fakeRewardsRepo
	wallet *fakeMintWallet
	now    time.Time
}

// newRewardsFixture monta o servidor com uma tabela de prêmio único por tier,
// pra não depender de qual prêmio a seed sorteia
func newRewardsFixture(t *testing.T) *rewardsFixture {
	t.Helper()
	coinsOnly, err := selector.NewTable("PRO", []selector.Reward{
		{ID: "pro-coins", Kind: selector.KindCoins, Weight: 1, AmountCents: 500},
	})
	if err != nil {
		t.Fatalf("coins table: %v", err)
	}
	ticketOnly, err := selector.NewTable("ELITE", []selector.Reward{
		{ID: "elite-ticket", Kind: selector.KindTicket, Weight: 1, TicketTier: "ELITE"},
	})
	if err != nil {
		t.Fatalf("ticket table: %v", err)
	}

	f := &rewardsFixture{repo: newFakeRewardsRepo(), wallet: &fakeMintWallet{}, now: rewardsNow}
	srv := NewServer(zap.NewNop(), f.repo, f.wallet,
		map[string]*selector.Table{"PRO": coinsOnly, "ELITE": ticketOnly},
		rand.New(rand.NewSource(1)),
		func() time.Time { return f.now },
	)
	f.srv = srv.Router()
	return f
}

func (f *rewardsFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func TestSpinWithoutSpinsAvailable(t *testing.T) {
	f := newRewardsFixture(t)

	rec := f.post(t, "/rewards/spin", dto.SpinRequest{PlayerID: "p1", Tier: "PRO"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if len(f.wallet.credits) != 0 || len(f.wallet.tickets) != 0 {
		t.Fatal("giro sem saldo premiou o jogador")
	}
	if len(f.repo.history) != 0 {
		t.Fatal("giro sem saldo entrou no histórico")
	}
}

func TestSpinCreditsCoinsPrize(t *testing.T) {
	f := newRewardsFixture(t)
	f.repo.spins[spinKey("p1", "PRO")] = 3

	rec := f.post(t, "/rewards/spin", dto.SpinRequest{PlayerID: "p1", Tier: "PRO"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp dto.SpinResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.RewardID != "pro-coins" || resp.AmountCents != 500 || resp.RemainingSpins != 2 {
		t.Fatalf("resposta errada: %+v", resp)
	}
	if len(f.wallet.credits) != 1 || f.wallet.credits[0].cents != 500 {
		t.Fatalf("crédito do prêmio: %+v", f.wallet.credits)
	}
	if len(f.repo.history) != 1 || f.repo.history[0].rewardID != "pro-coins" {
		t.Fatalf("histórico: %+v", f.repo.history)
	}
}

func TestSpinIssuesTicketPrize(t *testing.T) {
	f := newRewardsFixture(t)
	f.repo.spins[spinKey("p1", "ELITE")] = 1

	rec := f.post(t, "/rewards/spin", dto.SpinRequest{PlayerID: "p1", Tier: "ELITE"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp dto.SpinResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.TicketID != "ticket-1" || resp.TicketTier != "ELITE" {
		t.Fatalf("resposta errada: %+v", resp)
	}
	if len(f.wallet.tickets) != 1 || f.wallet.tickets[0].tier != "ELITE" {
		t.Fatalf("ticket emitido: %+v", f.wallet.tickets)
	}
	if f.repo.spins[spinKey("p1", "ELITE")] != 0 {
		t.Fatal("contador de giros não decrementou")
	}
}

func TestStreakClaimTwiceSameDay(t *testing.T) {
	f := newRewardsFixture(t)

	rec := f.post(t, "/rewards/streak/claim", dto.ClaimStreakRequest{PlayerID: "p1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("first claim: status = %d", rec.Code)
	}
	var resp dto.ClaimStreakResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Day != 1 || resp.Tier != "ROOKIE" {
		t.Fatalf("primeiro resgate: %+v", resp)
	}

	rec = f.post(t, "/rewards/streak/claim", dto.ClaimStreakRequest{PlayerID: "p1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second claim: status = %d, want 409", rec.Code)
	}
	if f.repo.streakDay["p1"] != 1 {
		t.Fatalf("resgate duplicado avançou a sequência: dia %d", f.repo.streakDay["p1"])
	}
}

func TestStreakContinuesAndResets(t *testing.T) {
	f := newRewardsFixture(t)

	f.post(t, "/rewards/streak/claim", dto.ClaimStreakRequest{PlayerID: "p1"})

	// dentro da janela [24h, 48h): continua
	f.now = rewardsNow.Add(25 * time.Hour)
	rec := f.post(t, "/rewards/streak/claim", dto.ClaimStreakRequest{PlayerID: "p1"})
	var resp dto.ClaimStreakResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Day != 2 {
		t.Fatalf("continuação: dia %d, want 2", resp.Day)
	}

	// exatamente 48h depois do último resgate: sequência quebra e volta ao dia 1
	f.now = f.now.Add(48 * time.Hour)
	rec = f.post(t, "/rewards/streak/claim", dto.ClaimStreakRequest{PlayerID: "p1"})
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Day != 1 {
		t.Fatalf("reset: dia %d, want 1", resp.Day)
	}
}

func TestGetStreakEligibility(t *testing.T) {
	f := newRewardsFixture(t)
	f.post(t, "/rewards/streak/claim", dto.ClaimStreakRequest{PlayerID: "p1"})

	req := httptest.NewRequest(http.MethodGet, "/rewards/streak?playerId=p1", nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dto.StreakResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Eligible {
		t.Fatal("elegível logo após o resgate")
	}
	if resp.CurrentDay != 1 {
		t.Fatalf("dia atual %d, want 1", resp.CurrentDay)
	}
}
