package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/challenge-service/dto"
	"github.com/radieske/fan-arena-platform-poc/internal/challenge-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/walletclient"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type fakeChallengeRepo struct {
	challenges map[string]*repo.Challenge
	entries    map[string]*repo.Entry // key: challenge/player
	days       map[string][]repo.Day  // key: entryID
	nextID     int

	// próximas N ativações falham, simulando queda entre pagamento e ativação
	activateFailures int
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{
		challenges: map[string]*repo.Challenge{},
		entries:    map[string]*repo.Entry{},
		days:       map[string][]repo.Day{},
	}
}

func entryKey(challengeID, playerID string) string { return challengeID + "/" + playerID }

func (f *fakeChallengeRepo) GetChallenge(_ context.Context, id string) (*repo.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return nil, repo.ErrChallengeNotFound
	}
	return c, nil
}

func (f *fakeChallengeRepo) InsertEntry(_ context.Context, challengeID, playerID, method string) (bool, *repo.Entry, error) {
	k := entryKey(challengeID, playerID)
	if e, ok := f.entries[k]; ok {
		return false, e, nil
	}
	f.nextID++
	e := &repo.Entry{
		ID:          "entry-" + challengeID + "-" + playerID,
		ChallengeID: challengeID,
		PlayerID:    playerID,
		Method:      method,
		Status:      repo.EntryPendingPayment,
		JoinedAt:    testNow,
	}
	f.entries[k] = e
	return true, e, nil
}

func (f *fakeChallengeRepo) ActivateEntry(_ context.Context, entryID, ticketID string) error {
	if f.activateFailures > 0 {
		f.activateFailures--
		return errors.New("db unavailable")
	}
	for _, e := range f.entries {
		if e.ID == entryID {
			e.Status = repo.EntryActive
			e.TicketID = ticketID
		}
	}
	return nil
}

func (f *fakeChallengeRepo) DeleteEntry(_ context.Context, entryID string) error {
	for k, e := range f.entries {
		if e.ID == entryID && e.Status == repo.EntryPendingPayment {
			delete(f.entries, k)
		}
	}
	return nil
}

func (f *fakeChallengeRepo) GetEntry(_ context.Context, challengeID, playerID string) (*repo.Entry, error) {
	e, ok := f.entries[entryKey(challengeID, playerID)]
	if !ok {
		return nil, repo.ErrEntryNotFound
	}
	return e, nil
}

func (f *fakeChallengeRepo) ReplaceDay(_ context.Context, entryID string, day int, booster string, bets []repo.DayBet) error {
	ds := f.days[entryID]
	for i := range ds {
		if ds[i].Day == day {
			ds[i] = repo.Day{Day: day, Booster: booster, Bets: bets}
			return nil
		}
	}
	f.days[entryID] = append(ds, repo.Day{Day: day, Booster: booster, Bets: bets})
	return nil
}

func (f *fakeChallengeRepo) ListDays(_ context.Context, entryID string) ([]repo.Day, error) {
	return f.days[entryID], nil
}

// fakeJoinWallet contabiliza débitos e consumos de ticket com refs idempotentes
type fakeJoinWallet struct {
	balance  int64
	tickets  int
	debits   int
	consumed int
	seenRefs map[string]bool
}

func newFakeJoinWallet() *fakeJoinWallet {
	return &fakeJoinWallet{seenRefs: map[string]bool{}}
}

func (f *fakeJoinWallet) Debit(_ context.Context, _ string, cents int64, ref string) (int64, error) {
	if f.seenRefs[ref] {
		return f.balance, nil
	}
	if f.balance < cents {
		return 0, walletclient.ErrInsufficientFunds
	}
	f.balance -= cents
	f.debits++
	f.seenRefs[ref] = true
	return f.balance, nil
}

func (f *fakeJoinWallet) ConsumeTicket(_ context.Context, _ string, _ string, ref string) (string, error) {
	if f.seenRefs[ref] {
		return "ticket-1", nil
	}
	if f.tickets <= 0 {
		return "", walletclient.ErrNoValidTicket
	}
	f.tickets--
	f.consumed++
	f.seenRefs[ref] = true
	return "ticket-1", nil
}

type challengeFixture struct {
	srv    http.Handler
	repo   *fakeChallengeRepo
	wallet *fakeJoinWallet
}

func newChallengeFixture() *challengeFixture {
	f := &challengeFixture{repo: newFakeChallengeRepo(), wallet: newFakeJoinWallet()}
	f.repo.challenges["ch1"] = &repo.Challenge{
		ID: "ch1", Name: "Rodada Semanal", Tier: "PRO",
		EntryCostCents: 500, DailyBudgetCents: 1_000, DurationDays: 7,
		StartsAt: testNow.Add(-24 * time.Hour), EndsAt: testNow.Add(6 * 24 * time.Hour),
	}
	f.srv = NewServer(zap.NewNop(), f.repo, f.wallet, func() time.Time { return testNow }).Router()
	return f
}

func (f *challengeFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func TestJoinWithCoinsChargesOnce(t *testing.T) {
	f := newChallengeFixture()
	f.wallet.balance = 2_000

	rec := f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "coins"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if f.wallet.balance != 1_500 || f.wallet.debits != 1 {
		t.Fatalf("cobrança errada: balance=%d debits=%d", f.wallet.balance, f.wallet.debits)
	}
	if f.wallet.consumed != 0 {
		t.Fatal("ticket consumido em join por moedas")
	}

	// Segundo join é sucesso informativo, sem nova cobrança
	rec = f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "coins"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rejoin: status = %d", rec.Code)
	}
	var resp dto.JoinResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.AlreadyJoined {
		t.Fatal("rejoin deveria sinalizar already_joined")
	}
	if f.wallet.debits != 1 {
		t.Fatalf("rejoin cobrou de novo: debits=%d", f.wallet.debits)
	}
}

func TestJoinWithTicketConsumesExactlyOne(t *testing.T) {
	f := newChallengeFixture()
	f.wallet.tickets = 2
	f.wallet.balance = 2_000

	rec := f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "ticket"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if f.wallet.consumed != 1 {
		t.Fatalf("consumo de ticket = %d, want 1", f.wallet.consumed)
	}
	if f.wallet.debits != 0 {
		t.Fatal("join por ticket debitou a carteira")
	}
}

func TestJoinWithoutValidTicket(t *testing.T) {
	f := newChallengeFixture()
	f.wallet.tickets = 0
	f.wallet.balance = 2_000

	rec := f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "ticket"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	// saldo intacto e inscrição desfeita: o jogador pode tentar de novo com moedas
	if f.wallet.balance != 2_000 {
		t.Fatalf("saldo mudou: %d", f.wallet.balance)
	}
	if len(f.repo.entries) != 0 {
		t.Fatal("inscrição pendente ficou pra trás após falha de pagamento")
	}
}

func TestJoinInsufficientFundsRollsBackEntry(t *testing.T) {
	f := newChallengeFixture()
	f.wallet.balance = 100

	rec := f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "coins"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if len(f.repo.entries) != 0 {
		t.Fatal("inscrição pendente ficou pra trás")
	}
}

// Queda entre o pagamento e a ativação não pode deixar o jogador pago e
// fora do desafio: o join seguinte retoma o fluxo sem cobrar de novo.
func TestJoinResumesAfterInterruptedActivation(t *testing.T) {
	f := newChallengeFixture()
	f.wallet.balance = 2_000
	f.repo.activateFailures = 1

	rec := f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "coins"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("join com ativação caída: status = %d, want 500", rec.Code)
	}
	if f.wallet.balance != 1_500 || f.wallet.debits != 1 {
		t.Fatalf("pagamento deveria ter acontecido: balance=%d debits=%d", f.wallet.balance, f.wallet.debits)
	}
	if e := f.repo.entries[entryKey("ch1", "p1")]; e == nil || e.Status != repo.EntryPendingPayment {
		t.Fatalf("inscrição deveria aguardar ativação: %+v", e)
	}

	// Retry retoma: ref idempotente não cobra de novo, e a inscrição ativa
	rec = f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "coins"})
	if rec.Code != http.StatusOK {
		t.Fatalf("retry do join: status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp dto.JoinResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != repo.EntryActive || !resp.AlreadyJoined {
		t.Fatalf("retry deveria ativar a inscrição existente: %+v", resp)
	}
	if f.wallet.balance != 1_500 || f.wallet.debits != 1 {
		t.Fatalf("retry cobrou de novo: balance=%d debits=%d", f.wallet.balance, f.wallet.debits)
	}

	// Com a inscrição ativa, o registro de dias volta a funcionar
	day := dto.RecordDayRequest{
		PlayerID: "p1", ChallengeID: "ch1", Day: 1,
		Bets: []dto.DayBet{{MatchID: "m1", Prediction: "home", AmountCents: 500, OddValue: 2.0}},
	}
	if rec := f.post(t, "/challenges/days", day); rec.Code != http.StatusOK {
		t.Fatalf("dia após retomada: status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRecordDayBudget(t *testing.T) {
	f := newChallengeFixture()
	f.wallet.balance = 2_000
	f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "coins"})

	ok := dto.RecordDayRequest{
		PlayerID: "p1", ChallengeID: "ch1", Day: 1,
		Bets: []dto.DayBet{
			{MatchID: "m1", Prediction: "home", AmountCents: 600, OddValue: 1.8},
			{MatchID: "m2", Prediction: "draw", AmountCents: 400, OddValue: 3.1},
		},
	}
	if rec := f.post(t, "/challenges/days", ok); rec.Code != http.StatusOK {
		t.Fatalf("dia dentro do orçamento: status = %d body=%s", rec.Code, rec.Body.String())
	}

	over := ok
	over.Bets = []dto.DayBet{{MatchID: "m1", Prediction: "home", AmountCents: 1_200, OddValue: 1.8}}
	if rec := f.post(t, "/challenges/days", over); rec.Code != http.StatusConflict {
		t.Fatalf("dia acima do orçamento: status = %d, want 409", rec.Code)
	}
}

func TestRecordDayReplacesPrevious(t *testing.T) {
	f := newChallengeFixture()
	f.wallet.balance = 2_000
	f.post(t, "/challenges/join", dto.JoinRequest{PlayerID: "p1", ChallengeID: "ch1", Method: "coins"})

	day := dto.RecordDayRequest{
		PlayerID: "p1", ChallengeID: "ch1", Day: 2,
		Bets: []dto.DayBet{{MatchID: "m1", Prediction: "home", AmountCents: 500, OddValue: 2.0}},
	}
	f.post(t, "/challenges/days", day)

	day.Bets = []dto.DayBet{{MatchID: "m2", Prediction: "away", AmountCents: 700, OddValue: 2.5}}
	day.Booster = "DOUBLE"
	f.post(t, "/challenges/days", day)

	entry := f.repo.entries[entryKey("ch1", "p1")]
	days := f.repo.days[entry.ID]
	if len(days) != 1 {
		t.Fatalf("esperava 1 dia registrado, tem %d", len(days))
	}
	if len(days[0].Bets) != 1 || days[0].Bets[0].MatchID != "m2" || days[0].Booster != "DOUBLE" {
		t.Fatalf("dia não foi substituído: %+v", days[0])
	}
}
