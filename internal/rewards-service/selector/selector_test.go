package selector

import (
	"math"
	"math/rand"
	"testing"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable("PRO", []Reward{
		{ID: "coins-small", Kind: KindCoins, Weight: 60, AmountCents: 100},
		{ID: "coins-big", Kind: KindCoins, Weight: 25, AmountCents: 1_000},
		{ID: "ticket-pro", Kind: KindTicket, Weight: 10, TicketTier: "PRO"},
		{ID: "premium-7d", Kind: KindPremiumDays, Weight: 5, PremiumDays: 7},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestTableValidation(t *testing.T) {
	cases := []struct {
		name    string
		rewards []Reward
	}{
		{"empty table", nil},
		{"zero weight", []Reward{{ID: "x", Kind: KindCoins, Weight: 0, AmountCents: 100}}},
		{"unknown kind", []Reward{{ID: "x", Kind: "MYSTERY_BOX", Weight: 1}}},
		{"coins without amount", []Reward{{ID: "x", Kind: KindCoins, Weight: 1}}},
		{"ticket without tier", []Reward{{ID: "x", Kind: KindTicket, Weight: 1}}},
		{"premium without days", []Reward{{ID: "x", Kind: KindPremiumDays, Weight: 1}}},
		{"missing id", []Reward{{Kind: KindCoins, Weight: 1, AmountCents: 100}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTable("PRO", tc.rewards); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDrawIsReproducible(t *testing.T) {
	tbl := testTable(t)

	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		if got, want := tbl.Draw(a).ID, tbl.Draw(b).ID; got != want {
			t.Fatalf("draw %d: %s != %s com a mesma seed", i, got, want)
		}
	}
}

func TestDrawDistributionMatchesWeights(t *testing.T) {
	tbl := testTable(t)
	rng := rand.New(rand.NewSource(7))

	const n = 100_000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		counts[tbl.Draw(rng).ID]++
	}

	want := map[string]float64{
		"coins-small": 0.60,
		"coins-big":   0.25,
		"ticket-pro":  0.10,
		"premium-7d":  0.05,
	}
	for id, frac := range want {
		got := float64(counts[id]) / n
		if math.Abs(got-frac) > 0.01 {
			t.Errorf("%s: frequência %.3f, esperado ~%.2f", id, got, frac)
		}
	}
}
