package selector

import (
	"errors"
	"fmt"
	"math/rand"
)

// Tipos fechados de prêmio; a tabela é validada na carga para que o
// sorteio nunca referencie um prêmio desconhecido ou malformado
const (
	KindCoins       = "COINS"
	KindTicket      = "TICKET"
	KindPremiumDays = "PREMIUM_DAYS"
)

var ErrEmptyTable = errors.New("empty reward table")

// Reward é uma variante da tabela de prêmios de um tier.
// O campo relevante depende do Kind; os demais ficam zerados.
type Reward struct {
	ID          string
	Kind        string
	Weight      int
	AmountCents int64  // COINS
	TicketTier  string // TICKET
	PremiumDays int    // PREMIUM_DAYS
}

// Table é a tabela de sorteio de um tier, com pesos pré-somados
type Table struct {
	Tier    string
	rewards []Reward
	total   int
}

// NewTable valida e congela a tabela de prêmios de um tier
func NewTable(tier string, rewards []Reward) (*Table, error) {
	if len(rewards) == 0 {
		return nil, ErrEmptyTable
	}
	t := &Table{Tier: tier}
	for _, r := range rewards {
		if r.ID == "" {
			return nil, fmt.Errorf("reward without id in tier %s", tier)
		}
		if r.Weight <= 0 {
			return nil, fmt.Errorf("reward %s: weight must be positive", r.ID)
		}
		switch r.Kind {
		case KindCoins:
			if r.AmountCents <= 0 {
				return nil, fmt.Errorf("reward %s: coins amount must be positive", r.ID)
			}
		case KindTicket:
			if r.TicketTier == "" {
				return nil, fmt.Errorf("reward %s: ticket tier required", r.ID)
			}
		case KindPremiumDays:
			if r.PremiumDays <= 0 {
				return nil, fmt.Errorf("reward %s: premium days must be positive", r.ID)
			}
		default:
			return nil, fmt.Errorf("reward %s: unknown kind %q", r.ID, r.Kind)
		}
		t.rewards = append(t.rewards, r)
		t.total += r.Weight
	}
	return t, nil
}

// Draw sorteia um prêmio por peso cumulativo: um uniforme em [0, total)
// seleciona o primeiro prêmio cujo peso acumulado ultrapassa o valor.
// O RNG é injetado para que o sorteio seja reprodutível em teste.
func (t *Table) Draw(rng *rand.Rand) Reward {
	n := rng.Intn(t.total)
	cum := 0
	for _, r := range t.rewards {
		cum += r.Weight
		if n < cum {
			return r
		}
	}
	// inalcançável: total é a soma dos pesos
	return t.rewards[len(t.rewards)-1]
}
