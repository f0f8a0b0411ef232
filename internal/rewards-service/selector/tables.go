package selector

// DefaultTables monta as tabelas de sorteio padrão por tier.
// A validação acontece aqui, na carga: um prêmio malformado derruba o
// serviço no boot em vez de aparecer como sorteio quebrado em produção.
func DefaultTables() (map[string]*Table, error) {
	specs := map[string][]Reward{
		"ROOKIE": {
			{ID: "rookie-coins-100", Kind: KindCoins, Weight: 55, AmountCents: 100},
			{ID: "rookie-coins-500", Kind: KindCoins, Weight: 30, AmountCents: 500},
			{ID: "rookie-ticket", Kind: KindTicket, Weight: 12, TicketTier: "ROOKIE"},
			{ID: "rookie-premium-1d", Kind: KindPremiumDays, Weight: 3, PremiumDays: 1},
		},
		"PRO": {
			{ID: "pro-coins-500", Kind: KindCoins, Weight: 50, AmountCents: 500},
			{ID: "pro-coins-2000", Kind: KindCoins, Weight: 28, AmountCents: 2_000},
			{ID: "pro-ticket", Kind: KindTicket, Weight: 17, TicketTier: "PRO"},
			{ID: "pro-premium-3d", Kind: KindPremiumDays, Weight: 5, PremiumDays: 3},
		},
		"ELITE": {
			{ID: "elite-coins-2000", Kind: KindCoins, Weight: 45, AmountCents: 2_000},
			{ID: "elite-coins-10000", Kind: KindCoins, Weight: 25, AmountCents: 10_000},
			{ID: "elite-ticket", Kind: KindTicket, Weight: 22, TicketTier: "ELITE"},
			{ID: "elite-premium-7d", Kind: KindPremiumDays, Weight: 8, PremiumDays: 7},
		},
	}

	out := make(map[string]*Table, len(specs))
	for tier, rewards := range specs {
		t, err := NewTable(tier, rewards)
		if err != nil {
			return nil, err
		}
		out[tier] = t
	}
	return out, nil
}
