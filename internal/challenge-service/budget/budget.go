package budget

import "errors"

var ErrBudgetExceeded = errors.New("daily budget exceeded")

// Check valida que a soma dos valores apostados no dia não passa do
// orçamento diário do desafio. As apostas do desafio saem de um pool
// fixo por dia, não da carteira principal do jogador.
func Check(amounts []int64, dailyBudgetCents int64) error {
	var total int64
	for _, a := range amounts {
		if a <= 0 {
			return errors.New("invalid bet amount")
		}
		total += a
	}
	if total > dailyBudgetCents {
		return ErrBudgetExceeded
	}
	return nil
}
