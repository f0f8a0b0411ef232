package limits

import "errors"

var ErrBetLimitExceeded = errors.New("bet limit exceeded")

// Teto de aposta por nível do jogador, em centavos de moeda virtual.
// Níveis acima do último degrau herdam o teto máximo.
var ceilingByLevel = []int64{
	1: 1_000,
	2: 2_500,
	3: 5_000,
	4: 10_000,
	5: 25_000,
}

// MaxStake retorna o teto de aposta para o nível informado
func MaxStake(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level >= len(ceilingByLevel) {
		level = len(ceilingByLevel) - 1
	}
	return ceilingByLevel[level]
}

// Check valida o valor da aposta contra o teto do nível
func Check(level int, stakeCents int64) error {
	if stakeCents > MaxStake(level) {
		return ErrBetLimitExceeded
	}
	return nil
}
