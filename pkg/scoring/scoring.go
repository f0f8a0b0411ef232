package scoring

import "math"

// Pontuações máximas por critério
const (
	ResultPoints     = 15
	GoalDiffPoints   = 15
	AccuracyPoints   = 15
	ExactScorePoints = 15
	BonusPerQuestion = 10
	MaxBonusAnswers  = 4

	// Penalidade aplicada quando o palpite foi editado durante a partida
	MidtimeEditFactor = 0.6
)

// Prediction é o palpite de placar de um jogador para uma partida
type Prediction struct {
	Home int
	Away int
}

// Result é o placar final real de uma partida
type Result struct {
	Home int
	Away int
}

// BonusAnswer é a resposta de um jogador a uma pergunta bônus,
// já pareada com o gabarito resolvido no fim da partida
type BonusAnswer struct {
	Submitted string
	Correct   string
}

// Breakdown detalha os pontos obtidos em cada critério.
// TotalPoints é o valor final gravado na entrada do jogador.
type Breakdown struct {
	ResultPts   int
	GoalDiffPts int
	AccuracyPts int
	ExactPts    int
	ScoreFinal  int // soma dos critérios de placar, já com malus de edição aplicado
	BonusTotal  int
	TotalPoints int
}

// outcome classifica um placar em vitória do mandante, empate ou vitória do visitante
func outcome(home, away int) int {
	switch {
	case home > away:
		return 1
	case home < away:
		return -1
	default:
		return 0
	}
}

// goalDiffPoints pontua a diferença entre os saldos de gols previsto e real:
// 15 para saldo exato, 8 para erro de 1, 4 para erro de 2, 0 além disso
func goalDiffPoints(pred Prediction, res Result) int {
	diff := (res.Home - res.Away) - (pred.Home - pred.Away)
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return GoalDiffPoints
	case 1:
		return 8
	case 2:
		return 4
	default:
		return 0
	}
}

// accuracyPoints pontua a precisão gol a gol: max(0, 15 - 4*erro_total)
func accuracyPoints(pred Prediction, res Result) int {
	delta := abs(pred.Home-res.Home) + abs(pred.Away-res.Away)
	pts := AccuracyPoints - 4*delta
	if pts < 0 {
		return 0
	}
	return pts
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Evaluate calcula os pontos de uma previsão contra o resultado real.
// É uma função pura: mesmas entradas produzem sempre a mesma saída,
// então pode ser reexecutada quando o placar ou o gabarito forem corrigidos.
func Evaluate(pred Prediction, res Result, midtimeEdit bool, answers []BonusAnswer) Breakdown {
	var b Breakdown

	if outcome(pred.Home, pred.Away) == outcome(res.Home, res.Away) {
		b.ResultPts = ResultPoints
	}
	b.GoalDiffPts = goalDiffPoints(pred, res)
	b.AccuracyPts = accuracyPoints(pred, res)
	if pred.Home == res.Home && pred.Away == res.Away {
		b.ExactPts = ExactScorePoints
	}

	score := float64(b.ResultPts + b.GoalDiffPts + b.AccuracyPts + b.ExactPts)
	if midtimeEdit {
		score = score * MidtimeEditFactor
	}
	b.ScoreFinal = int(math.Round(score))

	// No máximo 4 perguntas bônus contam pontos
	n := len(answers)
	if n > MaxBonusAnswers {
		n = MaxBonusAnswers
	}
	for _, a := range answers[:n] {
		if a.Submitted != "" && a.Submitted == a.Correct {
			b.BonusTotal += BonusPerQuestion
		}
	}

	b.TotalPoints = b.ScoreFinal + b.BonusTotal
	return b
}
