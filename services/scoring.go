package services

// Outcome is the coarse result class of a scoreline.
type Outcome int

const (
	OutcomeAwayWin Outcome = -1
	OutcomeDraw    Outcome = 0
	OutcomeHomeWin Outcome = 1
)

const (
	ExactScorePoints     = 3
	CorrectOutcomePoints = 1
)

// OutcomeOf returns the sign of home - away.
func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHomeWin
	case home < away:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

type PredictionScore struct {
	Points int
	Exact  bool
}

// ScorePrediction оценивает прогноз относительно итогового счёта.
// Точный счёт даёт 3 очка (без добавки за исход), угаданный исход 1, иначе 0.
func ScorePrediction(resultHome, resultAway, predictedHome, predictedAway int) PredictionScore {
	if resultHome == predictedHome && resultAway == predictedAway {
		return PredictionScore{Points: ExactScorePoints, Exact: true}
	}
	if OutcomeOf(resultHome, resultAway) == OutcomeOf(predictedHome, predictedAway) {
		return PredictionScore{Points: CorrectOutcomePoints}
	}
	return PredictionScore{}
}
