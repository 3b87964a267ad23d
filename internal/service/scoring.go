package service

import (
	"github.com/shopspring/decimal"
)

// QuestionScore is the per-question outcome of scoring.
type QuestionScore struct {
	Attempted bool
	Correct   bool
	Marks     decimal.Decimal
}

// ScoreSummary aggregates one attempt's scoring run.
type ScoreSummary struct {
	TotalQuestions   int
	AttemptedCount   int
	CorrectCount     int
	IncorrectCount   int
	UnattemptedCount int
	TotalMarks       decimal.Decimal
	Percentage       decimal.Decimal
	PerQuestion      map[uint]QuestionScore
}

// ScoreAttempt grades the frozen question list against the answer key. It is
// a pure function: no I/O, no clock. A question with no answer row or a nil
// selection is unattempted and contributes nothing; otherwise it earns
// +positive or -negative marks. Marks stay decimal throughout so fractional
// negative marking does not drift; only the percentage is rounded for storage.
func ScoreAttempt(questionIDs []uint, answerKey map[uint]int, selections map[uint]*int, positive, negative decimal.Decimal) ScoreSummary {
	summary := ScoreSummary{
		TotalQuestions: len(questionIDs),
		TotalMarks:     decimal.Zero,
		PerQuestion:    make(map[uint]QuestionScore, len(questionIDs)),
	}

	for _, qid := range questionIDs {
		selected, ok := selections[qid]
		if !ok || selected == nil {
			summary.PerQuestion[qid] = QuestionScore{Marks: decimal.Zero}
			continue
		}

		qs := QuestionScore{Attempted: true}
		if *selected == answerKey[qid] {
			qs.Correct = true
			qs.Marks = positive
			summary.CorrectCount++
		} else {
			qs.Marks = negative.Neg()
			summary.IncorrectCount++
		}
		summary.TotalMarks = summary.TotalMarks.Add(qs.Marks)
		summary.PerQuestion[qid] = qs
	}

	summary.AttemptedCount = summary.CorrectCount + summary.IncorrectCount
	summary.UnattemptedCount = summary.TotalQuestions - summary.AttemptedCount

	maxMarks := positive.Mul(decimal.NewFromInt(int64(summary.TotalQuestions)))
	if maxMarks.IsZero() {
		summary.Percentage = decimal.Zero
	} else {
		summary.Percentage = summary.TotalMarks.
			Div(maxMarks).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	summary.TotalMarks = summary.TotalMarks.Round(2)

	return summary
}
