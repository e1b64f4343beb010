package models

import "time"

type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Label — подпись для сводки.
func (r Result) Label() string {
	if r == ResultSuccess {
		return "Positive"
	}
	return "Negative"
}

// Outcome — итог оценки одного сигнала.
type Outcome struct {
	Signal       Signal
	Result       Result
	InitialPrice float64
	FinalPrice   *float64 // nil, если котировку получить не удалось
	Retries      int      // 0 или 1
	FinishedAt   time.Time
}

// SessionSummary — пачка исходов за окно From..To.
type SessionSummary struct {
	Outcomes []Outcome
	From     time.Time
	To       time.Time
}
