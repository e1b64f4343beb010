package models

import "time"

// Signal создаёт планировщик, потребляет ровно один раз оценщик.
type Signal struct {
	ID        string
	Symbol    string
	Name      string
	Pattern   Pattern
	Direction Direction
	Price     float64 // close последней свечи на момент сигнала
	CreatedAt time.Time
}
