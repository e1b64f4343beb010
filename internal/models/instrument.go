package models

import "time"

// Instrument — отслеживаемый символ.
// LastSignalAt меняет только планировщик.
type Instrument struct {
	Symbol       string
	Name         string
	LastSignalAt time.Time
}
