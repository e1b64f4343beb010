package models

import (
	"math"
	"time"
)

// Candle — одна OHLC-свеча, после получения не меняется.
type Candle struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

func (c Candle) Bullish() bool { return c.Close > c.Open }
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Body — размер тела без знака.
func (c Candle) Body() float64 { return math.Abs(c.Close - c.Open) }
