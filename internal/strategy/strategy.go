package strategy

import "signal_bot/internal/models"

// Detector — чистая функция над последними свечами (по возрастанию времени).
// ok==false — паттерна нет, это не ошибка.
type Detector func(candles []models.Candle) (models.Pattern, bool)

// Priority — порядок проверки. Первый сработавший выигрывает, остальные не зовём.
var Priority = []Detector{
	Engulfing,
	Marubozu,
	Hammer,
	HangingMan,
	MorningStar,
}

// Detect прогоняет детекторы по Priority.
func Detect(candles []models.Candle) (models.Pattern, bool) {
	for _, d := range Priority {
		if p, ok := d(candles); ok {
			return p, true
		}
	}
	return models.PatternNone, false
}
