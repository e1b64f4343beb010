package strategy

import "signal_bot/internal/models"

// last возвращает n последних свечей или nil, если их меньше.
func last(candles []models.Candle, n int) []models.Candle {
	if len(candles) < n {
		return nil
	}
	return candles[len(candles)-n:]
}

// Engulfing: тело текущей свечи целиком перекрывает тело предыдущей
// противоположного цвета.
func Engulfing(candles []models.Candle) (models.Pattern, bool) {
	cs := last(candles, 2)
	if cs == nil {
		return models.PatternNone, false
	}
	prev, cur := cs[0], cs[1]

	if prev.Bearish() && cur.Bullish() && cur.Close > prev.Open && cur.Open < prev.Close {
		return models.PatternBullishEngulfing, true
	}
	if prev.Bullish() && cur.Bearish() && cur.Open > prev.Close && cur.Close < prev.Open {
		return models.PatternBearishEngulfing, true
	}
	return models.PatternNone, false
}

// Marubozu: свеча без теней.
func Marubozu(candles []models.Candle) (models.Pattern, bool) {
	cs := last(candles, 1)
	if cs == nil {
		return models.PatternNone, false
	}
	c := cs[0]

	if c.Open == c.Low && c.Close == c.High {
		return models.PatternBullishMarubozu, true
	}
	if c.Open == c.High && c.Close == c.Low {
		return models.PatternBearishMarubozu, true
	}
	return models.PatternNone, false
}

// Hammer: нижняя тень больше двух тел, свеча растущая.
func Hammer(candles []models.Candle) (models.Pattern, bool) {
	cs := last(candles, 1)
	if cs == nil {
		return models.PatternNone, false
	}
	c := cs[0]

	if c.Open-c.Low > 2*c.Body() && c.Bullish() {
		return models.PatternHammer, true
	}
	return models.PatternNone, false
}

// HangingMan: верхняя тень (от open) больше двух тел, свеча падающая.
func HangingMan(candles []models.Candle) (models.Pattern, bool) {
	cs := last(candles, 1)
	if cs == nil {
		return models.PatternNone, false
	}
	c := cs[0]

	if c.High-c.Open > 2*c.Body() && c.Bearish() {
		return models.PatternHangingMan, true
	}
	return models.PatternNone, false
}

// MorningStar: медвежья свеча, провал ниже её close, затем рост выше её open.
func MorningStar(candles []models.Candle) (models.Pattern, bool) {
	cs := last(candles, 3)
	if cs == nil {
		return models.PatternNone, false
	}
	first, second, third := cs[0], cs[1], cs[2]

	if first.Bearish() && second.Low < first.Close && third.Bullish() && third.Close > first.Open {
		return models.PatternMorningStar, true
	}
	return models.PatternNone, false
}
