package models

import "strings"

// Direction — куда, по мнению паттерна, пойдёт цена.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Met сравнивает итоговую цену с ценой входа в сторону прогноза.
// Равенство цен прогноз не подтверждает.
func (d Direction) Met(initial, final float64) bool {
	switch d {
	case DirectionUp:
		return final > initial
	case DirectionDown:
		return final < initial
	default:
		return false
	}
}

// Arrow для сообщений в канал.
func (d Direction) Arrow() string {
	switch d {
	case DirectionUp:
		return "⬆️"
	case DirectionDown:
		return "⬇️"
	default:
		return "➖"
	}
}

type Pattern string

const (
	PatternNone             Pattern = ""
	PatternBullishEngulfing Pattern = "bullish_engulfing"
	PatternBearishEngulfing Pattern = "bearish_engulfing"
	PatternBullishMarubozu  Pattern = "bullish_marubozu"
	PatternBearishMarubozu  Pattern = "bearish_marubozu"
	PatternHammer           Pattern = "hammer"
	PatternHangingMan       Pattern = "hanging_man"
	PatternMorningStar      Pattern = "morning_star"
)

// Direction резолвится один раз при детекте и дальше едет на сигнале.
func (p Pattern) Direction() Direction {
	switch p {
	case PatternBullishEngulfing, PatternBullishMarubozu, PatternHammer, PatternMorningStar:
		return DirectionUp
	case PatternBearishEngulfing, PatternBearishMarubozu, PatternHangingMan:
		return DirectionDown
	default:
		return DirectionNone
	}
}

// Title — человекочитаемое имя: "bullish_engulfing" -> "Bullish Engulfing".
func (p Pattern) Title() string {
	words := strings.Split(string(p), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
