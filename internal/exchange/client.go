package exchange

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// ErrNoData — котировок нет (пустой ответ или сбой запроса).
var ErrNoData = errors.New("market data unavailable")

const timeSeriesPath = "/stock-time-series-source-2"

// Client — REST-клиент RapidAPI real-time-finance-data.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	apiHost string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.MarketData.Timeout},
		baseURL: cfg.MarketData.BaseURL,
		apiKey:  cfg.MarketData.APIKey,
		apiHost: cfg.MarketData.APIHost,
	}
}

type ohlc struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type timeSeriesResponse struct {
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Data struct {
		Symbol     string          `json:"symbol"`
		Price      float64         `json:"price"`
		TimeSeries map[string]ohlc `json:"time_series"`
	} `json:"data"`
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// FetchCandles тянет свечи symbol за period с шагом interval, по возрастанию времени.
// Пустой ряд — ErrNoData.
func (c *Client) FetchCandles(ctx context.Context, symbol, period, interval string) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("period", period)
	if interval != "" {
		q.Set("interval", interval)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+timeSeriesPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrNoData, "%s: %v", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrNoData, "%s: read body: %v", symbol, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Wrapf(ErrNoData, "%s: http %d: %s", symbol, resp.StatusCode, string(body))
	}

	var wrap timeSeriesResponse
	if err := sonic.Unmarshal(body, &wrap); err != nil {
		return nil, errors.Wrapf(ErrNoData, "%s: decode: %v", symbol, err)
	}
	if wrap.Status != "OK" {
		return nil, errors.Wrapf(ErrNoData, "%s: status=%s msg=%s", symbol, wrap.Status, wrap.Error.Message)
	}

	candles := make([]models.Candle, 0, len(wrap.Data.TimeSeries))
	for ts, v := range wrap.Data.TimeSeries {
		t, ok := parseTime(ts)
		if !ok {
			continue
		}
		candles = append(candles, models.Candle{
			Time:  t,
			Open:  v.Open,
			High:  v.High,
			Low:   v.Low,
			Close: v.Close,
		})
	}
	if len(candles) == 0 {
		return nil, errors.Wrapf(ErrNoData, "%s: empty time series", symbol)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
