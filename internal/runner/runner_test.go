package runner

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
	"signal_bot/pkg/metrics"
)

// fakeMarket отдаёт ответы по очереди; последний повторяется.
type fakeMarket struct {
	mu        sync.Mutex
	responses map[string][][]models.Candle
	errs      map[string]error
	calls     map[string]int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		responses: map[string][][]models.Candle{},
		errs:      map[string]error{},
		calls:     map[string]int{},
	}
}

func (f *fakeMarket) push(symbol string, series ...[]models.Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[symbol] = append(f.responses[symbol], series...)
}

func (f *fakeMarket) FetchCandles(ctx context.Context, symbol, _, _ string) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++

	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	q := f.responses[symbol]
	if len(q) == 0 {
		return nil, exchange.ErrNoData
	}
	resp := q[0]
	if len(q) > 1 {
		f.responses[symbol] = q[1:]
	}
	return resp, nil
}

func (f *fakeMarket) callsFor(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
	err  error
	sent chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(chan string, 64)}
}

func (f *fakeNotifier) Send(_ context.Context, _ int64, msg string) error {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
	select {
	case f.sent <- msg:
	default:
	}
	return f.err
}

func (f *fakeNotifier) count(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.msgs {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	r      *Runner
	md     *fakeMarket
	n      *fakeNotifier
	clock  *fakeClock
	rec    *metrics.Recorder
	reg    *prometheus.Registry
	sleeps []time.Duration
}

func testConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{Token: "t", ChannelID: -100},
		MarketData: config.MarketDataConfig{
			Period:   "1D",
			Interval: "1min",
			Timeout:  time.Second,
		},
		Engine: config.EngineConfig{
			TickInterval:      time.Minute,
			Cooldown:          5 * time.Minute,
			EvaluationHorizon: 68 * time.Second,
			MartingaleRetries: 1,
			BatchSize:         5,
			SummaryLookback:   30 * time.Minute,
			HorizonLabel:      "1 minute",
			Timezone:          "UTC",
		},
		Instruments: []config.InstrumentConfig{{Symbol: "BTC-USD", Name: "BTC/USD"}},
	}
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	h := &harness{
		md:    newFakeMarket(),
		n:     newFakeNotifier(),
		clock: &fakeClock{t: time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)},
		reg:   prometheus.NewRegistry(),
	}
	h.rec = metrics.New(h.reg)
	h.r = New(cfg, h.md, h.n, zaptest.NewLogger(t), h.rec, service.NewState())
	h.r.now = h.clock.Now
	h.r.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.sleeps = append(h.sleeps, d)
		h.clock.Advance(d)
		return nil
	}
	return h
}

// metric — значение счётчика из реестра; label == "" для счётчика без меток.
func (h *harness) metric(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := h.reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func bullishEngulfing() []models.Candle {
	return []models.Candle{
		{Open: 100, High: 101, Low: 89, Close: 90},
		{Open: 88, High: 106, Low: 87, Close: 105},
	}
}

func closeAt(v float64) []models.Candle {
	return []models.Candle{{Open: v, High: v, Low: v, Close: v}}
}

func (h *harness) tickOne(t *testing.T) models.Signal {
	t.Helper()
	if n := h.r.Tick(context.Background()); n != 1 {
		t.Fatalf("queued = %d, want 1", n)
	}
	sig, ok := h.r.queue.TryPop()
	if !ok {
		t.Fatalf("queue is empty after tick")
	}
	return sig
}

func TestScenarioSuccessWithoutRetry(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Engine.MartingaleRetries = 0 })
	h.md.push("BTC-USD", bullishEngulfing(), closeAt(110))

	sig := h.tickOne(t)
	if sig.Pattern != models.PatternBullishEngulfing || sig.Direction != models.DirectionUp || sig.Price != 105 {
		t.Fatalf("unexpected signal %+v", sig)
	}
	if sig.ID == "" {
		t.Fatalf("signal id is empty")
	}

	out, ok := h.r.process(context.Background(), sig)
	if !ok {
		t.Fatalf("outcome not produced")
	}
	if out.Result != models.ResultSuccess || out.Retries != 0 {
		t.Fatalf("got %s retries=%d", out.Result, out.Retries)
	}
	if out.FinalPrice == nil || *out.FinalPrice != 110 {
		t.Fatalf("final price = %v", out.FinalPrice)
	}
	if len(h.sleeps) != 1 || h.sleeps[0] != 68*time.Second {
		t.Fatalf("sleeps = %v", h.sleeps)
	}
	if h.n.count("BTC/USD") == 0 {
		t.Fatalf("signal message not sent: %v", h.n.msgs)
	}
	if got := h.metric(t, "signal_bot_outcomes_total", "result", "success"); got != 1 {
		t.Fatalf("success outcomes = %v", got)
	}
}

func TestScenarioSuccessAfterRetry(t *testing.T) {
	h := newHarness(t, nil)
	h.md.push("BTC-USD", bullishEngulfing(), closeAt(100), closeAt(108))

	out, ok := h.r.process(context.Background(), h.tickOne(t))
	if !ok {
		t.Fatalf("outcome not produced")
	}
	if out.Result != models.ResultSuccess || out.Retries != 1 {
		t.Fatalf("got %s retries=%d", out.Result, out.Retries)
	}
	if *out.FinalPrice != 108 {
		t.Fatalf("final = %v", *out.FinalPrice)
	}
	if len(h.sleeps) != 2 {
		t.Fatalf("want two horizons, got %v", h.sleeps)
	}
	if got := h.metric(t, "signal_bot_martingale_retries_total", "", ""); got != 1 {
		t.Fatalf("retries = %v", got)
	}
}

func TestRetryHappensAtMostOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.md.push("BTC-USD", bullishEngulfing(), closeAt(100), closeAt(101), closeAt(200))

	out, ok := h.r.process(context.Background(), h.tickOne(t))
	if !ok {
		t.Fatalf("outcome not produced")
	}
	if out.Result != models.ResultFailure || out.Retries != 1 {
		t.Fatalf("got %s retries=%d", out.Result, out.Retries)
	}
	if *out.FinalPrice != 101 {
		t.Fatalf("final = %v, third comparison must not happen", *out.FinalPrice)
	}
	// скан + две оценки
	if got := h.md.callsFor("BTC-USD"); got != 3 {
		t.Fatalf("fetch calls = %d, want 3", got)
	}
}

func TestEqualPriceIsFailure(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Engine.MartingaleRetries = 0 })
	h.md.push("BTC-USD", bullishEngulfing(), closeAt(105))

	out, _ := h.r.process(context.Background(), h.tickOne(t))
	if out.Result != models.ResultFailure {
		t.Fatalf("unchanged price must fail, got %s", out.Result)
	}
}

func TestScenarioDataUnavailableAtEvaluation(t *testing.T) {
	h := newHarness(t, nil)
	h.md.push("BTC-USD", bullishEngulfing(), []models.Candle{})

	out, ok := h.r.process(context.Background(), h.tickOne(t))
	if !ok {
		t.Fatalf("outcome not produced")
	}
	if out.Result != models.ResultFailure || out.Retries != 0 {
		t.Fatalf("got %s retries=%d", out.Result, out.Retries)
	}
	if out.FinalPrice != nil {
		t.Fatalf("final price must be absent, got %v", *out.FinalPrice)
	}
	if got := h.md.callsFor("BTC-USD"); got != 2 {
		t.Fatalf("no retry expected, fetch calls = %d", got)
	}
	if h.n.count("n/a") != 1 {
		t.Fatalf("loss message without price not sent: %v", h.n.msgs)
	}
}

func TestCooldownSuppressesRepeatSignals(t *testing.T) {
	h := newHarness(t, nil)
	h.md.push("BTC-USD", bullishEngulfing())

	if n := h.r.Tick(context.Background()); n != 1 {
		t.Fatalf("first tick queued %d", n)
	}
	h.clock.Advance(time.Minute)
	if n := h.r.Tick(context.Background()); n != 0 {
		t.Fatalf("tick inside cooldown queued %d", n)
	}
	h.clock.Advance(4 * time.Minute)
	if n := h.r.Tick(context.Background()); n != 1 {
		t.Fatalf("tick after cooldown queued %d", n)
	}
	if h.r.QueueLen() != 2 {
		t.Fatalf("queue len = %d", h.r.QueueLen())
	}
}

func TestTickSkipsUnavailableInstrument(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Instruments = []config.InstrumentConfig{
			{Symbol: "EURCHF", Name: "EUR/CHF"},
			{Symbol: "BTC-USD", Name: "BTC/USD"},
		}
	})
	core, logs := observer.New(zap.WarnLevel)
	h.r.log = zap.New(core)

	h.md.errs["EURCHF"] = errors.Wrap(exchange.ErrNoData, "status 502")
	h.md.push("BTC-USD", bullishEngulfing())

	if n := h.r.Tick(context.Background()); n != 1 {
		t.Fatalf("queued = %d, want 1", n)
	}
	if got := logs.FilterMessage("market data unavailable, skip").Len(); got != 1 {
		t.Fatalf("warnings = %d", got)
	}
	if got := h.metric(t, "signal_bot_data_unavailable_total", "stage", "scan"); got != 1 {
		t.Fatalf("data unavailable = %v", got)
	}
	sig, _ := h.r.queue.TryPop()
	if sig.Symbol != "BTC-USD" {
		t.Fatalf("queued %s", sig.Symbol)
	}
}

func TestNoPatternNoSignal(t *testing.T) {
	h := newHarness(t, nil)
	h.md.push("BTC-USD", []models.Candle{{Open: 10, High: 11, Low: 9.9, Close: 10.2}})

	if n := h.r.Tick(context.Background()); n != 0 {
		t.Fatalf("queued = %d", n)
	}
	if len(h.n.msgs) != 0 {
		t.Fatalf("unexpected messages %v", h.n.msgs)
	}
	inst := h.r.Instruments()[0]
	if !inst.LastSignalAt.IsZero() {
		t.Fatalf("last signal time must stay unset")
	}
}

func TestSummaryAfterFifthOutcome(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Engine.MartingaleRetries = 0 })
	h.md.push("BTC-USD", closeAt(110))

	sig := models.Signal{ID: "x", Symbol: "BTC-USD", Name: "BTC/USD", Direction: models.DirectionUp, Price: 105}
	for i := 0; i < 4; i++ {
		if _, ok := h.r.process(context.Background(), sig); !ok {
			t.Fatalf("outcome %d not produced", i)
		}
	}
	if h.n.count("Session results") != 0 {
		t.Fatalf("summary sent before the fifth outcome")
	}
	if h.r.BatchLen() != 4 {
		t.Fatalf("batch = %d", h.r.BatchLen())
	}

	h.r.process(context.Background(), sig)
	if h.n.count("Session results") != 1 {
		t.Fatalf("summary not sent after fifth outcome: %v", h.n.msgs)
	}
	if h.r.BatchLen() != 0 {
		t.Fatalf("batch must reset, got %d", h.r.BatchLen())
	}
}

func TestCancelledEvaluationHasNoOutcome(t *testing.T) {
	h := newHarness(t, nil)
	h.md.push("BTC-USD", bullishEngulfing(), closeAt(110))
	sig := h.tickOne(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := h.r.process(ctx, sig); ok {
		t.Fatalf("cancelled evaluation produced an outcome")
	}
	if h.r.BatchLen() != 0 {
		t.Fatalf("cancelled evaluation reached the aggregator")
	}
	if got := h.metric(t, "signal_bot_outcomes_total", "result", "success"); got != 0 {
		t.Fatalf("outcome counted: %v", got)
	}
}

func TestDeliveryFailureDoesNotStopEngine(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Engine.MartingaleRetries = 0 })
	h.n.err = errors.New("telegram down")
	h.md.push("BTC-USD", bullishEngulfing(), closeAt(110))

	out, ok := h.r.process(context.Background(), h.tickOne(t))
	if !ok || out.Result != models.ResultSuccess {
		t.Fatalf("outcome lost on delivery failure: %+v ok=%v", out, ok)
	}
	if h.r.BatchLen() != 1 {
		t.Fatalf("outcome not aggregated")
	}
	if got := h.metric(t, "signal_bot_delivery_failures_total", "kind", "outcome"); got != 1 {
		t.Fatalf("delivery failures = %v", got)
	}
}

func TestEvaluateWorkerKeepsQueueOrder(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Engine.MartingaleRetries = 0 })
	h.md.push("A", closeAt(110))
	h.md.push("B", closeAt(90))

	h.r.queue.Push(models.Signal{ID: "1", Symbol: "A", Name: "AAA", Direction: models.DirectionUp, Price: 100})
	h.r.queue.Push(models.Signal{ID: "2", Symbol: "B", Name: "BBB", Direction: models.DirectionDown, Price: 100})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.r.Evaluate(ctx)
	}()

	var got []string
	deadline := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case msg := <-h.n.sent:
			got = append(got, msg)
		case <-deadline:
			cancel()
			t.Fatalf("timeout, got %v", got)
		}
	}
	cancel()
	<-done

	if !strings.Contains(got[0], "AAA") || !strings.Contains(got[1], "BBB") {
		t.Fatalf("out of order: %v", got)
	}
}
