package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Templates — тексты сообщений канала.
type Templates struct {
	loc          *time.Location
	horizonLabel string
	retries      int
	operateLink  string
}

func NewTemplates(cfg *config.Config) Templates {
	return Templates{
		loc:          cfg.Location(),
		horizonLabel: cfg.Engine.HorizonLabel,
		retries:      cfg.Engine.MartingaleRetries,
		operateLink:  cfg.Engine.OperateLink,
	}
}

func (t Templates) Signal(sig models.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n", sig.Name)
	fmt.Fprintf(&b, "🕐 %s\n", hhmm(sig.CreatedAt, t.loc))
	fmt.Fprintf(&b, "%s %s\n", sig.Direction.Arrow(), sig.Direction)
	fmt.Fprintf(&b, "🕯 Pattern: %s\n", sig.Pattern.Title())
	fmt.Fprintf(&b, "⏳ Expiration: %s\n", t.horizonLabel)
	if t.retries > 0 {
		fmt.Fprintf(&b, "🔁 If it fails: %d martingale\n", t.retries)
	} else {
		b.WriteString("🔁 No martingale\n")
	}
	if t.operateLink != "" {
		fmt.Fprintf(&b, "🔗 Operate here: %s\n", t.operateLink)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (t Templates) Win(o models.Outcome) string {
	head := "✅ WIN"
	if o.Retries > 0 {
		head = "✅ WIN in martingale"
	}
	return fmt.Sprintf("%s | %s\nEntry: %s\nClose: %s",
		head, o.Signal.Name, price(o.InitialPrice), finalPrice(o.FinalPrice))
}

// Retry — промежуточное "делай мартингейл", без цен.
func (t Templates) Retry(sig models.Signal) string {
	return fmt.Sprintf("🔁 Do the martingale! %s %s %s", sig.Name, sig.Direction.Arrow(), sig.Direction)
}

func (t Templates) Loss(o models.Outcome) string {
	return fmt.Sprintf("❌ LOSS | %s\nEntry: %s\nClose: %s",
		o.Signal.Name, price(o.InitialPrice), finalPrice(o.FinalPrice))
}

func (t Templates) Outcome(o models.Outcome) string {
	if o.Result == models.ResultSuccess {
		return t.Win(o)
	}
	return t.Loss(o)
}

func (t Templates) Summary(s models.SessionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Session results %s - %s\n\n", hhmm(s.From, t.loc), hhmm(s.To, t.loc))
	for i, o := range s.Outcomes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o.Result.Label())
	}
	b.WriteString("\n🚀 Stay tuned for the next session!")
	return b.String()
}

func hhmm(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04")
}

func price(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func finalPrice(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return price(*v)
}
