package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Alias1177/Scanner/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func sampleHit() models.Hit {
	price, change, rvol := 6.42, 18.5, 24.0
	return models.Hit{
		TimeReadable:  "2024-03-08 10:30:00 EST",
		MarketSession: "regular_hours",
		StockData: models.StockData{
			Ticker:         "ABCD",
			Price:          &price,
			PriceChangePct: &change,
			RelativeVolume: &rvol,
			VolumeCategory: "massive_spike",
		},
		TriggerAnalysis: models.TriggerAnalysis{
			PrimaryTrigger:     models.TriggerMinuteBreakout,
			TriggerDescription: "5%+ price move within 1 minute timeframe",
			SignalStrength:     8,
			RiskLevel:          "high",
		},
	}
}

func TestFormatHitMessage(t *testing.T) {
	got := FormatHitMessage(sampleHit())
	for _, want := range []string{"*ABCD*", "$6.42", "(+18.50%)", "24.0x", `massive\_spike`, "Signal: 8/10", `regular\_hours`} {
		if !strings.Contains(got, want) {
			t.Errorf("message missing %q:\n%s", want, got)
		}
	}

	bare := models.Hit{StockData: models.StockData{Ticker: "XYZ"}}
	if strings.Contains(FormatHitMessage(bare), "Price") {
		t.Error("message shows a price for a hit without one")
	}
}

func TestNotifyHit(t *testing.T) {
	sender := &fakeSender{}
	a := NewTelegramAlerterWithSender(sender, 42)

	if err := a.NotifyHit(context.Background(), sampleHit()); err != nil {
		t.Fatalf("NotifyHit() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if sender.sent[0].ChatID != 42 || sender.sent[0].ParseMode != tgbotapi.ModeMarkdown {
		t.Errorf("message config = %+v", sender.sent[0])
	}

	sender.err = errors.New("blocked")
	if err := a.NotifyHit(context.Background(), sampleHit()); err == nil {
		t.Error("NotifyHit() swallowed send error")
	}
}
