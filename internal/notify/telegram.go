package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alias1177/Scanner/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// Sender is the part of tgbotapi.BotAPI used for alerts
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter posts a message to one chat for every logged hit
type TelegramAlerter struct {
	bot    Sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegramAlerter connects to the bot API with token
func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing Telegram bot: %w", err)
	}
	a := NewTelegramAlerterWithSender(bot, chatID)
	a.logger.Info().Str("bot", bot.Self.UserName).Msg("Telegram alerts enabled")
	return a, nil
}

// NewTelegramAlerterWithSender uses an existing sender
func NewTelegramAlerterWithSender(bot Sender, chatID int64) *TelegramAlerter {
	return &TelegramAlerter{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_alerter").Logger(),
	}
}

// NotifyHit sends the formatted hit
func (a *TelegramAlerter) NotifyHit(ctx context.Context, hit models.Hit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(a.chatID, FormatHitMessage(hit))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := a.bot.Send(msg); err != nil {
		return fmt.Errorf("sending alert for %s: %w", hit.StockData.Ticker, err)
	}
	a.logger.Debug().Str("ticker", hit.StockData.Ticker).Msg("Alert sent")
	return nil
}

// FormatHitMessage renders a hit as a Markdown message
func FormatHitMessage(hit models.Hit) string {
	esc := markdownEscaper.Replace
	sd, ta := hit.StockData, hit.TriggerAnalysis

	var b strings.Builder
	fmt.Fprintf(&b, "🚨 *%s* %s\n", esc(sd.Ticker), esc(ta.TriggerDescription))
	if sd.Price != nil {
		fmt.Fprintf(&b, "Price: $%.2f", *sd.Price)
		if sd.PriceChangePct != nil {
			fmt.Fprintf(&b, " (%+.2f%%)", *sd.PriceChangePct)
		}
		b.WriteString("\n")
	}
	if sd.RelativeVolume != nil {
		fmt.Fprintf(&b, "Rel volume: %.1fx (%s)\n", *sd.RelativeVolume, esc(sd.VolumeCategory))
	}
	fmt.Fprintf(&b, "Signal: %d/10, risk: %s\n", ta.SignalStrength, esc(ta.RiskLevel))
	fmt.Fprintf(&b, "%s, %s", esc(hit.MarketSession), esc(hit.TimeReadable))
	return b.String()
}
