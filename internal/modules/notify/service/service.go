package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	listingDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	"github.com/reshetovitsme/goofish-monitor/internal/modules/notify/domain"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/config"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

// descriptionLimit is how many characters of the ad description are
// translated and shown.
const descriptionLimit = 200

// Sender is the subset of the Telegram bot used for delivery.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

// Translator translates marketplace text for display. Failures are treated
// as best-effort: the original text is shown instead.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Service renders and delivers one message per admitted listing, throttled
// to respect Telegram rate limits.
type Service struct {
	cfg        *config.Config
	sender     Sender
	translator Translator
	limiter    *rate.Limiter
}

// New creates a new notification service. The sender is attached later via
// SetSender because the bot itself is constructed after its handlers.
func New(cfg *config.Config, translator Translator) *Service {
	return &Service{
		cfg:        cfg,
		translator: translator,
		limiter:    rate.NewLimiter(rate.Every(cfg.NotifyDelay()), 1),
	}
}

// SetSender sets the message sender
func (s *Service) SetSender(sender Sender) {
	s.sender = sender
}

// Notify builds and delivers the message for one listing. It tries a rich
// photo message first and falls back to plain text on transport failure.
// The returned DeliveryResult distinguishes delivered, degraded (fallback
// used) and lost (both attempts failed); lost is also returned as an error
// so callers can surface it.
func (s *Service) Notify(ctx context.Context, chatID int64, listing *listingDomain.Listing, searchName string) (domain.DeliveryResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.DeliveryResultLost, oops.With("chat_id", chatID, "context", "throttle wait interrupted").Wrap(err)
	}

	caption := s.buildCaption(ctx, listing, searchName)

	if listing.ImageURL != "" {
		_, err := s.sender.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:    chatID,
			Photo:     &models.InputFileString{Data: listing.ImageURL},
			Caption:   caption,
			ParseMode: models.ParseModeHTML,
		})
		if err == nil {
			return domain.DeliveryResultDelivered, nil
		}
		slog.Warn("Rich delivery failed, falling back to text", "chat_id", chatID, "ad_id", listing.ExternalID, "error", err)
	}

	_, err := s.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return domain.DeliveryResultLost, oops.With("chat_id", chatID, "ad_id", listing.ExternalID, "context", "notification lost").Wrap(err)
	}

	if listing.ImageURL != "" {
		return domain.DeliveryResultDegraded, nil
	}
	return domain.DeliveryResultDelivered, nil
}

func (s *Service) buildCaption(ctx context.Context, listing *listingDomain.Listing, searchName string) string {
	title := s.translate(ctx, listing.Title)

	description := ""
	if listing.Description != "" {
		description = s.translate(ctx, truncateRunes(listing.Description, descriptionLimit))
	}

	priceRub := int(float64(listing.Price) * s.cfg.CurrencyRate)

	var b strings.Builder
	if searchName != "" {
		fmt.Fprintf(&b, "🔍 <b>%s</b>\n", html.EscapeString(searchName))
	}
	fmt.Fprintf(&b, "📦 <b>%s</b>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "💰 %d¥  (~%s₽)\n", listing.Price, groupDigits(priceRub))
	fmt.Fprintf(&b, "👤 %s", html.EscapeString(listing.Seller))
	if description != "" {
		fmt.Fprintf(&b, "\n📄 %s", html.EscapeString(description))
	}
	if listing.PostedAt != "" {
		fmt.Fprintf(&b, "\n🕐 %s", html.EscapeString(listing.PostedAt))
	}
	if listing.Similarity != nil {
		fmt.Fprintf(&b, "\n🤖 Similarity: %.0f%%", *listing.Similarity*100)
	}
	fmt.Fprintf(&b, "\n🔗 <a href=\"%s\">Open on Goofish</a>", listing.URL)

	return b.String()
}

// translate is best-effort: on failure the original text is used.
func (s *Service) translate(ctx context.Context, text string) string {
	translated, err := s.translator.Translate(ctx, text)
	if err != nil {
		slog.Warn("Translation failed, using original text", "error", err)
		return text
	}
	return translated
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// groupDigits formats a non-negative integer with spaces between thousands
// groups, e.g. 10800 -> "10 800".
func groupDigits(n int) string {
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
