package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	listingDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/listing/domain"
	notifyDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/notify/domain"
	searchDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
	searchService "github.com/reshetovitsme/goofish-monitor/internal/modules/search/service"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/config"
	"github.com/samber/lo"
)

// photoSearchLimit caps how many similar listings a one-shot photo search
// requests and shows.
const (
	photoSearchLimit = 10
	photoSearchShown = 5
)

// SearchProvider is the part of the marketplace client used by photo search.
type SearchProvider interface {
	SearchEmbedding(ctx context.Context, embedding []float64, limit int) ([]*listingDomain.Listing, error)
}

// Embedder computes the embedding of a user-supplied photo.
type Embedder interface {
	Embed(ctx context.Context, imageURL string) ([]float64, error)
}

// Notifier renders and delivers listing messages.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, listing *listingDomain.Listing, searchName string) (notifyDomain.DeliveryResult, error)
}

// Handler processes Telegram updates: commands, the search-creation dialog
// and inline keyboard callbacks.
type Handler struct {
	cfg      *config.Config
	searches *searchService.Service
	provider SearchProvider
	embedder Embedder
	notifier Notifier
	sessions *SessionManager
}

// New creates a new Telegram handler
func New(cfg *config.Config, searches *searchService.Service, provider SearchProvider, embedder Embedder, notifier Notifier) *Handler {
	return &Handler{
		cfg:      cfg,
		searches: searches,
		provider: provider,
		embedder: embedder,
		notifier: notifier,
		sessions: NewSessionManager(),
	}
}

// RegisterCommands registers command and callback handlers on the bot
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "s:", bot.MatchTypePrefix, h.handleSearchDetail)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "toggle:", bot.MatchTypePrefix, h.handleToggle)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "del:", bot.MatchTypePrefix, h.handleDelete)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "list", bot.MatchTypeExact, h.handleBackToList)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "iv:", bot.MatchTypePrefix, h.handleInterval)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "skip_photo", bot.MatchTypeExact, h.handleSkipPhoto)
}

// HandleUpdate is the default handler: reply keyboard buttons, dialog text
// input and photo uploads.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !h.checkAuthorization(userID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⛔ You are not authorized to use this bot.",
		})
		return
	}

	if len(update.Message.Photo) > 0 {
		h.handlePhoto(ctx, b, update)
		return
	}

	switch update.Message.Text {
	case buttonNewSearch:
		h.startNewSearch(ctx, b, userID, chatID)
	case buttonMySearches:
		h.showSearchList(ctx, b, userID, chatID)
	case buttonPhotoSearch:
		h.startPhotoSearch(ctx, b, userID, chatID)
	case buttonHelp:
		h.handleStart(ctx, b, update)
	default:
		h.handleDialogText(ctx, b, update)
	}
}

func (h *Handler) checkAuthorization(userID int64) bool {
	if len(h.cfg.AllowedUsers) == 0 {
		return true
	}
	return lo.Contains(h.cfg.AllowedUsers, userID)
}

// authorizeCallback acknowledges the callback and reports whether the user
// may proceed.
func (h *Handler) authorizeCallback(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	cb := update.CallbackQuery
	if !h.checkAuthorization(cb.From.ID) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID, Text: "⛔ Not authorized"})
		return false
	}
	return true
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.checkAuthorization(update.Message.From.ID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "⛔ You are not authorized to use this bot.",
		})
		return
	}

	text := `🐟 <b>Goofish Monitor</b>

I watch <b>Goofish (闲鱼)</b> for new listings and send them here.

<b>What I can do:</b>
• Keyword monitoring (rick owens / rickowens / ro — all in one search)
• Price filter (in yuan ¥)
• Automatic translation 🇨🇳→🇷🇺
• Similar-listing search from your photo (AI)
• Notifications only for listings you haven't seen

Press <b>➕ New search</b> to begin.`

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: mainKeyboard(),
	})
}

func (h *Handler) startNewSearch(ctx context.Context, b *bot.Bot, userID, chatID int64) {
	h.sessions.Begin(userID, DialogStateAwaitingName)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      "📝 Enter a <b>name</b> for the search:\n<i>For example: Rick Owens Ramones, Balenciaga Triple S</i>",
		ParseMode: models.ParseModeHTML,
	})
}

func (h *Handler) handleDialogText(ctx context.Context, b *bot.Bot, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	// The dialog step runs under the session lock; only the reply is sent
	// outside it.
	var reply *bot.SendMessageParams
	h.sessions.Update(userID, func(session *Session) {
		reply = h.dialogStep(session, chatID, text)
	})
	if reply != nil {
		b.SendMessage(ctx, reply)
	}
}

// dialogStep consumes one text input of the search-creation dialog and
// returns the next prompt, or a re-prompt when the input is invalid.
func (h *Handler) dialogStep(session *Session, chatID int64, text string) *bot.SendMessageParams {
	switch session.State {
	case DialogStateAwaitingName:
		session.Draft.Name = text
		session.Advance()
		return &bot.SendMessageParams{
			ChatID: chatID,
			Text: "🏷 Enter <b>tags separated by commas</b>:\n\n" +
				"All tags are searched together and combined into one search.\n" +
				"<code>rick owens, rickowens, ro ramones, 瑞克欧文斯</code>\n\n" +
				"<i>Tip: add the brand's Chinese translation — it finds more!</i>",
			ParseMode: models.ParseModeHTML,
		}

	case DialogStateAwaitingTags:
		tags := lo.FilterMap(strings.Split(text, ","), func(tag string, _ int) (string, bool) {
			tag = strings.TrimSpace(tag)
			return tag, tag != ""
		})
		if len(tags) == 0 {
			return &bot.SendMessageParams{ChatID: chatID, Text: "❌ Enter at least one tag."}
		}
		session.Draft.Tags = tags
		session.Advance()
		return &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "💰 Minimum price in <b>yuan ¥</b>:\n<i>Send 0 to skip</i>",
			ParseMode: models.ParseModeHTML,
		}

	case DialogStateAwaitingPriceMin:
		value, err := strconv.Atoi(text)
		if err != nil || value < 0 {
			return &bot.SendMessageParams{ChatID: chatID, Text: "❌ Numbers only, for example: 500"}
		}
		session.Draft.PriceMin = value
		session.Advance()
		return &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "💰 Maximum price in <b>yuan ¥</b>:\n<i>Send 0 — no limit</i>",
			ParseMode: models.ParseModeHTML,
		}

	case DialogStateAwaitingPriceMax:
		value, err := strconv.Atoi(text)
		if err != nil || value < 0 {
			return &bot.SendMessageParams{ChatID: chatID, Text: "❌ Numbers only, for example: 3000"}
		}
		if session.Draft.PriceMin > 0 && value > 0 && session.Draft.PriceMin > value {
			return &bot.SendMessageParams{ChatID: chatID, Text: "❌ Maximum price must not be below the minimum."}
		}
		session.Draft.PriceMax = value
		session.Advance()
		return &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "⏱ How often should I check for new listings?",
			ReplyMarkup: intervalKeyboard(),
		}
	}

	return nil
}

func (h *Handler) handleInterval(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorizeCallback(ctx, b, update) {
		return
	}
	cb := update.CallbackQuery
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	minutes, err := strconv.Atoi(strings.TrimPrefix(cb.Data, "iv:"))
	if err != nil || minutes <= 0 {
		return
	}

	var accepted bool
	h.sessions.Update(cb.From.ID, func(session *Session) {
		if session.State != DialogStateAwaitingInterval || session.Draft == nil {
			return
		}
		session.Draft.IntervalMinutes = minutes
		session.Advance()
		accepted = true
	})
	if !accepted {
		return
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    cb.Message.Message.Chat.ID,
		MessageID: cb.Message.Message.ID,
		Text: "🖼 <b>Photo search (AI)</b>\n\n" +
			"Send a photo of the item — the bot will only keep listings with similar photos.\n\n" +
			"<i>Or skip it for a tag-only search.</i>",
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: skipPhotoKeyboard(),
	})
}

func (h *Handler) handleSkipPhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorizeCallback(ctx, b, update) {
		return
	}
	cb := update.CallbackQuery
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	draft := h.claimDraft(cb.From.ID, DialogStateAwaitingPhoto)
	if draft == nil {
		return
	}

	h.createSearch(ctx, b, cb.Message.Message.Chat.ID, draft, nil)
}

func (h *Handler) handlePhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	var state DialogState
	h.sessions.Update(userID, func(session *Session) {
		state = session.State
	})

	switch state {
	case DialogStateAwaitingPhoto:
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "🔄 Processing photo..."})
		// Embed before claiming the draft: a failed embed leaves the
		// session pending so the user can retry or skip.
		embedding, err := h.embedPhoto(ctx, b, update.Message.Photo)
		if err != nil {
			slog.Error("Failed to embed reference photo", "user_id", userID, "error", err)
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Could not process the photo. Try another one or skip it."})
			return
		}
		draft := h.claimDraft(userID, DialogStateAwaitingPhoto)
		if draft == nil {
			return
		}
		h.createSearch(ctx, b, chatID, draft, embedding)

	case DialogStateAwaitingSearchPhoto:
		h.sessions.Reset(userID)
		h.runPhotoSearch(ctx, b, chatID, update.Message.Photo)
	}
}

// claimDraft atomically takes the draft out of the user's session, resetting
// it to idle. It returns nil when the session is no longer in the expected
// state, so of two concurrent updates at most one wins the draft.
func (h *Handler) claimDraft(userID int64, state DialogState) *searchDomain.Search {
	var draft *searchDomain.Search
	h.sessions.Update(userID, func(session *Session) {
		if session.State != state {
			return
		}
		draft = session.Draft
		session.State = DialogStateIdle
		session.Draft = nil
	})
	return draft
}

func (h *Handler) createSearch(ctx context.Context, b *bot.Bot, chatID int64, draft *searchDomain.Search, embedding []float64) {
	draft.Embedding = embedding
	if err := h.searches.Create(draft); err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Could not create the search: %v", err),
		})
		return
	}

	var summary strings.Builder
	summary.WriteString("✅ <b>Search created and running!</b>\n\n")
	fmt.Fprintf(&summary, "📌 %s\n", draft.Name)
	fmt.Fprintf(&summary, "🏷 Tags: <code>%s</code>", strings.Join(draft.Tags, ", "))
	if draft.PriceMin > 0 || draft.PriceMax > 0 {
		fmt.Fprintf(&summary, "\n💰 Price: %s", formatPriceRange(draft.PriceMin, draft.PriceMax))
	}
	fmt.Fprintf(&summary, "\n⏱ Interval: %d min", draft.IntervalMinutes)
	if len(draft.Embedding) > 0 {
		summary.WriteString("\n🖼 AI photo filter: enabled ✅")
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        summary.String(),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: mainKeyboard(),
	})
}

func (h *Handler) showSearchList(ctx context.Context, b *bot.Bot, userID, chatID int64) {
	searches, err := h.searches.ListForUser(userID)
	if err != nil {
		slog.Error("Failed to list searches", "user_id", userID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Could not load your searches."})
		return
	}

	if len(searches) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "You have no searches yet. Press ➕ New search!",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        fmt.Sprintf("📋 <b>Your searches</b> (%d):", len(searches)),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: searchListKeyboard(searches),
	})
}

func (h *Handler) handleSearchDetail(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorizeCallback(ctx, b, update) {
		return
	}
	cb := update.CallbackQuery
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	searchID := strings.TrimPrefix(cb.Data, "s:")
	h.renderSearchDetail(ctx, b, cb.Message.Message.Chat.ID, cb.Message.Message.ID, searchID)
}

func (h *Handler) renderSearchDetail(ctx context.Context, b *bot.Bot, chatID int64, messageID int, searchID string) {
	search, err := h.searches.Get(searchID)
	if err != nil {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      "❌ Search not found.",
		})
		return
	}

	seenCount, err := h.searches.SeenCount(ctx, searchID)
	if err != nil {
		slog.Error("Failed to get seen count", "search_id", searchID, "error", err)
	}

	status := "✅ Active"
	if !search.IsActive {
		status = "⏸ Paused"
	}
	aiFilter := "No"
	if search.HasEmbedding() {
		aiFilter = "Yes 🖼"
	}

	text := fmt.Sprintf(`<b>%s</b>

🏷 Tags: <code>%s</code>
💰 Price: %s
⏱ Interval: %d min
🖼 AI photo filter: %s
📦 Listings evaluated: %d
📊 Status: %s
🕐 Last check: %s`,
		search.Name,
		strings.Join(search.Tags, ", "),
		formatPriceRange(search.PriceMin, search.PriceMax),
		search.IntervalMinutes,
		aiFilter,
		seenCount,
		status,
		search.LastCheckedAt.Format("2006-01-02 15:04"),
	)

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: searchDetailKeyboard(search.ID, search.IsActive),
	})
}

func (h *Handler) handleToggle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorizeCallback(ctx, b, update) {
		return
	}
	cb := update.CallbackQuery
	searchID := strings.TrimPrefix(cb.Data, "toggle:")

	if _, err := h.searches.Toggle(searchID); err != nil {
		slog.Error("Failed to toggle search", "search_id", searchID, "error", err)
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID, Text: "❌ Failed"})
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID, Text: "✅ Done"})
	h.renderSearchDetail(ctx, b, cb.Message.Message.Chat.ID, cb.Message.Message.ID, searchID)
}

func (h *Handler) handleDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorizeCallback(ctx, b, update) {
		return
	}
	cb := update.CallbackQuery
	searchID := strings.TrimPrefix(cb.Data, "del:")

	if err := h.searches.Delete(ctx, searchID); err != nil {
		slog.Error("Failed to delete search", "search_id", searchID, "error", err)
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID, Text: "❌ Failed"})
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID, Text: "🗑 Deleted"})
	h.renderSearchListEdit(ctx, b, cb.From.ID, cb.Message.Message.Chat.ID, cb.Message.Message.ID)
}

func (h *Handler) handleBackToList(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.authorizeCallback(ctx, b, update) {
		return
	}
	cb := update.CallbackQuery
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})
	h.renderSearchListEdit(ctx, b, cb.From.ID, cb.Message.Message.Chat.ID, cb.Message.Message.ID)
}

func (h *Handler) renderSearchListEdit(ctx context.Context, b *bot.Bot, userID, chatID int64, messageID int) {
	searches, err := h.searches.ListForUser(userID)
	if err != nil {
		slog.Error("Failed to list searches", "user_id", userID, "error", err)
		return
	}

	if len(searches) == 0 {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      "No searches left. Create a new one — ➕",
		})
		return
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        "📋 <b>Your searches:</b>",
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: searchListKeyboard(searches),
	})
}

func (h *Handler) startPhotoSearch(ctx context.Context, b *bot.Bot, userID, chatID int64) {
	h.sessions.Begin(userID, DialogStateAwaitingSearchPhoto)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      "📸 Send a photo of the item — I'll find similar Goofish listings with AI!\n\n<i>Clear photos on a white background work best.</i>",
		ParseMode: models.ParseModeHTML,
	})
}

func (h *Handler) runPhotoSearch(ctx context.Context, b *bot.Bot, chatID int64, photos []models.PhotoSize) {
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "🔍 Looking for similar listings..."})

	embedding, err := h.embedPhoto(ctx, b, photos)
	if err != nil {
		slog.Error("Failed to embed search photo", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Could not process the photo. Try another one."})
		return
	}

	searchCtx, cancel := context.WithTimeout(ctx, h.cfg.Timeout())
	defer cancel()

	listings, err := h.provider.SearchEmbedding(searchCtx, embedding, photoSearchLimit)
	if err != nil {
		slog.Error("Photo search failed", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Search failed, try again later."})
		return
	}

	if len(listings) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "😔 Nothing similar found. Try another photo."})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("✨ <b>Found %d similar listings:</b>", len(listings)),
		ParseMode: models.ParseModeHTML,
	})

	for _, listing := range lo.Subset(listings, 0, photoSearchShown) {
		if _, err := h.notifier.Notify(ctx, chatID, listing, ""); err != nil {
			slog.Error("Failed to send photo search result", "ad_id", listing.ExternalID, "error", err)
		}
	}
}

// embedPhoto resolves the largest uploaded photo size to a file URL and
// asks the embedding service for its vector.
func (h *Handler) embedPhoto(ctx context.Context, b *bot.Bot, photos []models.PhotoSize) ([]float64, error) {
	photo := photos[len(photos)-1]

	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: photo.FileID})
	if err != nil {
		return nil, err
	}

	fileURL := fmt.Sprintf("%s/file/bot%s/%s", h.cfg.TelegramAPIURL, h.cfg.TelegramBotToken, file.FilePath)

	embedCtx, cancel := context.WithTimeout(ctx, h.cfg.Timeout())
	defer cancel()

	return h.embedder.Embed(embedCtx, fileURL)
}

func formatPriceRange(priceMin, priceMax int) string {
	if priceMin == 0 && priceMax == 0 {
		return "no limit"
	}

	min := "—"
	if priceMin > 0 {
		min = strconv.Itoa(priceMin)
	}
	max := "∞"
	if priceMax > 0 {
		max = strconv.Itoa(priceMax)
	}
	return fmt.Sprintf("%s¥ — %s¥", min, max)
}
