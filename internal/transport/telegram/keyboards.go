package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	searchDomain "github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
	"github.com/samber/lo"
)

const (
	buttonMySearches  = "🔍 My searches"
	buttonNewSearch   = "➕ New search"
	buttonPhotoSearch = "🖼 Search by photo"
	buttonHelp        = "ℹ️ Help"
)

func mainKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: buttonMySearches}, {Text: buttonNewSearch}},
			{{Text: buttonPhotoSearch}, {Text: buttonHelp}},
		},
		ResizeKeyboard: true,
	}
}

func searchListKeyboard(searches []*searchDomain.Search) *models.InlineKeyboardMarkup {
	rows := lo.Map(searches, func(s *searchDomain.Search, _ int) []models.InlineKeyboardButton {
		icon := "✅"
		if !s.IsActive {
			icon = "⏸"
		}
		preview := s.Tags
		if len(preview) > 2 {
			preview = preview[:2]
		}
		return []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s %s  •  %s", icon, s.Name, strings.Join(preview, ", ")),
			CallbackData: "s:" + s.ID,
		}}
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func searchDetailKeyboard(searchID string, active bool) *models.InlineKeyboardMarkup {
	toggleLabel := "⏸ Pause"
	if !active {
		toggleLabel = "▶️ Resume"
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: toggleLabel, CallbackData: "toggle:" + searchID},
				{Text: "🗑 Delete", CallbackData: "del:" + searchID},
			},
			{
				{Text: "◀️ Back", CallbackData: "list"},
			},
		},
	}
}

func intervalKeyboard() *models.InlineKeyboardMarkup {
	intervals := []struct {
		minutes int
		label   string
	}{
		{10, "10 min"},
		{30, "30 min"},
		{60, "1 hour"},
		{180, "3 hours"},
	}

	row := lo.Map(intervals, func(iv struct {
		minutes int
		label   string
	}, _ int) models.InlineKeyboardButton {
		return models.InlineKeyboardButton{
			Text:         iv.label,
			CallbackData: fmt.Sprintf("iv:%d", iv.minutes),
		}
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{row}}
}

func skipPhotoKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "⏭ Skip photo", CallbackData: "skip_photo"}},
		},
	}
}
