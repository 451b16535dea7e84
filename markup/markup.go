// Package markup — инлайн-клавиатуры бота.
package markup

import (
	"github.com/go-telegram/bot/models"

	"go_submit_bot/tags"
)

// PostKeyboard — клавиатура подтверждения поста автором.
func PostKeyboard(anonymous bool) *models.InlineKeyboardMarkup {
	anonLabel := "🔓 Анонимно: выкл"
	if anonymous {
		anonLabel = "🔒 Анонимно: вкл"
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: anonLabel, CallbackData: "post anonymous"}},
			{
				{Text: "❌ Отменить", CallbackData: "post cancel"},
				{Text: "✅ Отправить", CallbackData: "post confirm"},
			},
		},
	}
}

// ReviewKeyboard — клавиатура модератора: теги, спойлер и решения.
// spoiler == nil, если тип поста не поддерживает спойлер.
func ReviewKeyboard(tagsMask int, spoiler *bool, hasSecond bool) *models.InlineKeyboardMarkup {
	rows := [][]models.InlineKeyboardButton{tagRow(tagsMask)}

	if spoiler != nil {
		rows = append(rows, []models.InlineKeyboardButton{spoilerButton(*spoiler)})
	}

	decide := []models.InlineKeyboardButton{
		{Text: "✅ Принять", CallbackData: "review approve"},
	}
	if hasSecond {
		decide = append(decide, models.InlineKeyboardButton{Text: "🥈 Во 2-й канал", CallbackData: "review approve:second"})
	}
	rows = append(rows, decide, []models.InlineKeyboardButton{
		{Text: "⏰ Отложить", CallbackData: "review plan"},
		{Text: "❌ Отклонить", CallbackData: "review reject"},
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// DirectPostKeyboard — клавиатура автора с правом прямой публикации.
func DirectPostKeyboard(tagsMask int, spoiler *bool) *models.InlineKeyboardMarkup {
	rows := [][]models.InlineKeyboardButton{tagRow(tagsMask)}

	if spoiler != nil {
		rows = append(rows, []models.InlineKeyboardButton{spoilerButton(*spoiler)})
	}

	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "⏰ Отложить", CallbackData: "review plan"},
		{Text: "✅ Опубликовать", CallbackData: "review approve"},
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

type Choice struct {
	Payload string
	Label   string
}

// RejectKeyboard — выбор причины отклонения.
func RejectKeyboard(choices []Choice) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	row := []models.InlineKeyboardButton{}
	for _, c := range choices {
		row = append(row, models.InlineKeyboardButton{Text: c.Label, CallbackData: "review reject:" + c.Payload})
		if len(row) == 2 {
			rows = append(rows, row)
			row = []models.InlineKeyboardButton{}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "↩️ Назад", CallbackData: "review back"}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func tagRow(mask int) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton
	for _, t := range tags.All() {
		label := t.Name
		if mask&t.Seg != 0 {
			label = "✅ " + label
		}
		row = append(row, models.InlineKeyboardButton{Text: label, CallbackData: "review tag:" + t.Payload})
	}
	return row
}

func spoilerButton(on bool) models.InlineKeyboardButton {
	label := "🫥 Спойлер: выкл"
	if on {
		label = "🫥 Спойлер: вкл"
	}
	return models.InlineKeyboardButton{Text: label, CallbackData: "review spoiler"}
}
