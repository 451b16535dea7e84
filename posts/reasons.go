package posts

import "go_submit_bot/markup"

// RejectReason — причина отклонения из статического списка.
// Count == false означает, что отказ не тратит дневную квоту автора.
type RejectReason struct {
	Payload string
	Name    string
	Full    string
	Count   bool
}

// Качество и баян не засчитываются в квоту: автор не виноват, что
// прислал уже ходившую картинку.
var rejectReasons = []RejectReason{
	{Payload: "fuzzy", Name: "Качество", Full: "картинка или видео низкого качества", Count: false},
	{Payload: "duplicate", Name: "Баян", Full: "такой пост уже публиковался", Count: false},
	{Payload: "boring", Name: "Скучно", Full: "пост не показался нам интересным", Count: true},
	{Payload: "deny", Name: "Запрещено", Full: "содержимое нарушает правила канала", Count: true},
	{Payload: "other", Name: "Другое", Full: "пост не подходит для публикации", Count: true},
	{Payload: "nocount", Name: "Без зачёта", Full: "пост не подходит, попробуйте прислать другой", Count: false},
}

const (
	bannedReason     = "автоотказ: пользователь заблокирован"
	autoRejectReason = "автоотказ: посты из этого канала не принимаются"
)

func reasonByPayload(payload string) *RejectReason {
	for i := range rejectReasons {
		if rejectReasons[i].Payload == payload {
			return &rejectReasons[i]
		}
	}
	return nil
}

// RejectChoices — кнопки выбора причины для клавиатуры модератора.
func RejectChoices() []markup.Choice {
	choices := make([]markup.Choice, 0, len(rejectReasons))
	for _, r := range rejectReasons {
		choices = append(choices, markup.Choice{Payload: r.Payload, Label: r.Name})
	}
	return choices
}
