// Package tags — статический словарь тегов с битовой маской.
package tags

import "strings"

type Tag struct {
	Seg     int    // бит в маске
	Name    string // имя с решёткой для подписи поста
	Payload string // payload кнопки в клавиатуре модерации
	Warning string // предупреждение перед публикацией, "" = не нужно
	// ключевые слова, по которым тег ставится автоматически
	keywords []string
}

var vocabulary = []Tag{
	{
		Seg:      1,
		Name:     "#NSFW",
		Payload:  "nsfw",
		Warning:  "⚠️ Осторожно: контент 18+, не открывайте на работе",
		keywords: []string{"#nsfw", "nsfw"},
	},
	{
		Seg:      2,
		Name:     "#Мем",
		Payload:  "meme",
		keywords: []string{"#мем", "#meme"},
	},
	{
		Seg:      4,
		Name:     "#Жесть",
		Payload:  "gore",
		Warning:  "⚠️ Осторожно: шокирующий контент",
		keywords: []string{"#жесть", "#gore"},
	},
	{
		Seg:      8,
		Name:     "#ИИ",
		Payload:  "ai",
		keywords: []string{"#ии", "#ai", "#нейросеть"},
	},
}

func All() []Tag { return vocabulary }

// Fetch извлекает маску тегов из текста или подписи.
func Fetch(text string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	mask := 0
	for _, t := range vocabulary {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				mask |= t.Seg
				break
			}
		}
	}
	return mask
}

func ByPayload(payload string) *Tag {
	payload = strings.ToLower(payload)
	for i := range vocabulary {
		if vocabulary[i].Payload == payload {
			return &vocabulary[i]
		}
	}
	return nil
}

// ActiveNames возвращает имена активных тегов через пробел, "#" если пусто.
func ActiveNames(mask int) string {
	var names []string
	for _, t := range vocabulary {
		if mask&t.Seg != 0 {
			names = append(names, t.Name)
		}
	}
	if len(names) == 0 {
		return "#"
	}
	return strings.Join(names, " ")
}

// Warnings собирает тексты предупреждений активных тегов, "" если их нет.
func Warnings(mask int) string {
	var warns []string
	for _, t := range vocabulary {
		if mask&t.Seg != 0 && t.Warning != "" {
			warns = append(warns, t.Warning)
		}
	}
	return strings.Join(warns, "\n")
}
