package astro

import "fmt"

var phaseDescriptions = map[string]string{
	"New Moon":        "🌑 Новолуние (%d%%) — время новых начинаний и планирования",
	"Waxing Crescent": "🌒 Растущая Луна (%d%%) — период активного роста и развития",
	"First Quarter":   "🌓 Первая четверть (%d%%) — время принятия решений и действий",
	"Waxing Gibbous":  "🌔 Растущая Луна (%d%%) — период накопления энергии",
	"Full Moon":       "🌕 Полнолуние (%d%%) — пик энергии и эмоций",
	"Waning Gibbous":  "🌖 Убывающая Луна (%d%%) — время благодарности и отдачи",
	"Last Quarter":    "🌗 Последняя четверть (%d%%) — период очищения и освобождения",
	"Waning Crescent": "🌘 Убывающая Луна (%d%%) — время отдыха и подготовки",
}

// Describe renders a human-readable line for the moon phase.
func Describe(data MoonData) string {
	if format, ok := phaseDescriptions[data.Phase]; ok {
		return fmt.Sprintf(format, data.Illumination)
	}
	return fmt.Sprintf("🌙 %s (%d%%)", data.Phase, data.Illumination)
}

// MoonReply builds the full /moon answer.
func MoonReply(data MoonData) string {
	return fmt.Sprintf("🌙 <b>Луна сегодня</b>\n%s\n\n🗓 %s", Describe(data), data.Date)
}

// AstroReply builds the /astro answer around the moon snapshot.
func AstroReply(data MoonData, name string) string {
	greeting := "✨ <b>Астросводка на сегодня</b>"
	if name != "" {
		greeting = fmt.Sprintf("✨ <b>Астросводка для %s</b>", name)
	}
	return fmt.Sprintf("%s\n%s\n\n🗓 %s", greeting, Describe(data), data.Date)
}

// UnavailableReply is used when astronomical data cannot be fetched.
const UnavailableReply = "😔 Не удалось получить астрономические данные. Попробуйте чуть позже."
