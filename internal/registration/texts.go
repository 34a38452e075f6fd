package registration

import (
	"fmt"
	"html"
	"strings"
	"time"

	"dailybot/internal/model"
)

const welcomeText = `🌟 Добро пожаловать в DailyBot!

Для персональных астрологических прогнозов мне нужно немного информации о вас.

📝 Процесс займёт пару минут:
• Ваше имя
• Дата и время рождения
• Место рождения

Как вас зовут? (Можно написать любое удобное имя)`

const nameRetryText = "Пожалуйста, введите ваше имя."

const birthDateRetryText = "Не могу распознать дату. Используйте формат <code>ДД.ММ.ГГГГ</code>, например <code>15.03.1990</code>."

const birthTimeRetryText = "Неверный формат времени. Используйте <code>ЧЧ:ММ</code> (например, <code>14:30</code>) или напишите «не знаю»."

const birthPlaceRetryText = "Пожалуйста, укажите место рождения или поделитесь геолокацией."

const completedFallbackText = "Регистрация уже завершена. Загляните в /help за списком команд."

func birthDatePrompt(name string) string {
	return fmt.Sprintf(`Приятно познакомиться, %s! 😊

📅 Теперь укажите дату вашего рождения в формате <code>ДД.ММ.ГГГГ</code>

Например: <code>15.03.1990</code>`, html.EscapeString(name))
}

func birthTimePrompt(date time.Time) string {
	return fmt.Sprintf(`Отлично! Дата рождения: %s

⏰ Теперь укажите время рождения в формате <code>ЧЧ:ММ</code>

Например: <code>14:30</code>

Если не знаете точное время, напишите «не знаю» — возьмём полдень для расчётов.`, date.Format("02.01.2006"))
}

func birthPlacePrompt(birthTime string, unknown bool) string {
	display := birthTime
	if unknown {
		display += " (приблизительно)"
	}
	return fmt.Sprintf(`Время рождения: %s

🏙 Теперь укажите город или место рождения — или поделитесь геолокацией.

Например: Москва, Санкт-Петербург, Екатеринбург`, display)
}

func completionText(user *model.User) string {
	var b strings.Builder
	b.WriteString("🎉 <b>Регистрация завершена!</b>\n\n")
	b.WriteString(Summary(user))
	b.WriteString("\n\nКоманды:\n")
	b.WriteString("• /astro — прогноз на сегодня\n")
	b.WriteString("• /moon — фаза Луны\n")
	b.WriteString("• /profile — ваши данные\n")
	b.WriteString("• /help — справка")
	return b.String()
}

// Summary renders the collected profile attributes.
func Summary(user *model.User) string {
	var b strings.Builder
	b.WriteString("📋 <b>Ваши данные</b>\n")
	b.WriteString(fmt.Sprintf("👤 Имя: %s\n", html.EscapeString(user.Name)))

	if user.BirthDate != nil {
		b.WriteString(fmt.Sprintf("📅 Дата рождения: %s\n", user.BirthDate.Format("02.01.2006")))
	} else {
		b.WriteString("📅 Дата рождения: не указана\n")
	}

	timeNote := ""
	if user.BirthTimeUnknown {
		timeNote = " (приблизительно)"
	}
	b.WriteString(fmt.Sprintf("⏰ Время рождения: %s%s\n", user.BirthTime, timeNote))

	if user.Latitude != nil && user.Longitude != nil {
		b.WriteString(fmt.Sprintf("🏙 Место рождения: 📍 %.4f, %.4f\n", *user.Latitude, *user.Longitude))
	} else {
		b.WriteString(fmt.Sprintf("🏙 Место рождения: %s\n", html.EscapeString(user.BirthPlace)))
	}

	b.WriteString(fmt.Sprintf("🔔 Время прогнозов: %s", user.NotifyTime))
	return strings.TrimSpace(b.String())
}
