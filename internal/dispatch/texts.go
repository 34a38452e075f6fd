package dispatch

import (
	"fmt"
	"html"

	"dailybot/internal/model"
)

const helpText = `📋 <b>Доступные команды:</b>

/start — начать работу с ботом
/profile — посмотреть ваш профиль
/astro — астрологический прогноз на сегодня
/moon — текущая фаза Луны
/settime ЧЧ:ММ — время ежедневных уведомлений
/restart — заполнить анкету заново
/help — это сообщение

Если регистрация не завершена, просто отвечайте на вопросы бота.`

const profileIncompleteText = "Профиль ещё не заполнен. Отправьте /start, чтобы пройти регистрацию."

const unknownCommandText = "🤔 Не знаю такой команды. Посмотрите /help — там весь список."

const setTimeUsageText = "Укажите время в формате <code>ЧЧ:ММ</code>, например: <code>/settime 09:30</code>"

const restartText = "🔄 Анкета сброшена, начнём заново."

const locationThanksText = "📍 Спасибо, геолокацию получил!"

func greetingText(name string) string {
	return fmt.Sprintf("С возвращением, <b>%s</b>! 👋\nЧем могу помочь? Список команд — /help", html.EscapeString(name))
}

func setTimeDoneText(hhmm string) string {
	return fmt.Sprintf("⏰ Готово! Буду присылать уведомления в <b>%s</b>.", hhmm)
}

func fallbackText(text string) string {
	if len([]rune(text)) > 80 {
		text = string([]rune(text)[:80]) + "…"
	}
	return fmt.Sprintf("Я вас услышал: «%s»\nКоманды бота — /help", html.EscapeString(text))
}

// resumeText reminds a mid-dialogue user which answer is pending.
func resumeText(step model.RegistrationStep) string {
	switch step {
	case model.StepAwaitingName:
		return "Мы остановились на вашем имени. Как вас зовут?"
	case model.StepAwaitingDate:
		return "Жду вашу дату рождения в формате <code>ДД.ММ.ГГГГ</code>."
	case model.StepAwaitingTime:
		return "Жду время рождения в формате <code>ЧЧ:ММ</code> (или напишите «не знаю»)."
	case model.StepAwaitingPlace:
		return "Остался последний шаг: укажите место рождения или поделитесь геолокацией."
	default:
		return "Продолжим регистрацию — просто ответьте на вопрос выше."
	}
}
