package dispatch

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dailybot/internal/astro"
	"dailybot/internal/model"
	"dailybot/internal/registration"
)

func (d *Dispatcher) handleCommand(ctx context.Context, user *model.User, msg *tgbotapi.Message) (string, error) {
	cmd := commandToken(msg)
	switch cmd {
	case "start":
		return d.cmdStart(ctx, user)
	case "help":
		return d.cmdHelp(ctx, user, cmd)
	case "profile":
		return d.cmdProfile(ctx, user, cmd)
	case "astro":
		return d.cmdAstro(ctx, user, cmd)
	case "moon":
		return d.cmdMoon(ctx, user, cmd)
	case "settime":
		return d.cmdSetTime(ctx, user, msg.CommandArguments())
	case "restart":
		return d.cmdRestart(ctx, user)
	default:
		return d.cmdUnknown(ctx, user, cmd)
	}
}

// cmdStart either opens the registration dialogue or greets a user who
// already finished it. A /start mid-dialogue only reminds which answer
// is pending, without resetting collected data.
func (d *Dispatcher) cmdStart(ctx context.Context, user *model.User) (string, error) {
	switch {
	case user.RegistrationStep == model.StepNew:
		res := registration.Begin(user)
		action := &model.UserAction{
			UserID:  user.ID,
			Kind:    res.EventKind,
			Command: "/start",
		}
		if err := d.commit(ctx, func() error {
			return d.users.SaveWithAction(ctx, user, action)
		}); err != nil {
			return "", err
		}
		d.log.Info("registration started", zap.Int64("telegram_user_id", user.TelegramUserID))
		return res.Reply, nil

	case !user.RegistrationComplete:
		if err := d.recordCommand(ctx, user, "/start"); err != nil {
			return "", err
		}
		return resumeText(user.RegistrationStep), nil

	default:
		if err := d.recordCommand(ctx, user, "/start"); err != nil {
			return "", err
		}
		return greetingText(user.Name), nil
	}
}

func (d *Dispatcher) cmdHelp(ctx context.Context, user *model.User, cmd string) (string, error) {
	if err := d.recordEvent(ctx, user, model.ActionHelpRequest, "/"+cmd, nil); err != nil {
		return "", err
	}
	return helpText, nil
}

func (d *Dispatcher) cmdProfile(ctx context.Context, user *model.User, cmd string) (string, error) {
	if err := d.recordEvent(ctx, user, model.ActionProfileView, "/"+cmd, nil); err != nil {
		return "", err
	}
	if !user.RegistrationComplete {
		return profileIncompleteText, nil
	}
	return registration.Summary(user), nil
}

func (d *Dispatcher) cmdAstro(ctx context.Context, user *model.User, cmd string) (string, error) {
	if err := d.recordEvent(ctx, user, model.ActionAstroRequest, "/"+cmd, nil); err != nil {
		return "", err
	}

	data, err := d.moon.MoonPhase(ctx, d.now())
	if err != nil {
		d.log.Warn("astro lookup failed", zap.Error(err))
		return astro.UnavailableReply, nil
	}
	return astro.AstroReply(data, user.Name), nil
}

func (d *Dispatcher) cmdMoon(ctx context.Context, user *model.User, cmd string) (string, error) {
	if err := d.recordEvent(ctx, user, model.ActionMoonRequest, "/"+cmd, nil); err != nil {
		return "", err
	}

	data, err := d.moon.MoonPhase(ctx, d.now())
	if err != nil {
		d.log.Warn("moon lookup failed", zap.Error(err))
		return astro.UnavailableReply, nil
	}
	return astro.MoonReply(data), nil
}

// cmdSetTime updates the daily notification time for a registered user.
func (d *Dispatcher) cmdSetTime(ctx context.Context, user *model.User, args string) (string, error) {
	hhmm, err := registration.ParseBirthTime(strings.TrimSpace(args))
	if err != nil {
		if recErr := d.recordCommand(ctx, user, "/settime"); recErr != nil {
			return "", recErr
		}
		return setTimeUsageText, nil
	}

	user.NotifyTime = hhmm
	action := &model.UserAction{
		UserID:  user.ID,
		Kind:    model.ActionCommandUsed,
		Command: "/settime",
		Context: map[string]any{"notify_time": hhmm},
	}
	if err := d.commit(ctx, func() error {
		return d.users.SaveWithAction(ctx, user, action)
	}); err != nil {
		return "", err
	}
	return setTimeDoneText(hhmm), nil
}

// cmdRestart wipes collected attributes and reopens the dialogue.
func (d *Dispatcher) cmdRestart(ctx context.Context, user *model.User) (string, error) {
	user.ResetRegistration()
	res := registration.Begin(user)
	action := &model.UserAction{
		UserID:  user.ID,
		Kind:    model.ActionCommandUsed,
		Command: "/restart",
	}
	if err := d.commit(ctx, func() error {
		return d.users.SaveWithAction(ctx, user, action)
	}); err != nil {
		return "", err
	}
	d.log.Info("registration restarted", zap.Int64("telegram_user_id", user.TelegramUserID))
	return restartText + "\n\n" + res.Reply, nil
}

func (d *Dispatcher) cmdUnknown(ctx context.Context, user *model.User, cmd string) (string, error) {
	action := &model.UserAction{
		UserID:  user.ID,
		Kind:    model.ActionCommandUsed,
		Command: "/" + cmd,
		Context: map[string]any{"token": "/" + cmd, "recognized": false},
	}
	if err := d.commit(ctx, func() error { return d.events.Append(ctx, action) }); err != nil {
		return "", err
	}
	return unknownCommandText, nil
}

// recordCommand appends a generic command_used event.
func (d *Dispatcher) recordCommand(ctx context.Context, user *model.User, command string) error {
	return d.recordEvent(ctx, user, model.ActionCommandUsed, command, nil)
}

func (d *Dispatcher) recordEvent(ctx context.Context, user *model.User, kind model.ActionKind, command string, extra map[string]any) error {
	action := &model.UserAction{
		UserID:  user.ID,
		Kind:    kind,
		Command: command,
		Context: extra,
	}
	return d.commit(ctx, func() error { return d.events.Append(ctx, action) })
}
