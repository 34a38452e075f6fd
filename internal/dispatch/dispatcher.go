// Package dispatch routes inbound updates to the registration machine
// or command handlers, owning per-user serialization, idempotent
// delivery and the commit-then-send ordering.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dailybot/internal/astro"
	"dailybot/internal/dedupe"
	"dailybot/internal/metrics"
	"dailybot/internal/model"
	"dailybot/internal/registration"
)

// maxCommitAttempts bounds silent retries of a failed transaction.
const maxCommitAttempts = 2

// Sender delivers outbound replies.
type Sender interface {
	Send(chatID int64, text string) error
	SendWithMarkup(chatID int64, text string, markup interface{}) error
}

// ProfileStore persists user profiles; SaveWithAction commits a profile
// change and its event as one unit.
type ProfileStore interface {
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error)
	SaveWithAction(ctx context.Context, user *model.User, action *model.UserAction) error
}

// EventLog appends events that carry no profile change.
type EventLog interface {
	Append(ctx context.Context, action *model.UserAction) error
}

// MoonProvider serves the /astro and /moon features.
type MoonProvider interface {
	MoonPhase(ctx context.Context, now time.Time) (astro.MoonData, error)
}

// Dispatcher implements handle(update) -> reply over the wired stores.
type Dispatcher struct {
	sender  Sender
	users   ProfileStore
	events  EventLog
	moon    MoonProvider
	deduper *dedupe.Deduper
	metrics *metrics.Set
	log     *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func New(sender Sender, users ProfileStore, events EventLog, moon MoonProvider, deduper *dedupe.Deduper, m *metrics.Set, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		users:   users,
		events:  events,
		moon:    moon,
		deduper: deduper,
		metrics: m,
		log:     log,
		now:     time.Now,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// userLock returns the serialization mutex for a user, creating it on
// first contact. Locks are never removed; the per-user footprint is a
// mutex.
func (d *Dispatcher) userLock(telegramID int64) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[telegramID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[telegramID] = lock
	}
	return lock
}

// Handle processes one inbound update: at most one reply, exactly one
// event, transitions serialized per user. A replayed update id is a
// no-op success. Returned errors mean the transaction did not commit
// and the platform may redeliver.
func (d *Dispatcher) Handle(ctx context.Context, upd tgbotapi.Update) error {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}

	if d.deduper.SeenAndRecord(upd.UpdateID) {
		d.metrics.DuplicatesTotal.Inc()
		d.log.Debug("duplicate update", zap.Int("update_id", upd.UpdateID))
		return nil
	}

	start := d.now()
	defer func() {
		d.metrics.HandleDuration.Observe(d.now().Sub(start).Seconds())
	}()

	// Serialize the whole transition-and-reply per user so two
	// concurrent deliveries can never both observe the same pre-state,
	// and replies keep inbound order.
	lock := d.userLock(msg.From.ID)
	lock.Lock()
	defer lock.Unlock()

	user, err := d.users.GetOrCreateByTelegramID(ctx, msg.From.ID, msg.From.FirstName, msg.From.LastName, msg.From.UserName)
	if err != nil {
		d.deduper.Unrecord(upd.UpdateID)
		d.metrics.CommitFailures.Inc()
		return fmt.Errorf("load profile: %w", err)
	}

	stepBefore := user.RegistrationStep
	reply, err := d.route(ctx, user, msg)
	if err != nil {
		// Nothing committed: forget the update id so the platform's
		// retry is processed.
		d.deduper.Unrecord(upd.UpdateID)
		d.metrics.CommitFailures.Inc()
		return err
	}

	if reply == "" {
		return nil
	}
	if err := d.deliver(msg.Chat.ID, reply, stepBefore, user.RegistrationStep); err != nil {
		// State already committed: a failed send is a delivery error,
		// never a data error.
		d.metrics.DeliveryFailures.Inc()
		d.log.Warn("reply delivery failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err))
	}
	return nil
}

// deliver picks the reply markup from the dialogue position: the
// birth-place step offers a share-location keyboard, finishing the
// dialogue takes it away again.
func (d *Dispatcher) deliver(chatID int64, reply string, before, after model.RegistrationStep) error {
	switch {
	case after == model.StepAwaitingPlace:
		return d.sender.SendWithMarkup(chatID, reply, locationKeyboard())
	case before == model.StepAwaitingPlace && after == model.StepComplete:
		return d.sender.SendWithMarkup(chatID, reply, tgbotapi.NewRemoveKeyboard(false))
	default:
		return d.sender.Send(chatID, reply)
	}
}

func locationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation("📍 Поделиться геолокацией"),
		),
	)
}

func (d *Dispatcher) route(ctx context.Context, user *model.User, msg *tgbotapi.Message) (string, error) {
	switch {
	case msg.IsCommand():
		d.metrics.UpdatesTotal.WithLabelValues("command").Inc()
		return d.handleCommand(ctx, user, msg)

	case msg.Location != nil:
		d.metrics.UpdatesTotal.WithLabelValues("location").Inc()
		return d.handleLocation(ctx, user, msg)

	case !user.RegistrationComplete:
		d.metrics.UpdatesTotal.WithLabelValues("registration").Inc()
		return d.advanceRegistration(ctx, user, msg, registration.Input{Text: msg.Text})

	default:
		d.metrics.UpdatesTotal.WithLabelValues("fallback").Inc()
		return d.handleFallback(ctx, user, msg)
	}
}

// advanceRegistration runs one machine transition and commits the
// profile together with the emitted event.
func (d *Dispatcher) advanceRegistration(ctx context.Context, user *model.User, msg *tgbotapi.Message, in registration.Input) (string, error) {
	res := registration.Advance(user, in, d.now())

	action := &model.UserAction{
		UserID:      user.ID,
		Kind:        res.EventKind,
		MessageText: msg.Text,
	}
	if err := d.commit(ctx, func() error {
		return d.users.SaveWithAction(ctx, user, action)
	}); err != nil {
		return "", err
	}

	if res.Advanced {
		d.log.Info("registration step",
			zap.Int64("telegram_user_id", user.TelegramUserID),
			zap.String("step", string(user.RegistrationStep)))
	}
	return res.Reply, nil
}

func (d *Dispatcher) handleLocation(ctx context.Context, user *model.User, msg *tgbotapi.Message) (string, error) {
	loc := registration.Location{
		Latitude:  msg.Location.Latitude,
		Longitude: msg.Location.Longitude,
	}

	if !user.RegistrationComplete && user.RegistrationStep == model.StepAwaitingPlace {
		return d.advanceRegistration(ctx, user, msg, registration.Input{Location: &loc})
	}

	// A location outside the dialogue is just recorded.
	action := &model.UserAction{
		UserID: user.ID,
		Kind:   model.ActionLocationShared,
		Context: map[string]any{
			"latitude":  loc.Latitude,
			"longitude": loc.Longitude,
		},
	}
	if err := d.commit(ctx, func() error { return d.events.Append(ctx, action) }); err != nil {
		return "", err
	}
	return locationThanksText, nil
}

func (d *Dispatcher) handleFallback(ctx context.Context, user *model.User, msg *tgbotapi.Message) (string, error) {
	action := &model.UserAction{
		UserID:      user.ID,
		Kind:        model.ActionMessageSent,
		MessageText: msg.Text,
	}
	if err := d.commit(ctx, func() error { return d.events.Append(ctx, action) }); err != nil {
		return "", err
	}
	return fallbackText(msg.Text), nil
}

// commit runs op with bounded retries.
func (d *Dispatcher) commit(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		d.log.Warn("commit attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	return err
}

// commandToken extracts the bare command name without the leading slash
// or a @botname suffix.
func commandToken(msg *tgbotapi.Message) string {
	return strings.ToLower(msg.Command())
}
