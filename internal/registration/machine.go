// Package registration implements the onboarding dialogue as an
// explicit state machine over the user profile. Transitions mutate the
// profile in place; persisting the result atomically is the caller's
// job.
package registration

import (
	"strings"
	"time"

	"dailybot/internal/model"
)

// Location is a shared location payload from the chat platform.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Input is one inbound message normalized for the machine.
type Input struct {
	Text     string
	Location *Location
}

// Result describes the outcome of one transition attempt.
type Result struct {
	Reply     string
	EventKind model.ActionKind
	Advanced  bool
}

// Begin moves a fresh user into the name-collection step. Used for
// explicit /start on an unregistered user.
func Begin(user *model.User) Result {
	user.RegistrationStep = model.StepAwaitingName
	return Result{
		Reply:     welcomeText,
		EventKind: model.ActionRegistrationStarted,
		Advanced:  true,
	}
}

// Advance applies one inbound message to the user's current step.
// On validation failure the step does not move and the reply asks the
// user to re-enter; only a generic message event is reported.
func Advance(user *model.User, in Input, now time.Time) Result {
	switch user.RegistrationStep {
	case model.StepNew:
		return advanceNew(user, in)
	case model.StepAwaitingName:
		return advanceName(user, in)
	case model.StepAwaitingDate:
		return advanceBirthDate(user, in, now)
	case model.StepAwaitingTime:
		return advanceBirthTime(user, in)
	case model.StepAwaitingPlace:
		return advanceBirthPlace(user, in, now)
	default:
		// COMPLETE is terminal: the dispatcher routes completed users
		// to command handling, never back here.
		return Result{Reply: completedFallbackText, EventKind: model.ActionMessageSent}
	}
}

func advanceNew(user *model.User, in Input) Result {
	name := strings.TrimSpace(in.Text)
	if name == "" || strings.HasPrefix(name, "/") {
		// First contact without a usable name: start the dialogue and
		// ask for one.
		user.RegistrationStep = model.StepAwaitingName
		return Result{
			Reply:     welcomeText,
			EventKind: model.ActionRegistrationStarted,
			Advanced:  true,
		}
	}

	// The first free-form message doubles as the name answer.
	user.Name = name
	user.RegistrationStep = model.StepAwaitingDate
	return Result{
		Reply:     birthDatePrompt(name),
		EventKind: model.ActionRegistrationStarted,
		Advanced:  true,
	}
}

func advanceName(user *model.User, in Input) Result {
	name := strings.TrimSpace(in.Text)
	if name == "" || strings.HasPrefix(name, "/") {
		return Result{Reply: nameRetryText, EventKind: model.ActionMessageSent}
	}

	user.Name = name
	user.RegistrationStep = model.StepAwaitingDate
	return Result{
		Reply:     birthDatePrompt(name),
		EventKind: model.ActionMessageSent,
		Advanced:  true,
	}
}

func advanceBirthDate(user *model.User, in Input, now time.Time) Result {
	date, err := ParseBirthDate(in.Text, now)
	if err != nil {
		return Result{Reply: birthDateRetryText, EventKind: model.ActionMessageSent}
	}

	user.BirthDate = &date
	user.RegistrationStep = model.StepAwaitingTime
	return Result{
		Reply:     birthTimePrompt(date),
		EventKind: model.ActionMessageSent,
		Advanced:  true,
	}
}

func advanceBirthTime(user *model.User, in Input) Result {
	if IsUnknownTime(in.Text) {
		user.BirthTime = "12:00"
		user.BirthTimeUnknown = true
	} else {
		hhmm, err := ParseBirthTime(in.Text)
		if err != nil {
			return Result{Reply: birthTimeRetryText, EventKind: model.ActionMessageSent}
		}
		user.BirthTime = hhmm
		user.BirthTimeUnknown = false
	}

	user.RegistrationStep = model.StepAwaitingPlace
	return Result{
		Reply:     birthPlacePrompt(user.BirthTime, user.BirthTimeUnknown),
		EventKind: model.ActionMessageSent,
		Advanced:  true,
	}
}

func advanceBirthPlace(user *model.User, in Input, now time.Time) Result {
	if in.Location != nil {
		lat, lon := in.Location.Latitude, in.Location.Longitude
		user.Latitude = &lat
		user.Longitude = &lon
		user.BirthPlace = "по геолокации"
	} else {
		place := strings.TrimSpace(in.Text)
		if len([]rune(place)) < 2 {
			return Result{Reply: birthPlaceRetryText, EventKind: model.ActionMessageSent}
		}
		user.BirthPlace = place
	}

	user.RegistrationStep = model.StepComplete
	user.RegistrationComplete = true
	registered := now.UTC()
	user.RegisteredAt = &registered

	// Entering COMPLETE outranks the location event kind: one event per
	// update, and the completion milestone is the one analytics needs.
	return Result{
		Reply:     completionText(user),
		EventKind: model.ActionRegistrationCompleted,
		Advanced:  true,
	}
}
