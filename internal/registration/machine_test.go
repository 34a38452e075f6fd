package registration_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"dailybot/internal/model"
	"dailybot/internal/registration"
)

func freshUser() *model.User {
	return &model.User{
		ID:               "u-1",
		TelegramUserID:   100,
		RegistrationStep: model.StepNew,
		NotifyTime:       "09:00",
		Language:         "ru",
	}
}

var now = time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

func TestAdvanceFromNew(t *testing.T) {
	Convey("Given a user who has never interacted", t, func() {
		user := freshUser()

		Convey("When the first message is a usable name", func() {
			res := registration.Advance(user, registration.Input{Text: "  Анна "}, now)

			Convey("Then the name is stored and the machine awaits the birth date", func() {
				So(user.Name, ShouldEqual, "Анна")
				So(user.RegistrationStep, ShouldEqual, model.StepAwaitingDate)
				So(res.EventKind, ShouldEqual, model.ActionRegistrationStarted)
				So(res.Advanced, ShouldBeTrue)
			})
		})

		Convey("When the first message is empty", func() {
			res := registration.Advance(user, registration.Input{Text: "   "}, now)

			Convey("Then registration starts with a name prompt", func() {
				So(user.RegistrationStep, ShouldEqual, model.StepAwaitingName)
				So(res.EventKind, ShouldEqual, model.ActionRegistrationStarted)
				So(user.Name, ShouldBeEmpty)
			})
		})

		Convey("When Begin is used for an explicit /start", func() {
			res := registration.Begin(user)

			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingName)
			So(res.EventKind, ShouldEqual, model.ActionRegistrationStarted)
		})
	})
}

func TestAdvanceBirthDate(t *testing.T) {
	Convey("Given a user awaiting the birth date", t, func() {
		user := freshUser()
		user.Name = "Анна"
		user.RegistrationStep = model.StepAwaitingDate

		Convey("When the text is not a date", func() {
			res := registration.Advance(user, registration.Input{Text: "not a date"}, now)

			Convey("Then the state does not move and the user is re-prompted", func() {
				So(user.RegistrationStep, ShouldEqual, model.StepAwaitingDate)
				So(user.BirthDate, ShouldBeNil)
				So(res.Advanced, ShouldBeFalse)
				So(res.EventKind, ShouldEqual, model.ActionMessageSent)
				So(res.Reply, ShouldContainSubstring, "ДД.ММ.ГГГГ")
			})
		})

		Convey("When the date is in the future", func() {
			res := registration.Advance(user, registration.Input{Text: "15.03.2050"}, now)

			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingDate)
			So(res.Advanced, ShouldBeFalse)
		})

		Convey("When the date is before 1900", func() {
			res := registration.Advance(user, registration.Input{Text: "15.03.1850"}, now)

			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingDate)
			So(res.Advanced, ShouldBeFalse)
		})

		Convey("When the date is valid", func() {
			res := registration.Advance(user, registration.Input{Text: "15.03.1990"}, now)

			So(user.BirthDate, ShouldNotBeNil)
			So(user.BirthDate.Format("2006-01-02"), ShouldEqual, "1990-03-15")
			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingTime)
			So(res.Advanced, ShouldBeTrue)
		})

		Convey("When the date uses the ISO layout", func() {
			registration.Advance(user, registration.Input{Text: "1990-03-15"}, now)

			So(user.BirthDate, ShouldNotBeNil)
			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingTime)
		})
	})
}

func TestAdvanceBirthTime(t *testing.T) {
	Convey("Given a user awaiting the birth time", t, func() {
		user := freshUser()
		user.RegistrationStep = model.StepAwaitingTime

		Convey("When the user does not know the time", func() {
			res := registration.Advance(user, registration.Input{Text: "не знаю"}, now)

			So(user.BirthTime, ShouldEqual, "12:00")
			So(user.BirthTimeUnknown, ShouldBeTrue)
			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingPlace)
			So(res.Advanced, ShouldBeTrue)
		})

		Convey("When a valid time is given", func() {
			registration.Advance(user, registration.Input{Text: "14:30"}, now)

			So(user.BirthTime, ShouldEqual, "14:30")
			So(user.BirthTimeUnknown, ShouldBeFalse)
			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingPlace)
		})

		Convey("When the time uses a dot separator", func() {
			registration.Advance(user, registration.Input{Text: "9.05"}, now)

			So(user.BirthTime, ShouldEqual, "09:05")
		})

		Convey("When the time is invalid", func() {
			res := registration.Advance(user, registration.Input{Text: "25:99"}, now)

			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingTime)
			So(res.Advanced, ShouldBeFalse)
			So(res.EventKind, ShouldEqual, model.ActionMessageSent)
		})
	})
}

func TestAdvanceBirthPlace(t *testing.T) {
	Convey("Given a user awaiting the birth place", t, func() {
		user := freshUser()
		user.Name = "Анна"
		user.RegistrationStep = model.StepAwaitingPlace

		Convey("When a city name is given", func() {
			res := registration.Advance(user, registration.Input{Text: "Москва"}, now)

			Convey("Then registration completes", func() {
				So(user.BirthPlace, ShouldEqual, "Москва")
				So(user.RegistrationStep, ShouldEqual, model.StepComplete)
				So(user.RegistrationComplete, ShouldBeTrue)
				So(user.RegisteredAt, ShouldNotBeNil)
				So(res.EventKind, ShouldEqual, model.ActionRegistrationCompleted)
				So(res.Reply, ShouldContainSubstring, "Регистрация завершена")
			})
		})

		Convey("When a location payload is shared", func() {
			res := registration.Advance(user, registration.Input{
				Location: &registration.Location{Latitude: 55.7558, Longitude: 37.6173},
			}, now)

			So(*user.Latitude, ShouldAlmostEqual, 55.7558, 0.0001)
			So(*user.Longitude, ShouldAlmostEqual, 37.6173, 0.0001)
			So(user.RegistrationStep, ShouldEqual, model.StepComplete)
			So(res.EventKind, ShouldEqual, model.ActionRegistrationCompleted)
		})

		Convey("When the text is too short", func() {
			res := registration.Advance(user, registration.Input{Text: "М"}, now)

			So(user.RegistrationStep, ShouldEqual, model.StepAwaitingPlace)
			So(res.Advanced, ShouldBeFalse)
		})
	})
}

func TestFullValidSequence(t *testing.T) {
	Convey("Given a fresh user walking through every step with valid input", t, func() {
		user := freshUser()
		inputs := []registration.Input{
			{Text: "Анна"},
			{Text: "15.03.1990"},
			{Text: "14:30"},
			{Text: "Москва"},
		}

		var completed int
		for _, in := range inputs {
			res := registration.Advance(user, in, now)
			So(res.Advanced, ShouldBeTrue)
			if res.EventKind == model.ActionRegistrationCompleted {
				completed++
			}
		}

		Convey("Then the final status is COMPLETE with one completion event", func() {
			So(user.RegistrationStep, ShouldEqual, model.StepComplete)
			So(user.RegistrationComplete, ShouldBeTrue)
			So(completed, ShouldEqual, 1)
		})
	})
}

func TestResetRegistration(t *testing.T) {
	Convey("Given a completed user", t, func() {
		user := freshUser()
		for _, in := range []registration.Input{
			{Text: "Анна"}, {Text: "15.03.1990"}, {Text: "14:30"}, {Text: "Москва"},
		} {
			registration.Advance(user, in, now)
		}

		Convey("When the profile is force-reset", func() {
			user.ResetRegistration()

			Convey("Then collected attributes are cleared and the step is NEW", func() {
				So(user.RegistrationStep, ShouldEqual, model.StepNew)
				So(user.RegistrationComplete, ShouldBeFalse)
				So(user.Name, ShouldBeEmpty)
				So(user.BirthDate, ShouldBeNil)
				So(user.BirthTime, ShouldBeEmpty)
				So(user.BirthPlace, ShouldBeEmpty)
				So(user.RegisteredAt, ShouldBeNil)
			})
		})
	})
}
