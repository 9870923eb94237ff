package bot

import (
	"github.com/launchtrack/timeclock/internal/model"
	"github.com/launchtrack/timeclock/internal/telegram"
)

const (
	callbackClockIn  = "clock_in"
	callbackClockOut = "clock_out"
	callbackConfig   = "config"
	callbackRecords  = "view_records"
)

// mainKeyboard offers the actions valid for the current clock state.
func mainKeyboard(clockedIn bool) *telegram.InlineKeyboard {
	if clockedIn {
		return &telegram.InlineKeyboard{InlineKeyboard: [][]telegram.InlineButton{
			{{Text: "🔴 Clock Out", CallbackData: callbackClockOut}},
		}}
	}
	return &telegram.InlineKeyboard{InlineKeyboard: [][]telegram.InlineButton{
		{{Text: "🟢 Clock In", CallbackData: callbackClockIn}},
		{{Text: "📊 Records", CallbackData: callbackRecords}},
		{{Text: "⚙️ Config", CallbackData: callbackConfig}},
	}}
}

// locationKeyboard asks the client to share a live location for the
// pending action.
func locationKeyboard(action model.Action) *telegram.ReplyKeyboard {
	label := "📍 Clock In with Location"
	if action == model.ClockOut {
		label = "📍 Clock Out with Location"
	}
	return &telegram.ReplyKeyboard{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: label, RequestLocation: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

func removeKeyboard() telegram.ReplyMarkup {
	return telegram.RemoveKeyboard{RemoveKeyboard: true}
}
