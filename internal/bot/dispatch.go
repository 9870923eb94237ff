package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/launchtrack/timeclock/internal/clock"
	"github.com/launchtrack/timeclock/internal/model"
	"github.com/launchtrack/timeclock/internal/session"
	"github.com/launchtrack/timeclock/internal/telegram"
)

// HandleUpdate dispatches one inbound event. Handler errors are logged
// and turned into a generic notice; the poll loop never sees them.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) {
	var err error
	var chatID int64

	switch {
	case upd.CallbackQuery != nil:
		// The Bot API omits the originating message when it is too old
		// or inaccessible; such a press has no chat to act on.
		if upd.CallbackQuery.Message == nil {
			if ackErr := b.transport.AnswerCallback(ctx, upd.CallbackQuery.ID); ackErr != nil {
				b.logger.Warn("answering stale callback failed", "error", ackErr)
			}
			return
		}
		chatID = upd.CallbackQuery.Message.Chat.ID
		err = b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.From != nil:
		chatID = upd.Message.Chat.ID
		err = b.handleMessage(ctx, upd.Message)
	default:
		return
	}

	if err != nil {
		b.logger.Error("event handling failed", "update", upd.UpdateID, "error", err)
		if sendErr := b.transport.SendMessage(ctx, chatID, msgGenericError, nil); sendErr != nil {
			b.logger.Error("error notice failed", "error", sendErr)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if strings.HasPrefix(msg.Text, "/") {
		return b.handleCommand(ctx, msg)
	}

	s := b.ensureSession(ctx, msg.From, msg.Chat.ID)
	switch {
	case msg.Location != nil:
		return b.handleLocation(ctx, s, *msg.Location)
	case msg.Voice != nil:
		b.startVoiceTask(ctx, s, msg.Voice.FileID)
		return nil
	case len(msg.Photo) > 0:
		// The last size is the highest resolution.
		b.startScanTask(ctx, s, msg.Photo[len(msg.Photo)-1].FileID)
		return nil
	default:
		return b.handleText(ctx, s, msg.Text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *telegram.Message) error {
	cmd := strings.TrimPrefix(strings.Fields(msg.Text)[0], "/")
	// Group chats suffix commands with the bot name.
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}

	s := b.ensureSession(ctx, msg.From, msg.Chat.ID)
	switch cmd {
	case "start":
		return b.cmdStart(ctx, s, msg.From.FirstName)
	case "help":
		return b.transport.SendMessage(ctx, s.ChatID, helpMessage(), nil)
	case "status":
		return b.cmdStatus(ctx, s)
	case "records":
		rows, err := b.store.RecentRecords(ctx, b.userRef(s), 10)
		if err != nil {
			return err
		}
		return b.transport.SendMessage(ctx, s.ChatID, recordsMessage(rows), mainKeyboard(s.ClockedIn))
	case "config":
		cfg, err := b.store.UserConfig(ctx, s.UserID)
		if err != nil {
			return err
		}
		s.BeginConfig()
		return b.transport.SendMessage(ctx, s.ChatID, configIntro(cfg), nil)
	default:
		return b.transport.SendMessage(ctx, s.ChatID, msgUseButtons, mainKeyboard(s.ClockedIn))
	}
}

func (b *Bot) cmdStart(ctx context.Context, s *session.Session, firstName string) error {
	// /start always re-reads persisted state; the session may be stale
	// after an edit made directly in the spreadsheet.
	b.seedFromStore(ctx, s)

	cfg, err := b.store.UserConfig(ctx, s.UserID)
	if err != nil {
		return err
	}
	if firstName == "" {
		firstName = s.Username
	}
	return b.transport.SendMessage(ctx, s.ChatID, welcomeMessage(firstName, cfg), mainKeyboard(s.ClockedIn))
}

func (b *Bot) cmdStatus(ctx context.Context, s *session.Session) error {
	la, err := b.store.LastAction(ctx, b.userRef(s))
	if err != nil {
		return err
	}
	if la == nil {
		return b.transport.SendMessage(ctx, s.ChatID,
			"❓ <b>Status: No records found</b>\n\nUse /start to begin tracking your time.", nil)
	}

	if la.Action == model.ClockIn {
		duration := "Unknown"
		if start, err := combineDateClock(la.Date, la.Clock, b.zone.Locate(0, 0)); err == nil {
			duration = clock.FormatDuration(b.localNow(0, 0).Sub(start))
		}
		text := fmt.Sprintf("🟢 <b>Status: CLOCKED IN</b>\n\nStarted: %s\nDuration: %s", la.Clock, duration)
		return b.transport.SendMessage(ctx, s.ChatID, text, nil)
	}
	text := fmt.Sprintf("🔴 <b>Status: CLOCKED OUT</b>\n\nLast action: %s", la.Clock)
	return b.transport.SendMessage(ctx, s.ChatID, text, nil)
}

func (b *Bot) handleCallback(ctx context.Context, q *telegram.CallbackQuery) error {
	if err := b.transport.AnswerCallback(ctx, q.ID); err != nil {
		b.logger.Warn("answering callback failed", "error", err)
	}

	s := b.ensureSession(ctx, q.From, q.Message.Chat.ID)
	msgID := q.Message.MessageID

	switch q.Data {
	case callbackClockIn:
		if s.ClockedIn {
			return b.transport.EditMessageText(ctx, s.ChatID, msgID, msgAlreadyClockedIn, mainKeyboard(true))
		}
		s.AwaitLocation(model.ClockIn)
		if err := b.transport.EditMessageText(ctx, s.ChatID, msgID, "🟢 <b>Clock In</b>\n\nTap the button below:", nil); err != nil {
			return err
		}
		return b.transport.SendMessage(ctx, s.ChatID, "📍 Clock In with Location", locationKeyboard(model.ClockIn))

	case callbackClockOut:
		if !s.ClockedIn {
			return b.transport.EditMessageText(ctx, s.ChatID, msgID, msgNotClockedIn, mainKeyboard(false))
		}
		s.AwaitLocation(model.ClockOut)
		if err := b.transport.EditMessageText(ctx, s.ChatID, msgID, "🔴 <b>Clock Out</b>\n\nTap the button below:", nil); err != nil {
			return err
		}
		return b.transport.SendMessage(ctx, s.ChatID, "📍 Clock Out with Location", locationKeyboard(model.ClockOut))

	case callbackConfig:
		cfg, err := b.store.UserConfig(ctx, s.UserID)
		if err != nil {
			return err
		}
		s.BeginConfig()
		return b.transport.EditMessageText(ctx, s.ChatID, msgID, configIntro(cfg), nil)

	case callbackRecords:
		rows, err := b.store.RecentRecords(ctx, b.userRef(s), 10)
		if err != nil {
			return err
		}
		return b.transport.EditMessageText(ctx, s.ChatID, msgID, recordsMessage(rows), mainKeyboard(s.ClockedIn))

	default:
		b.logger.Warn("unknown callback", "data", q.Data)
		return nil
	}
}

func (b *Bot) handleLocation(ctx context.Context, s *session.Session, loc telegram.Location) error {
	action, ok := s.PendingAction()
	if !ok {
		return b.transport.SendMessage(ctx, s.ChatID, msgLocationNotAsked, nil)
	}

	coords := model.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}
	now := b.localNow(coords.Lat, coords.Lon)

	// The session stays armed if the write fails, so the user can share
	// the location again after the generic error notice.
	if _, err := b.store.UpsertDailyRecord(ctx, b.userRef(s), action, now, coords); err != nil {
		return err
	}

	cfg, err := b.store.UserConfig(ctx, s.UserID)
	if err != nil {
		b.logger.Warn("config lookup for reply failed", "user", s.UserID, "error", err)
	}

	var text string
	if action == model.ClockIn {
		s.ClockedIn = true
		s.LastClockIn = now
		text = fmt.Sprintf("%s\n🟢 <b>Clocked In!</b>\nTime: %s\nLocation: %s",
			configSummary(cfg), now.Format("2006-01-02 15:04"), coords)
	} else {
		var span, duration string
		if !s.LastClockIn.IsZero() {
			span = fmt.Sprintf("\nWorking Time: %s - %s", s.LastClockIn.Format("15:04"), now.Format("15:04"))
			duration = fmt.Sprintf("\nWork Duration: %s", clock.FormatDuration(now.Sub(s.LastClockIn)))
		}
		text = fmt.Sprintf("%s\n🔴 <b>Clocked Out.</b>\nDate: %s%s%s",
			configSummary(cfg), now.Format("2006-01-02"), span, duration)
		s.ClockedIn = false
		s.LastClockIn = time.Time{}
	}
	s.FinishLocation()

	if err := b.transport.SendMessage(ctx, s.ChatID, text, removeKeyboard()); err != nil {
		return err
	}
	return b.transport.SendMessage(ctx, s.ChatID, msgChooseOption, mainKeyboard(s.ClockedIn))
}

func (b *Bot) handleText(ctx context.Context, s *session.Session, text string) error {
	if step, ok := s.ConfigStep(); ok {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return b.transport.SendMessage(ctx, s.ChatID, step.Prompt(), nil)
		}
		cfg, done := s.ApplyConfigText(trimmed)
		if !done {
			next, _ := s.ConfigStep()
			reply := fmt.Sprintf("✅ Set to: <b>%s</b>\n\n%s", trimmed, next.Prompt())
			return b.transport.SendMessage(ctx, s.ChatID, reply, nil)
		}
		if err := b.store.SaveUserConfig(ctx, cfg); err != nil {
			return err
		}
		return b.transport.SendMessage(ctx, s.ChatID, configSaved(cfg), mainKeyboard(s.ClockedIn))
	}

	if s.Mode() == session.AwaitingLocation {
		return b.transport.SendMessage(ctx, s.ChatID, msgShareLocation, nil)
	}
	return b.transport.SendMessage(ctx, s.ChatID, msgUseButtons, mainKeyboard(s.ClockedIn))
}

// localNow is the current time in the record-stamping zone.
func (b *Bot) localNow(lat, lon float64) time.Time {
	return b.now().In(b.zone.Locate(lat, lon))
}
