package bot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/launchtrack/timeclock/internal/clock"
	"github.com/launchtrack/timeclock/internal/media"
	"github.com/launchtrack/timeclock/internal/session"
	"github.com/launchtrack/timeclock/internal/telegram"
)

const mediaTaskTimeout = 3 * time.Minute

// startVoiceTask transcribes a voice note and appends it to today's
// record description. It runs detached from the event loop; only the
// session's immutable identity is captured, never its mutable state.
func (b *Bot) startVoiceTask(ctx context.Context, s *session.Session, fileID string) {
	if b.transcriber == nil {
		b.replyAsync(ctx, s.ChatID, msgVoiceFailed)
		return
	}
	user := b.userRef(s)
	chatID := s.ChatID
	keyboard := mainKeyboard(s.ClockedIn)

	b.media.Add(1)
	go func() {
		defer b.media.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mediaTaskTimeout)
		defer cancel()

		audio, err := b.transport.FileData(ctx, fileID)
		if err != nil {
			b.logger.Error("voice download failed", "user", user.ID, "error", err)
			b.send(ctx, chatID, msgVoiceFailed, keyboard)
			return
		}

		text, err := b.transcriber.Transcribe(ctx, audio)
		if err != nil || text == "" {
			b.logger.Error("transcription failed", "user", user.ID, "error", err)
			b.send(ctx, chatID, msgVoiceFailed, keyboard)
			return
		}

		today := clock.DateKey(b.localNow(0, 0))
		ok, err := b.store.UpdateDescription(ctx, user, today, text)
		if err != nil {
			b.logger.Error("description update failed", "user", user.ID, "error", err)
			b.send(ctx, chatID, msgVoiceFailed, keyboard)
			return
		}
		if !ok {
			b.send(ctx, chatID, msgVoiceNoRecord, keyboard)
			return
		}
		b.send(ctx, chatID, voiceSaved(text), keyboard)
	}()
}

// startScanTask extracts marked table rows from a photographed checklist
// into the user's scan worksheet.
func (b *Bot) startScanTask(ctx context.Context, s *session.Session, fileID string) {
	if b.tableParser == nil {
		b.replyAsync(ctx, s.ChatID, msgScanFailed)
		return
	}
	user := b.userRef(s)
	chatID := s.ChatID
	keyboard := mainKeyboard(s.ClockedIn)

	b.media.Add(1)
	go func() {
		defer b.media.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mediaTaskTimeout)
		defer cancel()

		b.send(ctx, chatID, msgScanStarted, nil)

		image, err := b.transport.FileData(ctx, fileID)
		if err != nil {
			b.logger.Error("photo download failed", "user", user.ID, "error", err)
			b.send(ctx, chatID, msgScanFailed, keyboard)
			return
		}

		parsed, err := b.tableParser.Parse(ctx, image)
		if err != nil {
			b.logger.Error("table parse failed", "user", user.ID, "error", err)
			b.send(ctx, chatID, msgScanFailed, keyboard)
			return
		}

		batch := uuid.NewString()
		rows := media.ExtractMarked(parsed, batch, b.localNow(0, 0))
		if len(rows) == 0 {
			b.send(ctx, chatID, msgScanNoTable, keyboard)
			return
		}

		if err := b.store.AppendScanRows(ctx, user, rows); err != nil {
			b.logger.Error("scan rows save failed", "user", user.ID, "batch", batch, "error", err)
			b.send(ctx, chatID, msgScanFailed, keyboard)
			return
		}
		b.logger.Info("scan batch stored", "user", user.ID, "batch", batch, "rows", len(rows))
		b.send(ctx, chatID, scanSaved(len(rows)), keyboard)
	}()
}

func (b *Bot) replyAsync(ctx context.Context, chatID int64, text string) {
	b.media.Add(1)
	go func() {
		defer b.media.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		b.send(ctx, chatID, text, nil)
	}()
}

// send delivers a message from a side task, logging instead of
// propagating failures.
func (b *Bot) send(ctx context.Context, chatID int64, text string, markup telegram.ReplyMarkup) {
	if err := b.transport.SendMessage(ctx, chatID, text, markup); err != nil {
		b.logger.Error("media reply failed", "chat", chatID, "error", err)
	}
}
