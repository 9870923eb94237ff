// Package bot routes inbound chat events through the per-user session
// state machine and into the record store.
package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/launchtrack/timeclock/internal/clock"
	"github.com/launchtrack/timeclock/internal/media"
	"github.com/launchtrack/timeclock/internal/model"
	"github.com/launchtrack/timeclock/internal/session"
	"github.com/launchtrack/timeclock/internal/store"
	"github.com/launchtrack/timeclock/internal/telegram"
)

// Version is shown in the welcome and help messages.
const Version = "v2.0"

// Transport is the narrow surface the dispatcher needs from the chat
// backend. telegram.Client satisfies it.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup telegram.ReplyMarkup) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *telegram.InlineKeyboard) error
	AnswerCallback(ctx context.Context, callbackID string) error
	FileData(ctx context.Context, fileID string) ([]byte, error)
}

// Options carries the optional collaborators of a Bot.
type Options struct {
	// Transcriber handles voice notes; nil disables the pipeline.
	Transcriber media.Transcriber
	// TableParser handles photographed checklists; nil disables it.
	TableParser media.TableParser
	// Zone stamps record times; defaults to the Europe/Berlin fallback.
	Zone clock.Zone
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Now is the time source; tests pin it.
	Now func() time.Time
}

// Bot dispatches chat events. Updates must be fed in arrival order; the
// dispatcher itself never processes two events for one user concurrently
// because HandleUpdate is called sequentially from the poll loop. Media
// side tasks run on their own goroutines and never touch session state.
type Bot struct {
	transport   Transport
	store       store.Store
	sessions    *session.Registry
	transcriber media.Transcriber
	tableParser media.TableParser
	zone        clock.Zone
	logger      *slog.Logger
	now         func() time.Time

	media sync.WaitGroup
}

func New(transport Transport, st store.Store, opts Options) *Bot {
	b := &Bot{
		transport:   transport,
		store:       st,
		sessions:    session.NewRegistry(),
		transcriber: opts.Transcriber,
		tableParser: opts.TableParser,
		zone:        opts.Zone,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if b.zone == nil {
		b.zone = clock.FixedZone("")
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Wait blocks until in-flight media tasks finish; called on shutdown.
func (b *Bot) Wait() {
	b.media.Wait()
}

// ensureSession returns the user's session, seeding clock state from the
// record store on first contact.
func (b *Bot) ensureSession(ctx context.Context, from *telegram.User, chatID int64) *session.Session {
	s, created := b.sessions.GetOrCreate(from.ID, chatID, from.DisplayName())
	if created {
		b.logger.Info("new user registered", "user", s.Username, "id", s.UserID, "sessions", b.sessions.Len())
		b.seedFromStore(ctx, s)
	}
	return s
}

// seedFromStore refreshes ClockedIn/LastClockIn from the persisted last
// action. Store trouble here is logged and ignored: a fresh session with
// default state is still usable.
func (b *Bot) seedFromStore(ctx context.Context, s *session.Session) {
	la, err := b.store.LastAction(ctx, b.userRef(s))
	if err != nil {
		b.logger.Warn("seeding session from store failed", "user", s.UserID, "error", err)
		return
	}
	if la == nil {
		s.ClockedIn = false
		s.LastClockIn = time.Time{}
		return
	}
	s.ClockedIn = la.Action == model.ClockIn
	s.LastClockIn = time.Time{}
	if s.ClockedIn {
		if t, err := combineDateClock(la.Date, la.Clock, b.zone.Locate(0, 0)); err == nil {
			s.LastClockIn = t
		}
	}
}

func (b *Bot) userRef(s *session.Session) store.User {
	return store.User{ID: s.UserID, Name: s.Username}
}

// combineDateClock builds a full timestamp from a record's date key and
// wall-clock string in the given zone.
func combineDateClock(dateKey, clockStr string, loc *time.Location) (time.Time, error) {
	day, err := clock.ParseDateKey(dateKey)
	if err != nil {
		return time.Time{}, err
	}
	c, err := clock.ParseClock(clockStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		c.Hour(), c.Minute(), c.Second(), 0, loc), nil
}
