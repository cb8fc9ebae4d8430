package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/delivery"
	"github.com/ykvlv/calendar-bot/internal/domain"
	"github.com/ykvlv/calendar-bot/internal/store"
)

// DefaultInterval is the polling period. It must equal domain.FireWindow.
const DefaultInterval = time.Minute

// EventSource is the part of the persistence gateway the scheduler reads.
type EventSource interface {
	ListFutureEvents(ctx context.Context, from time.Time) ([]domain.Event, error)
	GetGuildSettings(ctx context.Context, guildID string) (domain.GuildSettings, error)
}

// Marker records dispatched reminders. Mark reports false if the reminder
// was already marked.
type Marker interface {
	Mark(ctx context.Context, eventID string, key int, at time.Time) (bool, error)
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides the polling period.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithMarker enables the sent-marker check before each dispatch.
func WithMarker(m Marker) Option {
	return func(s *Scheduler) { s.marker = m }
}

// WithMetrics records tick and delivery metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// Scheduler polls for future events once per interval and delivers the
// reminders whose firing window contains the current minute.
type Scheduler struct {
	repo     EventSource
	sink     delivery.Sink
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
	marker   Marker
	metrics  *Metrics

	// last evaluated minute; only touched by the goroutine running ticks.
	last time.Time
}

// New creates a Scheduler polling every DefaultInterval.
func New(repo EventSource, sink delivery.Sink, log *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		repo:     repo,
		sink:     sink,
		log:      log,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ready is closed, then ticks immediately and every
// interval until ctx is canceled. Ticks never overlap.
func (s *Scheduler) Run(ctx context.Context, ready <-chan struct{}) {
	select {
	case <-ctx.Done():
		return
	case <-ready:
	}
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// target is the resolved destination of one guild for the current tick.
type target struct {
	channel delivery.Channel
}

// Tick performs one scheduling cycle. Errors are logged, never returned.
// Cancelling ctx does not interrupt a tick that has already started.
func (s *Scheduler) Tick(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	began := time.Now()

	now := domain.TruncateMinute(s.now())
	if !s.last.IsZero() && !now.After(s.last) {
		s.log.Debug("minute already evaluated", zap.Time("now", now))
		return
	}
	s.last = now
	defer func() { s.metrics.observeTick(time.Since(began)) }()

	events, err := s.repo.ListFutureEvents(ctx, now)
	if err != nil {
		s.log.Error("ListFutureEvents failed", zap.Error(err))
		return
	}
	s.log.Debug("fetched events for notification", zap.Int("count", len(events)), zap.Time("now", now))

	targets := make(map[string]*target)
	for _, e := range events {
		s.processEvent(ctx, e, now, targets)
	}
}

// processEvent evaluates one event. A failure here never affects other events.
func (s *Scheduler) processEvent(ctx context.Context, e domain.Event, now time.Time, targets map[string]*target) {
	log := s.log.With(zap.String("eventID", e.ID), zap.String("guildID", e.GuildID))
	defer func() {
		if r := recover(); r != nil {
			log.Error("event processing panicked", zap.Any("panic", r))
		}
	}()
	s.metrics.eventEvaluated()

	due := e.DueOffsets(now)
	if len(due) == 0 {
		return
	}

	t, ok := targets[e.GuildID]
	if !ok {
		t = s.resolveTarget(ctx, e.GuildID, log)
		targets[e.GuildID] = t
	}
	if t == nil {
		return
	}

	for _, d := range due {
		s.dispatch(ctx, e, d, t.channel, log)
	}
}

// resolveTarget returns nil when the guild has no usable notification channel.
func (s *Scheduler) resolveTarget(ctx context.Context, guildID string, log *zap.Logger) *target {
	settings, err := s.repo.GetGuildSettings(ctx, guildID)
	if errors.Is(err, store.ErrNotFound) {
		log.Debug("no notification channel configured")
		return nil
	}
	if err != nil {
		log.Error("GetGuildSettings failed", zap.Error(err))
		return nil
	}

	ch, err := s.sink.ResolveChannel(ctx, settings.ChannelID)
	if errors.Is(err, delivery.ErrChannelNotFound) {
		log.Warn("notification channel unavailable", zap.String("channelID", settings.ChannelID))
		return nil
	}
	if err != nil {
		log.Error("ResolveChannel failed", zap.String("channelID", settings.ChannelID), zap.Error(err))
		return nil
	}
	return &target{channel: ch}
}

func (s *Scheduler) dispatch(ctx context.Context, e domain.Event, d domain.Due, ch delivery.Channel, log *zap.Logger) {
	log = log.With(zap.Int("key", d.Offset.Key), zap.String("notification", d.Offset.String()))

	if s.marker != nil {
		first, err := s.marker.Mark(ctx, e.ID, d.Offset.Key, d.NotifyAt)
		switch {
		case err != nil:
			log.Warn("sent-marker unavailable, relying on firing window", zap.Error(err))
		case !first:
			log.Info("notification already dispatched")
			s.metrics.notification(resultDuplicate)
			return
		}
	}

	res, err := delivery.Deliver(ctx, s.sink, ch, delivery.Compose(e, d.Offset))
	s.metrics.notification(string(res))

	switch res {
	case delivery.ResultSent:
		log.Info("sent notification", zap.String("event", e.Name), zap.String("channelID", ch.ID))
	case delivery.ResultFallback:
		log.Warn("rich message failed, sent plain text", zap.String("channelID", ch.ID), zap.Error(err))
	case delivery.ResultForbidden:
		log.Warn("cannot send notification - no permission", zap.String("channelID", ch.ID))
	default:
		log.Error("failed to send notification", zap.String("channelID", ch.ID), zap.Error(err))
	}
}
