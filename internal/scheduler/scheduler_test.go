package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ykvlv/calendar-bot/internal/delivery"
	"github.com/ykvlv/calendar-bot/internal/domain"
	"github.com/ykvlv/calendar-bot/internal/store"
)

type fakeRepo struct {
	events        []domain.Event
	settings      map[string]domain.GuildSettings
	listErr       error
	listFrom      []time.Time
	settingsCalls int
}

func (r *fakeRepo) ListFutureEvents(_ context.Context, from time.Time) ([]domain.Event, error) {
	r.listFrom = append(r.listFrom, from)
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.events, nil
}

func (r *fakeRepo) GetGuildSettings(_ context.Context, guildID string) (domain.GuildSettings, error) {
	r.settingsCalls++
	s, ok := r.settings[guildID]
	if !ok {
		return domain.GuildSettings{}, store.ErrNotFound
	}
	return s, nil
}

type fakeSink struct {
	mu         sync.Mutex
	channels   map[string]bool
	richErr    error
	textErr    error
	panicTitle string
	rich       []delivery.Message
	texts      []string
}

func (s *fakeSink) ResolveChannel(_ context.Context, id string) (delivery.Channel, error) {
	if !s.channels[id] {
		return delivery.Channel{}, delivery.ErrChannelNotFound
	}
	return delivery.Channel{ID: id}, nil
}

func (s *fakeSink) SendMessage(_ context.Context, _ delivery.Channel, msg delivery.Message) error {
	if s.panicTitle != "" && msg.Title == s.panicTitle {
		panic("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rich = append(s.rich, msg)
	return s.richErr
}

func (s *fakeSink) SendText(_ context.Context, _ delivery.Channel, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.textErr
}

func (s *fakeSink) attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rich) + len(s.texts)
}

type fakeMarker struct {
	seen map[string]bool
	err  error
}

func (m *fakeMarker) Mark(_ context.Context, eventID string, key int, at time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	k := fmt.Sprintf("%s:%d:%d", eventID, key, at.Unix())
	if m.seen[k] {
		return false, nil
	}
	m.seen[k] = true
	return true, nil
}

// clock returns a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// 2024-01-15 10:00 in the display zone.
var eventStart = time.Date(2024, time.January, 15, 10, 0, 0, 0, domain.DisplayZone)

func standup(offsets ...domain.NotificationOffset) domain.Event {
	return domain.Event{
		ID:            "evt-1",
		GuildID:       "g1",
		Name:          "Standup",
		Color:         "#3e44f7",
		StartAt:       eventStart.UTC(),
		EndAt:         eventStart.Add(time.Hour).UTC(),
		Notifications: offsets,
	}
}

func thirtyBefore() domain.NotificationOffset {
	return domain.NotificationOffset{Key: 0, Amount: 30, Unit: domain.UnitMinutes}
}

func configured() map[string]domain.GuildSettings {
	return map[string]domain.GuildSettings{"g1": {ID: 1, GuildID: "g1", ChannelID: "c1"}}
}

func newTestScheduler(t *testing.T, repo *fakeRepo, sink *fakeSink, c *clock, opts ...Option) *Scheduler {
	t.Helper()
	opts = append([]Option{WithClock(c.now)}, opts...)
	return New(repo, sink, zaptest.NewLogger(t), opts...)
}

func TestTick_DispatchesDueOffset(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup(thirtyBefore())}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart.Add(-30*time.Minute + 25*time.Second)}

	newTestScheduler(t, repo, sink, c).Tick(context.Background())

	require.Len(t, sink.rich, 1)
	assert.Equal(t, "Standup", sink.rich[0].Title)
	assert.Equal(t, "30分後に以下の予定が開催されます", sink.rich[0].Author)
	require.Len(t, repo.listFrom, 1)
	assert.True(t, repo.listFrom[0].Equal(eventStart.Add(-30*time.Minute)), "fetch uses minute-truncated now")
}

func TestTick_SentinelAtStart(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup(thirtyBefore())}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart}

	newTestScheduler(t, repo, sink, c).Tick(context.Background())

	require.Len(t, sink.rich, 1)
	assert.Equal(t, "以下の予定が開催されます", sink.rich[0].Author)
}

func TestTick_NoSettingsSkipsSilently(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup()}}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart}

	newTestScheduler(t, repo, sink, c).Tick(context.Background())

	assert.Equal(t, 1, repo.settingsCalls)
	assert.Zero(t, sink.attempts())
}

func TestTick_UnresolvableChannelSkips(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup()}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{}}
	c := &clock{t: eventStart}

	newTestScheduler(t, repo, sink, c).Tick(context.Background())

	assert.Zero(t, sink.attempts())
}

func TestTick_NotDueDoesNotTouchSettings(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup(thirtyBefore())}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart.Add(-10 * time.Minute)}

	newTestScheduler(t, repo, sink, c).Tick(context.Background())

	assert.Zero(t, repo.settingsCalls)
	assert.Zero(t, sink.attempts())
}

func TestTick_SettingsLookedUpOncePerGuild(t *testing.T) {
	a := standup()
	b := standup()
	b.ID, b.Name = "evt-2", "Retro"
	repo := &fakeRepo{events: []domain.Event{a, b}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart}

	newTestScheduler(t, repo, sink, c).Tick(context.Background())

	assert.Equal(t, 1, repo.settingsCalls)
	assert.Len(t, sink.rich, 2)
}

func TestTick_ConsecutiveMinutesFireOnce(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup(thirtyBefore())}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart.Add(-31*time.Minute + 10*time.Second)}
	s := newTestScheduler(t, repo, sink, c)

	for i := 0; i < 3; i++ {
		s.Tick(context.Background())
		c.t = c.t.Add(time.Minute)
	}

	assert.Len(t, sink.rich, 1)
}

func TestTick_SameMinuteEvaluatedOnce(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup()}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart.Add(2 * time.Second)}
	s := newTestScheduler(t, repo, sink, c)

	s.Tick(context.Background())
	c.t = c.t.Add(50 * time.Second)
	s.Tick(context.Background())

	assert.Len(t, sink.rich, 1)
	assert.Len(t, repo.listFrom, 1)
}

func TestTick_DeliveryOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		richErr  error
		textErr  error
		attempts int
		result   string
	}{
		{name: "sent", attempts: 1, result: "sent"},
		{name: "forbidden", richErr: forbiddenErr(), attempts: 1, result: "forbidden"},
		{name: "fallback", richErr: errors.New("502"), attempts: 2, result: "fallback"},
		{name: "failed", richErr: errors.New("502"), textErr: errors.New("502"), attempts: 2, result: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{events: []domain.Event{standup()}, settings: configured()}
			sink := &fakeSink{channels: map[string]bool{"c1": true}, richErr: tt.richErr, textErr: tt.textErr}
			c := &clock{t: eventStart}
			m := NewMetrics(prometheus.NewRegistry())

			newTestScheduler(t, repo, sink, c, WithMetrics(m)).Tick(context.Background())

			assert.Equal(t, tt.attempts, sink.attempts())
			assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(tt.result)))
		})
	}
}

func forbiddenErr() error {
	return errors.Join(errors.New("HTTP 403"), delivery.ErrForbidden)
}

func TestTick_MarkerSuppressesDuplicate(t *testing.T) {
	marker := &fakeMarker{seen: map[string]bool{}}
	m := NewMetrics(prometheus.NewRegistry())

	for i := 0; i < 2; i++ {
		repo := &fakeRepo{events: []domain.Event{standup()}, settings: configured()}
		sink := &fakeSink{channels: map[string]bool{"c1": true}}
		c := &clock{t: eventStart}
		// a fresh scheduler simulates a restart within the same minute
		newTestScheduler(t, repo, sink, c, WithMarker(marker), WithMetrics(m)).Tick(context.Background())

		if i == 0 {
			assert.Len(t, sink.rich, 1)
		} else {
			assert.Zero(t, sink.attempts())
		}
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(resultDuplicate)))
}

func TestTick_MarkerErrorFallsBackToWindow(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup()}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart}
	marker := &fakeMarker{err: errors.New("connection refused")}

	newTestScheduler(t, repo, sink, c, WithMarker(marker)).Tick(context.Background())

	assert.Len(t, sink.rich, 1)
}

func TestTick_PanicIsContainedPerEvent(t *testing.T) {
	bad := standup()
	bad.ID, bad.Name = "evt-bad", "Explodes"
	good := standup()
	repo := &fakeRepo{events: []domain.Event{bad, good}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}, panicTitle: "Explodes"}
	c := &clock{t: eventStart}

	core, logs := observer.New(zap.ErrorLevel)
	s := New(repo, sink, zap.New(core), WithClock(c.now))

	require.NotPanics(t, func() { s.Tick(context.Background()) })
	require.Len(t, sink.rich, 1)
	assert.Equal(t, "Standup", sink.rich[0].Title)
	assert.Equal(t, 1, logs.FilterMessage("event processing panicked").Len())
}

func TestTick_ListErrorAbortsTick(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("database is locked"), settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart}

	core, logs := observer.New(zap.ErrorLevel)
	New(repo, sink, zap.New(core), WithClock(c.now)).Tick(context.Background())

	assert.Zero(t, sink.attempts())
	assert.Equal(t, 1, logs.FilterMessage("ListFutureEvents failed").Len())
}

func TestTick_CanceledContextStillCompletes(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup()}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	newTestScheduler(t, repo, sink, c).Tick(ctx)

	assert.Len(t, sink.rich, 1)
}

func TestTick_RecordsMetrics(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup(), standup()}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart.Add(-5 * time.Minute)}
	m := NewMetrics(prometheus.NewRegistry())

	newTestScheduler(t, repo, sink, c, WithMetrics(m)).Tick(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events))
}

func TestRun_WaitsForReady(t *testing.T) {
	repo := &fakeRepo{events: []domain.Event{standup()}, settings: configured()}
	sink := &fakeSink{channels: map[string]bool{"c1": true}}
	c := &clock{t: eventStart}
	s := newTestScheduler(t, repo, sink, c, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.Run(ctx, ready)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, sink.attempts(), "no tick before ready")

	close(ready)
	assert.Eventually(t, func() bool { return sink.attempts() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReturnsWhenCanceledBeforeReady(t *testing.T) {
	s := New(&fakeRepo{}, &fakeSink{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx, make(chan struct{}))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run blocked on a canceled context")
	}
}
