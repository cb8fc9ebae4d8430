package domain

import "time"

// FireWindow is the width of the window in which an offset is due. It must
// match the scheduler's polling period for each offset to fire once.
const FireWindow = time.Minute

// NotifyTime returns the instant a reminder is meant to fire.
func NotifyTime(anchor time.Time, n NotificationOffset) time.Time {
	return anchor.Add(-n.Duration())
}

// InWindow returns true if notifyAt lies in the half-open window [now, now+FireWindow)
// seen from now, i.e. 0 <= now-notifyAt < FireWindow.
func InWindow(now, notifyAt time.Time) bool {
	d := now.Sub(notifyAt)
	return d >= 0 && d < FireWindow
}

// Due pairs an offset with the instant it was scheduled for.
type Due struct {
	Offset   NotificationOffset
	NotifyAt time.Time
}

// DueOffsets computes which effective offsets of e fire at now.
// now is expected to be minute-truncated (see TruncateMinute).
func (e Event) DueOffsets(now time.Time) []Due {
	start, _ := e.Anchors()

	var due []Due
	for _, n := range e.EffectiveOffsets() {
		at := NotifyTime(start, n)
		if InWindow(now, at) {
			due = append(due, Due{Offset: n, NotifyAt: at})
		}
	}
	return due
}
