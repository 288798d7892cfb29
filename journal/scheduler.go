package journal

import "time"

// Handle cancels a scheduled task.
type Handle interface {
	// Cancel stops the task if it has not started. It reports whether the
	// call prevented the task from running.
	Cancel() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func()) Handle
}

// TimerScheduler schedules on the runtime timer heap.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) Handle {
	return timerHandle{time.AfterFunc(d, fn)}
}

type timerHandle struct{ t *time.Timer }

func (h timerHandle) Cancel() bool { return h.t.Stop() }
