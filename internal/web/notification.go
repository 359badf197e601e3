package web

import (
	"sync"
	"time"
)

// NotificationKind selects the styling of a notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is the transient message banner of a session.
type Notification struct {
	Message string
	Kind    NotificationKind
	ShownAt time.Time
}

// uiState is the per-session view state. Dashboard data lives in the
// session's dashboard.State; this only holds what the page itself owns.
type uiState struct {
	mu    sync.Mutex
	query string
	note  *Notification
}

func (u *uiState) notify(kind NotificationKind, msg string, now time.Time) {
	u.mu.Lock()
	u.note = &Notification{Message: msg, Kind: kind, ShownAt: now}
	u.mu.Unlock()
}

func (u *uiState) dismiss() {
	u.mu.Lock()
	u.note = nil
	u.mu.Unlock()
}

func (u *uiState) setQuery(q string) {
	u.mu.Lock()
	u.query = q
	u.mu.Unlock()
}

// current returns the query and the live notification with how long it has
// left. Notifications older than ttl are dropped.
func (u *uiState) current(now time.Time, ttl time.Duration) (string, *Notification, time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.note == nil {
		return u.query, nil, 0
	}
	remaining := ttl - now.Sub(u.note.ShownAt)
	if remaining <= 0 {
		u.note = nil
		return u.query, nil, 0
	}
	n := *u.note
	return u.query, &n, remaining
}
