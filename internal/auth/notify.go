package auth

import "sync"

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient user-visible message.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

type Notifier interface {
	Success(message string)
	Error(message string)
}

// Toasts queues notifications for one visitor until the next response drains them.
type Toasts struct {
	mu    sync.Mutex
	items []Notification
}

func NewToasts() *Toasts {
	return &Toasts{}
}

func (t *Toasts) Success(message string) {
	t.push(NotifySuccess, message)
}

func (t *Toasts) Error(message string) {
	t.push(NotifyError, message)
}

func (t *Toasts) push(kind NotificationKind, message string) {
	t.mu.Lock()
	t.items = append(t.items, Notification{Kind: kind, Message: message})
	t.mu.Unlock()
}

// Drain returns queued notifications oldest first and empties the queue.
func (t *Toasts) Drain() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	items := t.items
	t.items = nil
	if items == nil {
		return []Notification{}
	}
	return items
}
