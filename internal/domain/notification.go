package domain

import "context"

// NoticeLevel mirrors the icon of a toast/alert
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a non-blocking user-visible message
type Notice struct {
	Level NoticeLevel
	Title string
	Text  string
}

// Notifier delivers notices to the user. Implementations must not block the session on failure.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}
