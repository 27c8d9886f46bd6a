// Package host describes the browser facilities the background process
// depends on and provides a client that reaches them over native messaging.
package host

import (
	"context"
)

// IdleState is the browser's view of user presence.
type IdleState string

const (
	Active IdleState = "active"
	Idle   IdleState = "idle"
	Locked IdleState = "locked"
)

// Tab is the active tab of the last focused window.
type Tab struct {
	URL           string `json:"url"`
	ID            int    `json:"tabId"`
	WindowFocused bool   `json:"windowFocused"`
}

// IdleQuerier reports user presence for a detection threshold in seconds.
type IdleQuerier interface {
	QueryIdle(ctx context.Context, threshold int) (IdleState, error)
}

// TabQuerier reports the active tab. It returns nil when no tab is active.
type TabQuerier interface {
	ActiveTab(ctx context.Context) (*Tab, error)
}

// Redirector sends a tab to another URL.
type Redirector interface {
	Redirect(ctx context.Context, tabID int, url string) error
}

// Permissions reports optional browser permissions.
type Permissions interface {
	NotificationsGranted(ctx context.Context) (bool, error)
}

// Host combines every browser facility.
type Host interface {
	IdleQuerier
	TabQuerier
	Redirector
	Permissions
}
