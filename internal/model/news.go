package model

import "time"

// EventStatus classifies a news event relative to now.
type EventStatus string

const (
	EventUpcoming EventStatus = "UPCOMING"
	EventPassed   EventStatus = "PASSED"
)

// NewsEvent is a calendar event with its time resolved to the display zone.
type NewsEvent struct {
	Time     time.Time `json:"time"`
	Currency string    `json:"currency"`
	Name     string    `json:"name"`
	Impact   string    `json:"impact,omitempty"`
}

// ClassifiedEvent is a relevant event tagged upcoming or passed.
type ClassifiedEvent struct {
	NewsEvent
	Status EventStatus `json:"status"`
}

// NewsResult is the filtered news view for one pair.
type NewsResult struct {
	Upcoming  []ClassifiedEvent `json:"upcoming"`
	Passed    []ClassifiedEvent `json:"passed"`
	NewsError bool              `json:"news_error"`
	Error     string            `json:"error,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
}
