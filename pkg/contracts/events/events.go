// Package events defines the messages pushed to websocket subscribers while
// analysis runs execute.
package events

import (
	"time"
)

// Type identifies an event
type Type string

const (
	// TypeConnection is sent once to each new subscriber
	TypeConnection Type = "connection"

	TypeRunStarted   Type = "run:started"
	TypeRunProgress  Type = "run:progress"
	TypeRunCompleted Type = "run:completed"
	TypeRunFailed    Type = "run:failed"
)

// Event is the envelope of every message on the stream
type Event struct {
	Type      Type        `json:"type"`
	RunID     string      `json:"runId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"traceId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Connection is the payload of TypeConnection
type Connection struct {
	ClientID string `json:"clientId"`
	Status   string `json:"status"`
}

// RunStarted is the payload of TypeRunStarted
type RunStarted struct {
	Company    string `json:"company"`
	Statements int    `json:"statements"`
}

// RunProgress is the payload of TypeRunProgress. Done counts finished
// analyses out of Total eligible ones.
type RunProgress struct {
	Done       int    `json:"done"`
	Total      int    `json:"total"`
	Percent    int    `json:"percent"`
	AnalysisID string `json:"analysisId"`
	Status     string `json:"status"`
}

// RunCompleted is the payload of TypeRunCompleted
type RunCompleted struct {
	Company       string  `json:"company"`
	Analyses      int     `json:"analyses"`
	Failed        int     `json:"failed"`
	OverallScore  float64 `json:"overallScore"`
	OverallRating string  `json:"overallRating"`
	Duration      string  `json:"duration"`
}

// RunFailed is the payload of TypeRunFailed
type RunFailed struct {
	Error string `json:"error"`
}

// New builds an event stamped with the current time
func New(t Type, runID string, data interface{}) Event {
	return Event{Type: t, RunID: runID, Timestamp: time.Now().UTC(), Data: data}
}

// Percent is done/total as a whole percentage; an empty run is complete
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}
