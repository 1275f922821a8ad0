// Package ui holds the two presentation collaborators a session talks to:
// a toast surface for notices and a router for screen changes.
package ui

import (
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(gameID string, n Notice)
}

type Navigator interface {
	Navigate(gameID string, route string)
}

// FeedbackSink is optionally implemented by surfaces that play a cue after
// an attempt (a chime for a correct colour, a buzz for a wrong one).
type FeedbackSink interface {
	Feedback(gameID string, positive bool)
}

// LogNotifier writes notices to the log; it backs headless runs.
type LogNotifier struct {
	Log *zap.Logger
}

func (l LogNotifier) Notify(gameID string, n Notice) {
	l.Log.Info("notice",
		zap.String("game_id", gameID),
		zap.String("level", string(n.Level)),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
	)
}

func (l LogNotifier) Navigate(gameID string, route string) {
	l.Log.Info("navigate", zap.String("game_id", gameID), zap.String("route", route))
}

func (l LogNotifier) Feedback(gameID string, positive bool) {
	l.Log.Debug("feedback", zap.String("game_id", gameID), zap.Bool("positive", positive))
}

// Recorder keeps every notice, navigation and feedback cue; tests read it back.
type Recorder struct {
	mu       sync.Mutex
	notices  []Notice
	routes   []string
	feedback []bool
}

func (r *Recorder) Feedback(_ string, positive bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback = append(r.feedback, positive)
}

func (r *Recorder) Cues() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.feedback...)
}

func (r *Recorder) Notify(_ string, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Navigate(_ string, route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *Recorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

// Fanout sends every notice and navigation to each target in order.
type Fanout []interface {
	Notifier
	Navigator
}

func (f Fanout) Notify(gameID string, n Notice) {
	for _, t := range f {
		t.Notify(gameID, n)
	}
}

func (f Fanout) Navigate(gameID string, route string) {
	for _, t := range f {
		t.Navigate(gameID, route)
	}
}

func (f Fanout) Feedback(gameID string, positive bool) {
	for _, t := range f {
		if s, ok := t.(FeedbackSink); ok {
			s.Feedback(gameID, positive)
		}
	}
}
