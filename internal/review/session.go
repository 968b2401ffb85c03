// Package review holds the state of one interactive review session: the
// checklist, its completion progress and the feedback log.
//
// A Session is owned by a single caller and is not safe for concurrent use.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Lllllllleong/docinspector/internal/checklist"
)

// TimestampLayout is the display format of feedback timestamps.
const TimestampLayout = "2006-01-02 15:04"

var (
	// ErrValidation is returned when required feedback input is missing.
	ErrValidation = errors.New("validation failed")
	// ErrIndexOutOfRange is returned when toggling an item that does not exist.
	ErrIndexOutOfRange = errors.New("checklist index out of range")
)

// Item is one checklist entry.
type Item struct {
	Text    string
	Checked bool
}

// FeedbackMessage is one recorded feedback entry.
type FeedbackMessage struct {
	Author    string
	Timestamp time.Time
	Text      string
}

// Suggester proposes a checklist item from feedback. *checklist.Engine
// satisfies it.
type Suggester interface {
	SuggestFromFeedback(ctx context.Context, feedback string, existing []string) (checklist.Suggestion, error)
}

// Session is the checklist and feedback log of one document review.
type Session struct {
	items     []Item
	feedback  []FeedbackMessage
	suggester Suggester
	now       func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now for feedback timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession starts a session from an initial checklist. Every item starts
// unchecked; repeated texts are kept once.
func NewSession(texts []string, suggester Suggester, opts ...Option) *Session {
	s := &Session{suggester: suggester, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range texts {
		if !s.contains(t) {
			s.items = append(s.items, Item{Text: t})
		}
	}
	return s
}

// Len returns the number of checklist items.
func (s *Session) Len() int {
	return len(s.items)
}

// Items returns a copy of the checklist in insertion order.
func (s *Session) Items() []Item {
	return append([]Item(nil), s.items...)
}

// Texts returns the checklist item texts in insertion order.
func (s *Session) Texts() []string {
	texts := make([]string, len(s.items))
	for i, it := range s.items {
		texts[i] = it.Text
	}
	return texts
}

// Feedback returns a copy of the feedback log in insertion order.
func (s *Session) Feedback() []FeedbackMessage {
	return append([]FeedbackMessage(nil), s.feedback...)
}

// Toggle flips the checked state of item i.
func (s *Session) Toggle(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d (checklist has %d items)", ErrIndexOutOfRange, i, len(s.items))
	}
	s.items[i].Checked = !s.items[i].Checked
	return nil
}

// Completed returns the number of checked items.
func (s *Session) Completed() int {
	n := 0
	for _, it := range s.items {
		if it.Checked {
			n++
		}
	}
	return n
}

// Progress returns the rounded completion percentage, 0 for an empty checklist.
func (s *Session) Progress() int {
	if len(s.items) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.Completed()) / float64(len(s.items))))
}

// RecordFeedback appends a feedback entry and asks the suggester for one
// additional item. The suggestion is appended unless it exactly matches an
// existing item text. It reports whether an item was added.
//
// A suggestion failure is returned after the feedback entry is recorded.
func (s *Session) RecordFeedback(ctx context.Context, author, text string) (bool, error) {
	if author == "" || text == "" {
		return false, fmt.Errorf("%w: author and feedback text are required", ErrValidation)
	}

	s.feedback = append(s.feedback, FeedbackMessage{
		Author:    author,
		Timestamp: s.now(),
		Text:      text,
	})

	if s.suggester == nil {
		return false, nil
	}
	suggestion, err := s.suggester.SuggestFromFeedback(ctx, text, s.Texts())
	if err != nil {
		slog.Error("Checklist suggestion failed", "author", author, "error", err)
		return false, err
	}

	switch sug := suggestion.(type) {
	case checklist.NewItem:
		if s.contains(sug.Text) {
			slog.Info("Suggested item already on checklist.", "item", sug.Text)
			return false, nil
		}
		s.items = append(s.items, Item{Text: sug.Text})
		slog.Info("Checklist item added from feedback.", "item", sug.Text, "items", len(s.items))
		return true, nil
	default:
		return false, nil
	}
}

func (s *Session) contains(text string) bool {
	for _, it := range s.items {
		if it.Text == text {
			return true
		}
	}
	return false
}
