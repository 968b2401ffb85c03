package review

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/docinspector/internal/checklist"
	"github.com/Lllllllleong/docinspector/internal/llm"
	"github.com/Lllllllleong/docinspector/internal/llm/llmtest"
)

var fiveItems = []string{
	"목표를 확인해야 함",
	"일정을 검토해야 함",
	"예산을 확인해야 함",
	"담당자를 확인해야 함",
	"위험 요소를 검토해야 함",
}

type stubSuggester struct {
	suggestion checklist.Suggestion
	err        error
	calls      int
	existing   []string
}

func (s *stubSuggester) SuggestFromFeedback(_ context.Context, _ string, existing []string) (checklist.Suggestion, error) {
	s.calls++
	s.existing = existing
	return s.suggestion, s.err
}

func TestNewSession(t *testing.T) {
	s := NewSession([]string{"a", "b", "a"}, nil)
	require.Equal(t, 2, s.Len())
	for _, it := range s.Items() {
		assert.False(t, it.Checked)
	}
	assert.Equal(t, []string{"a", "b"}, s.Texts())
}

func TestToggle(t *testing.T) {
	s := NewSession(fiveItems, nil)

	require.NoError(t, s.Toggle(1))
	assert.True(t, s.Items()[1].Checked)
	require.NoError(t, s.Toggle(1))
	assert.False(t, s.Items()[1].Checked)

	for _, i := range []int{-1, len(fiveItems)} {
		err := s.Toggle(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", i)
	}
}

func TestToggle_RoundTrip(t *testing.T) {
	s := NewSession(fiveItems, nil)
	require.NoError(t, s.Toggle(3))
	for i := 0; i < s.Len(); i++ {
		before := s.Items()[i].Checked
		require.NoError(t, s.Toggle(i))
		require.NoError(t, s.Toggle(i))
		assert.Equal(t, before, s.Items()[i].Checked)
	}
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, NewSession(nil, nil).Progress())

	s := NewSession([]string{"a", "b", "c"}, nil)
	assert.Equal(t, 0, s.Progress())
	require.NoError(t, s.Toggle(0))
	assert.Equal(t, 33, s.Progress())
	require.NoError(t, s.Toggle(1))
	assert.Equal(t, 67, s.Progress())
	require.NoError(t, s.Toggle(2))
	assert.Equal(t, 100, s.Progress())
	assert.Equal(t, 3, s.Completed())
}

func TestProgress_Monotonic(t *testing.T) {
	s := NewSession(fiveItems, nil)
	prev := s.Progress()
	for i := 0; i < s.Len(); i++ {
		require.NoError(t, s.Toggle(i))
		p := s.Progress()
		assert.GreaterOrEqual(t, p, prev)
		assert.LessOrEqual(t, p, 100)
		prev = p
	}
	for i := 0; i < s.Len(); i++ {
		require.NoError(t, s.Toggle(i))
		p := s.Progress()
		assert.LessOrEqual(t, p, prev)
		assert.GreaterOrEqual(t, p, 0)
		prev = p
	}
}

func TestRecordFeedback_Validation(t *testing.T) {
	sug := &stubSuggester{suggestion: checklist.NewItem{Text: "x"}}
	s := NewSession(fiveItems, sug)

	for _, tc := range [][2]string{{"", "text"}, {"kim", ""}, {"", ""}} {
		added, err := s.RecordFeedback(context.Background(), tc[0], tc[1])
		assert.ErrorIs(t, err, ErrValidation)
		assert.False(t, added)
	}
	assert.Empty(t, s.Feedback())
	assert.Zero(t, sug.calls)
}

func TestRecordFeedback_WhitespaceIsNotEmpty(t *testing.T) {
	sug := &stubSuggester{suggestion: checklist.NoSuggestion{}}
	s := NewSession(fiveItems, sug)

	added, err := s.RecordFeedback(context.Background(), "  ", "\n")
	require.NoError(t, err)
	assert.False(t, added)
	require.Len(t, s.Feedback(), 1)
	assert.Equal(t, "  ", s.Feedback()[0].Author)
	assert.Equal(t, "\n", s.Feedback()[0].Text)
	assert.Equal(t, 1, sug.calls)
}

func TestRecordFeedback_AppendsNewItem(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	sug := &stubSuggester{suggestion: checklist.NewItem{Text: "보안 요구사항을 검토해야 함"}}
	s := NewSession(fiveItems, sug, WithClock(func() time.Time { return at }))
	require.NoError(t, s.Toggle(0))

	added, err := s.RecordFeedback(context.Background(), "reviewer", "보안 검토가 빠졌어요")
	require.NoError(t, err)
	assert.True(t, added)

	require.Equal(t, 6, s.Len())
	last := s.Items()[5]
	assert.Equal(t, Item{Text: "보안 요구사항을 검토해야 함"}, last)
	assert.True(t, s.Items()[0].Checked, "existing items keep their state")
	assert.Equal(t, fiveItems, sug.existing)

	fb := s.Feedback()
	require.Len(t, fb, 1)
	assert.Equal(t, FeedbackMessage{Author: "reviewer", Timestamp: at, Text: "보안 검토가 빠졌어요"}, fb[0])
	assert.Equal(t, "2026-10-18 09:30", fb[0].Timestamp.Format(TimestampLayout))
}

func TestRecordFeedback_ExactDuplicateNotAppended(t *testing.T) {
	for i, text := range fiveItems {
		sug := &stubSuggester{suggestion: checklist.NewItem{Text: text}}
		s := NewSession(fiveItems, sug)

		added, err := s.RecordFeedback(context.Background(), "reviewer", "dup")
		require.NoError(t, err, "item %d", i)
		assert.False(t, added)
		assert.Equal(t, len(fiveItems), s.Len())
	}
}

func TestRecordFeedback_NearDuplicateIsAppended(t *testing.T) {
	sug := &stubSuggester{suggestion: checklist.NewItem{Text: "일정을 검토해야 함."}}
	s := NewSession(fiveItems, sug)

	added, err := s.RecordFeedback(context.Background(), "reviewer", "일정")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, len(fiveItems)+1, s.Len())
}

func TestRecordFeedback_SuggestionFailureKeepsFeedback(t *testing.T) {
	sug := &stubSuggester{err: fmt.Errorf("%w: down", llm.ErrGeneration)}
	s := NewSession(fiveItems, sug)

	added, err := s.RecordFeedback(context.Background(), "reviewer", "text")
	assert.ErrorIs(t, err, llm.ErrGeneration)
	assert.False(t, added)
	assert.Len(t, s.Feedback(), 1)
	assert.Equal(t, len(fiveItems), s.Len())
}

func TestRecordFeedback_SentinelWithEngine(t *testing.T) {
	client := llmtest.New("없음")
	s := NewSession(fiveItems, checklist.NewEngine(client))

	added, err := s.RecordFeedback(context.Background(), "reviewer", fiveItems[2])
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 5, s.Len())
	assert.Len(t, s.Feedback(), 1)
	assert.Equal(t, 1, client.Calls())
}

func TestSession_ItemsIsCopy(t *testing.T) {
	s := NewSession(fiveItems, nil)
	items := s.Items()
	items[0].Checked = true
	assert.False(t, s.Items()[0].Checked)
}
