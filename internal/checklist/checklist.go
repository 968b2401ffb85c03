// Package checklist generates review checklists from document text and
// proposes additional items from reviewer feedback.
package checklist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/docinspector/internal/llm"
)

// DefaultItemCount is the number of items requested for a new checklist.
const DefaultItemCount = 5

// noneSentinel is the model's answer when feedback duplicates an existing item.
const noneSentinel = "없음"

const (
	generateSystemPrompt = "문서 분석 전문가처럼 체크리스트를 작성해줘."
	generateUserPrompt   = `다음 문서를 기반으로 검토자가 점검해야 할 체크리스트를 작성해줘.
총 %d개 항목을 작성하고, 각 항목은 '을 해야 함'과 같이 검토형 문장으로 작성해줘.
1. 체크리스트의 항목만 출력되도록 하고, 번호는 붙이지 말고, 각 항목은 새 줄로 구분해줘.
2. 각 항목은 명확하고 구체적이어야 하며, 검토자가 쉽게 이해할 수 있어야 해.
3. 각 항목은 문서의 주요 내용과 관련이 있어야 하며, 문서의 목적을 달성하는 데 도움이 되어야 해.
문서: """%s"""`

	suggestSystemPrompt = "문서 리뷰 보조 시스템"
	suggestUserPrompt   = `현재 체크리스트 항목은 다음과 같습니다:
%s

아래 내용을 '을 해야 함'과 같이 검토형 문장으로 체크리스트 항목 하나를 추가로 작성해줘.
만약 기존의 체크리스트 항목과 중복되는 내용이 있다면, '없음'이라고 답변해줘.

피드백: %s`
)

// Suggestion is the outcome of SuggestFromFeedback: either NewItem or NoSuggestion.
type Suggestion interface {
	isSuggestion()
}

// NewItem proposes one additional checklist item.
type NewItem struct {
	Text string
}

// NoSuggestion means the feedback is already covered by the checklist.
type NoSuggestion struct{}

func (NewItem) isSuggestion()      {}
func (NoSuggestion) isSuggestion() {}

// Engine issues checklist requests through a completion backend.
type Engine struct {
	client llm.Client
}

// NewEngine returns an Engine using client.
func NewEngine(client llm.Client) *Engine {
	return &Engine{client: client}
}

// GenerateInitial asks for n review items, one per line. Blank lines are
// discarded and leading bullet markers stripped. The item count is an
// instruction to the model and is not enforced.
func (e *Engine) GenerateInitial(ctx context.Context, text string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultItemCount
	}
	out, err := e.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(generateSystemPrompt),
			llm.User(fmt.Sprintf(generateUserPrompt, n, text)),
		},
		Temperature: llm.Temperature(0.3),
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("checklist generation: %w", err)
	}

	items := ParseItems(out)
	slog.Info("Checklist generated.", "requested", n, "items", len(items))
	return items, nil
}

// ParseItems splits a line-per-item model response into checklist items.
func ParseItems(raw string) []string {
	var items []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		item := strings.TrimSpace(strings.Trim(line, "- "))
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// SuggestFromFeedback asks for one further item covering feedback, given the
// current checklist. The model answers with the none sentinel when the
// feedback duplicates an existing item.
func (e *Engine) SuggestFromFeedback(ctx context.Context, feedback string, existing []string) (Suggestion, error) {
	out, err := e.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(suggestSystemPrompt),
			llm.User(fmt.Sprintf(suggestUserPrompt, strings.Join(existing, ", "), strings.TrimSpace(feedback))),
		},
		Temperature: llm.Temperature(0.2),
		MaxTokens:   200,
	})
	if err != nil {
		return nil, fmt.Errorf("checklist suggestion: %w", err)
	}

	suggestion := strings.TrimSpace(out)
	if strings.ToLower(suggestion) == noneSentinel {
		return NoSuggestion{}, nil
	}
	return NewItem{Text: suggestion}, nil
}
