// Package analysis derives the topic, summary and keywords of a document.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/docinspector/internal/llm"
)

// DefaultKeywordCount is the number of keywords requested from the model.
const DefaultKeywordCount = 5

const (
	topicSystemPrompt   = "이 문서의 주제를 한 단어나 짧은 문장으로 간결하게 알려줘. 한국어로 답변해줘."
	summarySystemPrompt = "다음 문서를 400자 이내로 간결히 가독성 있게 요약해줘. 한국어로 요약해줘."
	keywordSystemPrompt = "다음 문서에서 가장 중요한 핵심 키워드 %d개만 뽑아줘. 한 단어 또는 짧은 명사구 형태로 추출하고, 조사나 불필요한 단어는 제거해줘. 키워드는 쉼표로 구분해서 출력해줘."
)

// Result holds the three analysis artifacts of one document.
type Result struct {
	Topic       string
	Summary     string
	RawKeywords string
	Keywords    []string
}

// Analyzer runs the analysis calls against a completion backend.
type Analyzer struct {
	client       llm.Client
	keywordCount int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithKeywordCount overrides DefaultKeywordCount.
func WithKeywordCount(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.keywordCount = n
		}
	}
}

// NewAnalyzer returns an Analyzer issuing requests through client.
func NewAnalyzer(client llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{client: client, keywordCount: DefaultKeywordCount}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Topic returns a short phrase naming the document's subject.
func (a *Analyzer) Topic(ctx context.Context, text string) (string, error) {
	out, err := a.client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{llm.System(topicSystemPrompt), llm.User(text)},
		Temperature: llm.Temperature(0.3),
		MaxTokens:   100,
	})
	if err != nil {
		return "", fmt.Errorf("topic: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Summary returns the model's summary verbatim. The length limit is an
// instruction to the model and is not enforced here.
func (a *Analyzer) Summary(ctx context.Context, text string) (string, error) {
	out, err := a.client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{llm.System(summarySystemPrompt), llm.User(text)},
		Temperature: llm.Temperature(0.5),
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}
	return out, nil
}

// RawKeywords returns the comma-separated keyword response.
func (a *Analyzer) RawKeywords(ctx context.Context, text string, n int) (string, error) {
	out, err := a.client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{llm.System(fmt.Sprintf(keywordSystemPrompt, n)), llm.User(text)},
		Temperature: llm.Temperature(0.3),
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("keywords: %w", err)
	}
	return out, nil
}

// Analyze runs topic, summary and keyword extraction in that order. The
// first failure aborts the remaining calls and no partial result is returned.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	logCtx := slog.With("backend", a.client.Name(), "textLength", len(text))
	logCtx.Info("Starting document analysis.")

	topic, err := a.Topic(ctx, text)
	if err != nil {
		logCtx.Error("Topic extraction failed", "error", err)
		return nil, err
	}
	summary, err := a.Summary(ctx, text)
	if err != nil {
		logCtx.Error("Summarization failed", "error", err)
		return nil, err
	}
	raw, err := a.RawKeywords(ctx, text, a.keywordCount)
	if err != nil {
		logCtx.Error("Keyword extraction failed", "error", err)
		return nil, err
	}

	keywords := ParseKeywords(raw)
	logCtx.Info("Document analysis complete.", "topic", topic, "keywordCount", len(keywords))
	return &Result{
		Topic:       topic,
		Summary:     summary,
		RawKeywords: raw,
		Keywords:    keywords,
	}, nil
}
