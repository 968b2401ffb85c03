// Package recommend finds documents similar to an analyzed one through a
// retrieval-augmented completion over the document search index.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/docinspector/internal/llm"
)

const queryTemplate = `아래 내용을 바탕으로 유사한 문서를 추천해줘. 한국어로 답변해줘.

주제: %s
요약: %s
키워드: %s

출력할 때 내용은 아래 형식에 따라 구성하고, 각 문서는 새 줄로 제목 앞에 '①'과 같이 숫자를 붙여서 구분해줘.

제목: [문서 제목]
내용: [문서 내용 요약]
링크: [문서 링크]`

// BuildQuery renders the similarity request for an analyzed document.
func BuildQuery(topic, summary string, keywords []string) string {
	return fmt.Sprintf(queryTemplate, topic, summary, strings.Join(keywords, ", "))
}

// Recommender issues similarity requests grounded in a search index.
type Recommender struct {
	client llm.Client
	source llm.SearchDataSource
}

// NewRecommender returns a Recommender querying source through client.
func NewRecommender(client llm.Client, source llm.SearchDataSource) *Recommender {
	return &Recommender{client: client, source: source}
}

// Recommend returns the model's free-text list of similar documents. The
// text is returned verbatim; ParseRecommendations can structure it.
func (r *Recommender) Recommend(ctx context.Context, topic, summary string, keywords []string) (string, error) {
	source := r.source
	out, err := r.client.Complete(ctx, llm.Request{
		Messages:   []llm.Message{llm.User(BuildQuery(topic, summary, keywords))},
		DataSource: &source,
	})
	if err != nil {
		return "", fmt.Errorf("similar document search: %w", err)
	}
	slog.Info("Similar documents retrieved.", "topic", topic, "backend", r.client.Name())
	return out, nil
}
