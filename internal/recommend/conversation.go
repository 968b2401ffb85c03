package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lllllllleong/docinspector/internal/llm"
)

// NotFoundReply is the answer the assistant is instructed to give when no
// indexed document matches.
const NotFoundReply = "관련 문서를 찾을 수 없습니다."

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("empty search question")

const searchSystemPrompt = "당신은 문서 검색을 도와주는 AI 어시스턴트입니다. 사용자가 질문을 입력하면 관련 문서를 찾아 답변해 주세요. 만약 관련 문서가 없다면, '" + NotFoundReply + "'라고 답변하세요. 문서가 있다면, 꼭 문서 링크를 포함해서 답변해 주세요."

// Conversation is a multi-turn document search chat. Every question is sent
// with the full history and the search index attached.
type Conversation struct {
	client  llm.Client
	source  llm.SearchDataSource
	history []llm.Message
}

// NewConversation starts a search chat with the fixed assistant framing.
func NewConversation(client llm.Client, source llm.SearchDataSource) *Conversation {
	return &Conversation{
		client:  client,
		source:  source,
		history: []llm.Message{llm.System(searchSystemPrompt)},
	}
}

// Ask sends question and returns the assistant's answer. On failure the
// history is left as it was before the call.
func (c *Conversation) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	c.history = append(c.history, llm.User(question))
	source := c.source
	answer, err := c.client.Complete(ctx, llm.Request{
		Messages:   c.history,
		DataSource: &source,
	})
	if err != nil {
		c.history = c.history[:len(c.history)-1]
		return "", fmt.Errorf("document search: %w", err)
	}

	c.history = append(c.history, llm.Message{Role: llm.RoleAssistant, Content: answer})
	return answer, nil
}

// History returns a copy of the conversation so far, system framing first.
func (c *Conversation) History() []llm.Message {
	return append([]llm.Message(nil), c.history...)
}
