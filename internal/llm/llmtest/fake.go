// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/docinspector/internal/llm"
)

// Reply is one scripted completion result.
type Reply struct {
	Text string
	Err  error
}

// Client returns the scripted replies in order and records every request.
// Running out of replies fails the call with llm.ErrGeneration.
type Client struct {
	Replies  []Reply
	Requests []llm.Request
}

// New returns a Client answering with texts in order.
func New(texts ...string) *Client {
	c := &Client{}
	for _, t := range texts {
		c.Replies = append(c.Replies, Reply{Text: t})
	}
	return c
}

// Then appends a reply and returns c for chaining.
func (c *Client) Then(text string, err error) *Client {
	c.Replies = append(c.Replies, Reply{Text: text, Err: err})
	return c
}

func (c *Client) Complete(_ context.Context, req llm.Request) (string, error) {
	copied := req
	copied.Messages = append([]llm.Message(nil), req.Messages...)
	c.Requests = append(c.Requests, copied)

	if len(c.Requests) > len(c.Replies) {
		return "", fmt.Errorf("%w: llmtest: no reply scripted for call %d", llm.ErrGeneration, len(c.Requests))
	}
	r := c.Replies[len(c.Requests)-1]
	if r.Err != nil {
		return "", r.Err
	}
	return r.Text, nil
}

func (c *Client) Name() string { return "llmtest" }

func (c *Client) Close() error { return nil }

// Calls reports how many requests were issued.
func (c *Client) Calls() int { return len(c.Requests) }
