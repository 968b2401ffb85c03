package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/docinspector/internal/llm"
	"github.com/Lllllllleong/docinspector/internal/recommend"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Chat with the document search index",
	Long: `Starts an interactive chat answered from the indexed documents.
Every question is sent with the whole conversation. Type quit to leave.`,
	RunE: runSearchCmd,
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	source := llm.LoadSearchDataSource()
	if !source.Configured() {
		return fmt.Errorf("AZURE_SEARCH_ENDPOINT, AZURE_SEARCH_INDEX_NAME and AZURE_SEARCH_KEY must be set")
	}
	client, err := llm.NewClient(ctx, llm.LoadConfig())
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer client.Close()

	return runSearch(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), recommend.NewConversation(client, source))
}

// runSearch relays questions to conv until quit or EOF. A failed question
// is reported and the chat continues.
func runSearch(ctx context.Context, in io.Reader, out io.Writer, conv *recommend.Conversation) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "? ")
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "quit", "exit":
			return nil
		case "":
			fmt.Fprint(out, "? ")
			continue
		}

		answer, err := conv.Ask(ctx, question)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			fmt.Fprintf(out, "error: %v\n", err)
		default:
			fmt.Fprintf(out, "%s\n", answer)
		}
		fmt.Fprint(out, "? ")
	}
	return scanner.Err()
}
