package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/docinspector/internal/extract"
	"github.com/Lllllllleong/docinspector/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Review a document against a generated checklist",
	Long: `Analyzes the document, then starts an interactive review session.

Commands:
  list                      - Show the checklist
  toggle <n>                - Check or uncheck item n
  feedback <author> <text>  - Record feedback; may add a checklist item
  progress                  - Show completion percentage
  log                       - Show recorded feedback
  quit                      - End the session`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewCmd,
}

func runReviewCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	format, err := extract.FormatFromFilename(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	f, client, err := newLocalInspector(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	ins, err := f.Inspect(ctx, data, format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Topic: %s\n\n%s\n\n", ins.Analysis.Topic, ins.Analysis.Summary)

	session := review.NewSession(ins.Checklist, f.Checklist())
	return runReview(ctx, cmd.InOrStdin(), out, session)
}

// runReview drives a review session from line commands until quit or EOF.
func runReview(ctx context.Context, in io.Reader, out io.Writer, s *review.Session) error {
	printChecklist(out, s)

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		verb, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(verb) {
		case "":
		case "quit", "exit":
			fmt.Fprintf(out, "Final progress: %d%%\n", s.Progress())
			return nil
		case "list":
			printChecklist(out, s)
		case "progress":
			fmt.Fprintf(out, "%d%% (%d/%d)\n", s.Progress(), s.Completed(), s.Len())
		case "toggle":
			n, err := strconv.Atoi(rest)
			if err != nil {
				fmt.Fprintln(out, "usage: toggle <n>")
				break
			}
			if err := s.Toggle(n - 1); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				break
			}
			fmt.Fprintf(out, "%d%% complete\n", s.Progress())
		case "feedback":
			author, text, _ := strings.Cut(rest, " ")
			added, err := s.RecordFeedback(ctx, author, strings.TrimSpace(text))
			switch {
			case errors.Is(err, review.ErrValidation):
				fmt.Fprintln(out, "usage: feedback <author> <text>")
			case err != nil:
				fmt.Fprintf(out, "feedback recorded; suggestion failed: %v\n", err)
			case added:
				items := s.Items()
				fmt.Fprintf(out, "added item %d: %s\n", len(items), items[len(items)-1].Text)
			default:
				fmt.Fprintln(out, "feedback recorded; no new item")
			}
		case "log":
			for _, fb := range s.Feedback() {
				fmt.Fprintf(out, "[%s] %s: %s\n", fb.Timestamp.Format(review.TimestampLayout), fb.Author, fb.Text)
			}
		default:
			fmt.Fprintf(out, "unknown command %q\n", verb)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func printChecklist(w io.Writer, s *review.Session) {
	for i, it := range s.Items() {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %d. %s\n", mark, i+1, it.Text)
	}
	fmt.Fprintf(w, "Progress: %d%%\n", s.Progress())
}
