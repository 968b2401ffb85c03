package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/docinspector/internal/extract"
	"github.com/Lllllllleong/docinspector/internal/models"
	"github.com/Lllllllleong/docinspector/internal/recommend"
	"github.com/Lllllllleong/docinspector/internal/services"
)

var persist bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Analyze a document and list similar documents",
	Long: `Extracts the document text, then prints its topic, summary, keywords,
review checklist and similar documents.

With --persist the original is stored in BLOB_CONTAINER_NAME, the CSV row in
BLOB_CSV_CONTAINER_NAME and the analysis recorded in Firestore.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	path := args[0]
	format, err := extract.FormatFromFilename(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if persist {
		f, err := services.NewInspector(ctx)
		if err != nil {
			return err
		}
		res, err := f.Process(ctx, &models.AnalyzeRequest{
			Filename:    filepath.Base(path),
			ContentType: format.MIMEType(),
			Content:     data,
		})
		if err != nil {
			return err
		}
		printResponse(out, res)
		return nil
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
	printResponse(out, &models.AnalyzeResponse{
		Topic:          ins.Analysis.Topic,
		Summary:        ins.Analysis.Summary,
		Keywords:       ins.Analysis.Keywords,
		Checklist:      ins.Checklist,
		Recommendation: ins.Recommendation,
	})
	return nil
}

func printResponse(w io.Writer, res *models.AnalyzeResponse) {
	if res.DocumentID != "" {
		fmt.Fprintf(w, "Document: %s\n", res.DocumentID)
	}
	if res.StorageLocator != "" {
		fmt.Fprintf(w, "Stored:   %s\n", res.StorageLocator)
	}
	fmt.Fprintf(w, "Topic:    %s\n", res.Topic)
	fmt.Fprintf(w, "Keywords: %s\n", strings.Join(res.Keywords, ", "))
	fmt.Fprintf(w, "\nSummary\n%s\n", res.Summary)

	fmt.Fprintln(w, "\nChecklist")
	for i, item := range res.Checklist {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}

	if res.Recommendation == "" {
		return
	}
	fmt.Fprintln(w, "\nSimilar documents")
	recs := recommend.ParseRecommendations(res.Recommendation)
	if len(recs) == 0 {
		fmt.Fprintln(w, res.Recommendation)
		return
	}
	for _, r := range recs {
		fmt.Fprintf(w, "  [%d] %s\n", r.Index, r.Title)
		if r.Content != "" {
			fmt.Fprintf(w, "      %s\n", r.Content)
		}
		if r.Link != "" {
			fmt.Fprintf(w, "      %s\n", r.Link)
		}
	}
}
