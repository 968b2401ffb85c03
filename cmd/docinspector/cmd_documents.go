package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/docinspector/internal/gcp"
)

var documentsLimit int

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List recently recorded documents",
	RunE:  runDocuments,
}

func runDocuments(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	projectID := gcp.GetEnv("PROJECT_ID", "")
	client, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return err
	}
	recorder := gcp.NewFirestoreRecorder(client, gcp.GetEnv("FIRESTORE_COLLECTION", "documents"))
	defer recorder.Close()

	docs, err := recorder.Recent(ctx, documentsLimit)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSTATUS\tCREATED\tTOPIC\tKEYWORDS")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Filename, d.Status, d.CreatedAt.Format("2006-01-02 15:04"), d.Topic, strings.Join(d.Keywords, ", "))
	}
	return w.Flush()
}
