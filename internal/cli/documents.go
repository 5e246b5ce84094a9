package cli

import (
	"fmt"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/spf13/cobra"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "List ingested documents",
	Args:    cobra.NoArgs,
	RunE:    runDocuments,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if services == nil {
		return errNotConfigured
	}
	docs, err := services.Ingestor.Documents(cmd.Context())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if documentsJSON {
		return printJSON(cmd, adapter.ToDocumentItems(docs))
	}
	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}
	total := 0
	for _, d := range docs {
		total += d.ChunkCount
		cmd.Printf("%4d  %-40s  %s\n", d.ChunkCount, d.Title, d.SourcePath)
	}
	cmd.Printf("%d documents, %d chunks\n", len(docs), total)
	return nil
}
