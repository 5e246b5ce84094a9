package cli

import (
	"fmt"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/akolanti/BookRAG/internal/api"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/spf13/cobra"
)

var (
	ingestClear       bool
	ingestFile        string
	ingestConcurrency int
	ingestJSON        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [docs-path]",
	Short: "Index the book's markdown files",
	Long: `Walks docs-path for .md and .mdx files, chunks them, embeds the chunks and
writes them to the vector index. Without an argument DOCS_PATH is used.

Use --file to index a single file instead of a directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "drop the collection before indexing")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "index one file instead of a directory")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "files ingested in parallel (0 = INGEST_CONCURRENCY)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the summary as JSON")
	ingestCmd.MarkFlagsMutuallyExclusive("clear", "file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if services == nil {
		return errNotConfigured
	}

	if ingestFile != "" {
		chunks, err := services.Ingestor.IngestFile(cmd.Context(), ingestFile)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		if ingestJSON {
			return printJSON(cmd, api.IngestFileResponse{ChunksCreated: chunks, File: ingestFile})
		}
		cmd.Printf("Indexed %s (%d chunks)\n", ingestFile, chunks)
		return nil
	}

	path := services.Settings.DocsPath
	if len(args) == 1 {
		path = args[0]
	}
	summary, err := services.Ingestor.WithConcurrency(ingestConcurrency).Run(cmd.Context(), commonModels.IngestRequest{
		DocsPath:      path,
		ClearExisting: ingestClear,
	})
	if err != nil && summary.TotalFiles == 0 {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		if jsonErr := printJSON(cmd, adapter.ToIngestResponse(summary)); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	cmd.Printf("Files: %d  Ingested: %d  Failed: %d  Chunks: %d\n",
		summary.TotalFiles, summary.Ingested, summary.Failed, summary.TotalChunks)
	for _, f := range summary.FailedFiles {
		cmd.Printf("  FAILED %s [%s] %s\n", f.File, f.Stage, f.Error)
	}
	return err
}
