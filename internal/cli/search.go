package cli

import (
	"fmt"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag/vectorDB"
	"github.com/spf13/cobra"
)

var (
	searchLimit   int
	searchChapter string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the book without generating an answer",
	Long: `Embeds the query and prints the closest passages above the similarity
threshold, best first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = RAG_TOP_K)")
	searchCmd.Flags().StringVar(&searchChapter, "chapter", "", "restrict to one chapter")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if services == nil {
		return errNotConfigured
	}
	query := args[0]

	results, err := services.Answers.Retrieve(cmd.Context(), query, vectorDB.ChapterFilter(searchChapter), searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, adapter.ToSearchResponse(query, searchChapter, results))
	}
	printSources(cmd, results)
	return nil
}

func printSources(cmd *cobra.Command, results []commonModels.SourceResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.Source
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, r.Score)
		cmd.Printf("      %s | %s\n", r.Chapter, r.Source)
		cmd.Printf("      %s\n", snippet(r.Text, 160))
		cmd.Println()
	}
}

func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
