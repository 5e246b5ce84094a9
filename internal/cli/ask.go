package cli

import (
	"fmt"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/akolanti/BookRAG/internal/chat"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/spf13/cobra"
)

var (
	askConversation string
	askSelected     string
	askChapter      string
	askStream       bool
	askJSON         bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the book",
	Long: `Answers from the retrieved passages and stores the exchange as a
conversation. Pass --conversation to continue an earlier one.

With --stream the answer is printed as it is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "continue this conversation")
	askCmd.Flags().StringVar(&askSelected, "selected", "", "text the question is about")
	askCmd.Flags().StringVar(&askChapter, "chapter", "", "restrict retrieval to one chapter")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "print the answer as it is generated")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.MarkFlagsMutuallyExclusive("stream", "json")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if services == nil {
		return errNotConfigured
	}
	in := chat.Input{
		ConversationId: askConversation,
		Message:        args[0],
		SelectedText:   askSelected,
		Chapter:        askChapter,
	}
	if askStream {
		return streamAnswer(cmd, in)
	}

	out, err := services.Chat.Ask(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	if askJSON {
		return printJSON(cmd, adapter.ToChatResponse(out))
	}
	cmd.Println(out.Answer)
	printFooter(cmd, out.ConversationId, out.Sources)
	return nil
}

func streamAnswer(cmd *cobra.Command, in chat.Input) error {
	st, err := services.Chat.AskStream(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	defer st.Close()

	var conversationId string
	var sources []commonModels.SourceResult
	for ev := range st.Events() {
		switch ev.Type {
		case chat.EventConversationId:
			conversationId, _ = ev.Data.(string)
		case chat.EventSources:
			sources, _ = ev.Data.([]commonModels.SourceResult)
		case chat.EventText:
			delta, _ := ev.Data.(string)
			cmd.Print(delta)
		case chat.EventDone:
			cmd.Println()
			printFooter(cmd, conversationId, sources)
		}
	}
	if err := st.Err(); err != nil {
		cmd.Println()
		return fmt.Errorf("answer interrupted: %w", err)
	}
	return nil
}

func printFooter(cmd *cobra.Command, conversationId string, sources []commonModels.SourceResult) {
	cmd.Println()
	for _, s := range sources {
		cmd.Printf("  - %s (%s, %.2f)\n", s.Title, s.Chapter, s.Score)
	}
	cmd.Printf("conversation: %s\n", conversationId)
}
