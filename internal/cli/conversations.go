package cli

import (
	"fmt"

	"github.com/akolanti/BookRAG/internal/adapter"
	"github.com/spf13/cobra"
)

var (
	conversationsLimit int
	conversationsJSON  bool
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "List, show and delete stored conversations",
	Args:    cobra.NoArgs,
	RunE:    runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Print the messages of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete [conversation-id]",
	Short: "Delete a conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsDelete,
}

func init() {
	conversationsCmd.PersistentFlags().BoolVar(&conversationsJSON, "json", false, "output as JSON")
	conversationsCmd.Flags().IntVarP(&conversationsLimit, "limit", "n", 0, "maximum conversations to list")
	conversationsCmd.AddCommand(conversationsShowCmd, conversationsDeleteCmd)
	rootCmd.AddCommand(conversationsCmd)
}

func runConversationsList(cmd *cobra.Command, _ []string) error {
	if services == nil {
		return errNotConfigured
	}
	convs, err := services.Chat.ListConversations(cmd.Context(), conversationsLimit)
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}
	if conversationsJSON {
		return printJSON(cmd, adapter.ToConversationItems(convs))
	}
	if len(convs) == 0 {
		cmd.Println("No conversations.")
		return nil
	}
	for _, c := range convs {
		cmd.Printf("%s  %s  %3d  %s\n", c.Id, c.CreatedAt.Format("2006-01-02 15:04"), c.MessageCount, c.Title)
	}
	return nil
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	if services == nil {
		return errNotConfigured
	}
	msgs, err := services.Chat.Messages(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("show conversation: %w", err)
	}
	if conversationsJSON {
		return printJSON(cmd, adapter.ToMessageItems(msgs))
	}
	for _, m := range msgs {
		cmd.Printf("[%s] %s\n", m.Role, m.Content)
		cmd.Println()
	}
	return nil
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	if services == nil {
		return errNotConfigured
	}
	if err := services.Chat.DeleteConversation(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	cmd.Println("Conversation deleted")
	return nil
}
