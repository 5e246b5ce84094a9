package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the vector collection and every document record",
	Long: `Deletes the whole vector collection and all document records. Stored
conversations are kept. Requires --yes.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !resetConfirmed {
		return errors.New("refusing to reset without --yes")
	}
	if services == nil {
		return errNotConfigured
	}
	deleted, err := services.Ingestor.ClearAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Printf("All documents cleared (%d records)\n", deleted)
	return nil
}
