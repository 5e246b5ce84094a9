package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the vector store",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if services == nil {
		return errNotConfigured
	}
	status := services.Index.HealthCheck(cmd.Context())
	if healthJSON {
		if err := printJSON(cmd, status); err != nil {
			return err
		}
	} else {
		cmd.Printf("vector store: %s\n", status.Status)
		if len(status.Collections) > 0 {
			cmd.Printf("collections: %s\n", strings.Join(status.Collections, ", "))
		}
	}
	if !status.Healthy {
		return errors.New("vector store is unhealthy: " + status.Error)
	}
	return nil
}
