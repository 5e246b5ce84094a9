package cli

import (
	"github.com/akolanti/BookRAG/internal/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipServices: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("%s %s\n", config.AppName, config.AppVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
