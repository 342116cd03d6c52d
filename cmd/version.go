package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kubestellar-mcp",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kubestellar-mcp version %s\n", rootCmd.Version)
		},
	}
}
