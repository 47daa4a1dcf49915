package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the git-project release version.
const Version = "0.1.0"

const modulePath = "github.com/greened/git-project"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the git-project version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "git-project v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
