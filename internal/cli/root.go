// Package cli implements the git-project command-line interface. It is
// thin orchestration: commands construct config objects, push scopes, and
// invoke substitution; all real behavior lives in pkg/config and the store
// backends.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/greened/git-project/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	project   string
	configDir string
	dataDir   string
}

var flags rootFlags

// NewRootCmd creates the top-level "git-project" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "git-project",
		Short: "Manage project configuration stored alongside your repository",
		Long: "git-project persists named, possibly multi-valued properties for a\n" +
			"project into its repository's config and expands {name} templates\n" +
			"against them when running stored commands.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.project, "project", "project", "project section name")
	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory for the sqlite backend")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newRunCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode classifies an error: store failures are system errors,
// everything else is user error.
func exitCode(err error) int {
	if errors.Is(err, types.ErrStore) {
		return exitSysError
	}
	return exitUserError
}
