package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/greened/git-project/pkg/config"
	"github.com/greened/git-project/pkg/types"
)

// runSchema declares the properties of a stored run command.
var runSchema = types.Schema{
	{Key: "command", Description: "Command template to execute"},
	{Key: "description", Description: "What the command does"},
}

// runOptions holds per-invocation flag values for the run command.
type runOptions struct {
	set         string
	defines     []string
	jsonDefines string
	dryRun      bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a stored command with {name} substitution",
		Long: "Execute the command template stored under <project>.run.<name>,\n" +
			"expanding {name} tokens against project properties, --define\n" +
			"overrides, and repository built-ins such as {branch}.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.set, "set", "", "store a command template instead of executing")
	cmd.Flags().StringArrayVar(&opts.defines, "define", nil, "substitution override key=value (repeatable)")
	cmd.Flags().StringVar(&opts.jsonDefines, "json-defines", "", "substitution overrides as a JSON object")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the expanded command instead of executing")

	return cmd
}

func runRun(cmd *cobra.Command, name string, opts runOptions) error {
	store, repo, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	runObj, err := config.New(store, flags.project, "run", name, runSchema, nil)
	if err != nil {
		return err
	}

	if opts.set != "" {
		return runObj.Set("command", opts.set)
	}

	overrides, err := parseDefines(opts.defines, opts.jsonDefines)
	if err != nil {
		return err
	}

	// The project object is the substitution scope head.
	scope, err := config.NewScopedObject(store, flags.project, "", "", nil, nil)
	if err != nil {
		return err
	}

	expanded, err := runObj.SubstituteValue(repo, scope, overrides, "command")
	if err != nil {
		if errors.Is(err, types.ErrNotSet) {
			return fmt.Errorf("no command stored for %q; store one with: git-project run %s --set '<command>'",
				name, name)
		}
		return err
	}

	if opts.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), expanded)
		return nil
	}

	shell := exec.Command("sh", "-c", expanded)
	shell.Stdin = os.Stdin
	shell.Stdout = cmd.OutOrStdout()
	shell.Stderr = cmd.ErrOrStderr()
	return shell.Run()
}

// parseDefines merges --define key=value pairs and a --json-defines object
// into one override map. JSON defines win on key collisions.
func parseDefines(defines []string, jsonDefines string) (map[string]string, error) {
	overrides := make(map[string]string, len(defines))
	for _, d := range defines {
		key, value, ok := strings.Cut(d, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed --define %q (want key=value)", d)
		}
		overrides[key] = value
	}
	if jsonDefines != "" {
		parsed := gjson.Parse(jsonDefines)
		if !parsed.IsObject() {
			return nil, fmt.Errorf("--json-defines must be a JSON object")
		}
		parsed.ForEach(func(key, value gjson.Result) bool {
			overrides[key.String()] = value.String()
			return true
		})
	}
	return overrides, nil
}
