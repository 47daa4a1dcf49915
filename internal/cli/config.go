package cli

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/greened/git-project/pkg/config"
	"github.com/greened/git-project/pkg/types"
)

// configOptions holds per-invocation flag values for the config command.
type configOptions struct {
	add     bool
	unset   bool
	pattern string
	list    bool
}

func newConfigCmd() *cobra.Command {
	var opts configOptions

	cmd := &cobra.Command{
		Use:   "config [<key> [<value>]]",
		Short: "Get and set project properties",
		Long: "Read and write properties of the project object. With a key alone,\n" +
			"prints the stored value (one line per value for multi-value keys).\n" +
			"With a key and value, replaces the stored value set.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.add, "add", false, "add a value instead of replacing")
	cmd.Flags().BoolVar(&opts.unset, "unset", false, "remove the key (or matching values with --pattern)")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "regular expression selecting values for --unset")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list keys and values, optionally filtered by a glob")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string, opts configOptions) error {
	store, _, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.list {
		pattern := ""
		if len(args) > 0 {
			pattern = args[0]
		}
		return listProperties(cmd, store, pattern)
	}

	if len(args) == 0 {
		return errors.New("config requires a key (or --list)")
	}
	key := args[0]

	obj, err := config.New(store, flags.project, "", "", nil, nil)
	if err != nil {
		return err
	}

	switch {
	case opts.unset:
		if opts.pattern != "" {
			return obj.RemoveMatching(key, opts.pattern)
		}
		return obj.RemoveAll(key)

	case opts.add:
		if len(args) < 2 {
			return errors.New("--add requires a key and a value")
		}
		return obj.Add(key, args[1])

	case len(args) == 2:
		return obj.Set(key, args[1])

	default:
		return printProperty(cmd, obj, key)
	}
}

// printProperty prints the value(s) of key, one per line.
func printProperty(cmd *cobra.Command, obj *config.Object, key string) error {
	value, err := obj.Get(key)
	if err != nil {
		if errors.Is(err, types.ErrNotSet) {
			return fmt.Errorf("%s is not set", key)
		}
		return err
	}
	switch v := value.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case []string:
		for _, item := range v {
			fmt.Fprintln(cmd.OutOrStdout(), item)
		}
	}
	return nil
}

// listProperties prints "key = value" lines for the project section,
// filtered by an optional glob over keys.
func listProperties(cmd *cobra.Command, store types.Store, pattern string) error {
	matcher := glob.MustCompile("*")
	if pattern != "" {
		var err error
		matcher, err = glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("glob %q: %w", pattern, err)
		}
	}

	sec, err := store.GetSection(flags.project)
	if err != nil {
		return err
	}
	if sec == nil {
		return nil
	}
	keys, err := sec.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !matcher.Match(key) {
			continue
		}
		values, err := sec.Values(key)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, v)
		}
	}
	return nil
}
