// Command git-project manages per-project configuration stored in the
// enclosing repository's config.
package main

import "github.com/greened/git-project/internal/cli"

func main() {
	cli.Execute()
}
