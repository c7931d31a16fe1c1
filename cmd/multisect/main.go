// multisect is the CLI entrypoint. It is a thin boundary: argument parsing,
// config loading, and adapter wiring all live in internal/cli and
// internal/config; main only calls into them and maps the result to a
// process exit code.
package main

import (
	"context"
	"os"

	"github.com/manwar/multisect/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
