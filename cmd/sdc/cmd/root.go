package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sdc",
	Short: "Semantic front-end for a D-like systems language",
	Long: `go-sdc is the semantic analysis front-end of a statically typed,
D-like systems language. It lowers parsed source to a fully resolved IR:
identifiers, types, overloads, inheritance, template instantiations and
integer range checks are all settled here.

The driver commands inspect the front-end; code generation is handled by
a separate back-end.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to an sdc.yaml configuration file")
}

// useColor reports whether stderr is a terminal that can render ANSI
// escapes.
func useColor() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func exitWithError(msg string, args ...any) {
	if useColor() {
		fmt.Fprintf(os.Stderr, "\033[1;31mError:\033[0m "+msg+"\n", args...)
	} else {
		fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	}
	os.Exit(1)
}
