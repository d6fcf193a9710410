package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
	"github.com/cwbudde/go-sdc/pkg/sdc"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show the front-end's target configuration",
	Long: `Describe prints the compile-time version identifiers and the builtin
type sizes of the default target, after applying an optional sdc.yaml
configuration.`,
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	versions := semantic.DefaultVersions()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := sdc.LoadConfig(path)
		if err != nil {
			exitWithError("%v", err)
		}
		for _, v := range cfg.Versions {
			versions[v] = true
		}
	}

	names := make([]string, 0, len(versions))
	for v := range versions {
		names = append(names, v)
	}
	sort.Strings(names)

	fmt.Println("Version identifiers:")
	for _, v := range names {
		fmt.Printf("  %s\n", v)
	}

	fmt.Println("Builtin sizes:")
	for b := types.Bool; b <= types.Ucent; b++ {
		fmt.Printf("  %-6s %2d bytes\n", b, b.Size())
	}
	return nil
}
