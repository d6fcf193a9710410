package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-sdc/internal/semantic"
	"github.com/cwbudde/go-sdc/internal/types"
)

var (
	mangleParams string
	mangleReturn string
)

var mangleCmd = &cobra.Command{
	Use:   "mangle <qualified.function.name>",
	Short: "Mangle a function signature",
	Long: `Mangle prints the external ABI name of a D-linkage function from its
qualified name and a builtin-typed signature. Useful for checking what
the front-end will emit for a given declaration.

Example:
  sdc mangle test.foo --params int,long --return void`,
	Args: cobra.ExactArgs(1),
	RunE: runMangle,
}

func init() {
	mangleCmd.Flags().StringVar(&mangleParams, "params", "", "comma-separated builtin parameter types")
	mangleCmd.Flags().StringVar(&mangleReturn, "return", "void", "builtin return type")
	rootCmd.AddCommand(mangleCmd)
}

func runMangle(cmd *cobra.Command, args []string) error {
	path := strings.Split(args[0], ".")

	var params []types.ParamType
	if mangleParams != "" {
		for _, name := range strings.Split(mangleParams, ",") {
			t, err := builtinByName(strings.TrimSpace(name))
			if err != nil {
				exitWithError("%v", err)
			}
			params = append(params, types.NewParamType(t))
		}
	}

	ret, err := builtinByName(mangleReturn)
	if err != nil {
		exitWithError("%v", err)
	}

	ft := &types.FunctionType{
		Linkage: types.LinkageD,
		Return:  types.NewParamType(ret),
		Params:  params,
	}
	mangled, err := semantic.MangleQualified(path, ft)
	if err != nil {
		exitWithError("%v", err)
	}

	fmt.Println(mangled)
	return nil
}

func builtinByName(name string) (types.Type, error) {
	for b := types.Void; b <= types.Ucent; b++ {
		if b.String() == name {
			return types.GetBuiltin(b), nil
		}
	}
	return nil, fmt.Errorf("unknown builtin type '%s'", name)
}
