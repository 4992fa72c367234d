package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kairos-quant/kairos/internal/strategy"
	"github.com/kairos-quant/kairos/internal/strategy/builtin"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List available strategies and their parameters",
	Run:   runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) {
	for _, def := range builtin.NewRegistry().Definitions() {
		fmt.Printf("%-10s %s\n", def.Code, def.Name)
		fmt.Printf("           %s\n", def.Description)
		for _, spec := range def.Specs {
			fmt.Printf("           --param %s=%s (default %v, range %v..%v)  %s\n",
				spec.Name, typeLabel(spec.Type), spec.Default, spec.Min, spec.Max, spec.Description)
		}
		fmt.Println()
	}
}

func typeLabel(t strategy.ParamType) string {
	if t == strategy.ParamInt {
		return "<int>"
	}
	return "<float>"
}
