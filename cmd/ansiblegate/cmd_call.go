package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	callKwargs  []string
	callTimeout time.Duration
)

// callCmd invokes a single module
var callCmd = &cobra.Command{
	Use:   "call [module] [args...]",
	Short: "Invoke an Ansible module and print its result as JSON",
	Long: `Resolves the module by dotted name, serializes the arguments into the
module-args envelope, runs the module as a subprocess and prints the
decoded result.

Positional arguments are passed through as free-form parameters; keyword
arguments use repeated --arg flags.

Example:
  ansiblegate call system.ping --arg data=pong --timeout 60s`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGate()
		if err != nil {
			return err
		}
		defer g.Close()

		kwargs, err := parseKeyValues("arg", callKwargs)
		if err != nil {
			return err
		}

		ret, err := g.Call(cmd.Context(), args[0], args[1:], kwargs, callTimeout)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(ret, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	callCmd.Flags().StringArrayVar(&callKwargs, "arg", nil, "keyword argument as key=value (repeatable)")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 0, "invocation timeout (default from config)")
}
