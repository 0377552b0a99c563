package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// modulesCmd lists registered modules, optionally filtered
var modulesCmd = &cobra.Command{
	Use:   "modules [prefix]",
	Short: "List the Ansible modules discovered on this host",
	Long: `Lists every module registered from the search roots, sorted by dotted
name. With a prefix argument the list is narrowed to names containing the
prefix or whose trailing dotted components start with it.

Example:
  ansiblegate modules system.ping`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGate()
		if err != nil {
			return err
		}
		defer g.Close()
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		for _, name := range g.List(prefix) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// helpModuleCmd shows a module's documentation sections
var helpModuleCmd = &cobra.Command{
	Use:   "help [module]",
	Short: "Show the documentation sections of an installed module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGate()
		if err != nil {
			return err
		}
		defer g.Close()
		ret, err := g.Help(args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(ret)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}
