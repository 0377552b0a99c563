package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ansiblegate/internal/playbook"
)

var playbookOpts struct {
	rundir      string
	check       bool
	diff        bool
	flushCache  bool
	syntaxCheck bool
	forks       int
	inventory   string
	limit       string
	tags        []string
	skipTags    []string
	startAt     string
	extraVars   []string
}

// playbookCmd runs a playbook through ansible-playbook
var playbookCmd = &cobra.Command{
	Use:   "playbook [file]",
	Short: "Run an Ansible playbook and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGate()
		if err != nil {
			return err
		}
		defer g.Close()

		extra, err := parseKeyValues("extra-var", playbookOpts.extraVars)
		if err != nil {
			return err
		}

		ret, err := g.Playbooks(cmd.Context(), args[0], playbook.Options{
			Rundir:      playbookOpts.rundir,
			Check:       playbookOpts.check,
			Diff:        playbookOpts.diff,
			FlushCache:  playbookOpts.flushCache,
			SyntaxCheck: playbookOpts.syntaxCheck,
			Forks:       playbookOpts.forks,
			Inventory:   playbookOpts.inventory,
			Limit:       playbookOpts.limit,
			Tags:        playbookOpts.tags,
			SkipTags:    playbookOpts.skipTags,
			StartAtTask: playbookOpts.startAt,
			ExtraVars:   extra,
		})
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
	f := playbookCmd.Flags()
	f.StringVar(&playbookOpts.rundir, "rundir", "", "directory to run the playbook from")
	f.BoolVar(&playbookOpts.check, "check", false, "don't make any changes, just predict them")
	f.BoolVar(&playbookOpts.diff, "diff", false, "show file differences when changing state")
	f.BoolVar(&playbookOpts.flushCache, "flush-cache", false, "clear the fact cache for every host")
	f.BoolVar(&playbookOpts.syntaxCheck, "syntax-check", false, "only syntax-check the playbook")
	f.IntVar(&playbookOpts.forks, "forks", playbook.DefaultForks, "number of parallel processes")
	f.StringVarP(&playbookOpts.inventory, "inventory", "i", "", "inventory host path or comma separated host list")
	f.StringVarP(&playbookOpts.limit, "limit", "l", "", "limit hosts to the given pattern")
	f.StringSliceVar(&playbookOpts.tags, "tags", nil, "only run plays and tasks tagged with these values")
	f.StringSliceVar(&playbookOpts.skipTags, "skip-tags", nil, "skip plays and tasks with these tags")
	f.StringVar(&playbookOpts.startAt, "start-at-task", "", "start at the task matching this name")
	f.StringArrayVar(&playbookOpts.extraVars, "extra-var", nil, "extra variable as key=value (repeatable)")
}
