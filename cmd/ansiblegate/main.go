package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ansiblegate/internal/config"
	"ansiblegate/internal/gate"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ansiblegate",
	Short: "ansiblegate - invoke installed Ansible modules and playbooks",
	Long: `ansiblegate bridges a configuration-management agent to an existing
Ansible install. It discovers the module files on disk, answers name
queries against the registry, and invokes modules and playbooks as
subprocesses, translating arguments and results between the two tools'
calling conventions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadGate builds the gate from the configured (or default) config file.
func loadGate() (*gate.Gate, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return gate.New(cfg, logger)
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "ansiblegate", "config.yaml")
	}
	return "ansiblegate.yaml"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(helpModuleCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(playbookCmd)
	rootCmd.AddCommand(browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
