// Package cli реализует команды replayctl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/annel0/session-replay/internal/config"
	"github.com/annel0/session-replay/internal/logging"
)

var (
	configPath string
	logLevel   string

	// cfg загружается в PersistentPreRunE до любой подкоманды
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "replayctl",
	Short: "Record and replay gameplay sessions",
	Long: `replayctl записывает демонстрационную сцену в текстовые логи сессии,
показывает их содержимое и восстанавливает состояние объектов в любой момент записи.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml or .toml), REPLAY_CONFIG by default")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error)")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	cfg = c

	logging.LogDir = c.Logging.Dir
	if err := logging.InitDefaultLogger("replayctl"); err != nil {
		return err
	}

	level := logging.ParseLevel(c.Logging.Level)
	logging.Default().SetLevel(level)
	logging.GetLoggerManager().SetLevelAll(level)
	logging.Debug("Конфигурация загружена, команда %s", cmd.Name())
	return nil
}

func teardown(*cobra.Command, []string) error {
	err := logging.GetLoggerManager().CloseAll()
	logging.CloseDefaultLogger()
	return err
}
