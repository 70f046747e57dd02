// Package main содержит точку входа headless-симуляции Horde Survivors
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "survivor",
	Short:        "Horde Survivors headless simulation",
	SilenceUsage: true,
	Long:         `Horde Survivors прогоняет уровни с волнами мобов без графики: автопилот, сохранения, события и статус-сервер.`,
}

func main() {
	err := rootCmd.Execute()
	_ = logging.GetLoggerManager().CloseAll()
	logging.CloseDefaultLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "путь к YAML конфигурации (или GAME_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "уровень логов: trace|debug|info|warn|error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(stageCmd)
}

// loadConfig читает конфигурацию и настраивает логирование
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logging.Configure(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Directory)
	if err := logging.GetLoggerManager().ApplyComponentLevels(cfg.Logging.Components); err != nil {
		return nil, fmt.Errorf("logging.components: %w", err)
	}
	if cfg.Logging.Directory != "" {
		if err := logging.InitDefaultLogger("survivor"); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}
	return cfg, nil
}
