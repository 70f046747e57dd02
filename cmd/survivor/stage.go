package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/world/entity"
	"github.com/annel0/horde-survivors/internal/world/stage"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Stage definition commands",
}

var stageValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a stage file against the known mob types",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			cfg.Stage.Path = args[0]
		}

		def, _, err := loadStage(cfg.Stage)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ %s (%s): %d волн\n", def.StageID, def.Name, len(def.Waves))
		for i, w := range def.Waves {
			boss := ""
			if w.IsBossWave {
				boss = " 👑"
			}
			fmt.Fprintf(out, "  волна %d: %d мобов%s\n", i+1, w.TotalSpawns(), boss)
		}
		return nil
	},
}

func init() {
	stageCmd.AddCommand(stageValidateCmd)
}

// loadStage загружает таблицу мобов и уровень, проверяя типы мобов
func loadStage(cfg config.StageConfig) (*stage.Definition, *entity.MobFactory, error) {
	factory, err := entity.LoadMobFactory(cfg.MobStatsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load mob stats: %w", err)
	}
	def, err := stage.Load(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := def.Validate(factory); err != nil {
		return nil, nil, err
	}
	return def, factory, nil
}
