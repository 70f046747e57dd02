package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/annel0/horde-survivors/internal/storage"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Inspect or reset the save slot",
}

var saveShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current save as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd.Context(), func(ctx context.Context, repo storage.SaveRepo) error {
			out := cmd.OutOrStdout()
			state, err := storage.LoadExisting(ctx, repo)
			if errors.Is(err, storage.ErrSaveNotFound) {
				fmt.Fprintln(out, "Сохранения нет")
				return nil
			}
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			fmt.Fprintf(out, "Сохранено: %s\n", state.SavedAt().Format(time.RFC3339))
			if state.StageCompleted {
				fmt.Fprintf(out, "Этап %s пройден\n", state.CurrentStageID)
			}
			return nil
		})
	},
}

var saveResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the save slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(cmd.Context(), func(ctx context.Context, repo storage.SaveRepo) error {
			if err := repo.Delete(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "🗑️ Сохранение удалено")
			return nil
		})
	},
}

func init() {
	saveCmd.AddCommand(saveShowCmd)
	saveCmd.AddCommand(saveResetCmd)
}

func withRepo(ctx context.Context, fn func(context.Context, storage.SaveRepo) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(ctx, repo)
}
