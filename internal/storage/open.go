package storage

import (
	"context"
	"fmt"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/logging"
)

// Open создаёт репозиторий сохранений по конфигурации и оборачивает его трассировкой
func Open(ctx context.Context, cfg config.StorageConfig) (SaveRepo, error) {
	log := logging.GetStorageLogger()

	codec, err := NewCodec(cfg.Compress)
	if err != nil {
		return nil, err
	}

	var repo SaveRepo
	switch cfg.Backend {
	case "", "file":
		path := cfg.Path
		if path == "" {
			path, err = DefaultSavePath(cfg.AppName)
			if err != nil {
				return nil, fmt.Errorf("путь сохранения по умолчанию: %w", err)
			}
		}
		repo = NewFileSaveRepo(path)
		log.Info("💾 Сохранения в файле %s", path)
	case "badger":
		repo, err = NewBadgerSaveRepo(cfg.BadgerDir, cfg.Slot, codec)
		if err != nil {
			return nil, err
		}
		log.Info("💾 Сохранения в BadgerDB %s (слот %s, %s)", cfg.BadgerDir, cfg.Slot, codec.Name())
	case "redis":
		repo, err = NewRedisSaveRepo(ctx, RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
			Slot:      cfg.Slot,
		}, codec)
		if err != nil {
			return nil, err
		}
	case "memory":
		repo = NewMemorySaveRepo()
	default:
		return nil, fmt.Errorf("неизвестный storage.backend: %q", cfg.Backend)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = "file"
	}
	return NewTracedSaveRepo(repo, backend), nil
}
