package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/horde-survivors/internal/logging"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string // Адрес Redis сервера
	Password  string // Пароль (пустой если не требуется)
	DB        int    // Номер базы данных
	KeyPrefix string // Префикс для ключей
	Slot      string // Имя слота сохранения
}

// RedisSaveRepo хранит слот сохранения в Redis
type RedisSaveRepo struct {
	client *redis.Client
	key    string
	codec  Codec
}

// NewRedisSaveRepo подключается к Redis и проверяет соединение
func NewRedisSaveRepo(ctx context.Context, cfg RedisConfig, codec Codec) (*RedisSaveRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetStorageLogger().Info("🔴 Connected to Redis at %s", cfg.Addr)
	return NewRedisSaveRepoWithClient(client, cfg.KeyPrefix, cfg.Slot, codec), nil
}

// NewRedisSaveRepoWithClient создаёт репозиторий поверх готового клиента
func NewRedisSaveRepoWithClient(client *redis.Client, keyPrefix, slot string, codec Codec) *RedisSaveRepo {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &RedisSaveRepo{client: client, key: keyPrefix + slot, codec: codec}
}

func (r *RedisSaveRepo) Save(ctx context.Context, state SaveState) error {
	data, err := r.codec.Encode(state)
	if err != nil {
		return fmt.Errorf("кодирование сохранения: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("запись в Redis: %w", err)
	}
	return nil
}

func (r *RedisSaveRepo) Load(ctx context.Context) (SaveState, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return SaveState{}, false, nil
	}
	if err != nil {
		return SaveState{}, false, fmt.Errorf("чтение из Redis: %w", err)
	}

	state, err := r.codec.Decode(data)
	if err != nil {
		return SaveState{}, false, err
	}
	return state, true, nil
}

func (r *RedisSaveRepo) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func (r *RedisSaveRepo) Close() error {
	return r.client.Close()
}
