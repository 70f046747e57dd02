package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSaveRepo хранит сохранение в JSON файле.
// Запись атомарна: временный файл в том же каталоге переименовывается поверх.
type FileSaveRepo struct {
	path string
}

// NewFileSaveRepo создаёт файловый репозиторий по пути path
func NewFileSaveRepo(path string) *FileSaveRepo {
	return &FileSaveRepo{path: path}
}

// Path возвращает путь к файлу сохранения
func (r *FileSaveRepo) Path() string {
	return r.path
}

func (r *FileSaveRepo) Save(ctx context.Context, state SaveState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация сохранения: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".save-*.tmp")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // после успешного Rename файла уже нет

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("запись сохранения: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync сохранения: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("закрытие временного файла: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("замена файла сохранения: %w", err)
	}
	return nil
}

func (r *FileSaveRepo) Load(ctx context.Context) (SaveState, bool, error) {
	if err := ctx.Err(); err != nil {
		return SaveState{}, false, err
	}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return SaveState{}, false, nil
	}
	if err != nil {
		return SaveState{}, false, fmt.Errorf("чтение %s: %w", r.path, err)
	}

	state, err := JSONCodec{}.Decode(data)
	if err != nil {
		return SaveState{}, false, err
	}
	return state, true, nil
}

func (r *FileSaveRepo) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("удаление %s: %w", r.path, err)
	}
	return nil
}

func (r *FileSaveRepo) Close() error { return nil }
