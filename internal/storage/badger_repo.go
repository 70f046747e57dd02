package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

// BadgerSaveRepo хранит слот сохранения во встроенной BadgerDB
type BadgerSaveRepo struct {
	db    *badger.DB
	key   []byte
	codec Codec
}

// NewBadgerSaveRepo открывает BadgerDB в каталоге dir для слота slot
func NewBadgerSaveRepo(dir, slot string, codec Codec) (*BadgerSaveRepo, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	return newBadgerSaveRepo(db, slot, codec), nil
}

func newBadgerSaveRepo(db *badger.DB, slot string, codec Codec) *BadgerSaveRepo {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &BadgerSaveRepo{db: db, key: []byte("save:" + slot), codec: codec}
}

func (r *BadgerSaveRepo) Save(ctx context.Context, state SaveState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := r.codec.Encode(state)
	if err != nil {
		return fmt.Errorf("кодирование сохранения: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key, data)
	})
}

func (r *BadgerSaveRepo) Load(ctx context.Context) (SaveState, bool, error) {
	if err := ctx.Err(); err != nil {
		return SaveState{}, false, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return SaveState{}, false, nil
	}
	if err != nil {
		return SaveState{}, false, fmt.Errorf("чтение из BadgerDB: %w", err)
	}

	state, err := r.codec.Decode(data)
	if err != nil {
		return SaveState{}, false, err
	}
	return state, true, nil
}

func (r *BadgerSaveRepo) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(r.key)
	})
}

func (r *BadgerSaveRepo) Close() error {
	return r.db.Close()
}
