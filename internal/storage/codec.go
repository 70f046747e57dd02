package storage

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec сериализует снимок для key-value хранилищ
type Codec interface {
	Encode(state SaveState) ([]byte, error)
	Decode(data []byte) (SaveState, error)
	Name() string
}

// JSONCodec хранит снимок как плоский JSON
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(state SaveState) ([]byte, error) {
	return json.Marshal(state)
}

func (JSONCodec) Decode(data []byte) (SaveState, error) {
	var s SaveState
	if err := json.Unmarshal(data, &s); err != nil {
		return SaveState{}, fmt.Errorf("разбор сохранения: %w", err)
	}
	return s, nil
}

// ZstdCodec сжимает JSON снимка zstd
type ZstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCodec создаёт кодек со скоростью сжатия по умолчанию
func NewZstdCodec() (*ZstdCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("создание zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("создание zstd decoder: %w", err)
	}
	return &ZstdCodec{encoder: enc, decoder: dec}, nil
}

func (c *ZstdCodec) Name() string { return "zstd" }

func (c *ZstdCodec) Encode(state SaveState) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

func (c *ZstdCodec) Decode(data []byte) (SaveState, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return SaveState{}, fmt.Errorf("распаковка сохранения: %w", err)
	}
	return JSONCodec{}.Decode(raw)
}

// NewCodec возвращает zstd-кодек при compress=true, иначе JSON
func NewCodec(compress bool) (Codec, error) {
	if !compress {
		return JSONCodec{}, nil
	}
	return NewZstdCodec()
}
