// Package codec stores stocks as zstd-compressed JSON snapshots.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"crusoe/internal/domain/economy"
)

const stockFormatV1 byte = 1

var ErrUnknownFormat = errors.New("unknown stock snapshot format")

var (
	encOnce sync.Once
	encoder *zstd.Encoder
	encErr  error

	decOnce sync.Once
	decoder *zstd.Decoder
	decErr  error
)

// EncodeAll and DecodeAll are safe for concurrent use, so one encoder and
// one decoder serve the whole process.
func sharedEncoder() (*zstd.Encoder, error) {
	encOnce.Do(func() {
		encoder, encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return encoder, encErr
}

func sharedDecoder() (*zstd.Decoder, error) {
	decOnce.Do(func() {
		decoder, decErr = zstd.NewReader(nil)
	})
	return decoder, decErr
}

func EncodeStock(s economy.Stock) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal stock: %w", err)
	}
	enc, err := sharedEncoder()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1, len(raw)/2+1)
	out[0] = stockFormatV1
	return enc.EncodeAll(raw, out), nil
}

func DecodeStock(blob []byte) (economy.Stock, error) {
	if len(blob) == 0 {
		return economy.NewStock(), nil
	}
	if blob[0] != stockFormatV1 {
		return economy.Stock{}, fmt.Errorf("%w: %d", ErrUnknownFormat, blob[0])
	}
	dec, err := sharedDecoder()
	if err != nil {
		return economy.Stock{}, err
	}
	raw, err := dec.DecodeAll(blob[1:], nil)
	if err != nil {
		return economy.Stock{}, fmt.Errorf("zstd decode: %w", err)
	}
	var s economy.Stock
	if err := json.Unmarshal(raw, &s); err != nil {
		return economy.Stock{}, fmt.Errorf("unmarshal stock: %w", err)
	}
	return s, nil
}
