// Package wasmpack compresses a WASM module the way a Stylus activation
// envelope expects it: a single zstd frame, no dictionary, no checksums.
package wasmpack

import (
	"bytes"

	"github.com/klauspost/compress/zstd"

	"stylusctor/pkg/utils"
)

// Compress returns the zstd-compressed form of wasm at the given level.
// Passing a zero level selects the encoder's default.
func Compress(wasm []byte, level zstd.EncoderLevel) ([]byte, error) {
	var buf bytes.Buffer
	opts := []zstd.EOption{zstd.WithEncoderCRC(false)}
	if level != 0 {
		opts = append(opts, zstd.WithEncoderLevel(level))
	}
	enc, err := zstd.NewWriter(&buf, opts...)
	if err != nil {
		return nil, utils.Wrap(err, "create zstd encoder")
	}
	if _, err := enc.Write(wasm); err != nil {
		enc.Close()
		return nil, utils.Wrap(err, "compress wasm")
	}
	if err := enc.Close(); err != nil {
		return nil, utils.Wrap(err, "finalize zstd stream")
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress, used by tests to verify round-tripping of
// the bytes embedded in an activation envelope.
func Decompress(compressed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, utils.Wrap(err, "create zstd decoder")
	}
	defer dec.Close()
	out, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, utils.Wrap(err, "decompress wasm")
	}
	return out, nil
}
