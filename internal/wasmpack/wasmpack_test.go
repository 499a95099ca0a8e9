package wasmpack

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	wasm := bytes.Repeat([]byte{0x00, 0x61, 0x73, 0x6d}, 64)
	compressed, err := Compress(wasm, 0)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("expected non-empty compressed output")
	}

	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, wasm) {
		t.Fatal("decompressed bytes do not match the original input")
	}
}

func TestCompressHonorsEncoderLevel(t *testing.T) {
	wasm := bytes.Repeat([]byte{0xab}, 4096)
	fast, err := Compress(wasm, zstd.SpeedFastest)
	if err != nil {
		t.Fatalf("Compress(SpeedFastest) failed: %v", err)
	}
	best, err := Compress(wasm, zstd.SpeedBestCompression)
	if err != nil {
		t.Fatalf("Compress(SpeedBestCompression) failed: %v", err)
	}
	if len(best) > len(fast) {
		t.Fatalf("expected best-compression output (%d bytes) not to exceed fastest (%d bytes)", len(best), len(fast))
	}
}
