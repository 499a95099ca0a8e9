package core

import (
	"bytes"
	"testing"
)

func TestBuildEnvelopeShape(t *testing.T) {
	wasm := []byte{0x01, 0x02, 0x03}
	env := BuildEnvelope(wasm)
	if len(env) != len(ActivationMagic)+1+len(wasm) {
		t.Fatalf("unexpected envelope length %d", len(env))
	}
	if !bytes.Equal(env[:len(ActivationMagic)], ActivationMagic) {
		t.Fatalf("envelope missing activation magic prefix")
	}
	if env[len(ActivationMagic)] != ActivationVersion {
		t.Fatalf("envelope missing activation version byte")
	}
	if !bytes.Equal(env[len(ActivationMagic)+1:], wasm) {
		t.Fatalf("envelope payload does not match compressed wasm")
	}
}

func TestConfigureActivationOverridesShape(t *testing.T) {
	origMagic, origVersion := ActivationMagic, ActivationVersion
	defer func() { ActivationMagic, ActivationVersion = origMagic, origVersion }()

	if err := ConfigureActivation("0xaabbcc", 7); err != nil {
		t.Fatalf("ConfigureActivation failed: %v", err)
	}
	env := BuildEnvelope(nil)
	want := []byte{0xaa, 0xbb, 0xcc, 0x07}
	if !bytes.Equal(env, want) {
		t.Fatalf("got % x, want % x", env, want)
	}
}

func TestSubstituteRuntimeUpdatesSizeAndForcesRelayout(t *testing.T) {
	runtime := &Object{Name: "sub_0", resolved: true, Size: 2, Code: []byte{0xaa, 0xbb}}
	root := &Object{
		Name:    "root",
		Tokens:  []Token{{Kind: TokOp, Mnemonic: "STOP"}, {Kind: tokRuntime, Object: "sub_0"}},
		Runtime: runtime,
	}
	if err := root.Layout(); err != nil {
		t.Fatalf("initial Layout failed: %v", err)
	}
	if _, err := root.Assemble(); err != nil {
		t.Fatalf("initial Assemble failed: %v", err)
	}

	envelope := []byte{1, 2, 3, 4, 5}
	if err := SubstituteRuntime(root, envelope); err != nil {
		t.Fatalf("SubstituteRuntime failed: %v", err)
	}
	if root.resolved {
		t.Fatal("expected root to require re-layout after substitution")
	}

	if err := root.Layout(); err != nil {
		t.Fatalf("post-substitution Layout failed: %v", err)
	}
	code, err := root.Assemble()
	if err != nil {
		t.Fatalf("post-substitution Assemble failed: %v", err)
	}
	if len(code) != 1+len(envelope) {
		t.Fatalf("expected length 1+%d, got %d", len(envelope), len(code))
	}
	if !bytes.Equal(code[1:], envelope) {
		t.Fatalf("expected runtime region to equal the envelope exactly, got % x", code[1:])
	}
}
