// SPDX-License-Identifier: BUSL-1.1
//
// Runtime substitution — the semantic heart of the rewriter:
// replace the compiler's runtime sub-object with the Stylus activation
// envelope wrapping the caller's compressed WASM, then re-run layout so
// every CODECOPY/CODESIZE-equivalent constant referencing the runtime
// region picks up the new length automatically.
package core

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// ActivationMagic and ActivationVersion make up the fixed-shape prefix of
// the activation envelope. Their concrete values are dictated by the
// target Stylus VM and may evolve between releases; the rewriter treats
// them as an opaque configurable constant, overridable via pkg/config for
// forward-compatibility with a future VM revision.
var (
	ActivationMagic   = []byte{0x00, 0x45, 0x56} // placeholder "EVM activation" magic
	ActivationVersion byte = 0x01
)

// ConfigureActivation overrides the package-level activation magic/version
// from operator configuration, letting a future Stylus VM revision change
// the envelope shape without a code change. magicHex is parsed as a
// variable-length big-endian byte string ("0x"-prefixed or not).
func ConfigureActivation(magicHex string, version int) error {
	b, err := decodeHex(strings.TrimPrefix(magicHex, "0x"))
	if err != nil {
		return &EncodingError{Msg: "malformed activation magic hex: " + err.Error()}
	}
	if version < 0 || version > 0xff {
		return &EncodingError{Msg: "activation version out of byte range"}
	}
	ActivationMagic = b
	ActivationVersion = byte(version)
	return nil
}

// BuildEnvelope returns E(W): the activation envelope wrapping a
// caller-supplied, already-compressed WASM blob. It is a pure function of
// its input and the two package-level constants above.
func BuildEnvelope(compressedWasm []byte) []byte {
	out := make([]byte, 0, len(ActivationMagic)+1+len(compressedWasm))
	out = append(out, ActivationMagic[:]...)
	out = append(out, ActivationVersion)
	out = append(out, compressedWasm...)
	return out
}

// SubstituteRuntime replaces root's nested runtime object with a resolved,
// fixed-size blob holding envelope. Re-running Layout afterwards (required;
// the caller must call root.Layout() again before Assemble) causes every
// push-of-label and push-of-object-size/offset that mentioned the old
// runtime to pick up the new length.
func SubstituteRuntime(root *Object, envelope []byte) error {
	if root.Runtime == nil {
		return &StructureError{Object: root.Name, Msg: "no nested runtime object to substitute"}
	}
	logrus.WithFields(logrus.Fields{
		"object":       root.Name,
		"runtime":      root.Runtime.Name,
		"old_size":     root.Runtime.Size,
		"envelope_len": len(envelope),
	}).Info("substituting runtime with activation envelope")

	root.Runtime = &Object{
		Name:     root.Runtime.Name,
		resolved: true,
		Size:     len(envelope),
		Code:     envelope,
	}
	root.resolved = false
	root.Code = nil
	return nil
}

// MinimalDeploymentPrelude returns the fixed, no-constructor deployment
// bytecode: a short CODECOPY+RETURN prelude that returns envelope verbatim,
// with no ABI-args tail.
func MinimalDeploymentPrelude(envelope []byte) []byte {
	root := &Object{
		Name: "<no-ctor-root>",
		Tokens: []Token{
			// PUSH <len(envelope)>
			{Kind: TokPush, Width: pushMinWidth, Value: uint256.NewInt(uint64(len(envelope)))},
			// <offset of envelope within this object>, resolved by layout.
			{Kind: TokPushObjectOffset, Object: "env"},
			{Kind: TokPush, Width: pushMinWidth, Value: uint256.NewInt(0)},
			{Kind: TokOp, Mnemonic: "CODECOPY"},
			{Kind: TokPush, Width: pushMinWidth, Value: uint256.NewInt(uint64(len(envelope)))},
			{Kind: TokPush, Width: pushMinWidth, Value: uint256.NewInt(0)},
			{Kind: TokOp, Mnemonic: "RETURN"},
			{Kind: tokRuntime, Object: "env"},
		},
	}
	root.Runtime = &Object{Name: "env", resolved: true, Size: len(envelope), Code: envelope}
	if err := root.Layout(); err != nil {
		// MinimalDeploymentPrelude is built entirely from constants we
		// control; a layout failure here means the hand-authored token
		// sequence above is wrong, not that the caller's input is bad.
		panic(err)
	}
	code, err := root.Assemble()
	if err != nil {
		panic(err)
	}
	return code
}
