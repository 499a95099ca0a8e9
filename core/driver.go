// SPDX-License-Identifier: BUSL-1.1
//
// Driver — wires the tokenizer, structurer, labeler, assembler, and runtime
// substitution into the end-to-end rewrite pipeline.
package core

import (
	"encoding/hex"

	"github.com/sirupsen/logrus"
)

// Generate rewrites asm (a solc --asm legacy-assembly listing of a
// constructor's deployment object) so that its runtime sub-object is
// replaced by the activation envelope wrapping compressedWasm, then appends
// ctorArgsHex (already ABI-encoded, hex string, "0x"-prefixed or not; may
// be empty) after the rewritten code. It returns the result as a
// "0x"-prefixed hex string, matching the shape callers hand to eth_sendRawTransaction
// deployment data.
func Generate(asm string, compressedWasm []byte, ctorArgsHex string) (string, error) {
	toks, err := Tokenize(asm)
	if err != nil {
		return "", err
	}

	root, err := Structure(toks)
	if err != nil {
		return "", err
	}

	if root.Runtime == nil {
		return "", &StructureError{Object: root.Name, Msg: "deployment object has no nested runtime object to rewrite"}
	}

	if unused := root.UnreferencedData(); len(unused) > 0 {
		logrus.WithField("data_ids", unused).Warn("data region defined but never referenced; kept verbatim")
	}

	envelope := BuildEnvelope(compressedWasm)
	if err := SubstituteRuntime(root, envelope); err != nil {
		return "", err
	}

	if err := root.Layout(); err != nil {
		return "", err
	}

	code, err := root.Assemble()
	if err != nil {
		return "", err
	}

	code, err = AppendConstructorArgs(code, ctorArgsHex)
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"asm_bytes":  len(asm),
		"wasm_bytes": len(compressedWasm),
		"out_bytes":  len(code),
		"ctor_args":  ctorArgsHex != "",
	}).Info("generated constructor deployment bytecode")

	return "0x" + hex.EncodeToString(code), nil
}

// NoConstructorDeployment builds the minimal deployment bytecode for a
// contract that declares no constructor at all: a fixed CODECOPY+RETURN
// prelude returning the activation envelope verbatim, with no ABI-args
// tail.
func NoConstructorDeployment(compressedWasm []byte) (string, error) {
	envelope := BuildEnvelope(compressedWasm)
	code := MinimalDeploymentPrelude(envelope)
	return "0x" + hex.EncodeToString(code), nil
}
