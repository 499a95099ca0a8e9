// SPDX-License-Identifier: BUSL-1.1
//
// Constructor-argument tail — appends ABI-encoded constructor arguments
// after the rewritten deployment code.
package core

import "strings"

// AppendConstructorArgs appends the ABI-encoded constructor arguments
// (already hex-encoded by the caller, e.g. via abi.Arguments.Pack) to code.
// The compiler's own constructor-decoding prologue reads these arguments
// relative to CODESIZE, so no adjustment to code itself is required: the
// args tail simply has to start exactly where the rewritten code ends,
// which is guaranteed by re-running Layout/Assemble before this is called.
func AppendConstructorArgs(code []byte, argsHex string) ([]byte, error) {
	argsHex = strings.TrimPrefix(strings.TrimSpace(argsHex), "0x")
	if argsHex == "" {
		return code, nil
	}
	raw, err := decodeHex(argsHex)
	if err != nil {
		return nil, &EncodingError{Msg: "malformed constructor argument hex: " + err.Error()}
	}
	out := make([]byte, 0, len(code)+len(raw))
	out = append(out, code...)
	out = append(out, raw...)
	return out, nil
}
