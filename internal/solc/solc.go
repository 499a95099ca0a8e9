// Package solc invokes the solc compiler as an external collaborator,
// capturing its legacy assembly (--asm) dump of a contract's deployment
// object for downstream rewriting.
package solc

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"stylusctor/pkg/utils"
)

// Runner shells out to a solc binary.
type Runner struct {
	// Path to the solc executable. Defaults to "solc" on the caller's PATH.
	Path string
	// ExtraArgs are appended after --asm, e.g. "--optimize".
	ExtraArgs []string
}

// NewRunner returns a Runner invoking the solc binary at path (empty means
// "solc" on PATH).
func NewRunner(path string) *Runner {
	if path == "" {
		path = "solc"
	}
	return &Runner{Path: path}
}

// Asm compiles source (a single Solidity file's contents) and returns its
// combined --asm output, which contains every contract's deployment and
// runtime assembly. Callers are expected to isolate the object belonging to
// the contract they care about before passing the listing to core.Tokenize.
func (r *Runner) Asm(ctx context.Context, source string) (string, error) {
	args := append([]string{"--asm"}, r.ExtraArgs...)
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", utils.Wrap(err, "solc --asm failed: "+stderr.String())
	}
	return stdout.String(), nil
}
