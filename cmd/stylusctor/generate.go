package main

import (
	"context"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cmdconfig "stylusctor/cmd/config"
	"stylusctor/core"
	"stylusctor/internal/solc"
	"stylusctor/internal/wasmpack"
)

var (
	generateSolFile  string
	generateWasmFile string
	generateArgsHex  string
	generateOutFile  string
)

// buildDeploymentHex runs the compress/compile/rewrite pipeline and returns
// the resulting 0x-prefixed deployment hex. solFile == "" selects the
// minimal no-constructor deployment.
func buildDeploymentHex(ctx context.Context, solFile, wasmFile, argsHex string) (string, error) {
	if err := core.ConfigureActivation(cmdconfig.AppConfig.Activation.MagicHex, cmdconfig.AppConfig.Activation.Version); err != nil {
		return "", err
	}

	wasm, err := os.ReadFile(wasmFile)
	if err != nil {
		return "", fmt.Errorf("read wasm file: %w", err)
	}
	compressed, err := wasmpack.Compress(wasm, zstd.SpeedBestCompression)
	if err != nil {
		return "", err
	}

	if solFile == "" {
		return core.NoConstructorDeployment(compressed)
	}

	src, err := os.ReadFile(solFile)
	if err != nil {
		return "", fmt.Errorf("read solidity source: %w", err)
	}
	runner := solc.NewRunner(cmdconfig.AppConfig.Solc.Path)
	asm, err := runner.Asm(ctx, string(src))
	if err != nil {
		return "", err
	}
	return core.Generate(asm, compressed, argsHex)
}

func generateHandler(cmd *cobra.Command, args []string) error {
	out, err := buildDeploymentHex(cmd.Context(), generateSolFile, generateWasmFile, generateArgsHex)
	if err != nil {
		return err
	}

	if generateOutFile == "" {
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}
	if err := os.WriteFile(generateOutFile, []byte(out), 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	logrus.WithField("path", generateOutFile).Info("wrote deployment bytecode")
	return nil
}

// GenerateCmd rewrites a constructor's deployment bytecode so its runtime
// activates the given WASM program.
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Rewrite constructor deployment bytecode to activate a WASM program",
	RunE:  generateHandler,
}

func init() {
	GenerateCmd.Flags().StringVar(&generateSolFile, "sol", "", "path to the Solidity constructor source (omit for the minimal no-constructor prelude)")
	GenerateCmd.Flags().StringVar(&generateWasmFile, "wasm", "", "path to the compiled WASM module")
	GenerateCmd.Flags().StringVar(&generateArgsHex, "args", "", "hex-encoded, ABI-packed constructor arguments")
	GenerateCmd.Flags().StringVar(&generateOutFile, "out", "", "write the rewritten bytecode here instead of stdout")
	GenerateCmd.MarkFlagRequired("wasm")
}
