package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cmdconfig "stylusctor/cmd/config"
	"stylusctor/internal/chain"
)

var (
	deploySolFile    string
	deployWasmFile   string
	deployArgsHex    string
	deployRPCURL     string
	deployPrivateKey string
	deployOnly       bool
	deployQuiet      bool
)

func deployHandler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	out, err := buildDeploymentHex(ctx, deploySolFile, deployWasmFile, deployArgsHex)
	if err != nil {
		return err
	}
	code, err := hex.DecodeString(strings.TrimPrefix(out, "0x"))
	if err != nil {
		return fmt.Errorf("decode generated bytecode: %w", err)
	}

	if deployPrivateKey == "" {
		deployPrivateKey = os.Getenv("STYLUSCTOR_DEPLOYER_KEY")
	}
	if deployPrivateKey == "" {
		return fmt.Errorf("no deployer private key: pass --private-key or set STYLUSCTOR_DEPLOYER_KEY")
	}
	rpcURL := deployRPCURL
	if rpcURL == "" {
		rpcURL = cmdconfig.AppConfig.Chain.RPCURL
	}

	client, err := chain.Dial(ctx, rpcURL, deployPrivateKey, cmdconfig.AppConfig.Chain.ChainID, cmdconfig.AppConfig.Chain.GasCap)
	if err != nil {
		return err
	}
	defer client.Close()

	deployResult, err := client.Deploy(ctx, code)
	if err != nil {
		return err
	}
	if !deployQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), "request id: %s\ncontract address: %s\ndeploy tx hash: %s\ngas used: %d\n",
			deployResult.RequestID, deployResult.ContractAddress.Hex(), deployResult.TxHash.Hex(), deployResult.GasUsed)
	}

	if deployOnly {
		return nil
	}

	activateResult, err := client.Activate(ctx, deployResult.ContractAddress)
	if err != nil {
		return err
	}
	if !deployQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), "activation tx hash: %s\nactivation gas used: %d\n",
			activateResult.TxHash.Hex(), activateResult.GasUsed)
	}
	return nil
}

// DeployCmd compiles, rewrites, and submits a constructor deployment to a
// Stylus-compatible chain, then activates the resulting program unless
// --deploy-only is set.
var DeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Rewrite and deploy constructor bytecode to a Stylus-compatible chain",
	RunE:  deployHandler,
}

func init() {
	DeployCmd.Flags().StringVar(&deploySolFile, "sol", "", "path to the Solidity constructor source (omit for the minimal no-constructor prelude)")
	DeployCmd.Flags().StringVar(&deployWasmFile, "wasm", "", "path to the compiled WASM module")
	DeployCmd.Flags().StringVar(&deployArgsHex, "args", "", "hex-encoded, ABI-packed constructor arguments")
	DeployCmd.Flags().StringVarP(&deployRPCURL, "rpc-url", "e", "", "chain RPC endpoint (defaults to the configured chain.rpc_url)")
	DeployCmd.Flags().StringVar(&deployPrivateKey, "private-key", "", "deployer private key hex (or set STYLUSCTOR_DEPLOYER_KEY)")
	DeployCmd.Flags().BoolVar(&deployOnly, "deploy-only", false, "submit the deployment transaction but skip program activation")
	DeployCmd.Flags().BoolVarP(&deployQuiet, "quiet", "q", false, "suppress result output")
	DeployCmd.MarkFlagRequired("wasm")
}
