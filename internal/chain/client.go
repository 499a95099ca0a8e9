// Package chain sends the rewritten deployment bytecode to an Arbitrum
// Stylus-compatible chain, waits for it to be mined, and — unless the
// caller opts out — submits the follow-up activation transaction that
// makes the deployed WASM program callable.
package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stylusctor/pkg/utils"
)

// arbWasmPrecompile is the well-known address of the ArbWasm precompile on
// Arbitrum Stylus chains, whose activateProgram method compiles a freshly
// deployed contract's code for execution.
var arbWasmPrecompile = common.HexToAddress("0x0000000000000000000000000000000000000071")

// activateProgramSelector is the first four bytes of
// keccak256("activateProgram(address)").
var activateProgramSelector = crypto.Keccak256([]byte("activateProgram(address)"))[:4]

// Client wraps an ethclient connection and a deployer key for submitting
// constructor deployment and activation transactions.
type Client struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	chainID *big.Int
	gasCap  uint64
}

// Dial connects to rpcURL and prepares a Client able to sign with
// privateKeyHex (a hex string, "0x"-prefixed or not).
func Dial(ctx context.Context, rpcURL, privateKeyHex string, chainID int64, gasCap uint64) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, utils.Wrap(err, "connect to rpc endpoint")
	}
	key, err := crypto.HexToECDSA(trimHexPrefix(privateKeyHex))
	if err != nil {
		eth.Close()
		return nil, utils.Wrap(err, "parse deployer private key")
	}
	return &Client{eth: eth, key: key, chainID: big.NewInt(chainID), gasCap: gasCap}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() { c.eth.Close() }

// DeployResult reports the outcome of a constructor deployment. RequestID
// correlates the submission across log lines and has no on-chain meaning.
type DeployResult struct {
	RequestID       string
	TxHash          common.Hash
	ContractAddress common.Address
	GasUsed         uint64
}

// ActivateResult reports the outcome of a program-activation transaction.
type ActivateResult struct {
	RequestID string
	TxHash    common.Hash
	GasUsed   uint64
}

// Deploy submits deploymentCode (the output of core.Generate /
// core.NoConstructorDeployment, hex-decoded) as a contract-creation
// transaction and waits for it to be mined.
func (c *Client) Deploy(ctx context.Context, deploymentCode []byte) (*DeployResult, error) {
	requestID := uuid.New().String()
	from := crypto.PubkeyToAddress(c.key.PublicKey)

	signedTx, err := c.signAndSend(ctx, from, nil, deploymentCode, requestID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"tx_hash":    signedTx.Hash().Hex(),
	}).Info("submitted constructor deployment transaction")

	receipt, err := c.waitMined(ctx, signedTx.Hash())
	if err != nil {
		return nil, err
	}

	return &DeployResult{
		RequestID:       requestID,
		TxHash:          signedTx.Hash(),
		ContractAddress: receipt.ContractAddress,
		GasUsed:         receipt.GasUsed,
	}, nil
}

// Activate submits the ArbWasm activation call for a just-deployed program,
// the second leg of the two-transaction Stylus deployment flow.
func (c *Client) Activate(ctx context.Context, program common.Address) (*ActivateResult, error) {
	requestID := uuid.New().String()
	from := crypto.PubkeyToAddress(c.key.PublicKey)

	calldata := append(append([]byte{}, activateProgramSelector...), common.LeftPadBytes(program.Bytes(), 32)...)
	signedTx, err := c.signAndSend(ctx, from, &arbWasmPrecompile, calldata, requestID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"tx_hash":    signedTx.Hash().Hex(),
		"program":    program.Hex(),
	}).Info("submitted program activation transaction")

	receipt, err := c.waitMined(ctx, signedTx.Hash())
	if err != nil {
		return nil, err
	}

	return &ActivateResult{
		RequestID: requestID,
		TxHash:    signedTx.Hash(),
		GasUsed:   receipt.GasUsed,
	}, nil
}

// signAndSend builds, signs, and submits a transaction to to (a nil to
// produces a contract-creation transaction), returning it once accepted by
// the node.
func (c *Client) signAndSend(ctx context.Context, from common.Address, to *common.Address, data []byte, requestID string) (*types.Transaction, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, utils.Wrap(err, "fetch pending nonce")
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, utils.Wrap(err, "suggest gas price")
	}

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:     from,
		To:       to,
		Value:    big.NewInt(0),
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"request_id": requestID, "error": err}).Warn("gas estimation failed, falling back to gas cap")
		gasLimit = c.gasCap
	}
	if c.gasCap > 0 && gasLimit > c.gasCap {
		gasLimit = c.gasCap
	}

	var tx *types.Transaction
	if to == nil {
		tx = types.NewContractCreation(nonce, big.NewInt(0), gasLimit, gasPrice, data)
	} else {
		tx = types.NewTransaction(nonce, *to, big.NewInt(0), gasLimit, gasPrice, data)
	}

	signer := types.NewEIP155Signer(c.chainID)
	signedTx, err := types.SignTx(tx, signer, c.key)
	if err != nil {
		return nil, utils.Wrap(err, "sign transaction")
	}
	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return nil, utils.Wrap(err, "send transaction")
	}
	return signedTx, nil
}

// waitMined polls for a transaction receipt, per the standard library's
// ethclient not providing a context-cancelable wait helper of its own.
func (c *Client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, utils.Wrap(ctx.Err(), "wait for transaction receipt")
		case <-time.After(2 * time.Second):
		}
	}
}

func trimHexPrefix(s string) string {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
