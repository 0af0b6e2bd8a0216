// Package rpcclient implements the two JSON-RPC operations the payer agent
// needs from a Solana RPC endpoint: fetching a recent blockhash and
// resolving which token program owns a mint. It wraps
// github.com/gagliardetto/solana-go/rpc so wire parsing tracks the real
// Solana JSON-RPC schema; no transaction is built through the SDK here.
package rpcclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/PlaiPin/x402-payer/base58"
	"github.com/PlaiPin/x402-payer/retry"
)

// Client satisfies the x402 driver's JSON-RPC collaborator contract.
type Client struct {
	rpc     *rpc.Client
	retryer retry.Config
}

// New constructs a Client against the given Solana RPC endpoint.
func New(endpoint string, retryConfig retry.Config) *Client {
	return &Client{
		rpc:     rpc.New(endpoint),
		retryer: retryConfig,
	}
}

// LatestBlockhash fetches a recent blockhash at the given commitment level
// and returns its raw 32-byte decoded form. The call is retried with
// exponential backoff on transport failures; a well-formed RPC error is
// returned immediately.
func (c *Client) LatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) ([32]byte, error) {
	result, err := retry.WithRetry(ctx, c.retryer, isTransportError, func() (*rpc.GetLatestBlockhashResult, error) {
		return c.rpc.GetLatestBlockhash(ctx, commitment)
	})
	if err != nil {
		return [32]byte{}, fmt.Errorf("rpcclient: getLatestBlockhash: %w", err)
	}

	decoded, err := base58.Decode(result.Value.Blockhash.String())
	if err != nil {
		return [32]byte{}, fmt.Errorf("rpcclient: blockhash is not valid base58: %w", err)
	}
	if len(decoded) != 32 {
		return [32]byte{}, fmt.Errorf("rpcclient: blockhash decoded to %d bytes, want 32", len(decoded))
	}
	var out [32]byte
	copy(out[:], decoded)
	return out, nil
}

// MintOwner resolves the token program that owns mint via getAccountInfo
// with jsonParsed encoding, also retried on transport failure.
func (c *Client) MintOwner(ctx context.Context, mint [32]byte) ([32]byte, error) {
	pubkey := solana.PublicKeyFromBytes(mint[:])

	result, err := retry.WithRetry(ctx, c.retryer, isTransportError, func() (*rpc.GetAccountInfoResult, error) {
		return c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Encoding: solana.EncodingJSONParsed,
		})
	})
	if err != nil {
		return [32]byte{}, fmt.Errorf("rpcclient: getAccountInfo: %w", err)
	}
	if result == nil || result.Value == nil {
		return [32]byte{}, fmt.Errorf("rpcclient: mint account not found")
	}

	owner := result.Value.Owner
	var out [32]byte
	copy(out[:], owner.Bytes())
	return out, nil
}

// isTransportError classifies a connection-level failure as retryable,
// leaving well-formed JSON-RPC error responses (account not found, bad
// request) to propagate on the first attempt.
func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	var rpcErr *jsonrpc.RPCError
	return !errors.As(err, &rpcErr)
}
