package svm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
)

// RPC is the subset of *rpc.Client the submitter depends on.
type RPC interface {
	GetHealth(ctx context.Context) (string, error)
	GetGenesisHash(ctx context.Context) (solana.Hash, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

var _ RPC = (*rpc.Client)(nil)

// RPCClient provides SVM RPC operations over a pool of endpoints
type RPCClient struct {
	clients []RPC
	index   uint64
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewRPCClient creates a new SVM RPC client from RPC URLs and validates genesis hash
func NewRPCClient(ctx context.Context, rpcURLs []string, expectedGenesisHash string, logger zerolog.Logger) (*RPCClient, error) {
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("no RPC URLs provided")
	}

	log := logger.With().Str("component", "svm_rpc_client").Logger()
	clients := make([]RPC, 0, len(rpcURLs))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, url := range rpcURLs {
		client := rpc.New(url)

		health, err := client.GetHealth(ctx)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to connect to RPC endpoint, skipping")
			continue
		}
		if health != "ok" {
			log.Warn().Str("url", url).Str("health", health).Msg("node is not healthy, skipping")
			continue
		}

		if expectedGenesisHash != "" {
			genesisHash, err := client.GetGenesisHash(ctx)
			if err != nil {
				log.Warn().Err(err).Str("url", url).Msg("failed to verify genesis hash, skipping")
				continue
			}
			if genesisHash.String() != expectedGenesisHash {
				log.Warn().
					Str("url", url).
					Str("expected_genesis_hash", expectedGenesisHash).
					Str("actual_genesis_hash", genesisHash.String()).
					Msg("genesis hash mismatch, skipping")
				continue
			}
		}

		clients = append(clients, client)
		log.Debug().Str("url", url).Msg("connected to RPC endpoint")
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("failed to connect to any valid RPC endpoints")
	}

	return &RPCClient{
		clients: clients,
		logger:  log,
	}, nil
}

// NewRPCClientFromClients wraps already constructed clients without probing them.
func NewRPCClientFromClients(clients []RPC, logger zerolog.Logger) *RPCClient {
	return &RPCClient{
		clients: clients,
		logger:  logger.With().Str("component", "svm_rpc_client").Logger(),
	}
}

// next returns the next endpoint in round-robin order
func (rc *RPCClient) next() (RPC, error) {
	rc.mu.RLock()
	clients := rc.clients
	rc.mu.RUnlock()

	if len(clients) == 0 {
		return nil, fmt.Errorf("no RPC clients available")
	}
	index := atomic.AddUint64(&rc.index, 1) - 1
	return clients[index%uint64(len(clients))], nil
}

// executeWithFailover executes a read with round-robin failover. Only
// idempotent queries go through here; sends use a single endpoint.
func (rc *RPCClient) executeWithFailover(ctx context.Context, operation string, fn func(RPC) error) error {
	rc.mu.RLock()
	attempts := len(rc.clients)
	rc.mu.RUnlock()

	if attempts == 0 {
		return fmt.Errorf("no RPC clients available for %s", operation)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		client, err := rc.next()
		if err != nil {
			return err
		}

		if lastErr = fn(client); lastErr == nil {
			return nil
		}

		rc.logger.Warn().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Err(lastErr).
			Msg("operation failed, trying next endpoint")
	}

	return fmt.Errorf("operation %s failed after trying %d endpoints: %w", operation, attempts, lastErr)
}

// GetRecentBlockhash gets a recent blockhash for transaction building
func (rc *RPCClient) GetRecentBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, error) {
	var blockhash solana.Hash
	err := rc.executeWithFailover(ctx, "get_latest_blockhash", func(client RPC) error {
		resp, innerErr := client.GetLatestBlockhash(ctx, commitment)
		if innerErr != nil {
			return innerErr
		}
		blockhash = resp.Value.Blockhash
		return nil
	})
	return blockhash, err
}

// GetSignatureStatus returns the status of sig, or nil when the cluster has
// not seen it yet.
func (rc *RPCClient) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	var status *rpc.SignatureStatusesResult
	err := rc.executeWithFailover(ctx, "get_signature_statuses", func(client RPC) error {
		resp, innerErr := client.GetSignatureStatuses(ctx, false, sig)
		if innerErr != nil {
			return innerErr
		}
		if len(resp.Value) > 0 {
			status = resp.Value[0]
		}
		return nil
	})
	return status, err
}

// GetAccountData fetches the raw data of an account
func (rc *RPCClient) GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	var data []byte
	err := rc.executeWithFailover(ctx, "get_account_info", func(client RPC) error {
		resp, innerErr := client.GetAccountInfo(ctx, address)
		if innerErr != nil {
			return innerErr
		}
		if resp == nil || resp.Value == nil {
			return rpc.ErrNotFound
		}
		data = resp.Value.Data.GetBinary()
		return nil
	})
	return data, err
}

// SendTransaction sends tx through exactly one endpoint. It never retries:
// resubmitting a transaction that may have landed is the caller's decision.
func (rc *RPCClient) SendTransaction(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	client, err := rc.next()
	if err != nil {
		return solana.Signature{}, err
	}
	return client.SendTransactionWithOpts(ctx, tx, opts)
}

// Close closes all RPC connections
func (rc *RPCClient) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	// Solana RPC clients don't have explicit Close, but we clear the slice
	rc.clients = nil
}
