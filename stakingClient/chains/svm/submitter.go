package svm

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/pushchain/token-quest-client/stakingClient/builder"
	"github.com/pushchain/token-quest-client/stakingClient/constant"
)

const (
	DefaultConfirmationTimeout = 60 * time.Second
	DefaultPollInterval        = 500 * time.Millisecond
)

// SubmitterConfig controls how requests are turned into transactions and
// how long confirmation is awaited.
type SubmitterConfig struct {
	Commitment          rpc.CommitmentType
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
	SkipPreflight       bool
	// ComputeUnitLimit and ComputeUnitPrice (micro-lamports) add compute
	// budget instructions when non-zero.
	ComputeUnitLimit uint32
	ComputeUnitPrice uint64
}

func (c *SubmitterConfig) setDefaults() {
	if c.Commitment == "" {
		c.Commitment = rpc.CommitmentConfirmed
	}
	if c.ConfirmationTimeout <= 0 {
		c.ConfirmationTimeout = DefaultConfirmationTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
}

// Submitter signs requests with a single wallet, sends them once and waits
// for confirmation.
type Submitter struct {
	rpcClient *RPCClient
	wallet    solana.PrivateKey
	cfg       SubmitterConfig
	logger    zerolog.Logger
}

// NewSubmitter creates a Submitter signing with wallet
func NewSubmitter(rpcClient *RPCClient, wallet solana.PrivateKey, cfg SubmitterConfig, logger zerolog.Logger) (*Submitter, error) {
	if rpcClient == nil {
		return nil, fmt.Errorf("rpcClient is required")
	}
	if len(wallet) == 0 {
		return nil, fmt.Errorf("wallet is required")
	}
	cfg.setDefaults()

	return &Submitter{
		rpcClient: rpcClient,
		wallet:    wallet,
		cfg:       cfg,
		logger:    logger.With().Str("component", "svm_submitter").Logger(),
	}, nil
}

// Identity returns the public key of the signing wallet.
func (s *Submitter) Identity() solana.PublicKey {
	return s.wallet.PublicKey()
}

// Submit builds, signs and sends req, then blocks until the configured
// commitment is reached, the transaction fails on chain, or the confirmation
// timeout expires. The signature is returned whenever the send succeeded so
// callers can look up an indeterminate outcome.
func (s *Submitter) Submit(ctx context.Context, req *builder.Request) (solana.Signature, error) {
	tx, err := s.BuildTransaction(ctx, req)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.rpcClient.SendTransaction(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       s.cfg.SkipPreflight,
		PreflightCommitment: s.cfg.Commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", programErrorFromRPC(err))
	}

	s.logger.Debug().
		Str("operation", req.Operation.Name()).
		Str("signature", sig.String()).
		Msg("transaction sent, awaiting confirmation")

	if err := s.WaitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// BuildTransaction produces the signed transaction for req without sending it.
func (s *Submitter) BuildTransaction(ctx context.Context, req *builder.Request) (*solana.Transaction, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}
	payer := s.wallet.PublicKey()
	if !req.Signer.Equals(payer) {
		return nil, fmt.Errorf("request must be signed by %s but wallet is %s", req.Signer, payer)
	}

	instruction, err := req.Instruction()
	if err != nil {
		return nil, fmt.Errorf("failed to encode instruction: %w", err)
	}

	instructions := make([]solana.Instruction, 0, 3)
	if s.cfg.ComputeUnitLimit > 0 {
		instructions = append(instructions, buildSetComputeUnitLimitInstruction(s.cfg.ComputeUnitLimit))
	}
	if s.cfg.ComputeUnitPrice > 0 {
		instructions = append(instructions, buildSetComputeUnitPriceInstruction(s.cfg.ComputeUnitPrice))
	}
	instructions = append(instructions, instruction)

	recentBlockhash, err := s.rpcClient.GetRecentBlockhash(ctx, s.cfg.Commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, recentBlockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &s.wallet
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

// WaitForConfirmation polls the signature status until the configured
// commitment is reached.
func (s *Submitter) WaitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := s.rpcClient.GetSignatureStatus(ctx, sig)
		switch {
		case err != nil:
			s.logger.Debug().Err(err).Str("signature", sig.String()).Msg("error checking transaction status")
		case status != nil && status.Err != nil:
			return fmt.Errorf("transaction %s failed: %w", sig, programErrorFromStatus(status.Err))
		case status != nil && reached(status.ConfirmationStatus, s.cfg.Commitment):
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction %s not confirmed at %s commitment: %w", sig, s.cfg.Commitment, ctx.Err())
		case <-ticker.C:
		}
	}
}

func confirmationRank(status rpc.ConfirmationStatusType) int {
	switch status {
	case rpc.ConfirmationStatusProcessed:
		return 1
	case rpc.ConfirmationStatusConfirmed:
		return 2
	case rpc.ConfirmationStatusFinalized:
		return 3
	default:
		return 0
	}
}

// reached reports whether status satisfies the wanted commitment.
func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	have := confirmationRank(status)
	if have == 0 {
		return false
	}
	switch want {
	case rpc.CommitmentProcessed:
		return have >= 1
	case rpc.CommitmentFinalized:
		return have >= 3
	default:
		return have >= 2
	}
}

// buildSetComputeUnitLimitInstruction creates a SetComputeUnitLimit instruction for the Compute Budget program
// Instruction format: [1-byte instruction type (2 = SetComputeUnitLimit)] + [4-byte u32 units]
func buildSetComputeUnitLimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = 2
	binary.LittleEndian.PutUint32(data[1:], units)

	return solana.NewInstruction(constant.ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// buildSetComputeUnitPriceInstruction creates a SetComputeUnitPrice instruction
// Instruction format: [1-byte instruction type (3 = SetComputeUnitPrice)] + [8-byte u64 micro-lamports]
func buildSetComputeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:], microLamports)

	return solana.NewInstruction(constant.ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}
