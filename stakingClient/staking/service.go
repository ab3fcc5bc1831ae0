// Package staking runs the token quest operations end to end: it builds each
// request, submits it with the caller's wallet and reports the outcome.
package staking

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/pushchain/token-quest-client/stakingClient/asset"
	"github.com/pushchain/token-quest-client/stakingClient/builder"
	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
	"github.com/pushchain/token-quest-client/stakingClient/metrics"
	"github.com/pushchain/token-quest-client/stakingClient/program"
	"github.com/pushchain/token-quest-client/stakingClient/store"
)

//go:generate mockgen -destination=mocks/submitter.go -package=mocks . Submitter

// Submitter signs, sends and confirms a request.
type Submitter interface {
	Submit(ctx context.Context, req *builder.Request) (solana.Signature, error)
}

// Journal persists submission attempts.
type Journal interface {
	RecordPending(sub *store.Submission) error
	MarkConfirmed(id uint, signature string) error
	MarkFailed(id uint, signature string, programCode *int64, errMsg string) error
}

// AccountReader fetches raw account data.
type AccountReader interface {
	GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)
}

// Result describes a completed operation.
type Result struct {
	Request   *builder.Request
	Signature solana.Signature
	// DryRun is set when the request was built but not submitted.
	DryRun bool
}

// Service executes staking operations on behalf of a single wallet.
type Service struct {
	builder   *builder.Builder
	submitter Submitter
	wallet    solana.PublicKey
	journal   Journal
	reader    AccountReader
	metrics   *metrics.Metrics
	dryRun    bool
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every submission in j.
func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithMetrics records operation metrics in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAccountReader enables FetchState.
func WithAccountReader(r AccountReader) Option {
	return func(s *Service) { s.reader = r }
}

// WithDryRun makes every operation stop after building its request.
func WithDryRun(dryRun bool) Option {
	return func(s *Service) { s.dryRun = dryRun }
}

// NewService creates a Service signing as wallet. submitter may be nil only
// in dry-run mode, and a dry-run Service may also have no wallet, in which
// case it only serves Addresses and FetchState.
func NewService(b *builder.Builder, submitter Submitter, wallet solana.PublicKey, logger zerolog.Logger, opts ...Option) (*Service, error) {
	if b == nil {
		return nil, fmt.Errorf("builder is required")
	}

	s := &Service{
		builder:   b,
		submitter: submitter,
		wallet:    wallet,
		logger:    logger.With().Str("component", "staking_service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dryRun {
		return s, nil
	}
	if s.submitter == nil {
		return nil, fmt.Errorf("submitter is required unless dry run is enabled")
	}
	if wallet == (solana.PublicKey{}) {
		return nil, fmt.Errorf("wallet is required")
	}
	return s, nil
}

// Wallet returns the public key operations are signed with.
func (s *Service) Wallet() solana.PublicKey { return s.wallet }

// Initialize creates the protocol state with the wallet as admin.
func (s *Service) Initialize(ctx context.Context) (*Result, error) {
	req, err := s.builder.Initialize(s.wallet)
	return s.execute(ctx, program.OpInitialize, asset.Native(), req, err)
}

// DepositNative stakes amount lamports.
func (s *Service) DepositNative(ctx context.Context, amount sdkmath.Int) (*Result, error) {
	req, err := s.builder.DepositNative(s.wallet, amount)
	return s.execute(ctx, program.OpDepositSol, asset.Native(), req, err)
}

// DepositAsset stakes amount base units of mint from tokenAccount, or from
// the wallet's associated token account when tokenAccount is nil.
func (s *Service) DepositAsset(ctx context.Context, mint solana.PublicKey, tokenAccount *solana.PublicKey, amount sdkmath.Int) (*Result, error) {
	req, err := s.builder.DepositAsset(s.wallet, mint, tokenAccount, amount)
	return s.execute(ctx, program.OpDepositSpl, asset.Fungible(mint), req, err)
}

// Deposit dispatches to DepositNative or DepositAsset. tokenAccount is
// ignored for the native asset.
func (s *Service) Deposit(ctx context.Context, id asset.Identity, tokenAccount *solana.PublicKey, amount sdkmath.Int) (*Result, error) {
	mint, ok := id.Mint()
	if !ok {
		return s.DepositNative(ctx, amount)
	}
	return s.DepositAsset(ctx, mint, tokenAccount, amount)
}

// WithdrawNative withdraws the wallet's SOL stake.
func (s *Service) WithdrawNative(ctx context.Context) (*Result, error) {
	req, err := s.builder.WithdrawNative(s.wallet)
	return s.execute(ctx, program.OpWithdrawSol, asset.Native(), req, err)
}

// WithdrawAsset withdraws the wallet's stake in mint.
func (s *Service) WithdrawAsset(ctx context.Context, mint solana.PublicKey, tokenAccount *solana.PublicKey) (*Result, error) {
	req, err := s.builder.WithdrawAsset(s.wallet, mint, tokenAccount)
	return s.execute(ctx, program.OpWithdrawSpl, asset.Fungible(mint), req, err)
}

// Withdraw dispatches to WithdrawNative or WithdrawAsset.
func (s *Service) Withdraw(ctx context.Context, id asset.Identity, tokenAccount *solana.PublicKey) (*Result, error) {
	mint, ok := id.Mint()
	if !ok {
		return s.WithdrawNative(ctx)
	}
	return s.WithdrawAsset(ctx, mint, tokenAccount)
}

// WithdrawFeesNative drains the SOL fee pool to the wallet, which must be the admin.
func (s *Service) WithdrawFeesNative(ctx context.Context) (*Result, error) {
	req, err := s.builder.WithdrawFeesNative(s.wallet)
	return s.execute(ctx, program.OpWithdrawFeesSol, asset.Native(), req, err)
}

// WithdrawFeesAsset drains the fee pool of mint to tokenAccount.
func (s *Service) WithdrawFeesAsset(ctx context.Context, mint solana.PublicKey, tokenAccount *solana.PublicKey) (*Result, error) {
	req, err := s.builder.WithdrawFeesAsset(s.wallet, mint, tokenAccount)
	return s.execute(ctx, program.OpWithdrawFeesSpl, asset.Fungible(mint), req, err)
}

// WithdrawFees dispatches to WithdrawFeesNative or WithdrawFeesAsset.
func (s *Service) WithdrawFees(ctx context.Context, id asset.Identity, tokenAccount *solana.PublicKey) (*Result, error) {
	mint, ok := id.Mint()
	if !ok {
		return s.WithdrawFeesNative(ctx)
	}
	return s.WithdrawFeesAsset(ctx, mint, tokenAccount)
}

// Addresses derives the program accounts of id for user, or for the wallet
// when user is nil. The stake account is omitted when neither is known.
func (s *Service) Addresses(id asset.Identity, user *solana.PublicKey) (*builder.Addresses, error) {
	if user == nil && s.wallet != (solana.PublicKey{}) {
		wallet := s.wallet
		user = &wallet
	}
	return s.builder.Addresses(id, user)
}

// FetchState reads and decodes the protocol state account.
func (s *Service) FetchState(ctx context.Context) (*program.State, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("no account reader configured")
	}
	state, err := s.builder.Deriver().State()
	if err != nil {
		return nil, err
	}
	data, err := s.reader.GetAccountData(ctx, state.Address)
	if err != nil {
		return nil, tqerrors.Wrapf(err, "failed to fetch state account %s", state.Address)
	}
	return program.DecodeState(data)
}

func (s *Service) execute(ctx context.Context, op program.Operation, id asset.Identity, req *builder.Request, buildErr error) (*Result, error) {
	log := s.logger.With().Str("operation", op.Name()).Str("asset", id.String()).Logger()

	if buildErr != nil {
		s.metrics.RequestInvalid(op.Name(), string(tqerrors.CodeOf(buildErr)))
		log.Debug().Err(buildErr).Msg("request rejected before submission")
		return nil, buildErr
	}
	s.metrics.RequestBuilt(op.Name())

	entry := &store.Submission{
		Operation: op.Name(),
		Asset:     id.String(),
		Signer:    req.Signer.String(),
		Amount:    store.Amount(req.Amount),
	}

	if s.dryRun {
		entry.Status = store.StatusDryRun
		s.record(log, entry)
		s.metrics.Submission(op.Name(), metrics.OutcomeDryRun, 0)
		log.Info().Msg("dry run, request not submitted")
		return &Result{Request: req, DryRun: true}, nil
	}

	s.record(log, entry)

	start := time.Now()
	sig, err := s.submitter.Submit(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		outcome := metrics.OutcomeFailed
		var programCode *int64
		if pe, ok := tqerrors.ProgramErrorOf(err); ok {
			outcome = metrics.OutcomeRejected
			programCode = pe.Code
		}
		s.metrics.Submission(op.Name(), outcome, elapsed)
		s.markFailed(log, entry, sig, programCode, err)

		event := log.Error().Err(err).Dur("elapsed", elapsed).Str("outcome", outcome)
		if sig != (solana.Signature{}) {
			event = event.Str("signature", sig.String())
		}
		event.Msg("submission failed")

		if tqerrors.IsSubmissionError(err) {
			return nil, err
		}
		return nil, tqerrors.NewSubmissionError(op.Name(), err)
	}

	s.metrics.Submission(op.Name(), metrics.OutcomeConfirmed, elapsed)
	s.markConfirmed(log, entry, sig)
	log.Info().
		Str("signature", sig.String()).
		Uint64("amount", req.Amount).
		Dur("elapsed", elapsed).
		Msg("transaction confirmed")

	return &Result{Request: req, Signature: sig}, nil
}

// Journal failures never fail an operation; they are reported as warnings.

func (s *Service) record(log zerolog.Logger, entry *store.Submission) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordPending(entry); err != nil {
		log.Warn().Err(err).Msg("failed to journal submission")
	}
}

func (s *Service) markConfirmed(log zerolog.Logger, entry *store.Submission, sig solana.Signature) {
	if s.journal == nil || entry.ID == 0 {
		return
	}
	if err := s.journal.MarkConfirmed(entry.ID, sig.String()); err != nil {
		log.Warn().Err(err).Uint("journal_id", entry.ID).Msg("failed to journal confirmation")
	}
}

func (s *Service) markFailed(log zerolog.Logger, entry *store.Submission, sig solana.Signature, programCode *int64, cause error) {
	if s.journal == nil || entry.ID == 0 {
		return
	}
	var signature string
	if sig != (solana.Signature{}) {
		signature = sig.String()
	}
	if err := s.journal.MarkFailed(entry.ID, signature, programCode, cause.Error()); err != nil {
		log.Warn().Err(err).Uint("journal_id", entry.ID).Msg("failed to journal failure")
	}
}
