package staking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/token-quest-client/stakingClient/asset"
	"github.com/pushchain/token-quest-client/stakingClient/builder"
	"github.com/pushchain/token-quest-client/stakingClient/constant"
	"github.com/pushchain/token-quest-client/stakingClient/db"
	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
	"github.com/pushchain/token-quest-client/stakingClient/metrics"
	"github.com/pushchain/token-quest-client/stakingClient/program"
	"github.com/pushchain/token-quest-client/stakingClient/staking/mocks"
	"github.com/pushchain/token-quest-client/stakingClient/store"
)

var (
	testWallet = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	testMint   = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testSig    = solana.Signature{9, 9, 9}
)

type fixture struct {
	ctx           context.Context
	service       *Service
	mockSubmitter *mocks.MockSubmitter
	journal       *db.DB
	metrics       *metrics.Metrics
	builder       *builder.Builder
}

func setupService(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	journal, err := db.OpenInMemoryDB(true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	f := &fixture{
		ctx:           context.Background(),
		mockSubmitter: mocks.NewMockSubmitter(ctrl),
		journal:       journal,
		metrics:       metrics.New(),
		builder:       builder.New(constant.DefaultProgramID),
	}

	opts = append([]Option{WithJournal(journal), WithMetrics(f.metrics)}, opts...)
	f.service, err = NewService(f.builder, f.mockSubmitter, testWallet, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return f
}

// captureRequests makes the submitter succeed and collects what it was given.
func (f *fixture) captureRequests(times int) *[]*builder.Request {
	var got []*builder.Request
	f.mockSubmitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *builder.Request) (solana.Signature, error) {
			got = append(got, req)
			return testSig, nil
		}).Times(times)
	return &got
}

func (f *fixture) history(t *testing.T) []store.Submission {
	t.Helper()
	subs, err := f.journal.ListSubmissions(100)
	require.NoError(t, err)
	return subs
}

func TestNewService(t *testing.T) {
	b := builder.New(constant.DefaultProgramID)

	_, err := NewService(nil, nil, testWallet, zerolog.Nop())
	assert.Error(t, err)

	ctrl := gomock.NewController(t)
	_, err = NewService(b, mocks.NewMockSubmitter(ctrl), solana.PublicKey{}, zerolog.Nop())
	assert.ErrorContains(t, err, "wallet is required")

	_, err = NewService(b, nil, testWallet, zerolog.Nop())
	assert.ErrorContains(t, err, "submitter is required")

	readOnly, err := NewService(b, nil, solana.PublicKey{}, zerolog.Nop(), WithDryRun(true))
	require.NoError(t, err)
	_, err = readOnly.DepositNative(context.Background(), sdkmath.NewInt(1))
	assert.True(t, errors.Is(err, tqerrors.ErrInvalidAddress), "no wallet, no signer")

	s, err := NewService(b, nil, testWallet, zerolog.Nop(), WithDryRun(true))
	require.NoError(t, err)
	assert.Equal(t, testWallet, s.Wallet())
}

func TestInitialize(t *testing.T) {
	f := setupService(t)
	reqs := f.captureRequests(1)

	res, err := f.service.Initialize(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, testSig, res.Signature)
	assert.False(t, res.DryRun)

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	assert.Equal(t, program.OpInitialize, req.Operation)
	assert.Equal(t, testWallet, req.Signer)

	state, err := f.builder.Deriver().State()
	require.NoError(t, err)
	got, ok := req.Account("state")
	require.True(t, ok)
	assert.Equal(t, state.Address, got)
	got, ok = req.Account("admin")
	require.True(t, ok)
	assert.Equal(t, testWallet, got)

	subs := f.history(t)
	require.Len(t, subs, 1)
	assert.Equal(t, store.StatusConfirmed, subs[0].Status)
	assert.Equal(t, testSig.String(), subs[0].Signature)
	assert.Equal(t, "initialize", subs[0].Operation)
}

func TestDepositThenWithdrawNative_SharesStakeAccount(t *testing.T) {
	f := setupService(t)
	reqs := f.captureRequests(2)

	_, err := f.service.DepositNative(f.ctx, sdkmath.NewInt(1_000_000_000))
	require.NoError(t, err)
	_, err = f.service.WithdrawNative(f.ctx)
	require.NoError(t, err)

	require.Len(t, *reqs, 2)
	deposit, withdraw := (*reqs)[0], (*reqs)[1]
	assert.Equal(t, program.OpDepositSol, deposit.Operation)
	assert.Equal(t, uint64(1_000_000_000), deposit.Amount)
	assert.Equal(t, program.OpWithdrawSol, withdraw.Operation)

	for _, name := range []string{"stakePda", "vaultPda", "state"} {
		d, ok := deposit.Account(name)
		require.True(t, ok, name)
		w, ok := withdraw.Account(name)
		require.True(t, ok, name)
		assert.Equal(t, d, w, name)
	}

	subs := f.history(t)
	require.Len(t, subs, 2)
	assert.Equal(t, "withdraw_sol", subs[0].Operation)
	assert.Equal(t, store.Amount(1_000_000_000), subs[1].Amount)
}

func TestDepositNative_MaxUint64IsJournaled(t *testing.T) {
	f := setupService(t)
	f.captureRequests(1)

	res, err := f.service.DepositNative(f.ctx, sdkmath.NewIntFromUint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, testSig, res.Signature)

	subs := f.history(t)
	require.Len(t, subs, 1)
	assert.Equal(t, store.StatusConfirmed, subs[0].Status)
	assert.Equal(t, store.Amount(math.MaxUint64), subs[0].Amount)
	assert.Equal(t, testSig.String(), subs[0].Signature)
}

func TestDeposit_InvalidAmountNeverSubmits(t *testing.T) {
	tooLarge := sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 64))

	tests := []struct {
		name   string
		amount sdkmath.Int
	}{
		{"zero", sdkmath.ZeroInt()},
		{"negative", sdkmath.NewInt(-5)},
		{"nil", sdkmath.Int{}},
		{"above u64", tooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no EXPECT: any Submit call fails the test
			f := setupService(t)

			_, err := f.service.DepositNative(f.ctx, tt.amount)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tqerrors.ErrInvalidAmount))
			assert.True(t, tqerrors.IsConstructionError(err))

			_, err = f.service.DepositAsset(f.ctx, testMint, nil, tt.amount)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tqerrors.ErrInvalidAmount))

			assert.Empty(t, f.history(t))
			invalid, err := testutil.GatherAndCount(f.metrics.Registry(), "tqclient_requests_invalid_total")
			require.NoError(t, err)
			assert.Equal(t, 2, invalid)
		})
	}
}

func TestDepositAsset_InvalidTokenAccount(t *testing.T) {
	f := setupService(t)

	zero := solana.PublicKey{}
	_, err := f.service.DepositAsset(f.ctx, testMint, &zero, sdkmath.NewInt(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tqerrors.ErrInvalidAddress))
}

func TestAssetDispatch(t *testing.T) {
	f := setupService(t)
	reqs := f.captureRequests(6)

	native := asset.Native()
	token := asset.Fungible(testMint)
	amount := sdkmath.NewInt(42)

	_, err := f.service.Deposit(f.ctx, native, nil, amount)
	require.NoError(t, err)
	_, err = f.service.Deposit(f.ctx, token, nil, amount)
	require.NoError(t, err)
	_, err = f.service.Withdraw(f.ctx, native, nil)
	require.NoError(t, err)
	_, err = f.service.Withdraw(f.ctx, token, nil)
	require.NoError(t, err)
	_, err = f.service.WithdrawFees(f.ctx, native, nil)
	require.NoError(t, err)
	_, err = f.service.WithdrawFees(f.ctx, token, nil)
	require.NoError(t, err)

	want := []program.Operation{
		program.OpDepositSol, program.OpDepositSpl,
		program.OpWithdrawSol, program.OpWithdrawSpl,
		program.OpWithdrawFeesSol, program.OpWithdrawFeesSpl,
	}
	require.Len(t, *reqs, len(want))

	ata, _, err := solana.FindAssociatedTokenAddress(testWallet, testMint)
	require.NoError(t, err)

	for i, req := range *reqs {
		assert.Equal(t, want[i], req.Operation)
		_, hasMint := req.Account("mint")
		assert.Equal(t, !want[i].Native(), hasMint, req.Operation.Name())
	}

	got, ok := (*reqs)[1].Account("userTokenAccount")
	require.True(t, ok)
	assert.Equal(t, ata, got, "associated token account is the default")
	got, ok = (*reqs)[5].Account("adminTokenAccount")
	require.True(t, ok)
	assert.Equal(t, ata, got)
}

func TestSubmissionFailure_EveryOperation(t *testing.T) {
	amount := sdkmath.NewInt(100)

	tests := []struct {
		op  program.Operation
		run func(ctx context.Context, s *Service) (*Result, error)
	}{
		{program.OpInitialize, func(ctx context.Context, s *Service) (*Result, error) {
			return s.Initialize(ctx)
		}},
		{program.OpDepositSol, func(ctx context.Context, s *Service) (*Result, error) {
			return s.DepositNative(ctx, amount)
		}},
		{program.OpDepositSpl, func(ctx context.Context, s *Service) (*Result, error) {
			return s.DepositAsset(ctx, testMint, nil, amount)
		}},
		{program.OpWithdrawSol, func(ctx context.Context, s *Service) (*Result, error) {
			return s.WithdrawNative(ctx)
		}},
		{program.OpWithdrawSpl, func(ctx context.Context, s *Service) (*Result, error) {
			return s.WithdrawAsset(ctx, testMint, nil)
		}},
		{program.OpWithdrawFeesSol, func(ctx context.Context, s *Service) (*Result, error) {
			return s.WithdrawFeesNative(ctx)
		}},
		{program.OpWithdrawFeesSpl, func(ctx context.Context, s *Service) (*Result, error) {
			return s.WithdrawFeesAsset(ctx, testMint, nil)
		}},
	}
	require.Len(t, tests, len(program.Operations))

	for _, tt := range tests {
		t.Run(tt.op.Name(), func(t *testing.T) {
			f := setupService(t)
			code := int64(6000)
			rejection := &tqerrors.ProgramError{Code: &code, Message: "rejected"}
			f.mockSubmitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req *builder.Request) (solana.Signature, error) {
					assert.Equal(t, tt.op, req.Operation)
					return solana.Signature{}, rejection
				})

			res, err := tt.run(f.ctx, f.service)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, rejection))
			assert.True(t, tqerrors.IsSubmissionError(err))
			assert.Contains(t, err.Error(), tt.op.Name())
		})
	}
}

func TestSubmissionFailure_ProgramRejection(t *testing.T) {
	f := setupService(t)

	code := int64(6001)
	f.mockSubmitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		Return(testSig, fmt.Errorf("transaction failed: %w", &tqerrors.ProgramError{Code: &code, Message: "NoStake"}))

	res, err := f.service.WithdrawNative(f.ctx)
	require.Error(t, err)
	assert.Nil(t, res)

	assert.True(t, tqerrors.IsSubmissionError(err))
	assert.True(t, errors.Is(err, tqerrors.ErrSubmission))
	assert.False(t, tqerrors.IsConstructionError(err))
	assert.Contains(t, err.Error(), "withdraw_sol")

	pe, ok := tqerrors.ProgramErrorOf(err)
	require.True(t, ok)
	assert.Equal(t, code, *pe.Code)

	subs := f.history(t)
	require.Len(t, subs, 1)
	assert.Equal(t, store.StatusFailed, subs[0].Status)
	assert.Equal(t, testSig.String(), subs[0].Signature)
	require.NotNil(t, subs[0].ProgramCode)
	assert.Equal(t, code, *subs[0].ProgramCode)

	var buf bytes.Buffer
	require.NoError(t, f.metrics.WriteText(&buf))
	assert.Contains(t, buf.String(), `tqclient_submissions_total{operation="withdraw_sol",outcome="rejected"} 1`)
}

func TestSubmissionFailure_Transport(t *testing.T) {
	f := setupService(t)

	cause := errors.New("connection refused")
	f.mockSubmitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(solana.Signature{}, cause)

	_, err := f.service.DepositAsset(f.ctx, testMint, nil, sdkmath.NewInt(7))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, tqerrors.IsSubmissionError(err))

	_, isProgram := tqerrors.ProgramErrorOf(err)
	assert.False(t, isProgram)

	subs := f.history(t)
	require.Len(t, subs, 1)
	assert.Equal(t, store.StatusFailed, subs[0].Status)
	assert.Empty(t, subs[0].Signature)
	assert.Equal(t, testMint.String(), subs[0].Asset)
	assert.Contains(t, subs[0].ErrorMsg, "connection refused")
}

func TestSubmissionFailure_WrappedOnce(t *testing.T) {
	f := setupService(t)

	already := tqerrors.NewSubmissionError("withdraw_sol", errors.New("boom"))
	f.mockSubmitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(solana.Signature{}, already)

	_, err := f.service.WithdrawNative(f.ctx)
	require.Error(t, err)
	assert.Same(t, already, err)
}

func TestSubmissionFailure_Cancelled(t *testing.T) {
	f := setupService(t)

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()
	f.mockSubmitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *builder.Request) (solana.Signature, error) {
			return solana.Signature{}, ctx.Err()
		})

	_, err := f.service.WithdrawFeesNative(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, tqerrors.IsSubmissionError(err))
}

func TestDryRun(t *testing.T) {
	journal, err := db.OpenInMemoryDB(true)
	require.NoError(t, err)
	defer journal.Close()

	s, err := NewService(builder.New(constant.DefaultProgramID), nil, testWallet, zerolog.Nop(),
		WithDryRun(true), WithJournal(journal))
	require.NoError(t, err)

	res, err := s.DepositNative(context.Background(), sdkmath.NewInt(5))
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, solana.Signature{}, res.Signature)
	assert.Equal(t, program.OpDepositSol, res.Request.Operation)

	subs, err := journal.ListSubmissions(10)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, store.StatusDryRun, subs[0].Status)
}

func TestAddresses_WithoutWallet(t *testing.T) {
	s, err := NewService(builder.New(constant.DefaultProgramID), nil, solana.PublicKey{}, zerolog.Nop(), WithDryRun(true))
	require.NoError(t, err)

	addrs, err := s.Addresses(asset.Native(), nil)
	require.NoError(t, err)
	assert.Nil(t, addrs.Stake)

	addrs, err = s.Addresses(asset.Native(), &testWallet)
	require.NoError(t, err)
	require.NotNil(t, addrs.Stake)
}

func TestAddresses_DefaultsToWallet(t *testing.T) {
	f := setupService(t)

	addrs, err := f.service.Addresses(asset.Fungible(testMint), nil)
	require.NoError(t, err)
	require.NotNil(t, addrs.Stake)

	stake, err := f.builder.Deriver().Stake(testWallet, testMint.Bytes())
	require.NoError(t, err)
	assert.Equal(t, stake, *addrs.Stake)
}

type fakeReader struct {
	data map[solana.PublicKey][]byte
}

func (r fakeReader) GetAccountData(_ context.Context, address solana.PublicKey) ([]byte, error) {
	data, ok := r.data[address]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func TestFetchState(t *testing.T) {
	b := builder.New(constant.DefaultProgramID)
	state, err := b.Deriver().State()
	require.NoError(t, err)

	raw, err := program.EncodeState(program.State{Admin: testWallet, Bump: state.Bump, FeePercentage: 300})
	require.NoError(t, err)

	s, err := NewService(b, nil, testWallet, zerolog.Nop(), WithDryRun(true))
	require.NoError(t, err)
	_, err = s.FetchState(context.Background())
	assert.ErrorContains(t, err, "no account reader")

	s, err = NewService(b, nil, testWallet, zerolog.Nop(), WithDryRun(true),
		WithAccountReader(fakeReader{data: map[solana.PublicKey][]byte{state.Address: raw}}))
	require.NoError(t, err)

	got, err := s.FetchState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testWallet, got.Admin)
	assert.Equal(t, uint16(300), got.FeePercentage)
	assert.Equal(t, state.Bump, got.Bump)

	s, err = NewService(builder.New(testMint), nil, testWallet, zerolog.Nop(), WithDryRun(true),
		WithAccountReader(fakeReader{}))
	require.NoError(t, err)
	_, err = s.FetchState(context.Background())
	assert.ErrorContains(t, err, "failed to fetch state account")
}
