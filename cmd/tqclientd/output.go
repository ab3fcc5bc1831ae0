package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/pushchain/token-quest-client/stakingClient/builder"
	"github.com/pushchain/token-quest-client/stakingClient/pda"
	"github.com/pushchain/token-quest-client/stakingClient/program"
	"github.com/pushchain/token-quest-client/stakingClient/staking"
	"github.com/pushchain/token-quest-client/stakingClient/store"
)

// Output formats
const (
	OutputFormatYAML = "yaml"
	OutputFormatJSON = "json"
)

// AccountOutput is one instruction account.
type AccountOutput struct {
	Name     string `yaml:"name" json:"name"`
	Address  string `yaml:"address" json:"address"`
	Writable bool   `yaml:"writable" json:"writable"`
	Signer   bool   `yaml:"signer" json:"signer"`
}

// ResultOutput represents the output format for an executed operation
type ResultOutput struct {
	Operation string          `yaml:"operation" json:"operation"`
	Program   string          `yaml:"program" json:"program"`
	Signer    string          `yaml:"signer" json:"signer"`
	Amount    uint64          `yaml:"amount,omitempty" json:"amount,omitempty"`
	Signature string          `yaml:"signature,omitempty" json:"signature,omitempty"`
	DryRun    bool            `yaml:"dry_run,omitempty" json:"dry_run,omitempty"`
	Data      string          `yaml:"data,omitempty" json:"data,omitempty"`
	Accounts  []AccountOutput `yaml:"accounts,omitempty" json:"accounts,omitempty"`
}

// DerivedOutput is a derived address and its bump.
type DerivedOutput struct {
	Address string `yaml:"address" json:"address"`
	Bump    uint8  `yaml:"bump" json:"bump"`
}

// StateOutput represents the decoded protocol state account.
type StateOutput struct {
	Admin         string  `yaml:"admin" json:"admin"`
	Bump          uint8   `yaml:"bump" json:"bump"`
	FeeBasisPts   uint16  `yaml:"fee_basis_points" json:"fee_basis_points"`
	FeePercentage float64 `yaml:"fee_percent" json:"fee_percent"`
}

// AddressesOutput represents the output format for the addresses command
type AddressesOutput struct {
	Program string         `yaml:"program" json:"program"`
	Asset   string         `yaml:"asset" json:"asset"`
	User    string         `yaml:"user,omitempty" json:"user,omitempty"`
	State   DerivedOutput  `yaml:"state" json:"state"`
	Vault   DerivedOutput  `yaml:"vault" json:"vault"`
	Fee     DerivedOutput  `yaml:"fee" json:"fee"`
	Stake   *DerivedOutput `yaml:"stake,omitempty" json:"stake,omitempty"`
	OnChain *StateOutput   `yaml:"on_chain_state,omitempty" json:"on_chain_state,omitempty"`
}

// SubmissionOutput is one journal entry.
type SubmissionOutput struct {
	ID          uint      `yaml:"id" json:"id"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	Operation   string    `yaml:"operation" json:"operation"`
	Asset       string    `yaml:"asset" json:"asset"`
	Signer      string    `yaml:"signer" json:"signer"`
	Amount      uint64    `yaml:"amount,omitempty" json:"amount,omitempty"`
	Status      string    `yaml:"status" json:"status"`
	Signature   string    `yaml:"signature,omitempty" json:"signature,omitempty"`
	ProgramCode *int64    `yaml:"program_code,omitempty" json:"program_code,omitempty"`
	Error       string    `yaml:"error,omitempty" json:"error,omitempty"`
}

// HistoryOutput represents the output format for the history command
type HistoryOutput struct {
	Submissions []SubmissionOutput `yaml:"submissions" json:"submissions"`
	Pruned      int64              `yaml:"pruned,omitempty" json:"pruned,omitempty"`
}

func newResultOutput(res *staking.Result) (ResultOutput, error) {
	req := res.Request
	out := ResultOutput{
		Operation: req.Operation.Name(),
		Program:   req.ProgramID.String(),
		Signer:    req.Signer.String(),
		DryRun:    res.DryRun,
	}
	if req.Operation.TakesAmount() {
		out.Amount = req.Amount
	}
	if !res.DryRun {
		out.Signature = res.Signature.String()
		return out, nil
	}

	// Dry runs show exactly what would have been sent.
	data, err := req.Data()
	if err != nil {
		return ResultOutput{}, err
	}
	out.Data = hex.EncodeToString(data)
	out.Accounts = accountOutputs(req)
	return out, nil
}

func accountOutputs(req *builder.Request) []AccountOutput {
	out := make([]AccountOutput, len(req.Accounts))
	for i, acc := range req.Accounts {
		out[i] = AccountOutput{
			Name:     acc.Name,
			Address:  acc.Meta.PublicKey.String(),
			Writable: acc.Meta.IsWritable,
			Signer:   acc.Meta.IsSigner,
		}
	}
	return out
}

func derivedOutput(acc pda.Account) DerivedOutput {
	return DerivedOutput{Address: acc.Address.String(), Bump: acc.Bump}
}

func newAddressesOutput(addrs *builder.Addresses, user string, state *program.State) AddressesOutput {
	out := AddressesOutput{
		Program: addrs.Program.String(),
		Asset:   addrs.Asset.String(),
		User:    user,
		State:   derivedOutput(addrs.State),
		Vault:   derivedOutput(addrs.Vault),
		Fee:     derivedOutput(addrs.Fee),
	}
	if addrs.Stake != nil {
		stake := derivedOutput(*addrs.Stake)
		out.Stake = &stake
	}
	if state != nil {
		out.OnChain = &StateOutput{
			Admin:         state.Admin.String(),
			Bump:          state.Bump,
			FeeBasisPts:   state.FeePercentage,
			FeePercentage: state.FeePercent(),
		}
	}
	return out
}

func newHistoryOutput(subs []store.Submission, pruned int64) HistoryOutput {
	out := HistoryOutput{
		Submissions: make([]SubmissionOutput, len(subs)),
		Pruned:      pruned,
	}
	for i, s := range subs {
		out.Submissions[i] = SubmissionOutput{
			ID:          s.ID,
			CreatedAt:   s.CreatedAt,
			Operation:   s.Operation,
			Asset:       s.Asset,
			Signer:      s.Signer,
			Amount:      uint64(s.Amount),
			Status:      s.Status,
			Signature:   s.Signature,
			ProgramCode: s.ProgramCode,
			Error:       s.ErrorMsg,
		}
	}
	return out
}

func checkOutputFormat(format string) error {
	switch format {
	case OutputFormatYAML, OutputFormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func printOutput(w io.Writer, data interface{}, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(data)
	default:
		return checkOutputFormat(format)
	}
}
