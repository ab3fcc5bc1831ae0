package builder

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/token-quest-client/stakingClient/program"
)

// Request is a fully resolved, not yet signed, program invocation. It is
// built per call and holds no references to the builder that produced it.
type Request struct {
	ProgramID solana.PublicKey
	Operation program.Operation
	Accounts  []program.NamedAccount
	// Amount is set for deposits only.
	Amount uint64
	// Signer is the wallet that must sign, which is also the fee payer.
	Signer solana.PublicKey
}

// Account returns the address bound to the IDL account name.
func (r *Request) Account(name string) (solana.PublicKey, bool) {
	for _, acc := range r.Accounts {
		if acc.Name == name {
			return acc.Meta.PublicKey, true
		}
	}
	return solana.PublicKey{}, false
}

// AccountNames returns the account names in instruction order.
func (r *Request) AccountNames() []string {
	names := make([]string, len(r.Accounts))
	for i, acc := range r.Accounts {
		names[i] = acc.Name
	}
	return names
}

// Data returns the encoded instruction data.
func (r *Request) Data() ([]byte, error) {
	return program.EncodeData(r.Operation, r.Amount)
}

// Instruction converts the request into a solana instruction.
func (r *Request) Instruction() (solana.Instruction, error) {
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	metas := make(solana.AccountMetaSlice, len(r.Accounts))
	for i, acc := range r.Accounts {
		meta := *acc.Meta
		metas[i] = &meta
	}
	return solana.NewInstruction(r.ProgramID, metas, data), nil
}

// Describe renders the request for dry runs and logs.
func (r *Request) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (program %s)\n", r.Operation.Name(), r.ProgramID)
	if r.Operation.TakesAmount() {
		fmt.Fprintf(&b, "  amount: %d\n", r.Amount)
	}
	for i, acc := range r.Accounts {
		flags := "r"
		if acc.Meta.IsWritable {
			flags = "w"
		}
		if acc.Meta.IsSigner {
			flags += "s"
		}
		fmt.Fprintf(&b, "  %2d %-18s %-2s %s\n", i, acc.Name, flags, acc.Meta.PublicKey)
	}
	return b.String()
}
