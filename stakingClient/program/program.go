// Package program describes the token_quest instruction interface: the seven
// operations, their Anchor discriminators, argument encoding and the account
// list each one expects.
package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Operation enumerates the program instructions.
type Operation uint8

const (
	OpInitialize Operation = iota
	OpDepositSol
	OpDepositSpl
	OpWithdrawSol
	OpWithdrawSpl
	OpWithdrawFeesSol
	OpWithdrawFeesSpl
)

// Operations lists every instruction in declaration order.
var Operations = []Operation{
	OpInitialize,
	OpDepositSol,
	OpDepositSpl,
	OpWithdrawSol,
	OpWithdrawSpl,
	OpWithdrawFeesSol,
	OpWithdrawFeesSpl,
}

var operationNames = [...]string{
	OpInitialize:      "initialize",
	OpDepositSol:      "deposit_sol",
	OpDepositSpl:      "deposit_spl",
	OpWithdrawSol:     "withdraw_sol",
	OpWithdrawSpl:     "withdraw_spl",
	OpWithdrawFeesSol: "withdraw_fees_sol",
	OpWithdrawFeesSpl: "withdraw_fees_spl",
}

// discriminators are computed once; Anchor uses sha256("global:<name>")[:8].
var discriminators = func() map[Operation][8]byte {
	out := make(map[Operation][8]byte, len(operationNames))
	for op, name := range operationNames {
		out[Operation(op)] = anchorDiscriminator("global", name)
	}
	return out
}()

func anchorDiscriminator(namespace, name string) [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	copy(d[:], sum[:8])
	return d
}

// Name returns the instruction name as declared by the program.
func (op Operation) Name() string {
	if int(op) < len(operationNames) {
		return operationNames[op]
	}
	return fmt.Sprintf("operation(%d)", uint8(op))
}

func (op Operation) String() string { return op.Name() }

// Valid reports whether op is one of the declared instructions.
func (op Operation) Valid() bool { return int(op) < len(operationNames) }

// Discriminator returns the 8-byte instruction selector.
func (op Operation) Discriminator() [8]byte { return discriminators[op] }

// TakesAmount reports whether the instruction carries a u64 amount argument.
func (op Operation) TakesAmount() bool {
	return op == OpDepositSol || op == OpDepositSpl
}

// Native reports whether the instruction moves SOL rather than a token.
func (op Operation) Native() bool {
	switch op {
	case OpDepositSol, OpWithdrawSol, OpWithdrawFeesSol:
		return true
	default:
		return false
	}
}

// ParseOperation resolves an instruction name.
func ParseOperation(name string) (Operation, error) {
	for op, n := range operationNames {
		if n == name {
			return Operation(op), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// depositArgs mirrors `amount: u64` in the deposit handlers.
type depositArgs struct {
	Amount uint64
}

// EncodeData returns the instruction data: discriminator followed by the
// borsh-encoded arguments. amount is ignored for instructions without one.
func EncodeData(op Operation, amount uint64) ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("unknown operation %d", uint8(op))
	}
	buf := new(bytes.Buffer)
	disc := op.Discriminator()
	buf.Write(disc[:])

	if op.TakesAmount() {
		if err := bin.NewBorshEncoder(buf).Encode(depositArgs{Amount: amount}); err != nil {
			return nil, fmt.Errorf("failed to encode %s args: %w", op.Name(), err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeData is the inverse of EncodeData.
func DecodeData(data []byte) (Operation, uint64, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("instruction data too short: %d bytes", len(data))
	}
	var disc [8]byte
	copy(disc[:], data[:8])

	for _, op := range Operations {
		if op.Discriminator() != disc {
			continue
		}
		if !op.TakesAmount() {
			return op, 0, nil
		}
		var args depositArgs
		if err := bin.NewBorshDecoder(data[8:]).Decode(&args); err != nil {
			return 0, 0, fmt.Errorf("failed to decode %s args: %w", op.Name(), err)
		}
		return op, args.Amount, nil
	}
	return 0, 0, fmt.Errorf("unknown discriminator %x", disc)
}
