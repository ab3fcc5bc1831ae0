package program

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// StateAccountSize is the allocated size of the state account:
// discriminator(8) + admin(32) + bump(1) + fee_percentage(2).
const StateAccountSize = 8 + 32 + 1 + 2

// FeeBasisPointsDenominator scales State.FeePercentage (300 = 3%).
const FeeBasisPointsDenominator = 10_000

var stateDiscriminator = anchorDiscriminator("account", "TokenQuestState")

// State is the program's singleton configuration account.
type State struct {
	Admin         solana.PublicKey
	Bump          uint8
	FeePercentage uint16
}

// FeePercent returns the fee as a percentage.
func (s State) FeePercent() float64 {
	return float64(s.FeePercentage) * 100 / FeeBasisPointsDenominator
}

// DecodeState parses raw state account data.
func DecodeState(data []byte) (*State, error) {
	if len(data) < StateAccountSize {
		return nil, fmt.Errorf("state account data too short: %d bytes", len(data))
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	if disc != stateDiscriminator {
		return nil, fmt.Errorf("account is not a TokenQuestState (discriminator %x)", disc)
	}

	var state State
	if err := bin.NewBorshDecoder(data[8:]).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &state, nil
}

// EncodeState serialises s the way the program stores it.
func EncodeState(s State) ([]byte, error) {
	data, err := bin.MarshalBorsh(&s)
	if err != nil {
		return nil, err
	}
	return append(stateDiscriminator[:], data...), nil
}
