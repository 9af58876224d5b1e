package protocol

import "strings"

// StakeModes is a bitmask of stake kinds a player may reply with
// during a stake negotiation.
type StakeModes int

const (
	StakeModeNone  StakeModes = 0
	StakeModeStake StakeModes = 1 << iota
	StakeModePass
	StakeModeAllIn
	StakeModeNominal
)

// ParseStakeModes decodes a comma-separated mode list ("Stake, Pass, AllIn").
// Unknown tokens are skipped.
func ParseStakeModes(input string) StakeModes {
	var result StakeModes

	for _, option := range strings.Split(input, ",") {
		switch strings.TrimSpace(option) {
		case "Nominal":
			result |= StakeModeNominal
		case "Stake":
			result |= StakeModeStake
		case "Pass":
			result |= StakeModePass
		case "AllIn":
			result |= StakeModeAllIn
		}
	}

	return result
}

// Has reports whether all bits of m2 are set.
func (m StakeModes) Has(m2 StakeModes) bool {
	return m&m2 == m2
}
