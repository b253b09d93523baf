package ledger

import (
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/rpc"
)

const (
	NetworkDevnet  = "devnet"
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"
)

var networkEndpoints = map[string]string{
	NetworkDevnet:  rpc.DevnetRPCEndpoint,
	NetworkTestnet: rpc.TestnetRPCEndpoint,
	NetworkMainnet: rpc.MainnetRPCEndpoint,
}

// ResolveEndpoint maps a network name to its public RPC endpoint.
// "mainnet-beta" is accepted as an alias of mainnet.
func ResolveEndpoint(network string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(network))
	if name == "mainnet-beta" {
		name = NetworkMainnet
	}

	endpoint, ok := networkEndpoints[name]
	if !ok {
		return "", fmt.Errorf("unknown network %q", network)
	}
	return endpoint, nil
}

type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

func ParseCommitment(value string) (Commitment, error) {
	c := Commitment(strings.ToLower(strings.TrimSpace(value)))
	if c.rank() == 0 {
		return "", fmt.Errorf("unknown commitment %q", value)
	}
	return c, nil
}

// Reached reports whether a transaction at commitment c satisfies want.
func (c Commitment) Reached(want Commitment) bool {
	return c.rank() != 0 && c.rank() >= want.rank()
}

func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}
