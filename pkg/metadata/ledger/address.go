package ledger

import (
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/gagliardetto/solana-go"
)

// ParseAddress decodes a base58 account address, rejecting anything that is
// not exactly 32 bytes.
func ParseAddress(address string) (common.PublicKey, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return common.PublicKey{}, fmt.Errorf("address is empty")
	}

	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("invalid address %q: %w", address, err)
	}

	return common.PublicKeyFromBytes(key.Bytes()), nil
}

// MetadataAddress derives the Token Metadata account of a mint.
func MetadataAddress(mint common.PublicKey) (common.PublicKey, error) {
	address, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return address, nil
}
