package wallet

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

var ErrKeyMismatch = errors.New("public key does not match secret key seed")

// Wallet holds the ed25519 keypair that signs metadata updates.
type Wallet struct {
	account types.Account
}

// NewWallet takes a 64 byte solana-keygen secret key (seed followed by public key).
func NewWallet(secretKey []byte) (*Wallet, error) {
	if len(secretKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("unexpected secret key length: got %d, want %d", len(secretKey), ed25519.PrivateKeySize)
	}

	derived := ed25519.NewKeyFromSeed(secretKey[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], secretKey[ed25519.SeedSize:]) {
		return nil, ErrKeyMismatch
	}

	account, err := types.AccountFromBytes(secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &Wallet{
		account: account,
	}, nil
}

func (w *Wallet) Address() common.PublicKey {
	return w.account.PublicKey
}

func (w *Wallet) Account() types.Account {
	return w.account
}

func (w *Wallet) Sign(data []byte) []byte {
	return w.account.Sign(data)
}
