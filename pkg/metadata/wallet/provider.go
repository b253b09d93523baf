package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
)

// CredentialProvider yields the signing wallet for a run.
type CredentialProvider interface {
	Load(ctx context.Context) (*Wallet, error)
}

func DefaultKeypairPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "solana", "id.json"), nil
}

// FileProvider reads a solana-keygen JSON keypair file.
type FileProvider struct {
	path string
}

var _ CredentialProvider = (*FileProvider)(nil)

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Path() string {
	return p.path
}

func (p *FileProvider) Load(ctx context.Context) (*Wallet, error) {
	if p.path == "" {
		return nil, fmt.Errorf("keypair path: %w", errs.ErrMissingCredential)
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file %s: %w", p.path, err)
	}

	wallet, err := NewWallet(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair file %s: %w", p.path, err)
	}

	slog.Info("loaded keypair", "source", "file", "address", wallet.Address().ToBase58())

	return wallet, nil
}

// EnvProvider reads a secret key from an environment variable, either as a
// JSON byte array or base58.
type EnvProvider struct {
	name string
}

var _ CredentialProvider = (*EnvProvider)(nil)

func NewEnvProvider(name string) *EnvProvider {
	return &EnvProvider{name: name}
}

func (p *EnvProvider) Load(ctx context.Context) (*Wallet, error) {
	value := strings.TrimSpace(os.Getenv(p.name))
	if value == "" {
		return nil, fmt.Errorf("%s: %w", p.name, errs.ErrMissingCredential)
	}

	key, err := ParseSecretKey(value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.name, err)
	}

	wallet, err := NewWallet(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", p.name, err)
	}

	slog.Info("loaded keypair", "source", "env", "address", wallet.Address().ToBase58())

	return wallet, nil
}

func ParseSecretKey(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") {
		return decodeKeypairJSON([]byte(value))
	}

	key, err := solana.PrivateKeyFromBase58(value)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 secret key: %w", err)
	}
	return key, nil
}

func decodeKeypairJSON(data []byte) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keypair json: %w", err)
	}

	key := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("byte out of range at %d: %d", i, v)
		}
		key[i] = byte(v)
	}

	return key, nil
}
