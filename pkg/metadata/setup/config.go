package setup

import (
	"errors"
	"os"
	"time"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/ledger"
)

const (
	DefaultNetwork      = ledger.NetworkDevnet
	DefaultCommitment   = string(ledger.CommitmentConfirmed)
	DefaultBindTimeout  = 60 * time.Second
	DefaultPollInterval = 2 * time.Second
)

type Config struct {
	PinataJwtKey  string
	SolanaRpcUrl  string
	SolanaNetwork string
	KeypairPath   string
	Commitment    string
	BindTimeout   string
	PollInterval  string
	Verify        bool

	// KeypairFromEnv selects the secret key in SOLANA_KEYPAIR over the keypair file.
	KeypairFromEnv bool
}

func NewConfigFromEnv() *Config {
	return &Config{
		PinataJwtKey:   os.Getenv(EnvPinataJwt),
		SolanaRpcUrl:   os.Getenv(EnvSolanaRpcUrl),
		SolanaNetwork:  os.Getenv(EnvSolanaNetwork),
		KeypairPath:    os.Getenv(EnvSolanaKeypairPath),
		Commitment:     os.Getenv(EnvSolanaCommitment),
		BindTimeout:    os.Getenv(EnvBindTimeout),
		PollInterval:   os.Getenv(EnvConfirmPollInterval),
		KeypairFromEnv: os.Getenv(EnvSolanaKeypair) != "",
	}
}

func (c *Config) Validate() error {
	if c.PinataJwtKey == "" {
		return errs.NewValidationError(EnvPinataJwt, "is required")
	}
	if c.SolanaRpcUrl == "" {
		if _, err := ledger.ResolveEndpoint(c.network()); err != nil {
			return errs.NewValidationError(EnvSolanaNetwork, err.Error())
		}
	}
	if _, err := ledger.ParseCommitment(c.commitment()); err != nil {
		return errs.NewValidationError(EnvSolanaCommitment, err.Error())
	}
	if _, err := parseDuration(c.BindTimeout, DefaultBindTimeout); err != nil {
		return errs.NewValidationError(EnvBindTimeout, err.Error())
	}
	if _, err := parseDuration(c.PollInterval, DefaultPollInterval); err != nil {
		return errs.NewValidationError(EnvConfirmPollInterval, err.Error())
	}

	return nil
}

func (c *Config) network() string {
	if c.SolanaNetwork == "" {
		return DefaultNetwork
	}
	return c.SolanaNetwork
}

func (c *Config) commitment() string {
	if c.Commitment == "" {
		return DefaultCommitment
	}
	return c.Commitment
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("duration must be positive")
	}
	return d, nil
}
