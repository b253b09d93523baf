package setup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/debug"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/ledger"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/wallet"
)

type SetupResult struct {
	PinataJwtKey string
	RpcUrl       string
	Commitment   ledger.Commitment
	BindTimeout  time.Duration
	PollInterval time.Duration
	Verify       bool
	Credential   wallet.CredentialProvider
}

// Setup validates config and resolves it into the values a run needs. It
// performs no network I/O.
func Setup(ctx context.Context, config *Config) (*SetupResult, error) {
	if config == nil {
		return nil, errs.NewValidationError("", "config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rpcUrl := config.SolanaRpcUrl
	if rpcUrl == "" {
		endpoint, err := ledger.ResolveEndpoint(config.network())
		if err != nil {
			return nil, errs.NewValidationError(EnvSolanaNetwork, err.Error())
		}
		rpcUrl = endpoint
	}

	// Validate has already accepted these values.
	commitment, _ := ledger.ParseCommitment(config.commitment())
	bindTimeout, _ := parseDuration(config.BindTimeout, DefaultBindTimeout)
	pollInterval, _ := parseDuration(config.PollInterval, DefaultPollInterval)

	credential, err := credentialProvider(config)
	if err != nil {
		return nil, err
	}

	setupResult := &SetupResult{
		PinataJwtKey: config.PinataJwtKey,
		RpcUrl:       rpcUrl,
		Commitment:   commitment,
		BindTimeout:  bindTimeout,
		PollInterval: pollInterval,
		Verify:       config.Verify,
		Credential:   credential,
	}

	if debug.IsDebugShowSetup() {
		slog.Info("setup output", "setupOutput", setupResult)
	}

	return setupResult, nil
}

func credentialProvider(config *Config) (wallet.CredentialProvider, error) {
	if config.KeypairFromEnv && config.KeypairPath == "" {
		return wallet.NewEnvProvider(EnvSolanaKeypair), nil
	}

	path := config.KeypairPath
	if path == "" {
		defaultPath, err := wallet.DefaultKeypairPath()
		if err != nil {
			return nil, errs.NewValidationError(EnvSolanaKeypairPath, err.Error())
		}
		path = defaultPath
	}

	return wallet.NewFileProvider(path), nil
}

// LogValue keeps the Pinata credential out of logs.
func (r *SetupResult) LogValue() slog.Value {
	credential := "env:" + EnvSolanaKeypair
	if fp, ok := r.Credential.(*wallet.FileProvider); ok {
		credential = "file:" + fp.Path()
	}

	return slog.GroupValue(
		slog.String("pinataJwtKey", redact(r.PinataJwtKey)),
		slog.String("rpcUrl", r.RpcUrl),
		slog.String("commitment", string(r.Commitment)),
		slog.Duration("bindTimeout", r.BindTimeout),
		slog.Duration("pollInterval", r.PollInterval),
		slog.Bool("verify", r.Verify),
		slog.String("credential", credential),
	)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return fmt.Sprintf("<redacted %d chars>", len(secret))
}
