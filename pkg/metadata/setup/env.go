package setup

const (
	EnvPinataJwt           = "PINATA_JWT"
	EnvSolanaRpcUrl        = "SOLANA_RPC_URL"
	EnvSolanaNetwork       = "SOLANA_NETWORK"
	EnvSolanaKeypair       = "SOLANA_KEYPAIR"
	EnvSolanaKeypairPath   = "SOLANA_KEYPAIR_PATH"
	EnvSolanaCommitment    = "SOLANA_COMMITMENT"
	EnvBindTimeout         = "BIND_TIMEOUT"
	EnvConfirmPollInterval = "CONFIRM_POLL_INTERVAL"
)
