package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/nft"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/setup"
)

const (
	defaultName        = "Topocoin"
	defaultSymbol      = "TPC"
	defaultDescription = "A token for Topocoin ecosystem"
	defaultImagePath   = "./logo.png"
)

var errMissingMint = errors.New("mint address is required")

type runner func(ctx context.Context, config *setup.Config, req metadata.Request) (*metadata.Result, error)

type rootOptions struct {
	rpcUrl      string
	network     string
	keypair     string
	commitment  string
	timeout     string
	contentType string
	verify      bool
}

func newRootCommand(run runner) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "metadata [flags] <name> <symbol> <description> <imagePath> <mintAddress>",
		Short: "Publish token metadata to IPFS and bind it to a Solana mint",
		Long: `Uploads an image and a generated metadata document to IPFS through Pinata,
then updates the Token Metadata account of the mint to point at the document.

Empty or omitted name, symbol, description and imagePath fall back to
"Topocoin", "TPC", "A token for Topocoin ecosystem" and "./logo.png".

Examples:
  metadata Topocoin TPC "A token for Topocoin ecosystem" ./logo.png <mint>
  metadata --network mainnet --keypair ./authority.json "" "" "" "" <mint>`,
		Args:          cobra.MaximumNArgs(5),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mint := argOrDefault(args, 4, "")
			if mint == "" {
				fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
				return errMissingMint
			}

			imagePath := argOrDefault(args, 3, defaultImagePath)
			image, err := readImage(imagePath, opts.contentType)
			if err != nil {
				return err
			}

			req := metadata.Request{
				Name:        argOrDefault(args, 0, defaultName),
				Symbol:      argOrDefault(args, 1, defaultSymbol),
				Description: argOrDefault(args, 2, defaultDescription),
				Image:       image,
				MintAddress: mint,
			}

			result, err := run(cmd.Context(), opts.apply(cmd, setup.NewConfigFromEnv()), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Image uploaded to: %s\n", result.Image.URI)
			fmt.Fprintf(out, "Metadata uploaded to: %s\n", result.Metadata.URI)
			fmt.Fprintf(out, "Metadata set for mint: %s (signature %s)\n", result.Confirmation.Mint, result.Confirmation.Signature)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.rpcUrl, "rpc-url", "", "Solana RPC endpoint, overrides --network")
	flags.StringVar(&opts.network, "network", "", "Solana cluster: devnet, testnet or mainnet (default devnet)")
	flags.StringVar(&opts.keypair, "keypair", "", "path to the update authority keypair (default ~/.config/solana/id.json)")
	flags.StringVar(&opts.commitment, "commitment", "", "commitment to wait for: processed, confirmed or finalized (default confirmed)")
	flags.StringVar(&opts.timeout, "timeout", "", "how long to wait for confirmation (default 60s)")
	flags.StringVar(&opts.contentType, "content-type", "", "image content type (default detected from the file)")
	flags.BoolVar(&opts.verify, "verify", false, "read the metadata account back after confirmation")

	return cmd
}

// apply overlays the flags that were set on the command line onto config.
func (o *rootOptions) apply(cmd *cobra.Command, config *setup.Config) *setup.Config {
	flags := cmd.Flags()
	if flags.Changed("rpc-url") {
		config.SolanaRpcUrl = o.rpcUrl
	}
	if flags.Changed("network") {
		config.SolanaNetwork = o.network
	}
	if flags.Changed("keypair") {
		config.KeypairPath = o.keypair
	}
	if flags.Changed("commitment") {
		config.Commitment = o.commitment
	}
	if flags.Changed("timeout") {
		config.BindTimeout = o.timeout
	}
	if flags.Changed("verify") {
		config.Verify = o.verify
	}
	return config
}

func argOrDefault(args []string, i int, fallback string) string {
	if i < len(args) {
		if value := strings.TrimSpace(args[i]); value != "" {
			return value
		}
	}
	return fallback
}

func readImage(path string, contentType string) (nft.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nft.Image{}, errs.NewValidationError("imagePath", err.Error())
	}
	if len(data) == 0 {
		return nft.Image{}, errs.NewValidationError("imagePath", fmt.Sprintf("%s is empty", path))
	}

	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	return nft.Image{
		Data:        data,
		Filename:    filepath.Base(path),
		ContentType: contentType,
	}, nil
}

func runPipeline(ctx context.Context, config *setup.Config, req metadata.Request) (*metadata.Result, error) {
	setupResult, err := setup.Setup(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup: %w", err)
	}

	pipelineConfig, err := metadata.NewPipelineConfigFromSetupResult(setupResult)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline config: %w", err)
	}

	pipeline, err := metadata.NewPipeline(pipelineConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return pipeline.Run(ctx, req)
}
