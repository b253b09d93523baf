package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/binder"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/filestorage"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/ledger"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/nft"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/setup"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/wallet"
)

type Binder interface {
	Bind(ctx context.Context, req binder.BindRequest, signer *wallet.Wallet) (*binder.Confirmation, error)
}

// Observer is told about every state change of a run, in order.
type Observer func(from, to State)

type Pipeline struct {
	nftUploader *nft.NftUploader
	binder      Binder
	credential  wallet.CredentialProvider
	observer    Observer

	sellerFeeBasisPoints uint16
}

type PipelineConfig struct {
	Uploader   filestorage.Uploader
	Binder     Binder
	Credential wallet.CredentialProvider
	Observer   Observer

	SellerFeeBasisPoints uint16
}

type Request struct {
	Name        string
	Symbol      string
	Description string
	Image       nft.Image
	MintAddress string
}

type Result struct {
	Image        filestorage.UploadResult
	Metadata     filestorage.UploadResult
	Document     *nft.AssetMetadata
	Confirmation *binder.Confirmation
}

func NewPipeline(config *PipelineConfig) (*Pipeline, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	if config.Uploader == nil {
		return nil, errors.New("uploader is nil")
	}
	if config.Binder == nil {
		return nil, errors.New("binder is nil")
	}
	if config.Credential == nil {
		return nil, errors.New("credential provider is nil")
	}

	return &Pipeline{
		nftUploader:          nft.NewNftUploader(config.Uploader),
		binder:               config.Binder,
		credential:           config.Credential,
		observer:             config.Observer,
		sellerFeeBasisPoints: config.SellerFeeBasisPoints,
	}, nil
}

func NewPipelineConfigFromSetupResult(setupResult *setup.SetupResult) (*PipelineConfig, error) {
	if setupResult == nil {
		return nil, errors.New("setup result is nil")
	}

	metadataBinder, err := binder.NewMetadataBinder(binder.MetadataBinderOptions{
		Ledger:       ledger.NewClient(setupResult.RpcUrl),
		Commitment:   setupResult.Commitment,
		PollInterval: setupResult.PollInterval,
		Timeout:      setupResult.BindTimeout,
		Verify:       setupResult.Verify,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create binder: %w", err)
	}

	return &PipelineConfig{
		Uploader:   filestorage.NewPinataUploader(setupResult.PinataJwtKey),
		Binder:     metadataBinder,
		Credential: setupResult.Credential,
	}, nil
}

// Run uploads the image, then the metadata document that points at it, then
// binds the document to the mint. Every run starts from Idle and stops at the
// first error; nothing after the failing step executes.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	r := &run{state: StateIdle, observer: p.observer}

	result, err := p.run(ctx, r, req)
	if err != nil {
		slog.Error("metadata pipeline failed", "state", r.state, "error", err)
		r.transition(StateFailed)
		return nil, err
	}

	r.transition(StateBound)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, r *run, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	signer, err := p.credential.Load(ctx)
	if err != nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageCredential, err)
	}

	r.transition(StateImageUploading)
	image, err := p.nftUploader.UploadImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}
	r.transition(StateImageUploaded)
	slog.Info("uploaded image", "cid", image.ContentID, "uri", image.URI)

	document, err := nft.Build(req.Name, req.Symbol, req.Description, image.URI)
	if err != nil {
		return nil, err
	}

	r.transition(StateMetadataUploading)
	metadata, err := p.nftUploader.UploadMetadata(ctx, document)
	if err != nil {
		return nil, err
	}
	r.transition(StateMetadataUploaded)
	slog.Info("uploaded metadata", "cid", metadata.ContentID, "uri", metadata.URI)

	r.transition(StateBinding)
	confirmation, err := p.binder.Bind(ctx, binder.BindRequest{
		MintAddress:          req.MintAddress,
		MetadataURI:          metadata.URI,
		Name:                 document.Name,
		Symbol:               document.Symbol,
		SellerFeeBasisPoints: p.sellerFeeBasisPoints,
	}, signer)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:        image,
		Metadata:     metadata,
		Document:     document,
		Confirmation: confirmation,
	}, nil
}

func validateRequest(req Request) error {
	if _, err := nft.Build(req.Name, req.Symbol, req.Description, "-"); err != nil {
		return err
	}
	if err := checkLength("name", req.Name, ledger.MaxNameLength); err != nil {
		return err
	}
	if err := checkLength("symbol", req.Symbol, ledger.MaxSymbolLength); err != nil {
		return err
	}
	if len(req.Image.Data) == 0 {
		return errs.NewValidationError("image", "is empty")
	}
	if _, err := ledger.ParseAddress(req.MintAddress); err != nil {
		return errs.NewValidationError("mint", err.Error())
	}
	return nil
}

func checkLength(field, value string, limit int) error {
	if n := len(strings.TrimSpace(value)); n > limit {
		return errs.NewValidationError(field, fmt.Sprintf("is %d bytes, longer than %d", n, limit))
	}
	return nil
}

type run struct {
	state    State
	observer Observer
}

func (r *run) transition(to State) {
	from := r.state
	if !from.canTransition(to) {
		panic(fmt.Sprintf("invalid state transition %s -> %s", from, to))
	}

	r.state = to
	slog.Debug("state transition", "from", from, "to", to)

	if r.observer != nil {
		r.observer(from, to)
	}
}
