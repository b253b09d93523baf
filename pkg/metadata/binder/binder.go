package binder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/ledger"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/wallet"
)

var (
	ErrNotUpdateAuthority  = errors.New("signer is not the metadata update authority")
	ErrImmutable           = errors.New("metadata account is immutable")
	ErrConfirmationTimeout = errors.New("transaction not confirmed before timeout")
	ErrURIMismatch         = errors.New("on-chain uri does not match bound uri")
	ErrMissingWallet       = errors.New("wallet is nil")
	ErrMissingMetadataURI  = errors.New("metadata uri is empty")
)

const (
	defaultPollInterval     = 2 * time.Second
	defaultConfirmTimeout   = 60 * time.Second
	defaultTargetCommitment = ledger.CommitmentConfirmed
)

type Ledger interface {
	ReadMetadata(ctx context.Context, mint common.PublicKey) (*ledger.Metadata, error)
	LatestBlockhash(ctx context.Context) (string, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	SignatureStatus(ctx context.Context, signature string) (*ledger.SignatureStatus, error)
}

type BindRequest struct {
	MintAddress string
	MetadataURI string

	// Name and Symbol replace the on-chain values; empty keeps them.
	Name   string
	Symbol string

	SellerFeeBasisPoints uint16
	Creators             []token_metadata.Creator
}

type Confirmation struct {
	Mint        string
	MetadataURI string
	Signature   string
	Slot        uint64
	Commitment  ledger.Commitment
}

type MetadataBinder struct {
	ledger Ledger

	commitment   ledger.Commitment
	pollInterval time.Duration
	timeout      time.Duration
	verify       bool
}

type MetadataBinderOptions struct {
	Ledger Ledger

	Commitment   ledger.Commitment
	PollInterval time.Duration
	Timeout      time.Duration
	Verify       bool
}

func NewMetadataBinder(opts MetadataBinderOptions) (*MetadataBinder, error) {
	if opts.Ledger == nil {
		return nil, errors.New("ledger is nil")
	}

	if opts.Commitment == "" {
		opts.Commitment = defaultTargetCommitment
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultConfirmTimeout
	}

	return &MetadataBinder{
		ledger:       opts.Ledger,
		commitment:   opts.Commitment,
		pollInterval: opts.PollInterval,
		timeout:      opts.Timeout,
		verify:       opts.Verify,
	}, nil
}

// Bind points the mint's metadata account at req.MetadataURI and blocks until
// the transaction reaches the configured commitment. Every check that can
// fail without the ledger's help runs before the transaction is submitted.
func (b *MetadataBinder) Bind(ctx context.Context, req BindRequest, signer *wallet.Wallet) (*Confirmation, error) {
	mint, err := ledger.ParseAddress(req.MintAddress)
	if err != nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageMint, err)
	}
	if req.MetadataURI == "" {
		return nil, errs.NewBindError(req.MintAddress, errs.StageMint, ErrMissingMetadataURI)
	}
	if err := ledger.CheckDataLengths(req.Name, req.Symbol, req.MetadataURI); err != nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageMint, err)
	}
	if signer == nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageCredential, ErrMissingWallet)
	}

	current, err := b.ledger.ReadMetadata(ctx, mint)
	if err != nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageRead, err)
	}

	if current.UpdateAuthority != signer.Address() {
		return nil, errs.NewBindError(req.MintAddress, errs.StageAuthority,
			fmt.Errorf("%w: authority %s, signer %s", ErrNotUpdateAuthority, current.UpdateAuthority.ToBase58(), signer.Address().ToBase58()))
	}
	if !current.IsMutable {
		return nil, errs.NewBindError(req.MintAddress, errs.StageAuthority, ErrImmutable)
	}

	blockhash, err := b.ledger.LatestBlockhash(ctx)
	if err != nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageBlockhash, err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{signer.Account()},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        signer.Address(),
			RecentBlockhash: blockhash,
			Instructions: []types.Instruction{
				updateInstruction(current, req, signer.Address()),
			},
		}),
	})
	if err != nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageSign, err)
	}

	signature, err := b.ledger.SendTransaction(ctx, tx)
	if err != nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageSubmit, err)
	}

	slog.Info("submitted metadata update", "mint", req.MintAddress, "signature", signature, "uri", req.MetadataURI)

	status, err := b.waitForConfirmation(ctx, signature)
	if err != nil {
		return nil, errs.NewBindError(req.MintAddress, errs.StageConfirm, err)
	}

	slog.Info("metadata update confirmed", "mint", req.MintAddress, "signature", signature, "slot", status.Slot, "commitment", status.Commitment)

	if b.verify {
		if err := b.verifyURI(ctx, mint, req.MetadataURI); err != nil {
			return nil, errs.NewBindError(req.MintAddress, errs.StageVerify, err)
		}
	}

	return &Confirmation{
		Mint:        req.MintAddress,
		MetadataURI: req.MetadataURI,
		Signature:   signature,
		Slot:        status.Slot,
		Commitment:  status.Commitment,
	}, nil
}

// updateInstruction rewrites the whole data record, so the collection and uses
// currently on chain are carried over unchanged.
func updateInstruction(current *ledger.Metadata, req BindRequest, authority common.PublicKey) types.Instruction {
	name := req.Name
	if name == "" {
		name = current.Name
	}
	symbol := req.Symbol
	if symbol == "" {
		symbol = current.Symbol
	}

	var creators *[]token_metadata.Creator
	if len(req.Creators) > 0 {
		creators = &req.Creators
	}

	return token_metadata.UpdateMetadataAccountV2(token_metadata.UpdateMetadataAccountV2Param{
		MetadataAccount: current.Address,
		UpdateAuthority: authority,
		Data: &token_metadata.DataV2{
			Name:                 name,
			Symbol:               symbol,
			Uri:                  req.MetadataURI,
			SellerFeeBasisPoints: req.SellerFeeBasisPoints,
			Creators:             creators,
			Collection:           current.Collection,
			Uses:                 current.Uses,
		},
	})
}

func (b *MetadataBinder) waitForConfirmation(ctx context.Context, signature string) (*ledger.SignatureStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		status, err := b.ledger.SignatureStatus(ctx, signature)
		switch {
		case err != nil:
			// Transient RPC failures are retried until the deadline.
			slog.Debug("failed to get signature status", "signature", signature, "error", err)
		case status == nil:
			slog.Debug("signature not yet seen", "signature", signature)
		case status.Err != nil:
			return nil, status.Err
		case status.Commitment.Reached(b.commitment):
			return status, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s after %s", ErrConfirmationTimeout, signature, b.timeout)
			}
			return nil, ctx.Err()
		}
	}
}

func (b *MetadataBinder) verifyURI(ctx context.Context, mint common.PublicKey, uri string) error {
	metadata, err := b.ledger.ReadMetadata(ctx, mint)
	if err != nil {
		return err
	}
	if metadata.URI != uri {
		return fmt.Errorf("%w: got %q, want %q", ErrURIMismatch, metadata.URI, uri)
	}
	return nil
}
