package binder_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/binder"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/ledger"
	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/wallet"
)

const metadataURI = "https://ipfs.io/ipfs/bafkreimetadata"

var recentBlockhash = types.NewAccount().PublicKey.ToBase58()

// fakeLedger keeps one metadata account in memory and applies the data carried
// by submitted update instructions.
type fakeLedger struct {
	mu sync.Mutex

	metadata *ledger.Metadata
	readErr  error
	sendErr  error

	// statuses are returned in order; the last one repeats.
	statuses []*ledger.SignatureStatus
	polls    int

	sent []types.Transaction
}

func (f *fakeLedger) ReadMetadata(ctx context.Context, mint common.PublicKey) (*ledger.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.metadata == nil || f.metadata.Mint != mint {
		return nil, ledger.ErrMetadataNotFound
	}
	copied := *f.metadata
	return &copied, nil
}

func (f *fakeLedger) LatestBlockhash(ctx context.Context) (string, error) {
	return recentBlockhash, nil
}

func (f *fakeLedger) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, tx)

	update, err := decodeUpdate(tx.Message.Instructions[0].Data)
	if err != nil {
		return "", err
	}
	if update.Data != nil && f.metadata != nil {
		f.metadata.Name = update.Data.Name
		f.metadata.Symbol = update.Data.Symbol
		f.metadata.URI = update.Data.Uri
		f.metadata.Collection = update.Data.Collection
		f.metadata.Uses = update.Data.Uses
	}
	return "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW", nil
}

func (f *fakeLedger) SignatureStatus(ctx context.Context, signature string) (*ledger.SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.polls++
	if len(f.statuses) == 0 {
		return nil, nil
	}
	idx := f.polls - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return f.statuses[idx], nil
}

func (f *fakeLedger) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// updateArgs mirrors the borsh layout of UpdateMetadataAccountV2.
type updateArgs struct {
	Instruction         token_metadata.Instruction
	Data                *token_metadata.DataV2
	NewUpdateAuthority  *common.PublicKey
	PrimarySaleHappened *bool
	IsMutable           *bool
}

func decodeUpdate(data []byte) (updateArgs, error) {
	var args updateArgs
	err := borsh.Deserialize(&args, data)
	return args, err
}

func sentUpdate(t *testing.T, f *fixture) updateArgs {
	require.Equal(t, 1, f.ledger.sentCount())
	args, err := decodeUpdate(f.ledger.sent[0].Message.Instructions[0].Data)
	require.NoError(t, err)
	require.Equal(t, token_metadata.InstructionUpdateMetadataAccountV2, args.Instruction)
	require.NotNil(t, args.Data)
	return args
}

type fixture struct {
	ledger *fakeLedger
	signer *wallet.Wallet
	mint   common.PublicKey
}

func newFixture(t *testing.T) *fixture {
	account := types.NewAccount()
	signer, err := wallet.NewWallet(account.PrivateKey)
	require.NoError(t, err)

	mint := types.NewAccount().PublicKey
	metadataAddress, err := ledger.MetadataAddress(mint)
	require.NoError(t, err)

	return &fixture{
		ledger: &fakeLedger{
			metadata: &ledger.Metadata{
				Address:         metadataAddress,
				Mint:            mint,
				UpdateAuthority: signer.Address(),
				Name:            "Topocoin",
				Symbol:          "TPC",
				URI:             "https://example.com/old.json",
				IsMutable:       true,
			},
			statuses: []*ledger.SignatureStatus{
				nil,
				{Slot: 10, Commitment: ledger.CommitmentProcessed},
				{Slot: 11, Commitment: ledger.CommitmentConfirmed},
			},
		},
		signer: signer,
		mint:   mint,
	}
}

func (f *fixture) binder(t *testing.T, opts ...func(*binder.MetadataBinderOptions)) *binder.MetadataBinder {
	options := binder.MetadataBinderOptions{
		Ledger:       f.ledger,
		PollInterval: time.Millisecond,
		Timeout:      time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	b, err := binder.NewMetadataBinder(options)
	require.NoError(t, err)
	return b
}

func TestNewMetadataBinder(t *testing.T) {
	_, err := binder.NewMetadataBinder(binder.MetadataBinderOptions{})
	assert.Error(t, err)

	b, err := binder.NewMetadataBinder(binder.MetadataBinderOptions{Ledger: &fakeLedger{}})
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestMetadataBinder_Bind(t *testing.T) {
	f := newFixture(t)
	b := f.binder(t, func(opts *binder.MetadataBinderOptions) {
		opts.Verify = true
	})

	confirmation, err := b.Bind(context.Background(), binder.BindRequest{
		MintAddress: f.mint.ToBase58(),
		MetadataURI: metadataURI,
	}, f.signer)
	require.NoError(t, err)

	assert.Equal(t, f.mint.ToBase58(), confirmation.Mint)
	assert.Equal(t, metadataURI, confirmation.MetadataURI)
	assert.NotEmpty(t, confirmation.Signature)
	assert.Equal(t, uint64(11), confirmation.Slot)
	assert.Equal(t, ledger.CommitmentConfirmed, confirmation.Commitment)

	require.Equal(t, 1, f.ledger.sentCount())
	tx := f.ledger.sent[0]
	assert.Equal(t, f.signer.Address(), tx.Message.Accounts[0], "signer pays the fee")
	require.Len(t, tx.Signatures, 1)

	update := sentUpdate(t, f)
	assert.Equal(t, "Topocoin", update.Data.Name, "on-chain name is kept")
	assert.Equal(t, "TPC", update.Data.Symbol, "on-chain symbol is kept")
	assert.Equal(t, metadataURI, update.Data.Uri)
	assert.Nil(t, update.Data.Creators)
	assert.Zero(t, update.Data.SellerFeeBasisPoints)
	assert.Nil(t, update.NewUpdateAuthority)
	assert.Nil(t, update.IsMutable)

	onchain, err := f.ledger.ReadMetadata(context.Background(), f.mint)
	require.NoError(t, err)
	assert.Equal(t, metadataURI, onchain.URI)
}

func TestMetadataBinder_BindOverridesNameAndSymbol(t *testing.T) {
	f := newFixture(t)

	_, err := f.binder(t).Bind(context.Background(), binder.BindRequest{
		MintAddress: f.mint.ToBase58(),
		MetadataURI: metadataURI,
		Name:        "Renamed",
		Symbol:      "RNM",
	}, f.signer)
	require.NoError(t, err)

	update := sentUpdate(t, f)
	assert.Equal(t, "Renamed", update.Data.Name)
	assert.Equal(t, "RNM", update.Data.Symbol)
}

func TestMetadataBinder_BindKeepsCollectionAndUses(t *testing.T) {
	f := newFixture(t)
	collection := &token_metadata.Collection{
		Verified: true,
		Key:      types.NewAccount().PublicKey,
	}
	uses := &token_metadata.Uses{
		UseMethod: token_metadata.Multiple,
		Remaining: 3,
		Total:     5,
	}
	f.ledger.metadata.Collection = collection
	f.ledger.metadata.Uses = uses

	_, err := f.binder(t).Bind(context.Background(), binder.BindRequest{
		MintAddress: f.mint.ToBase58(),
		MetadataURI: metadataURI,
	}, f.signer)
	require.NoError(t, err)

	update := sentUpdate(t, f)
	require.NotNil(t, update.Data.Collection)
	assert.Equal(t, *collection, *update.Data.Collection)
	require.NotNil(t, update.Data.Uses)
	assert.Equal(t, *uses, *update.Data.Uses)

	onchain, err := f.ledger.ReadMetadata(context.Background(), f.mint)
	require.NoError(t, err)
	assert.Equal(t, metadataURI, onchain.URI)
	assert.Equal(t, collection.Key, onchain.Collection.Key)
}

func TestMetadataBinder_BindFailsBeforeSubmit(t *testing.T) {
	tests := []struct {
		name      string
		mint      func(f *fixture) string
		uri       string
		tokenName string
		symbol    string
		signer    func(t *testing.T, f *fixture) *wallet.Wallet
		setup     func(f *fixture)
		wantStage string
		wantErr   error
	}{
		{
			name:      "malformed mint",
			mint:      func(f *fixture) string { return "Mint111" },
			wantStage: errs.StageMint,
		},
		{
			name:      "empty uri",
			uri:       "-",
			wantStage: errs.StageMint,
			wantErr:   binder.ErrMissingMetadataURI,
		},
		{
			name:      "uri too long",
			uri:       "https://ipfs.io/ipfs/" + strings.Repeat("b", ledger.MaxURILength),
			wantStage: errs.StageMint,
			wantErr:   ledger.ErrFieldTooLong,
		},
		{
			name:      "name too long",
			tokenName: strings.Repeat("T", ledger.MaxNameLength+1),
			wantStage: errs.StageMint,
			wantErr:   ledger.ErrFieldTooLong,
		},
		{
			name:      "symbol too long",
			symbol:    "TOPOCOINTPC",
			wantStage: errs.StageMint,
			wantErr:   ledger.ErrFieldTooLong,
		},
		{
			name:      "nil wallet",
			signer:    func(t *testing.T, f *fixture) *wallet.Wallet { return nil },
			wantStage: errs.StageCredential,
			wantErr:   binder.ErrMissingWallet,
		},
		{
			name: "signer is not the update authority",
			signer: func(t *testing.T, f *fixture) *wallet.Wallet {
				other, err := wallet.NewWallet(types.NewAccount().PrivateKey)
				require.NoError(t, err)
				return other
			},
			wantStage: errs.StageAuthority,
			wantErr:   binder.ErrNotUpdateAuthority,
		},
		{
			name:      "immutable metadata",
			setup:     func(f *fixture) { f.ledger.metadata.IsMutable = false },
			wantStage: errs.StageAuthority,
			wantErr:   binder.ErrImmutable,
		},
		{
			name:      "metadata account missing",
			mint:      func(f *fixture) string { return types.NewAccount().PublicKey.ToBase58() },
			wantStage: errs.StageRead,
			wantErr:   ledger.ErrMetadataNotFound,
		},
		{
			name:      "endpoint unreachable",
			setup:     func(f *fixture) { f.ledger.readErr = assert.AnError },
			wantStage: errs.StageRead,
			wantErr:   assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			mint := f.mint.ToBase58()
			if tt.mint != nil {
				mint = tt.mint(f)
			}
			uri := metadataURI
			switch tt.uri {
			case "":
			case "-":
				uri = ""
			default:
				uri = tt.uri
			}
			signer := f.signer
			if tt.signer != nil {
				signer = tt.signer(t, f)
			}

			confirmation, err := f.binder(t).Bind(context.Background(), binder.BindRequest{
				MintAddress: mint,
				MetadataURI: uri,
				Name:        tt.tokenName,
				Symbol:      tt.symbol,
			}, signer)
			require.Error(t, err)
			assert.Nil(t, confirmation)

			var bindErr *errs.BindError
			require.ErrorAs(t, err, &bindErr)
			assert.Equal(t, tt.wantStage, bindErr.Stage)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			assert.Equal(t, 0, f.ledger.sentCount(), "no transaction may reach the ledger")
		})
	}
}

func TestMetadataBinder_BindSubmitFailure(t *testing.T) {
	f := newFixture(t)
	f.ledger.sendErr = assert.AnError

	_, err := f.binder(t).Bind(context.Background(), binder.BindRequest{
		MintAddress: f.mint.ToBase58(),
		MetadataURI: metadataURI,
	}, f.signer)

	var bindErr *errs.BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, errs.StageSubmit, bindErr.Stage)
}

func TestMetadataBinder_BindConfirmFailures(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.statuses = []*ledger.SignatureStatus{
			{Slot: 12, Commitment: ledger.CommitmentConfirmed, Err: assert.AnError},
		}

		_, err := f.binder(t).Bind(context.Background(), binder.BindRequest{
			MintAddress: f.mint.ToBase58(),
			MetadataURI: metadataURI,
		}, f.signer)

		var bindErr *errs.BindError
		require.ErrorAs(t, err, &bindErr)
		assert.Equal(t, errs.StageConfirm, bindErr.Stage)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("timeout", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.statuses = []*ledger.SignatureStatus{
			{Slot: 12, Commitment: ledger.CommitmentProcessed},
		}

		b := f.binder(t, func(opts *binder.MetadataBinderOptions) {
			opts.Commitment = ledger.CommitmentFinalized
			opts.Timeout = 20 * time.Millisecond
		})

		_, err := b.Bind(context.Background(), binder.BindRequest{
			MintAddress: f.mint.ToBase58(),
			MetadataURI: metadataURI,
		}, f.signer)

		var bindErr *errs.BindError
		require.ErrorAs(t, err, &bindErr)
		assert.Equal(t, errs.StageConfirm, bindErr.Stage)
		assert.ErrorIs(t, err, binder.ErrConfirmationTimeout)
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.statuses = nil

		ctx, cancel := context.WithCancel(context.Background())
		b := f.binder(t, func(opts *binder.MetadataBinderOptions) {
			opts.PollInterval = 5 * time.Millisecond
		})

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := b.Bind(ctx, binder.BindRequest{
			MintAddress: f.mint.ToBase58(),
			MetadataURI: metadataURI,
		}, f.signer)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMetadataBinder_BindVerifyMismatch(t *testing.T) {
	f := newFixture(t)
	b := f.binder(t, func(opts *binder.MetadataBinderOptions) {
		opts.Verify = true
	})

	// The update instruction carries a non-https uri, so the fake ledger
	// leaves the stored uri untouched.
	_, err := b.Bind(context.Background(), binder.BindRequest{
		MintAddress: f.mint.ToBase58(),
		MetadataURI: "ipfs://bafkreimetadata",
	}, f.signer)

	var bindErr *errs.BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, errs.StageVerify, bindErr.Stage)
	assert.ErrorIs(t, err, binder.ErrURIMismatch)
}
