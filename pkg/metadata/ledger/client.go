package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
)

var ErrMetadataNotFound = errors.New("metadata account not found")

// Metadata is the decoded Token Metadata account of a mint.
type Metadata struct {
	Address              common.PublicKey
	Mint                 common.PublicKey
	UpdateAuthority      common.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []token_metadata.Creator
	Collection           *token_metadata.Collection
	Uses                 *token_metadata.Uses
	IsMutable            bool
}

type SignatureStatus struct {
	Slot       uint64
	Commitment Commitment
	Err        error
}

// Client talks to a Solana JSON-RPC endpoint.
type Client struct {
	endpoint string
	rpc      *client.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		rpc:      client.NewClient(endpoint),
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) ReadMetadata(ctx context.Context, mint common.PublicKey) (*Metadata, error) {
	address, err := MetadataAddress(mint)
	if err != nil {
		return nil, err
	}

	info, err := c.rpc.GetAccountInfo(ctx, address.ToBase58())
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata account %s: %w", address.ToBase58(), err)
	}
	if len(info.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, address.ToBase58())
	}
	if info.Owner != common.MetaplexTokenMetaProgramID {
		return nil, fmt.Errorf("account %s is not owned by the token metadata program", address.ToBase58())
	}

	decoded, err := token_metadata.MetadataDeserialize(info.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode metadata account: %w", err)
	}

	metadata := &Metadata{
		Address:              address,
		Mint:                 decoded.Mint,
		UpdateAuthority:      decoded.UpdateAuthority,
		Name:                 decoded.Data.Name,
		Symbol:               decoded.Data.Symbol,
		URI:                  decoded.Data.Uri,
		SellerFeeBasisPoints: decoded.Data.SellerFeeBasisPoints,
		Collection:           decoded.Collection,
		Uses:                 decoded.Uses,
		IsMutable:            decoded.IsMutable,
	}
	if decoded.Data.Creators != nil {
		metadata.Creators = *decoded.Data.Creators
	}

	return metadata, nil
}

func (c *Client) LatestBlockhash(ctx context.Context) (string, error) {
	latest, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return latest.Blockhash, nil
}

func (c *Client) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	signature, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return signature, nil
}

// SignatureStatus returns nil when the cluster has not seen the signature yet.
func (c *Client) SignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	status, err := c.rpc.GetSignatureStatus(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}
	if status == nil {
		return nil, nil
	}

	result := &SignatureStatus{
		Slot: status.Slot,
	}
	if status.ConfirmationStatus != nil {
		result.Commitment = Commitment(*status.ConfirmationStatus)
	}
	if status.Err != nil {
		result.Err = fmt.Errorf("transaction failed: %v", status.Err)
	}

	return result, nil
}
