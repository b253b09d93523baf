package nft

import (
	"encoding/json"
	"strings"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
)

// AssetMetadata is the off-chain JSON document a token's metadata URI points at.
type AssetMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Build assembles the metadata document. imageURI must come from a finished
// image upload.
func Build(name, symbol, description, imageURI string) (*AssetMetadata, error) {
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	imageURI = strings.TrimSpace(imageURI)

	if name == "" {
		return nil, errs.NewValidationError("name", "is required")
	}
	if symbol == "" {
		return nil, errs.NewValidationError("symbol", "is required")
	}
	if imageURI == "" {
		return nil, errs.NewValidationError("image", "is required")
	}

	return &AssetMetadata{
		Name:        name,
		Symbol:      symbol,
		Description: description,
		Image:       imageURI,
	}, nil
}

func (m *AssetMetadata) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
