package filestorage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"
	"github.com/zde37/pinata-go-sdk/pinata"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
)

// pinner pins a file from disk and returns its IPFS hash.
type pinner interface {
	PinFile(filePath string, options *pinata.PinOptions) (string, error)
	UpdateFileMetadata(ipfsHash string, options *pinata.PinMetadataUpdateOptions) error
}

type pinataClient struct {
	client *pinata.Client
}

var _ pinner = (*pinataClient)(nil)

func (c *pinataClient) PinFile(filePath string, options *pinata.PinOptions) (string, error) {
	pinResponse, err := c.client.PinFile(filePath, options)
	if err != nil {
		return "", err
	}
	return pinResponse.IpfsHash, nil
}

func (c *pinataClient) UpdateFileMetadata(ipfsHash string, options *pinata.PinMetadataUpdateOptions) error {
	return c.client.UpdateFileMetadata(ipfsHash, options)
}

type PinataUploader struct {
	jwtKey string

	client pinner
}

var _ Uploader = (*PinataUploader)(nil)

func NewPinataUploader(jwtKey string) *PinataUploader {
	return &PinataUploader{
		jwtKey: jwtKey,
		client: &pinataClient{client: pinata.New(pinata.NewAuthWithJWT(jwtKey))},
	}
}

// Upload pins data under filename. Pinata takes files from disk, so the bytes
// are staged in a private temporary directory for the duration of the call.
// Once pinned, the pin is named and tagged with its content type; a failure
// there is logged and does not fail the upload.
func (u *PinataUploader) Upload(ctx context.Context, data []byte, contentType string, filename string) (UploadResult, error) {
	if u.jwtKey == "" {
		return UploadResult{}, errs.NewUploadError(filename, errs.ErrMissingCredential)
	}
	if len(data) == 0 {
		return UploadResult{}, errs.NewUploadError(filename, errs.ErrEmptyContent)
	}
	if err := ctx.Err(); err != nil {
		return UploadResult{}, errs.NewUploadError(filename, err)
	}

	dir, err := os.MkdirTemp("", "pinata-upload-*")
	if err != nil {
		return UploadResult{}, errs.NewUploadError(filename, fmt.Errorf("failed to create staging dir: %w", err))
	}
	defer os.RemoveAll(dir)

	stagedPath := filepath.Join(dir, stagedName(filename))
	if err := os.WriteFile(stagedPath, data, 0600); err != nil {
		return UploadResult{}, errs.NewUploadError(filename, fmt.Errorf("failed to stage file: %w", err))
	}

	ipfsHash, err := u.client.PinFile(stagedPath, nil)
	if err != nil {
		return UploadResult{}, errs.NewUploadError(filename, fmt.Errorf("failed to upload file to pinata: %w", err))
	}

	contentID, err := parseContentID(ipfsHash)
	if err != nil {
		return UploadResult{}, errs.NewUploadError(filename, err)
	}

	if err := u.client.UpdateFileMetadata(ipfsHash, pinMetadata(filename, contentType)); err != nil {
		slog.Warn("failed to tag pin", "cid", contentID, "error", err)
	}

	slog.Info("pinned file", "filename", filename, "contentType", contentType, "cid", contentID, "size", len(data))

	return NewUploadResult(contentID), nil
}

func pinMetadata(filename string, contentType string) *pinata.PinMetadataUpdateOptions {
	options := &pinata.PinMetadataUpdateOptions{
		Name: stagedName(filename),
	}
	if contentType != "" {
		options.KeyValues = map[string]interface{}{
			"contentType": contentType,
		}
	}
	return options
}

func stagedName(filename string) string {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload"
	}
	return name
}

func parseContentID(hash string) (string, error) {
	c, err := cid.Decode(hash)
	if err != nil {
		return "", fmt.Errorf("invalid content id %q: %w", hash, err)
	}
	return c.String(), nil
}
