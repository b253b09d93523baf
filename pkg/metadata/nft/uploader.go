package nft

import (
	"context"
	"fmt"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/filestorage"
)

const (
	MetadataFilename    = "metadata.json"
	MetadataContentType = "application/json"
)

type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

type NftUploader struct {
	uploader filestorage.Uploader
}

func NewNftUploader(uploader filestorage.Uploader) *NftUploader {
	return &NftUploader{
		uploader: uploader,
	}
}

func (u *NftUploader) UploadImage(ctx context.Context, image Image) (filestorage.UploadResult, error) {
	result, err := u.uploader.Upload(ctx, image.Data, image.ContentType, image.Filename)
	if err != nil {
		return filestorage.UploadResult{}, fmt.Errorf("failed to upload image to ipfs: %w", err)
	}

	return result, nil
}

func (u *NftUploader) UploadMetadata(ctx context.Context, metadata *AssetMetadata) (filestorage.UploadResult, error) {
	data, err := metadata.MarshalIndent()
	if err != nil {
		return filestorage.UploadResult{}, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	result, err := u.uploader.Upload(ctx, data, MetadataContentType, MetadataFilename)
	if err != nil {
		return filestorage.UploadResult{}, fmt.Errorf("failed to upload metadata to ipfs: %w", err)
	}

	return result, nil
}
