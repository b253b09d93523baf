package filestorage

import (
	"context"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/NethermindEth/topocoin-metadata/pkg/metadata/errs"
)

// MemoryUploader keeps uploads in process. Content ids are CIDv1 over the raw
// sha2-256 of the bytes, so identical content always maps to the same id.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads int
}

var _ Uploader = (*MemoryUploader)(nil)

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{
		objects: make(map[string][]byte),
	}
}

func (u *MemoryUploader) Upload(ctx context.Context, data []byte, contentType string, filename string) (UploadResult, error) {
	if len(data) == 0 {
		return UploadResult{}, errs.NewUploadError(filename, errs.ErrEmptyContent)
	}
	if err := ctx.Err(); err != nil {
		return UploadResult{}, errs.NewUploadError(filename, err)
	}

	contentID, err := ContentID(data)
	if err != nil {
		return UploadResult{}, errs.NewUploadError(filename, err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.objects[contentID] = append([]byte(nil), data...)
	u.uploads++

	return NewUploadResult(contentID), nil
}

// Get returns the bytes stored under contentID.
func (u *MemoryUploader) Get(contentID string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	data, ok := u.objects[contentID]
	return data, ok
}

// Uploads counts calls to Upload that stored content.
func (u *MemoryUploader) Uploads() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.uploads
}

func ContentID(data []byte) (string, error) {
	hash, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return cid.NewCidV1(cid.Raw, hash).String(), nil
}
