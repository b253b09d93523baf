package filestorage

import "context"

const IpfsGateway = "https://ipfs.io/ipfs/"

// Uploader stores raw bytes on IPFS and returns where they can be resolved.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string, filename string) (UploadResult, error)
}

type UploadResult struct {
	ContentID string
	URI       string
}

func NewUploadResult(contentID string) UploadResult {
	return UploadResult{
		ContentID: contentID,
		URI:       GatewayURI(contentID),
	}
}

// IPFSURI returns the protocol form of the locator, e.g. ipfs://bafy...
func (r UploadResult) IPFSURI() string {
	return "ipfs://" + r.ContentID
}

func GatewayURI(contentID string) string {
	return IpfsGateway + contentID
}
