package services

import (
	"context"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
)

// QRRequest is the body of POST /api/v1/qr/generate
type QRRequest struct {
	Data   string `json:"data"`
	Format string `json:"format"`
	Size   int    `json:"size"`
	Style  string `json:"style,omitempty"`
}

// QRImage is a generated QR code
type QRImage struct {
	*apiclient.Result
	ImageBase64 string
}

// HasImage reports whether the response carried an image payload
func (q *QRImage) HasImage() bool {
	return !q.IsError && q.ImageBase64 != ""
}

// QR wraps the QR code service
type QR struct {
	client *apiclient.Client
}

// NewQR creates a QR wrapper
func NewQR(c *apiclient.Client) *QR {
	return &QR{client: c}
}

// Generate renders a QR code
func (q *QR) Generate(ctx context.Context, req QRRequest) (*QRImage, error) {
	result, err := q.client.Post(ctx, apiPrefix+"/qr/generate", req, nil)
	if err != nil {
		return nil, err
	}
	img := &QRImage{Result: result}
	if !result.IsError {
		img.ImageBase64 = result.String("image_base64")
	}
	return img, nil
}
