package uploadapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	ImagePath    = "/api/upload-image"
	MetadataPath = "/api/upload-metadata"
	HealthPath   = "/healthz"

	RequestIDHeader = "X-Request-Id"
)

const (
	messageNoFile           = "No file provided"
	messageFileTooLarge     = "File too large"
	messageInvalidMetadata  = "Invalid metadata"
	messageKeysMissing      = "Pinata API keys not configured"
	messageImageFailed      = "Failed to upload image"
	messageMetadataFailed   = "Failed to upload metadata"
	defaultMaxImageBytes    = 32 << 20
	defaultMaxMetadataBytes = 1 << 20
)

// Uploader pins content and returns gateway URIs. *pinata.Client
// implements it.
type Uploader interface {
	Configured() bool
	UploadFile(ctx context.Context, fileName string, contentType string, reader io.Reader) (string, error)
	UploadJSON(ctx context.Context, document any) (string, error)
}

type ServerConfig struct {
	Uploader         Uploader
	MaxImageBytes    int64
	MaxMetadataBytes int64
	Logger           *zerolog.Logger
	// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
	ShutdownTimeout time.Duration
}

type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
}

type uploadResponse struct {
	URI string `json:"uri"`
}

type errorResponse struct {
	Error string `json:"error"`
}
