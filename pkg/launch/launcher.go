package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ALEX-SHR-SUDO/meta/pkg/metadata"
	"github.com/ALEX-SHR-SUDO/meta/pkg/tokenmint"
	"github.com/rs/zerolog"
)

type Launcher struct {
	uploader Uploader
	creator  TokenCreator
	logger   zerolog.Logger
}

// NewLauncher creates a new Launcher.
func NewLauncher(config Config) (*Launcher, error) {
	if config.Uploader == nil {
		return nil, errors.New("uploader is required")
	}
	if config.Creator == nil {
		return nil, errors.New("token creator is required")
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Launcher{uploader: config.Uploader, creator: config.Creator, logger: logger}, nil
}

// Launch uploads the image and metadata and creates the token. Nothing is
// uploaded when the descriptor is invalid. Uploaded content is not removed
// if token creation fails; the returned error carries the tokenmint stage.
func (l *Launcher) Launch(ctx context.Context, request Request) (Result, error) {
	if err := request.Descriptor.Validate(); err != nil {
		return Result{}, err
	}

	imageURI := strings.TrimSpace(request.ImageURI)
	imageType := ""
	if request.Image != nil {
		if len(request.Image.Content) == 0 {
			return Result{}, fmt.Errorf("image content is empty")
		}
		imageType = request.Image.ContentType
		if imageType == "" {
			imageType = http.DetectContentType(request.Image.Content)
		}
		uploaded, err := l.uploader.UploadFile(ctx, request.Image.FileName, imageType, bytes.NewReader(request.Image.Content))
		if err != nil {
			return Result{}, err
		}
		imageURI = uploaded
		l.logger.Info().Str("uri", imageURI).Msg("image uploaded")
	}

	document := metadata.New(request.Descriptor, imageURI, imageType)
	if err := document.Validate(); err != nil {
		return Result{}, err
	}
	metadataURI, err := l.uploader.UploadJSON(ctx, document)
	if err != nil {
		return Result{}, err
	}
	l.logger.Info().Str("uri", metadataURI).Msg("metadata uploaded")

	descriptor := request.Descriptor
	descriptor.URI = metadataURI
	created, err := l.creator.CreateToken(ctx, tokenmint.CreateTokenRequest{
		Descriptor: descriptor,
		Payer:      request.Payer,
		Signer:     request.Signer,
	})
	if err != nil {
		return Result{}, err
	}
	l.logger.Info().
		Str("mint", created.Mint.String()).
		Str("signature", created.Signature).
		Str("metadata_uri", metadataURI).
		Msg("token launched")

	return Result{
		CreateTokenResult: created,
		ImageURI:          imageURI,
		Metadata:          document,
	}, nil
}

// LoadImage reads an image file and infers its content type from the
// extension, falling back to content sniffing.
func LoadImage(path string) (*Image, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("image %s is empty", path)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	return &Image{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Content:     content,
	}, nil
}
