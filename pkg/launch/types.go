package launch

import (
	"context"
	"io"

	"github.com/ALEX-SHR-SUDO/meta/pkg/metadata"
	"github.com/ALEX-SHR-SUDO/meta/pkg/tokenmint"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// Uploader pins content and returns gateway URIs. Both *pinata.Client and
// *uploadapi.Client implement it.
type Uploader interface {
	UploadFile(ctx context.Context, fileName string, contentType string, reader io.Reader) (string, error)
	UploadJSON(ctx context.Context, document any) (string, error)
}

// TokenCreator is implemented by *tokenmint.Client.
type TokenCreator interface {
	CreateToken(ctx context.Context, request tokenmint.CreateTokenRequest) (tokenmint.CreateTokenResult, error)
}

type Config struct {
	Uploader Uploader
	Creator  TokenCreator
	Logger   *zerolog.Logger
}

type Image struct {
	FileName    string
	ContentType string
	Content     []byte
}

type Request struct {
	Descriptor tokenmint.AssetDescriptor
	// Image is pinned when set. ImageURI is used as is otherwise.
	Image    *Image
	ImageURI string
	Payer    solana.PublicKey
	Signer   tokenmint.Signer
}

type Result struct {
	tokenmint.CreateTokenResult
	ImageURI string            `json:"imageUri,omitempty"`
	Metadata metadata.Document `json:"metadata"`
}
