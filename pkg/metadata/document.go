package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ALEX-SHR-SUDO/meta/pkg/tokenmint"
)

// New builds a document for descriptor. When imageURI is set it is listed
// as the image and as the single image file of the token.
func New(descriptor tokenmint.AssetDescriptor, imageURI string, imageType string) Document {
	document := Document{
		Name:        strings.TrimSpace(descriptor.Name),
		Symbol:      strings.TrimSpace(descriptor.Symbol),
		Description: strings.TrimSpace(descriptor.Description),
		Image:       strings.TrimSpace(imageURI),
	}
	if document.Image != "" {
		document.Properties = &Properties{
			Category: "image",
			Files:    []File{{URI: document.Image, Type: strings.TrimSpace(imageType)}},
		}
	}
	return document
}

// Validate checks the fields every consumer expects.
func (d Document) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("metadata name is required")
	}
	if strings.TrimSpace(d.Symbol) == "" {
		return fmt.Errorf("metadata symbol is required")
	}
	if d.Image != "" {
		if err := validateURI(d.Image); err != nil {
			return fmt.Errorf("invalid metadata image: %w", err)
		}
	}
	if d.ExternalURL != "" {
		if err := validateURI(d.ExternalURL); err != nil {
			return fmt.Errorf("invalid metadata external url: %w", err)
		}
	}
	return nil
}

// Marshal validates the document and encodes it as JSON.
func (d Document) Marshal() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return encoded, nil
}

// Parse decodes a metadata document, rejecting unknown top-level fields.
func Parse(content []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields()

	var document Document
	if err := decoder.Decode(&document); err != nil {
		return Document{}, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if err := document.Validate(); err != nil {
		return Document{}, err
	}
	return document, nil
}

func validateURI(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch parsed.Scheme {
	case "https", "http", "ipfs", "ar":
	default:
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" && parsed.Opaque == "" {
		return fmt.Errorf("uri %q has no location", raw)
	}
	return nil
}
