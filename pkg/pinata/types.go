package pinata

import (
	"net/http"
)

const (
	DefaultBaseURL    = "https://api.pinata.cloud"
	DefaultGatewayURL = "https://gateway.pinata.cloud/ipfs"
)

type Config struct {
	APIKey     string
	SecretKey  string
	BaseURL    string
	GatewayURL string
	HTTPClient *http.Client
}

// PinResponse is the body Pinata returns for a successful pin.
type PinResponse struct {
	IpfsHash    string `json:"IpfsHash"`
	PinSize     int64  `json:"PinSize"`
	Timestamp   string `json:"Timestamp"`
	IsDuplicate bool   `json:"isDuplicate,omitempty"`
}

// PinOptions names the pin in the Pinata dashboard.
type PinOptions struct {
	Name      string
	KeyValues map[string]string
}

type pinataMetadata struct {
	Name      string            `json:"name,omitempty"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

type pinJSONRequest struct {
	PinataContent  any             `json:"pinataContent"`
	PinataMetadata *pinataMetadata `json:"pinataMetadata,omitempty"`
}
