package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	gatewayURL string
	httpClient *http.Client
}

// NewClient creates a new Client. Missing credentials are reported by the
// upload calls, not here, so a server can start before keys are configured.
func NewClient(config Config) (*Client, error) {
	baseURL, err := normalizeURL(config.BaseURL, DefaultBaseURL, "pinata base URL")
	if err != nil {
		return nil, err
	}
	gatewayURL, err := normalizeURL(config.GatewayURL, DefaultGatewayURL, "pinata gateway URL")
	if err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}

	return &Client{
		apiKey:     strings.TrimSpace(config.APIKey),
		secretKey:  strings.TrimSpace(config.SecretKey),
		baseURL:    baseURL,
		gatewayURL: gatewayURL,
		httpClient: httpClient,
	}, nil
}

// Configured reports whether both API keys are set.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.secretKey != ""
}

// GatewayURI returns the public URI of a pinned content hash.
func (c *Client) GatewayURI(ipfsHash string) string {
	return c.gatewayURL + "/" + strings.TrimSpace(ipfsHash)
}

// PinFile pins the content of reader under fileName.
func (c *Client) PinFile(
	ctx context.Context,
	fileName string,
	contentType string,
	reader io.Reader,
	options PinOptions,
) (PinResponse, error) {
	if !c.Configured() {
		return PinResponse{}, ErrCredentialsMissing
	}
	if reader == nil {
		return PinResponse{}, fmt.Errorf("file content is required")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		fileName = "file"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if strings.TrimSpace(contentType) != "" {
		header.Set("Content-Type", contentType)
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return PinResponse{}, fmt.Errorf("failed to create multipart file: %w", err)
	}
	if _, err := io.Copy(part, reader); err != nil {
		return PinResponse{}, fmt.Errorf("failed to read file content: %w", err)
	}
	if metadata := options.metadata(); metadata != nil {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return PinResponse{}, fmt.Errorf("failed to encode pin metadata: %w", err)
		}
		if err := writer.WriteField("pinataMetadata", string(encoded)); err != nil {
			return PinResponse{}, fmt.Errorf("failed to write pin metadata: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return PinResponse{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return c.pin(ctx, "pinFileToIPFS", writer.FormDataContentType(), &body)
}

// PinJSON pins a JSON document.
func (c *Client) PinJSON(ctx context.Context, document any, options PinOptions) (PinResponse, error) {
	if !c.Configured() {
		return PinResponse{}, ErrCredentialsMissing
	}
	if document == nil {
		return PinResponse{}, fmt.Errorf("document is required")
	}

	payload, err := json.Marshal(pinJSONRequest{
		PinataContent:  document,
		PinataMetadata: options.metadata(),
	})
	if err != nil {
		return PinResponse{}, fmt.Errorf("failed to encode document: %w", err)
	}

	return c.pin(ctx, "pinJSONToIPFS", "application/json", bytes.NewReader(payload))
}

// UploadFile pins a file and returns its gateway URI.
func (c *Client) UploadFile(ctx context.Context, fileName string, contentType string, reader io.Reader) (string, error) {
	response, err := c.PinFile(ctx, fileName, contentType, reader, PinOptions{Name: fileName})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to Pinata: %w", err)
	}
	return c.GatewayURI(response.IpfsHash), nil
}

// UploadJSON pins a document and returns its gateway URI.
func (c *Client) UploadJSON(ctx context.Context, document any) (string, error) {
	response, err := c.PinJSON(ctx, document, PinOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to upload metadata to Pinata: %w", err)
	}
	return c.GatewayURI(response.IpfsHash), nil
}

func (c *Client) pin(ctx context.Context, operation string, contentType string, body io.Reader) (PinResponse, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pinning/"+operation, body)
	if err != nil {
		return PinResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("pinata_api_key", c.apiKey)
	request.Header.Set("pinata_secret_api_key", c.secretKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return PinResponse{}, fmt.Errorf("pinata %s request failed: %w", operation, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return PinResponse{}, fmt.Errorf("failed to read pinata response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return PinResponse{}, &UploadError{
			Operation:  operation,
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(string(responseBody)),
		}
	}

	var pinned PinResponse
	if err := json.Unmarshal(responseBody, &pinned); err != nil {
		return PinResponse{}, fmt.Errorf("failed to decode pinata response: %w", err)
	}
	if strings.TrimSpace(pinned.IpfsHash) == "" {
		return PinResponse{}, fmt.Errorf("pinata response did not include IpfsHash")
	}
	return pinned, nil
}

func (o PinOptions) metadata() *pinataMetadata {
	name := strings.TrimSpace(o.Name)
	if name == "" && len(o.KeyValues) == 0 {
		return nil
	}
	return &pinataMetadata{Name: name, KeyValues: o.KeyValues}
}

func normalizeURL(raw string, fallback string, label string) (string, error) {
	value := strings.TrimRight(strings.TrimSpace(raw), "/")
	if value == "" {
		value = fallback
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", label, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid %s: scheme must be http or https", label)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", fmt.Errorf("invalid %s: host is required", label)
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}
