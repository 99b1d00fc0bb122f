package uploadapi

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

	"github.com/andybalholm/brotli"
)

// Client calls a running upload server. It satisfies the same upload
// contract as *pinata.Client, so callers can switch between a direct and a
// proxied upload.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Client.
func NewClient(config ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("upload server URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upload server URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid upload server URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return nil, fmt.Errorf("invalid upload server URL: host is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}

	return &Client{
		baseURL:    strings.TrimRight(parsed.String(), "/"),
		httpClient: httpClient,
	}, nil
}

// UploadFile sends a file to the image endpoint and returns its URI.
func (c *Client) UploadFile(ctx context.Context, fileName string, contentType string, reader io.Reader) (string, error) {
	if reader == nil {
		return "", fmt.Errorf("failed to upload image to Pinata: file content is required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to Pinata: %w", err)
	}
	if _, err := io.Copy(part, reader); err != nil {
		return "", fmt.Errorf("failed to upload image to Pinata: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to upload image to Pinata: %w", err)
	}

	uri, err := c.post(ctx, ImagePath, writer.FormDataContentType(), &body)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to Pinata: %w", err)
	}
	return uri, nil
}

// UploadJSON sends a metadata document to the metadata endpoint and
// returns its URI.
func (c *Client) UploadJSON(ctx context.Context, document any) (string, error) {
	payload, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("failed to upload metadata to Pinata: %w", err)
	}

	uri, err := c.post(ctx, MetadataPath, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to upload metadata to Pinata: %w", err)
	}
	return uri, nil
}

func (c *Client) post(ctx context.Context, path string, contentType string, body io.Reader) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Encoding", "br")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	var reader io.Reader = response.Body
	if strings.EqualFold(response.Header.Get("Content-Encoding"), "br") {
		reader = brotli.NewReader(response.Body)
	}
	responseBody, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var failure errorResponse
		if json.Unmarshal(responseBody, &failure) == nil && failure.Error != "" {
			return "", fmt.Errorf("upload server returned %d: %s", response.StatusCode, failure.Error)
		}
		return "", fmt.Errorf("upload server returned %d: %s", response.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(responseBody, &uploaded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if strings.TrimSpace(uploaded.URI) == "" {
		return "", fmt.Errorf("response did not include a uri")
	}
	return uploaded.URI, nil
}
