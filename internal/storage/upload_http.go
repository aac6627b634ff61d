package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docshare/internal/config"
)

// httpUploader posts blobs to an unsigned-upload media endpoint: a multipart
// form with fields "file" and "upload_preset". On success the response JSON
// carries the permanent retrieval URL in "secure_url"; on failure an
// "error.message" field.
type httpUploader struct {
	endpoint string
	preset   string
	client   *http.Client
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewHTTPUploader creates an uploader against an unsigned-upload HTTP endpoint.
func NewHTTPUploader(cfg config.UploadConfig) (Uploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("upload endpoint is required")
	}
	if cfg.Preset == "" {
		return nil, fmt.Errorf("upload preset is required")
	}
	return &httpUploader{
		endpoint: cfg.Endpoint,
		preset:   cfg.Preset,
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

// Upload performs a single multipart POST. No retry on any failure.
func (h *httpUploader) Upload(ctx context.Context, r io.Reader, filename string, opt UploadOptions) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: build form: %v", ErrUploadFailed, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("%w: read blob: %v", ErrUploadFailed, err)
	}
	if err := writer.WriteField("upload_preset", h.preset); err != nil {
		return "", fmt.Errorf("%w: build form: %v", ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: build form: %v", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUploadFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("%w: response missing secure_url", ErrUploadFailed)
	}
	return out.SecureURL, nil
}
