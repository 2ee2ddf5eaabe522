package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"
)

// Upload endpoints of the navigator API.
const (
	HospitalDataPath   = "/upload-hospital-data"
	HospitalRatingPath = "/upload-hospital-rating"
)

// UploadClient posts CSV files to the navigator API, one request per file.
type UploadClient struct {
	baseURL    string
	httpClient *http.Client
}

type uploadResponse struct {
	Message string `json:"message"`
}

func NewUploadClient(baseURL string, timeout time.Duration) *UploadClient {
	return &UploadClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

// Upload sends payload as the multipart field "file" to endpointPath and
// returns the server's message.
func (c *UploadClient) Upload(ctx context.Context, endpointPath, filename string, payload io.Reader) (string, error) {
	if payload == nil || filename == "" {
		return "", ErrNoFile
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, payload); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(c.baseURL, endpointPath), &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeError(resp)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Message == "" {
		return MsgUploaded, nil
	}
	return out.Message, nil
}

// RenderUpload turns an upload outcome into the single line shown to the
// user.
func RenderUpload(message string, err error) string {
	switch {
	case err == nil:
		return message
	case errors.Is(err, ErrNoFile):
		return MsgSelectFile
	default:
		return uploadErrorPrefix + err.Error()
	}
}
