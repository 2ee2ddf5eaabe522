package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNoFile             = errors.New("no file selected")
	ErrMissingSearchField = errors.New("missing search field")
	ErrUnexpectedResponse = errors.New("unexpected response format")
)

// Lines shown to the user, matching the web client.
const (
	MsgSelectFile        = "Please select a file to upload."
	MsgUploaded          = "File uploaded successfully!"
	MsgFillAllFields     = "Please fill in all search fields."
	MsgNoProviders       = "No providers found matching your criteria."
	MsgUnexpectedFormat  = "Unexpected response format from server."
	uploadErrorPrefix    = "Error uploading file: "
	providersErrorPrefix = "Error fetching providers: "
)

// APIError is a non-2xx answer from the navigator API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

type errorBody struct {
	Detail string `json:"detail"`
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// decodeError reads the detail string out of an error response.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return &APIError{StatusCode: resp.StatusCode, Detail: eb.Detail}
	}
	return &APIError{StatusCode: resp.StatusCode}
}
