// Package analysis is the HTTP client for the voice-analysis backend: a
// two-step upload/analyze contract returning the server-side range, voice
// type and recommendation results.
package analysis

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

	"github.com/vocalab/vocalrange/internal/logger"
)

// APIError is a non-success backend response with its human-readable detail
// message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return e.Detail
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend rooted at baseURL
// (e.g. "https://api.example.com/api/v1").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// The analyze call runs the full server-side pipeline; generous
		// transport timeout, no application-level deadline.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Upload sends the finalized audio blob and returns the backend session
// descriptor used by Analyze.
func (c *Client) Upload(ctx context.Context, blob []byte, contentType string) (*UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="recording%s"`, extensionFor(contentType)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	if _, err := part.Write(blob); err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-audio", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	logger.Debugf("uploading %d bytes (%s)", len(blob), contentType)
	var uploadResp UploadResponse
	if err := c.do(req, &uploadResp); err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	logger.Debugf("upload accepted, session %s", uploadResp.SessionID)
	return &uploadResp, nil
}

// Analyze triggers server-side processing for an uploaded session and
// returns the structured result. Missing artist or song lists are not an
// error.
func (c *Client) Analyze(ctx context.Context, sessionID string) (*Result, error) {
	endpoint := c.baseURL + "/analyze-voice?session_id=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build analyze request: %w", err)
	}

	var result Result
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return &result, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(data, &detail); err == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/ogg":
		return ".ogg"
	default:
		return ".wav"
	}
}
