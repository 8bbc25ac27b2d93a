package reconstruction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client requests job creation from the external reconstruction backend.
// The backend's internals are opaque; only the acknowledgement matters, and
// status flows back through upload records.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type createJobRequest struct {
	UserID    string   `json:"user_id"`
	UploadIDs []string `json:"upload_ids"`
}

// CreateJob asks the backend to start reconstructing from the given upload
// records, in order.
func (c *Client) CreateJob(ctx context.Context, userID uuid.UUID, uploadIDs []string) error {
	payload := createJobRequest{
		UserID:    userID.String(),
		UploadIDs: uploadIDs,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/jobs"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to create reconstruction job: status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}
