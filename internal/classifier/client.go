package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable marks transport failures and non-2xx responses from the
// classifier. It is retryable and distinct from a negative verdict: a
// response with IsEar=false is a valid answer, not an error.
var ErrUnavailable = errors.New("ear classifier unavailable")

// Verdict is the classifier's answer for one image.
type Verdict struct {
	PredictedClass string  `json:"predictedClass"`
	EarConfidence  float64 `json:"earConfidence"`
	IsEar          bool    `json:"isEar"`
}

type validateRequest struct {
	ImageBase64 string `json:"image_base64"`
}

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

// Validate submits one image to POST /validate-ear and returns the verdict.
func (c *Client) Validate(ctx context.Context, image []byte) (*Verdict, error) {
	payload := validateRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/validate-ear"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}

	return &verdict, nil
}
