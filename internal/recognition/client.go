// Package recognition calls the external license-plate recognition service.
package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"lpr-ingest-backend/internal/models"
)

// Recognition runs inside a request-serving call, so the budget is short.
const requestTimeout = 3 * time.Second

const userAgent = "lpr-ingest-backend/1.0"

type Client struct {
	baseURL    string
	path       string
	authKey    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, path, authKey string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		path:    path,
		authKey: authKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
	}
}

// AnalyzeFile sends the staged image to the recognition endpoint and returns
// a structured result. It never returns an error: transport failures,
// non-success statuses, and unparsable bodies all produce a degraded result
// whose Status is ERROR and whose Message carries the diagnostic. The caller
// proceeds to archival and record-keeping either way.
func (c *Client) AnalyzeFile(ctx context.Context, imagePath, filename string) *models.RecognitionResult {
	result, err := c.analyze(ctx, imagePath, filename)
	if err != nil {
		c.log.Warn("recognition degraded",
			zap.String("image", filename),
			zap.Error(err))
		return &models.RecognitionResult{
			Status:  models.StatusError,
			Message: err.Error(),
		}
	}
	return result
}

func (c *Client) analyze(ctx context.Context, imagePath, filename string) (*models.RecognitionResult, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged image: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("image", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	url := strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(c.path, "/")
	req, err := http.NewRequestWithContext(ctx, "POST", url, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.authKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call recognition endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read recognition response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognition endpoint returned status %d, body: %s", resp.StatusCode, string(body))
	}

	// encoding/json matches field names case-insensitively and ignores
	// unknown fields, which is exactly the contract with this service.
	var result models.RecognitionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode recognition response: %w, body: %s", err, string(body))
	}

	return &result, nil
}
