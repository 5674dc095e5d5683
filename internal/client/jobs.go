package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	api "github.com/mediakit/asset-console/api/v1alpha1"
)

// JobsClient is an HTTP client for the bulk-download job API.
type JobsClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewJobsClient(baseURL string, timeout time.Duration) *JobsClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &JobsClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListJobs returns the full job snapshot for the current user. The reconciler
// treats the response as authoritative: jobs absent from it are considered
// gone.
func (c *JobsClient) ListJobs(ctx context.Context) ([]api.JobRecord, error) {
	url := fmt.Sprintf("%s/api/v1/downloads/jobs", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call job api: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("job api returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var jobs []api.JobRecord
	if err := json.Unmarshal(bodyBytes, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return jobs, nil
}

// DeleteJob removes a finished job server-side. It backs the cascade that
// follows a confirmed dismissal.
func (c *JobsClient) DeleteJob(ctx context.Context, jobID string) error {
	url := fmt.Sprintf("%s/api/v1/downloads/jobs/%s", c.baseURL, jobID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call job api: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("job api returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}
