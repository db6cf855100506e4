package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/socialpress/socialpress/app/ingest"
)

// ErrNoDataset reports a run that reached a terminal state without
// exposing a default dataset.
var ErrNoDataset = errors.New("actor run has no dataset")

// waitForFinish is the server-side long-poll interval per status
// request, in seconds. The platform caps it at 60.
const waitForFinish = 60

// Client talks to the actor platform's REST API: start a run, wait for
// it to finish, read its dataset.
type Client struct {
	baseURL     string
	token       string
	userAgent   string
	waitTimeout time.Duration
	httpClient  *http.Client
}

func NewClient(baseURL, token, userAgent string, waitTimeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		token:       token,
		userAgent:   userAgent,
		waitTimeout: waitTimeout,
		httpClient: &http.Client{
			// Above the long-poll interval so status requests are
			// never cut short client-side.
			Timeout: 90 * time.Second,
		},
	}
}

// RunActorSync starts an actor run and blocks until it reaches a
// terminal state, bounded by the configured wait timeout. Returns the
// run's default dataset id on success.
func (c *Client) RunActorSync(ctx context.Context, actorID string, input any) (string, error) {
	run, err := c.startRun(ctx, actorID, input)
	if err != nil {
		return "", err
	}

	slog.Debug("Actor run started", "actor", actorID, "run_id", run.ID, "status", run.Status)

	waitCtx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	for !isTerminal(run.Status) {
		run, err = c.getRun(waitCtx, run.ID)
		if err != nil {
			return "", fmt.Errorf("failed to wait for actor run: %w", err)
		}
	}

	if run.Status != StatusSucceeded {
		return "", fmt.Errorf("actor run %s finished with status %s", run.ID, run.Status)
	}
	if run.DefaultDatasetID == "" {
		return "", fmt.Errorf("%w: run %s", ErrNoDataset, run.ID)
	}

	slog.Debug("Actor run finished", "actor", actorID, "run_id", run.ID, "dataset_id", run.DefaultDatasetID)

	return run.DefaultDatasetID, nil
}

// DatasetItems reads the full dataset as a JSON array. Numbers are
// kept as json.Number so large numeric ids survive intact.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]ingest.RawItem, error) {
	url := fmt.Sprintf("%s/datasets/%s/items?clean=true&format=json", c.baseURL, datasetID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var items []ingest.RawItem
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}

	return items, nil
}

func (c *Client) startRun(ctx context.Context, actorID string, input any) (Run, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return Run{}, fmt.Errorf("failed to encode run input: %w", err)
	}

	// Actor ids of the "user/name" form are addressed as "user~name"
	// in API paths.
	url := fmt.Sprintf("%s/acts/%s/runs", c.baseURL, strings.ReplaceAll(actorID, "/", "~"))

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return Run{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Run{}, fmt.Errorf("failed to start actor run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return Run{}, httpError(resp)
	}

	var parsed runResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Run{}, fmt.Errorf("failed to decode run response: %w", err)
	}

	return parsed.Data, nil
}

func (c *Client) getRun(ctx context.Context, runID string) (Run, error) {
	url := fmt.Sprintf("%s/actor-runs/%s?waitForFinish=%d", c.baseURL, runID, waitForFinish)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return Run{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Run{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Run{}, httpError(resp)
	}

	var parsed runResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Run{}, fmt.Errorf("failed to decode run response: %w", err)
	}

	return parsed.Data, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
}

func httpError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("HTTP error: %d %s: %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(body)))
}
