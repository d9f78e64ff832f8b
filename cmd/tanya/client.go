package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/tanya/internal/models"
)

// clientTimeout bounds one API call; generation can take a while.
const clientTimeout = 2 * time.Minute

var httpClient = &http.Client{Timeout: clientTimeout}

// apiError is the error body returned by the server.
type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func queryViaHTTP(ctx context.Context, serverURL string, query *models.QueryRequest) (*models.Answer, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	var ans models.Answer
	if err := callAPI(ctx, http.MethodPost, serverURL, "/api/v1/query", bytes.NewReader(body), &ans); err != nil {
		return nil, err
	}
	return &ans, nil
}

func statusViaHTTP(ctx context.Context, serverURL string) (*models.Status, error) {
	var st models.Status
	if err := callAPI(ctx, http.MethodGet, serverURL, "/api/v1/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func callAPI(ctx context.Context, method, serverURL, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(serverURL, "/")+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d (%s): %s", resp.StatusCode, apiErr.Kind, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
