package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tagdock/internal/api"
)

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *apiClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// intake uploads local files as one multipart batch.
func (c *apiClient) intake(ctx context.Context, paths []string) (api.IntakeResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return api.IntakeResponse{}, fmt.Errorf("open %s: %w", path, err)
		}
		part, err := writer.CreateFormFile("files", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		file.Close()
		if err != nil {
			return api.IntakeResponse{}, fmt.Errorf("prepare %s: %w", path, err)
		}
	}
	if err := writer.Close(); err != nil {
		return api.IntakeResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/intake", &body)
	if err != nil {
		return api.IntakeResponse{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var outcome api.IntakeResponse
	if err := c.do(req, &outcome); err != nil {
		return api.IntakeResponse{}, err
	}
	return outcome, nil
}

func (c *apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w (is tagdockd running?)", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}
