// Package storage talks to the object storage REST API that holds uploaded
// media (Supabase storage compatible).
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"spacrm-backend/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type Client struct {
	httpClient *resty.Client
	baseURL    string
	bucket     string
	logger     *zap.Logger
}

type uploadResponse struct {
	Key string `json:"Key"`
}

type errorResponse struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func NewClient(baseURL, serviceKey, bucket string, log *zap.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey)

	return &Client{
		httpClient: client,
		baseURL:    baseURL,
		bucket:     bucket,
		logger:     logger.OrNop(log),
	}
}

func (c *Client) Bucket() string { return c.bucket }

func escapePath(path string) string {
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func apiError(resp *resty.Response) error {
	msg := strings.TrimSpace(resp.String())
	if e, ok := resp.Error().(*errorResponse); ok && e.Message != "" {
		msg = e.Message
	}
	return fmt.Errorf("storage api error: %s (status: %d)", msg, resp.StatusCode())
}

// Upload stores body under path in the configured bucket.
func (c *Client) Upload(ctx context.Context, path, contentType string, body io.Reader) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "false").
		SetBody(body).
		SetResult(&uploadResponse{}).
		SetError(&errorResponse{}).
		Post("/storage/v1/object/" + c.bucket + "/" + escapePath(path))
	if err != nil {
		c.logger.Error("storage upload failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to call storage API: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("storage upload rejected",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
		)
		return apiError(resp)
	}
	c.logger.Debug("object uploaded", zap.String("bucket", c.bucket), zap.String("path", path))
	return nil
}

// Delete removes the object at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(&errorResponse{}).
		Delete("/storage/v1/object/" + c.bucket + "/" + escapePath(path))
	if err != nil {
		return fmt.Errorf("failed to call storage API: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// PublicURL is the address under which a public bucket serves path.
func (c *Client) PublicURL(path string) string {
	return c.baseURL + "/storage/v1/object/public/" + c.bucket + "/" + escapePath(path)
}
