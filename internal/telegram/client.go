// Package telegram wraps the Bot API operations the assistant needs:
// sending replies and downloading user-uploaded images.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Client struct {
	api         *tgbotapi.BotAPI
	http        *http.Client
	maxDownload int64
	logger      *zap.Logger
}

func New(token string, maxDownload int64, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Client{
		api:         api,
		http:        &http.Client{Timeout: 30 * time.Second},
		maxDownload: maxDownload,
		logger:      logger,
	}, nil
}

func (c *Client) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// FileDirectURL resolves a Telegram file_id to a short-lived download
// URL via the getFile endpoint.
func (c *Client) FileDirectURL(fileID string) (string, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}
	return url, nil
}

// Download fetches the file binary, returning the bytes and the
// reported content type. Downloads above the configured cap fail
// rather than buffering unbounded input.
func (c *Client) Download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file body: %w", err)
	}
	if int64(len(data)) > c.maxDownload {
		return nil, "", fmt.Errorf("file exceeds download limit of %d bytes", c.maxDownload)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	c.logger.Debug("downloaded telegram file",
		zap.Int("bytes", len(data)),
		zap.String("content_type", contentType))

	return data, contentType, nil
}
