package telegram

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lumiforge/mediavault-backend/internal/config"
)

const defaultAPIBase = "https://api.telegram.org"

type Client struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		token:   cfg.TelegramBotToken,
		chatID:  cfg.TelegramAdminChatID,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithAPIBase points the client at a different Bot API host.
func (c *Client) WithAPIBase(base string) *Client {
	c.apiBase = base
	return c
}

// Enabled reports whether alerts will actually be delivered.
func (c *Client) Enabled() bool {
	return c != nil && c.token != "" && c.chatID != ""
}

func (c *Client) SendAlert(msg string) error {
	if !c.Enabled() {
		return nil
	}
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	vals := url.Values{}
	vals.Set("chat_id", c.chatID)
	vals.Set("text", "🚨 mediavault: "+msg)

	resp, err := c.client.PostForm(apiURL, vals)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}
	return nil
}
