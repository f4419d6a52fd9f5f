package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var severityEmoji = map[Severity]string{
	SeverityInfo:     "ℹ️",
	SeverityWarning:  "⚠️",
	SeverityError:    "❌",
	SeverityCritical: "🚨",
}

// SlackPoster delivers notifications through the Slack Web API
// (chat.postMessage) using a bot token.
type SlackPoster struct {
	apiURL    string
	token     string
	channel   string
	username  string
	iconEmoji string
	client    *http.Client
}

func NewSlackPoster(apiURL, token, channel, username, iconEmoji string) *SlackPoster {
	return &SlackPoster{
		apiURL:    strings.TrimSuffix(apiURL, "/"),
		token:     token,
		channel:   channel,
		username:  username,
		iconEmoji: iconEmoji,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackPoster) Name() string { return "slack" }

type slackMessage struct {
	Channel   string `json:"channel"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
	Text      string `json:"text"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *SlackPoster) Post(ctx context.Context, sev Severity, text string) error {
	msg := slackMessage{
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
		Text:      fmt.Sprintf("%s %s", severityEmoji[sev], text),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call slack api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack api returned status %d", resp.StatusCode)
	}

	var out slackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode slack response: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("slack api rejected message: %s", out.Error)
	}
	return nil
}
