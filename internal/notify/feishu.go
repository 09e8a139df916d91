package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

const defaultAPIBase = "https://open.feishu.cn"

// tokenSafety is subtracted from the reported token lifetime so a token
// is never used within 5 minutes of expiry.
const tokenSafety = 5 * time.Minute

// FeishuNotifier sends interactive cards to a Feishu group webhook and
// replies to inbound messages through the Feishu Open API. App
// credentials are optional; without them Reply is a logged no-op.
type FeishuNotifier struct {
	webhookURL string
	appID      string
	appSecret  string
	apiBase    string
	client     *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
	now      func() time.Time
}

// NewFeishuNotifier creates a Feishu notifier.
// webhookURL: the group bot webhook for card delivery.
// appID/appSecret: app credentials for the reply API, may be empty.
func NewFeishuNotifier(webhookURL, appID, appSecret string) *FeishuNotifier {
	return &FeishuNotifier{
		webhookURL: webhookURL,
		appID:      appID,
		appSecret:  appSecret,
		apiBase:    defaultAPIBase,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

func (f *FeishuNotifier) SendCard(ctx context.Context, c Card) error {
	color := c.Color
	if color == "" {
		color = "blue"
	}
	msg := map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"config": map[string]interface{}{"wide_screen_mode": true},
			"header": map[string]interface{}{
				"title":    map[string]string{"tag": "plain_text", "content": c.Title},
				"template": color,
			},
			"elements": []interface{}{
				map[string]interface{}{
					"tag":  "div",
					"text": map[string]string{"tag": "lark_md", "content": c.Body},
				},
			},
		},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("feishu: marshal card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feishu: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("feishu: send card: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu: unexpected status %d", resp.StatusCode)
	}

	log.Printf("[feishu] sent card: %s", c.Title)
	return nil
}

// Reply posts a plain-text reply to the given inbound message.
func (f *FeishuNotifier) Reply(ctx context.Context, messageID, text string) error {
	if f.appID == "" || f.appSecret == "" {
		log.Printf("[feishu] no app credentials, dropping reply to %s", messageID)
		return nil
	}

	token, err := f.tenantToken(ctx)
	if err != nil {
		return fmt.Errorf("feishu: reply: %w", err)
	}

	content, _ := json.Marshal(map[string]string{"text": text})
	body, _ := json.Marshal(map[string]string{
		"content":  string(content),
		"msg_type": "text",
	})

	url := fmt.Sprintf("%s/open-apis/im/v1/messages/%s/reply", f.apiBase, messageID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feishu: create reply request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("feishu: send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu: reply status %d", resp.StatusCode)
	}
	return nil
}

// tenantToken returns a cached tenant_access_token, refreshing it when
// within tokenSafety of expiry.
func (f *FeishuNotifier) tenantToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.token != "" && f.now().Before(f.tokenExp) {
		return f.token, nil
	}

	body, _ := json.Marshal(map[string]string{
		"app_id":     f.appID,
		"app_secret": f.appSecret,
	})

	url := f.apiBase + "/open-apis/auth/v3/tenant_access_token/internal"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if result.Code != 0 {
		return "", fmt.Errorf("token rejected: code %d: %s", result.Code, result.Msg)
	}

	expire := result.Expire
	if expire <= 0 {
		expire = 7200
	}
	f.token = result.TenantAccessToken
	f.tokenExp = f.now().Add(time.Duration(expire)*time.Second - tokenSafety)
	return f.token, nil
}
