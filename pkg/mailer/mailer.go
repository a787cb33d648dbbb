package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"storeshift_v1_202610/pkg/utils"
)

// Message 单封邮件
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Config 邮件网关配置
type Config struct {
	APIURL  string
	APIKey  string
	From    string
	Timeout time.Duration
}

// Mailer 通过 HTTP 邮件网关发信
type Mailer struct {
	client *resty.Client
	from   string
}

// New 创建 Mailer，APIURL 为空返回 nil（调用方视为未启用）
func New(cfg Config) *Mailer {
	if cfg.APIURL == "" {
		return nil
	}
	client := utils.NewAPIClient(cfg.APIURL, cfg.Timeout, false).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &Mailer{client: client, from: cfg.From}
}

type sendResp struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Send 发送 HTML 邮件
func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	if to == "" {
		return fmt.Errorf("收件人为空")
	}

	var result sendResp
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(Message{From: m.from, To: to, Subject: subject, HTML: html}).
		SetResult(&result).
		SetError(&result).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("邮件请求发送失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("邮件网关错误 [%d]: %s", resp.StatusCode(), resp.String())
	}
	if result.Error != "" {
		return fmt.Errorf("邮件网关业务错误: %s", result.Error)
	}
	return nil
}
