package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewAPIClient 创建统一的 Resty 客户端
// baseURL 为空时由调用方传完整地址
func NewAPIClient(baseURL string, timeout time.Duration, debug bool) *resty.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := resty.New().
		SetDebug(debug).
		SetTimeout(timeout).
		SetHeader("User-Agent", "StoreShift/1.0").
		SetHeader("Accept", "application/json")

	if baseURL != "" {
		client.SetBaseURL(baseURL)
	}
	return client
}
