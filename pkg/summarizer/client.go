package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"gso-office/backend/config"
)

// FailurePrefix 生成失败时返回文本的前缀
// 调用方据此识别失败，失败文本不应落库
const FailurePrefix = "[AI Error]"

var errEmptyResult = errors.New("empty result")

// Client 文本生成服务客户端
//
// 协议：POST {endpoint}，请求体 {"prompt": "..."}，请求头 x-api-key；
// 响应体 {"result": "..."}。推理服务拒绝超长提示词，发送前按 rune 截断。
type Client struct {
	endpoint     string
	apiKey       string
	maxPromptLen int
	client       *http.Client
	logger       *zap.Logger
}

// NewClient 创建客户端
func NewClient(cfg *config.SummarizerConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxLen := cfg.MaxPromptLen
	if maxLen <= 0 {
		maxLen = 1000
	}
	return &Client{
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		maxPromptLen: maxLen,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Result string `json:"result"`
}

// Generate 调用生成服务，永不返回 error
// 任何失败（网络、超时、非 2xx、解码、空结果）都折叠为 "[AI Error] 原因"
func (c *Client) Generate(ctx context.Context, prompt string) string {
	text, err := c.generate(ctx, Truncate(prompt, c.maxPromptLen))
	if err != nil {
		c.logger.Warn("文本生成失败", zap.String("endpoint", c.endpoint), zap.Error(err))
		return FailureText(err)
	}
	return text
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	result := strings.TrimSpace(out.Result)
	if result == "" {
		return "", errEmptyResult
	}
	return result, nil
}

// FailureText 将错误包装为带前缀的失败文本
func FailureText(err error) string {
	return FailurePrefix + " " + err.Error()
}

// IsFailure 判断生成结果是否为失败文本
func IsFailure(text string) bool {
	return strings.HasPrefix(text, FailurePrefix)
}

// Truncate 按 rune 截断到 max 个字符以内
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
