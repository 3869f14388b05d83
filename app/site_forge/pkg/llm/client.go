package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/site_forge/app/site_forge/pkg/config"
	"github.com/iWorld-y/site_forge/app/site_forge/pkg/logger"
)

// Completer 生成结构化 JSON 的 LLM 调用
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string, temperature float32, out any) error
}

// Ensure Client implements Completer
var _ Completer = (*Client)(nil)

// Client 带限流与重试的 LLM 客户端
type Client struct {
	cm         model.BaseChatModel
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// Option 客户端选项
type Option func(*Client)

// WithRetry 设置重试次数与退避基数
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// New 根据配置创建 OpenAI 兼容的客户端
func New(ctx context.Context, cfg config.LLMConfig, conc config.ConcurrencyConfig, opts ...Option) (*Client, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model failed: %w", err)
	}

	rpm := conc.RPM
	if rpm <= 0 {
		rpm = 60
	}
	burst := conc.QPS
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)

	return NewWithModel(chatModel, limiter, opts...), nil
}

// NewWithModel 使用已有的模型创建客户端，limiter 为 nil 时不限流
func NewWithModel(cm model.BaseChatModel, limiter *rate.Limiter, opts ...Option) *Client {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	c := &Client{
		cm:         cm,
		limiter:    limiter,
		maxRetries: 3,
		baseDelay:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete 调用模型并返回原始文本，遇到 429 时指数退避重试
func (c *Client) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := c.cm.Generate(ctx, messages, model.WithTemperature(temperature))
		if err != nil {
			if isRateLimited(err) {
				lastErr = err
				if i < c.maxRetries {
					delay := c.baseDelay * time.Duration(1<<i)
					logger.Log.Warnf("LLM 限流，%v 后重试 (%d/%d)", delay, i+1, c.maxRetries)
					select {
					case <-ctx.Done():
						return "", ctx.Err()
					case <-time.After(delay):
					}
					continue
				}
			}
			return "", fmt.Errorf("llm generate failed: %w", err)
		}
		if resp == nil {
			return "", errors.New("llm returned empty message")
		}
		return resp.Content, nil
	}
	return "", fmt.Errorf("llm generate failed after retries: %w", lastErr)
}

// CompleteJSON 调用模型并把响应中的第一个 JSON 对象解析到 out，解析失败时重新生成。
// 只有被接受的那次响应会写入 out。
func (c *Client) CompleteJSON(ctx context.Context, system, user string, temperature float32, out any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		text, err := c.Complete(ctx, system, user, temperature)
		if err != nil {
			return err
		}
		if err := ExtractJSON(text, out); err != nil {
			lastErr = err
			logger.Log.Warnf("LLM 返回内容无法解析为 JSON (%d/%d): %v", i+1, c.maxRetries+1, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("json unmarshal: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
