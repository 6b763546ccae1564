// Package conjugation は補完APIを利用した単語の活用形検索を提供する。
package conjugation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
)

// CompletionClient はOpenAI互換のchat completions APIクライアント。
type CompletionClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewCompletionClient はCompletionClientの新しいインスタンスを生成する。
func NewCompletionClient(httpClient *http.Client, apiKey string) *CompletionClient {
	return &CompletionClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      defaultModel,
		endpoint:   defaultEndpoint,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete はプロンプトを送信して最初の補完テキストを返す。
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   256,
	})
	if err != nil {
		return "", fmt.Errorf("リクエストボディの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("補完APIの呼び出しに失敗しました", slog.String("error", err.Error()))
		return "", fmt.Errorf("補完APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("補完APIがエラーステータスを返しました", slog.Int("http_status", resp.StatusCode))
		return "", fmt.Errorf("補完APIがステータス %d を返しました", resp.StatusCode)
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("レスポンスのパースに失敗しました: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("補完APIが選択肢を返しませんでした")
	}
	return decoded.Choices[0].Message.Content, nil
}
