package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/tilespeak/internal/awssign"
)

// PollyClient はAWS Polly REST APIの音声合成クライアント。
type PollyClient struct {
	httpClient *http.Client
	signer     *awssign.Signer
	endpoint   string // テスト用にエンドポイントを差し替え可能
	now        func() time.Time
}

// NewPollyClient はPollyClientの新しいインスタンスを生成する。
func NewPollyClient(httpClient *http.Client, signer *awssign.Signer, region string) *PollyClient {
	return &PollyClient{
		httpClient: httpClient,
		signer:     signer,
		endpoint:   fmt.Sprintf("https://polly.%s.amazonaws.com/v1/speech", region),
		now:        time.Now,
	}
}

type pollySynthesizeRequest struct {
	OutputFormat string `json:"OutputFormat"`
	Text         string `json:"Text"`
	VoiceID      string `json:"VoiceId"`
	Engine       string `json:"Engine"`
}

// Synthesize はテキストをMP3音声に変換する。
func (c *PollyClient) Synthesize(ctx context.Context, text, voiceID, engine string) ([]byte, error) {
	body, err := json.Marshal(pollySynthesizeRequest{
		OutputFormat: "mp3",
		Text:         text,
		VoiceID:      voiceID,
		Engine:       engine,
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストボディの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.signer.Sign(req, awssign.HashPayload(body), c.now())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Pollyの呼び出しに失敗しました", slog.String("error", err.Error()))
		return nil, fmt.Errorf("Pollyの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Pollyがエラーステータスを返しました", slog.Int("http_status", resp.StatusCode))
		return nil, fmt.Errorf("Pollyがステータス %d を返しました", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("音声データの読み取りに失敗しました: %w", err)
	}
	return audio, nil
}
