package speech

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
)

// outputFormat は全プロバイダで共通して要求するMP3フォーマット。
const azureOutputFormat = "audio-16khz-128kbitrate-mono-mp3"

// AzureClient はAzure Cognitive Services Speechの音声合成クライアント。
type AzureClient struct {
	httpClient *http.Client
	key        string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewAzureClient はAzureClientの新しいインスタンスを生成する。
func NewAzureClient(httpClient *http.Client, key, region string) *AzureClient {
	return &AzureClient{
		httpClient: httpClient,
		key:        key,
		endpoint:   fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
	}
}

// Synthesize はSSMLリクエストでテキストをMP3音声に変換する。
// styleが空でない場合はexpress-as要素で発話スタイルを指定する。
func (c *AzureClient) Synthesize(ctx context.Context, text, shortName, style string) ([]byte, error) {
	ssml := buildSSML(text, shortName, style)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader([]byte(ssml)))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", azureOutputFormat)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Azure TTSの呼び出しに失敗しました", slog.String("error", err.Error()))
		return nil, fmt.Errorf("Azure TTSの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Azure TTSがエラーステータスを返しました", slog.Int("http_status", resp.StatusCode))
		return nil, fmt.Errorf("Azure TTSがステータス %d を返しました", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("音声データの読み取りに失敗しました: %w", err)
	}
	return audio, nil
}

// buildSSML は合成リクエストのSSML文書を組み立てる。
func buildSSML(text, shortName, style string) string {
	escaped := html.EscapeString(text)
	inner := escaped
	if style != "" {
		inner = fmt.Sprintf(`<mstts:express-as style=%q>%s</mstts:express-as>`, style, escaped)
	}
	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xmlns:mstts="https://www.w3.org/2001/mstts" xml:lang="en-US">`+
			`<voice name=%q>%s</voice></speak>`,
		shortName, inner)
}
