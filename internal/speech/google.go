package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const defaultGoogleEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// GoogleClient はGoogle Cloud Text-to-Speech REST APIのクライアント。
// APIキー認証を使用する。
type GoogleClient struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewGoogleClient はGoogleClientの新しいインスタンスを生成する。
func NewGoogleClient(httpClient *http.Client, apiKey string) *GoogleClient {
	return &GoogleClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		endpoint:   defaultGoogleEndpoint,
	}
}

type googleSynthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		SSMLGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type googleSynthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize はテキストをMP3音声に変換する。
// レスポンスのaudioContentはbase64エンコードされているためデコードして返す。
func (c *GoogleClient) Synthesize(ctx context.Context, text, languageCode, ssmlGender string) ([]byte, error) {
	var payload googleSynthesizeRequest
	payload.Input.Text = text
	payload.Voice.LanguageCode = languageCode
	payload.Voice.SSMLGender = ssmlGender
	payload.AudioConfig.AudioEncoding = "MP3"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("リクエストボディの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Google TTSの呼び出しに失敗しました", slog.String("error", err.Error()))
		return nil, fmt.Errorf("Google TTSの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Google TTSがエラーステータスを返しました", slog.Int("http_status", resp.StatusCode))
		return nil, fmt.Errorf("Google TTSがステータス %d を返しました", resp.StatusCode)
	}

	var decoded googleSynthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("レスポンスのパースに失敗しました: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("音声データのデコードに失敗しました: %w", err)
	}
	return audio, nil
}
