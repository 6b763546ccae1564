package speech

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/tilespeak/internal/model"
)

// プロバイダ識別子。
const (
	ProviderAzure  = "azure"
	ProviderGoogle = "google"
	ProviderAWS    = "aws"
)

// AzureSynthesizer はAzureによる音声合成インターフェース。
type AzureSynthesizer interface {
	Synthesize(ctx context.Context, text, shortName, style string) ([]byte, error)
}

// GoogleSynthesizer はGoogleによる音声合成インターフェース。
type GoogleSynthesizer interface {
	Synthesize(ctx context.Context, text, languageCode, ssmlGender string) ([]byte, error)
}

// PollySynthesizer はAWS Pollyによる音声合成インターフェース。
type PollySynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID, engine string) ([]byte, error)
}

// AudioUploader は合成音声のオブジェクトストレージへの保存インターフェース。
type AudioUploader interface {
	Upload(ctx context.Context, user *model.User, name string, data []byte, contentType string) (string, error)
}

// SynthesizeRequest は音声合成リクエストのパラメータ。
type SynthesizeRequest struct {
	Text     string
	Voice    Voice
	Provider string
	// Name はボイスの表示名。Azureの発話スタイル導出に使用する。
	Name string
}

// Service は音声合成のディスパッチとストレージ保存を提供する。
type Service struct {
	azure    AzureSynthesizer
	google   GoogleSynthesizer
	polly    PollySynthesizer
	uploader AudioUploader
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(azure AzureSynthesizer, google GoogleSynthesizer, polly PollySynthesizer, uploader AudioUploader) *Service {
	return &Service{azure: azure, google: google, polly: polly, uploader: uploader}
}

// Voices は提供可能なボイス一覧を返す。
func (s *Service) Voices() []Voice {
	return Catalog()
}

// Synthesize はプロバイダを選択してテキストを音声に変換し、
// ストレージへ保存した音声の公開URLを返す。
func (s *Service) Synthesize(ctx context.Context, user *model.User, req SynthesizeRequest) (string, error) {
	if req.Text == "" {
		return "", model.NewMissingFieldError("text")
	}

	var audio []byte
	var err error
	switch req.Provider {
	case ProviderAzure:
		audio, err = s.azure.Synthesize(ctx, req.Text, req.Voice.PrivShortName, azureStyle(req.Name))
	case ProviderGoogle:
		audio, err = s.google.Synthesize(ctx, req.Text, req.Voice.LanguageCode, req.Voice.SSMLGender)
	case ProviderAWS:
		audio, err = s.polly.Synthesize(ctx, req.Text, req.Voice.VoiceID, req.Voice.Engine)
	default:
		return "", model.NewInvalidProviderError()
	}
	if err != nil {
		slog.Error("音声合成に失敗しました",
			slog.String("provider", req.Provider),
			slog.String("error", err.Error()),
		)
		return "", model.NewUpstreamFailedError("Speech synthesis failed")
	}

	url, err := s.uploader.Upload(ctx, user, uuid.NewString()+".mp3", audio, "audio/mpeg")
	if err != nil {
		return "", model.NewUpstreamFailedError("Speech synthesis failed")
	}
	return url, nil
}

// azureStyle はボイス表示名の末尾の単語が小文字のとき発話スタイルとして扱う。
func azureStyle(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	last := words[len(words)-1]
	if last == strings.ToLower(last) {
		return last
	}
	return ""
}
