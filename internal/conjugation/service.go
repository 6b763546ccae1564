package conjugation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/tilespeak/internal/model"
)

// Completer は補完テキストの取得インターフェース。
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service は単語の活用形検索を提供する。
type Service struct {
	completer Completer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

// Conjugate は指定言語における単語の活用形・変化形の一覧を返す。
func (s *Service) Conjugate(ctx context.Context, word, language string) ([]string, error) {
	if word == "" {
		return nil, model.NewMissingFieldError("word")
	}
	if language == "" {
		return nil, model.NewMissingFieldError("language")
	}

	prompt := fmt.Sprintf(
		`list all %s conjugations and variations of the word %q, one word only, comma seperated list:`,
		language, word)

	completion, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Error("活用形の取得に失敗しました",
			slog.String("word", word),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamFailedError("OpenAI failed.")
	}

	var conjugations []string
	for _, part := range strings.Split(completion, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			conjugations = append(conjugations, trimmed)
		}
	}
	if len(conjugations) == 0 {
		return nil, model.NewUpstreamFailedError("OpenAI failed.")
	}
	return conjugations, nil
}
