package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tilespeak/internal/middleware"
	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/speech"
)

// SpeechServiceInterface は音声合成ハンドラーが必要とするサービスインターフェース。
type SpeechServiceInterface interface {
	// Voices は提供可能なボイス一覧を返す。
	Voices() []speech.Voice
	// Synthesize はテキストを音声に変換し、保存した音声のURLを返す。
	Synthesize(ctx context.Context, user *model.User, req speech.SynthesizeRequest) (string, error)
}

// SpeechHandler は音声合成のHTTPハンドラー。
type SpeechHandler struct {
	service SpeechServiceInterface
}

// NewSpeechHandler はSpeechHandlerを生成する。
func NewSpeechHandler(service SpeechServiceInterface) *SpeechHandler {
	return &SpeechHandler{service: service}
}

// synthesizeRequest は音声合成リクエストのボディ。
type synthesizeRequest struct {
	Text     string        `json:"text"`
	Voice    *speech.Voice `json:"_voice"`
	Provider string        `json:"provider"`
	Name     string        `json:"name"`
}

// ttsResponse は音声合成ルート共通のレスポンス。
type ttsResponse struct {
	URL    *string        `json:"url"`
	Voices []speech.Voice `json:"voices"`
	Error  *string        `json:"error"`
}

// writeTTSError は{url,voices,error}形式のエラーレスポンスを書き込む。
func writeTTSError(w http.ResponseWriter, err error) {
	statusCode, message := serviceErrorStatus(err)
	writeJSON(w, statusCode, ttsResponse{Error: strPtr(message)})
}

// Voices はボイスカタログを返す。
// POST /api/v1/tts/voices
func (h *SpeechHandler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ttsResponse{Voices: h.service.Voices()})
}

// Synthesize は音声合成を処理する。
// POST /api/v1/tts/synthesize
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ttsResponse{Error: strPtr("No token provided.")})
		return
	}

	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ttsResponse{Error: strPtr("Invalid request body")})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, ttsResponse{Error: strPtr("Missing text")})
		return
	}
	if req.Voice == nil {
		writeJSON(w, http.StatusBadRequest, ttsResponse{Error: strPtr("Missing voice")})
		return
	}

	url, err := h.service.Synthesize(r.Context(), user, speech.SynthesizeRequest{
		Text:     req.Text,
		Voice:    *req.Voice,
		Provider: req.Provider,
		Name:     req.Name,
	})
	if err != nil {
		writeTTSError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ttsResponse{URL: strPtr(url)})
}
