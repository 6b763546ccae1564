// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はタイルの表示テキストなどユーザーが入力した
// 自由形式フィールドをサニタイズし、保存データへのマークアップ混入と
// XSS攻撃からボードの閲覧者を保護する。
// bluemondayライブラリの厳格ポリシーで、タグを一切許可しない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// タイル・ページ・プロジェクトのテキストフィールド保存前に使用される。
type TextSanitizerService interface {
	// Sanitize は入力文字列から全てのHTMLタグを除去したプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのタグと属性を除去し、テキストノードのみを残す。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力文字列から全てのHTMLタグを除去したプレーンテキストを返す。
// bluemondayはテキストをHTMLエスケープして返すため、
// 表示テキストとして保存できるようアンエスケープしてから返す。
func (s *textSanitizer) Sanitize(raw string) string {
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
