package middleware

import "net/http"

// NewBodyLimitMiddleware はリクエストボディのサイズ上限を適用するミドルウェアを返す。
// base64エンコードされたファイルアップロードを受けるため上限は大きめに設定される。
// 上限を超えた読み取りはhttp.MaxBytesErrorとしてハンドラー側で失敗する。
func NewBodyLimitMiddleware(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
