// Package storage はS3互換オブジェクトストレージへのアップロードと
// アップロード監査レコードの記録を提供する。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/tilespeak/internal/awssign"
)

// ObjectPutter はオブジェクトストレージへの書き込みインターフェース。
type ObjectPutter interface {
	// PutObject はキーに対してオブジェクトを書き込み、公開URLを返す。
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// S3Client はAWS S3のREST APIクライアント。
// SigV4署名付きのPutObjectリクエストを発行する。
type S3Client struct {
	httpClient *http.Client
	signer     *awssign.Signer
	bucket     string
	region     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
	now        func() time.Time
}

// NewS3Client はS3Clientの新しいインスタンスを生成する。
func NewS3Client(httpClient *http.Client, signer *awssign.Signer, bucket, region string) *S3Client {
	return &S3Client{
		httpClient: httpClient,
		signer:     signer,
		bucket:     bucket,
		region:     region,
		endpoint:   fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region),
		now:        time.Now,
	}
}

// PutObject はバケットへオブジェクトを書き込み、公開URLを返す。
func (c *S3Client) PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	objectURL := c.endpoint + "/" + key

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, objectURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.signer.Sign(req, awssign.HashPayload(body), c.now())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("S3へのアップロードに失敗しました",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("S3へのアップロードに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("S3がエラーステータスを返しました",
			slog.String("key", key),
			slog.Int("http_status", resp.StatusCode),
			slog.String("body", string(detail)),
		)
		return "", fmt.Errorf("S3がステータス %d を返しました", resp.StatusCode)
	}

	// 公開URLはバケットの仮想ホスト形式
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key), nil
}

// compile-time interface check
var _ ObjectPutter = (*S3Client)(nil)
