package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/tilespeak/internal/awssign"
)

func TestAzureSynthesize_SendsSSML(t *testing.T) {
	var gotKey, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := NewAzureClient(server.Client(), "azure-key", "eastus")
	client.endpoint = server.URL

	audio, err := client.Synthesize(context.Background(), "hello <world>", "en-US-JennyNeural", "cheerful")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("audio = %q", audio)
	}
	if gotKey != "azure-key" {
		t.Errorf("subscription key = %q", gotKey)
	}
	if gotContentType != "application/ssml+xml" {
		t.Errorf("content type = %q", gotContentType)
	}
	if !strings.Contains(gotBody, `<voice name="en-US-JennyNeural">`) {
		t.Errorf("body = %q, want voice element", gotBody)
	}
	if !strings.Contains(gotBody, `<mstts:express-as style="cheerful">`) {
		t.Errorf("body = %q, want express-as element", gotBody)
	}
	if !strings.Contains(gotBody, "hello &lt;world&gt;") {
		t.Errorf("body = %q, want escaped text", gotBody)
	}
}

func TestAzureSynthesize_NoStyleOmitsExpressAs(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte("mp3"))
	}))
	defer server.Close()

	client := NewAzureClient(server.Client(), "key", "eastus")
	client.endpoint = server.URL

	if _, err := client.Synthesize(context.Background(), "hi", "en-US-GuyNeural", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gotBody, "express-as") {
		t.Errorf("body = %q, want no express-as element", gotBody)
	}
}

func TestAzureSynthesize_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewAzureClient(server.Client(), "bad-key", "eastus")
	client.endpoint = server.URL

	if _, err := client.Synthesize(context.Background(), "hi", "en-US-JennyNeural", ""); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestGoogleSynthesize_DecodesAudioContent(t *testing.T) {
	var gotQuery, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString([]byte("mp3-bytes")),
		})
	}))
	defer server.Close()

	client := NewGoogleClient(server.Client(), "google-key")
	client.endpoint = server.URL

	audio, err := client.Synthesize(context.Background(), "hello", "en-US", "FEMALE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("audio = %q", audio)
	}
	if gotQuery != "key=google-key" {
		t.Errorf("query = %q", gotQuery)
	}
	for _, want := range []string{`"text":"hello"`, `"languageCode":"en-US"`, `"ssmlGender":"FEMALE"`, `"audioEncoding":"MP3"`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("body = %q, want %q", gotBody, want)
		}
	}
}

func TestGoogleSynthesize_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewGoogleClient(server.Client(), "bad-key")
	client.endpoint = server.URL

	if _, err := client.Synthesize(context.Background(), "hi", "en-US", "FEMALE"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestPollySynthesize_SignsRequest(t *testing.T) {
	var gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	signer := awssign.NewSigner("AKIDEXAMPLE", "secret", "us-east-1", "polly")
	client := NewPollyClient(server.Client(), signer, "us-east-1")
	client.endpoint = server.URL
	client.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }

	audio, err := client.Synthesize(context.Background(), "hello", "Joanna", "neural")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("audio = %q", audio)
	}
	if !strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20260829/us-east-1/polly/aws4_request") {
		t.Errorf("Authorization = %q", gotAuth)
	}
	for _, want := range []string{`"OutputFormat":"mp3"`, `"Text":"hello"`, `"VoiceId":"Joanna"`, `"Engine":"neural"`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("body = %q, want %q", gotBody, want)
		}
	}
}

func TestPollySynthesize_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	signer := awssign.NewSigner("AKIDEXAMPLE", "secret", "us-east-1", "polly")
	client := NewPollyClient(server.Client(), signer, "us-east-1")
	client.endpoint = server.URL

	if _, err := client.Synthesize(context.Background(), "hi", "Joanna", "neural"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
