package speech

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/counsel0/counsel/internal/log"
)

type gatewayFunc func(ctx context.Context, method, endpoint string, body, out any) error

func (f gatewayFunc) Do(ctx context.Context, method, endpoint string, body, out any) error {
	return f(ctx, method, endpoint, body, out)
}

func TestTranscribe(t *testing.T) {
	audio := []byte{0x52, 0x49, 0x46, 0x46}

	gw := gatewayFunc(func(_ context.Context, method, endpoint string, body, out any) error {
		if method != "POST" || endpoint != "/nlp/speech-to-text" {
			t.Errorf("request = %s %s, want POST /nlp/speech-to-text", method, endpoint)
		}
		req := body.(map[string]string)
		if req["audio"] != base64.StdEncoding.EncodeToString(audio) {
			t.Errorf("audio payload not base64-encoded: %q", req["audio"])
		}
		if req["language"] != "tw" {
			t.Errorf("language = %q, want %q", req["language"], "tw")
		}
		*out.(*transcribeResponse) = transcribeResponse{Text: "mepa wo kyɛw"}
		return nil
	})

	text, err := New(gw, log.NewNop()).Transcribe(context.Background(), audio, "tw")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "mepa wo kyɛw" {
		t.Errorf("Transcribe() = %q, want %q", text, "mepa wo kyɛw")
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	gw := gatewayFunc(func(_ context.Context, _, _ string, _, _ any) error {
		t.Fatal("no request expected for empty audio")
		return nil
	})

	if _, err := New(gw, log.NewNop()).Transcribe(context.Background(), nil, "en"); err == nil {
		t.Error("Transcribe(nil audio) = nil error, want error")
	}
}

func TestTranscribeEmptyResultIsNotAnError(t *testing.T) {
	gw := gatewayFunc(func(_ context.Context, _, _ string, _, out any) error {
		*out.(*transcribeResponse) = transcribeResponse{}
		return nil
	})

	text, err := New(gw, log.NewNop()).Transcribe(context.Background(), []byte("x"), "en")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "" {
		t.Errorf("Transcribe() = %q, want empty transcript passed through", text)
	}
}
