package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func testRequest() Request {
	return Request{
		Audio:      []byte("RIFFfakewav"),
		MIMEType:   "audio/wav",
		Extension:  ".wav",
		Model:      "whisper-large-v3-turbo",
		Credential: "gsk-test",
	}
}

func TestTranscribe_NoCredentialFailsFast(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	req := testRequest()
	req.Credential = "  "

	_, err := c.Transcribe(context.Background(), req)
	if err != ErrNoCredential {
		t.Errorf("Expected ErrNoCredential, got %v", err)
	}
	if called {
		t.Error("No network call may be attempted without a credential")
	}
}

func TestTranscribe_Success_TrimsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm failed: %v", err)
		}
		if got := r.FormValue("apiKey"); got != "gsk-test" {
			t.Errorf("Expected apiKey field 'gsk-test', got '%s'", got)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3-turbo" {
			t.Errorf("Expected model field, got '%s'", got)
		}
		if got := r.FormValue("fileExtension"); got != ".wav" {
			t.Errorf("Expected fileExtension '.wav', got '%s'", got)
		}

		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("FormFile failed: %v", err)
		}
		defer file.Close()
		if header.Filename != "audio.wav" {
			t.Errorf("Expected filename 'audio.wav', got '%s'", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("Expected declared MIME type 'audio/wav', got '%s'", ct)
		}
		payload, _ := io.ReadAll(file)
		if string(payload) != "RIFFfakewav" {
			t.Errorf("Clip bytes did not round-trip: %q", payload)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  Hello world  "}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	text, err := c.Transcribe(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Transcribe() failed: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("Expected trimmed 'Hello world', got '%s'", text)
	}
}

func TestTranscribe_BlankPromptOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm failed: %v", err)
		}
		if _, present := r.MultipartForm.Value["prompt"]; present {
			t.Error("Blank prompt must not be present in the form at all")
		}
		w.Write([]byte(`{"text": "ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	req := testRequest()
	req.Prompt = "   "
	if _, err := c.Transcribe(context.Background(), req); err != nil {
		t.Fatalf("Transcribe() failed: %v", err)
	}
}

func TestTranscribe_PromptTrimmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm failed: %v", err)
		}
		values, present := r.MultipartForm.Value["prompt"]
		if !present || len(values) != 1 {
			t.Fatal("Expected exactly one prompt field")
		}
		if values[0] != "medical terms" {
			t.Errorf("Expected trimmed prompt, got '%s'", values[0])
		}
		w.Write([]byte(`{"text": "ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	req := testRequest()
	req.Prompt = "  medical terms  "
	if _, err := c.Transcribe(context.Background(), req); err != nil {
		t.Fatalf("Transcribe() failed: %v", err)
	}
}

func TestTranscribe_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	_, err := c.Transcribe(context.Background(), testRequest())
	if err != ErrTransport {
		t.Errorf("Expected ErrTransport, got %v", err)
	}
}

func TestTranscribe_ProviderErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "invalid key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	_, err := c.Transcribe(context.Background(), testRequest())

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if provErr.Message != "invalid key" {
		t.Errorf("Expected verbatim 'invalid key', got '%s'", provErr.Message)
	}
}

func TestTranscribe_ConnectivityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, zerolog.Nop())
	_, err := c.Transcribe(context.Background(), testRequest())
	if err == nil {
		t.Error("Expected error for unreachable endpoint")
	}
	if errors.Is(err, ErrTransport) || errors.Is(err, ErrNoCredential) {
		t.Errorf("Connectivity loss should surface as its own error, got %v", err)
	}
}
