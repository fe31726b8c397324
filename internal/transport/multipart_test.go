package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func writePhoto(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	return path
}

func pngBytes(extra int) []byte {
	head := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return append(head, bytes.Repeat([]byte{0x42}, extra)...)
}

func TestDoMultipartSniffsContentType(t *testing.T) {
	content := pngBytes(700)
	path := writePhoto(t, "avatar.png", content)

	var gotType string
	var gotBody []byte
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotType = header.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(file)
		w.Write([]byte(`{"photo":"avatar.png"}`))
	})

	var out struct {
		Photo string `mapstructure:"photo"`
	}
	err := client.DoMultipart(context.Background(), http.MethodPut,
		"/users/uploadimage/1", "tok", "document", FileRef{URI: path}, &out)
	if err != nil {
		t.Fatalf("DoMultipart: %v", err)
	}

	if gotType != "image/png" {
		t.Errorf("sniffed content type = %q", gotType)
	}
	if !bytes.Equal(gotBody, content) {
		t.Errorf("body mismatch: got %d bytes, want %d", len(gotBody), len(content))
	}
	if out.Photo != "avatar.png" {
		t.Errorf("decoded %+v", out)
	}
}

func TestDoMultipartKeepsDeclaredType(t *testing.T) {
	path := writePhoto(t, "avatar.bin", pngBytes(10))

	var gotType string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("document")
		if err == nil {
			gotType = header.Header.Get("Content-Type")
		}
		w.Write([]byte(`{}`))
	})

	err := client.DoMultipart(context.Background(), http.MethodPut,
		"/users/uploadimage/1", "tok", "document",
		FileRef{URI: path, Name: "avatar.jpg", Type: "image/jpeg"}, nil)
	if err != nil {
		t.Fatalf("DoMultipart: %v", err)
	}
	if gotType != "image/jpeg" {
		t.Errorf("content type = %q, want declared image/jpeg", gotType)
	}
}

func TestDoMultipartRejectsUnknownFormat(t *testing.T) {
	path := writePhoto(t, "notes.txt", []byte("just text"))

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unsupported file reached the server")
	})

	err := client.DoMultipart(context.Background(), http.MethodPut,
		"/users/uploadimage/1", "tok", "document", FileRef{URI: path}, nil)
	var unexpected *UnexpectedError
	if !errors.As(err, &unexpected) {
		t.Fatalf("err = %v, want UnexpectedError", err)
	}
}

func TestDoMultipartMissingFile(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for a missing file")
	})

	err := client.DoMultipart(context.Background(), http.MethodPut,
		"/users/uploadimage/1", "tok", "document", FileRef{URI: "/does/not/exist"}, nil)
	var unexpected *UnexpectedError
	if !errors.As(err, &unexpected) {
		t.Fatalf("err = %v, want UnexpectedError", err)
	}
}
