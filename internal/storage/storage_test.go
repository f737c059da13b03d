package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/internal/config"
)

func TestLocalPutAndURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	l, err := NewLocal(dir, "uploads/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()

	data := []byte("hello media")
	if err := l.Put(ctx, "abc123.txt", "text/plain", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "abc123.txt"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("stored %q, want %q", got, data)
	}
	if u := l.URL("abc123.txt"); u != "/uploads/abc123.txt" {
		t.Errorf("URL = %q", u)
	}

	// No temp files are left behind.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".upload-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}

	if err := l.Delete(ctx, "abc123.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := l.Delete(ctx, "abc123.txt"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(filepath.Join(root, "uploads"), "/uploads")
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Put(context.Background(), "../../escape.txt", "text/plain", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err == nil {
		t.Error("file escaped the upload directory")
	}
	if _, err := os.Stat(filepath.Join(root, "uploads", "escape.txt")); err != nil {
		t.Errorf("file should be stored inside the upload directory: %v", err)
	}
}

func TestS3URL(t *testing.T) {
	c, err := NewS3(S3Config{
		Endpoint: "https://s3.example.com/", Region: "us-east-1",
		AccessKey: "key", SecretKey: "secret", Bucket: "media",
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if got := c.URL("a/b.png"); got != "https://s3.example.com/media/a/b.png" {
		t.Errorf("URL = %q", got)
	}

	c.publicURL = "https://cdn.example.com"
	if got := c.URL("/b.png"); got != "https://cdn.example.com/b.png" {
		t.Errorf("URL with public base = %q", got)
	}
}

func TestNewS3RequiresCredentials(t *testing.T) {
	if _, err := NewS3(S3Config{Endpoint: "https://s3.example.com", Bucket: "b"}); err == nil {
		t.Error("expected error without credentials")
	}
	if _, err := NewS3(S3Config{Endpoint: "https://s3.example.com", AccessKey: "k", SecretKey: "s"}); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestExtensionFromType(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":               ".jpg",
		"image/png":                ".png",
		"application/pdf":          ".pdf",
		"application/octet-stream": "",
	}
	for ct, want := range tests {
		if got := ExtensionFromType(ct); got != want {
			t.Errorf("ExtensionFromType(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestNewSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	s, err := New(&config.Config{MediaStorage: "local", UploadDir: dir})
	if err != nil {
		t.Fatalf("New(local): %v", err)
	}
	if _, ok := s.(*Local); !ok {
		t.Errorf("New(local) = %T, want *Local", s)
	}

	s, err = New(&config.Config{
		MediaStorage: "s3", S3Endpoint: "https://s3.example.com",
		S3AccessKey: "k", S3SecretKey: "s", S3Bucket: "media", S3Region: "us-east-1",
	})
	if err != nil {
		t.Fatalf("New(s3): %v", err)
	}
	if _, ok := s.(*S3); !ok {
		t.Errorf("New(s3) = %T, want *S3", s)
	}

	if _, err := New(&config.Config{MediaStorage: "ftp"}); err == nil {
		t.Error("New(ftp) should fail")
	}
}
