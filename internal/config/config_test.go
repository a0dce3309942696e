package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MDBLOCKS_API_KEY", "WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_UPLOAD_BYTES", "MAX_BATCH_FILES", "JOB_TTL", "JOB_CLEANUP_INTERVAL", "PDF_FALLBACK_PDFTOTEXT", "CODE_LANGUAGES_FILE"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected port %q, got %q", "8090", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected queue size 100, got %d", cfg.MaxQueueSize)
	}
	if cfg.MaxUploadBytes != 10485760 {
		t.Errorf("expected 10MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %s", cfg.JobTTL)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("MAX_QUEUE_SIZE", "-3")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port %q, got %q", "9000", cfg.Port)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %s", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected negative queue size to fall back to 100, got %d", cfg.MaxQueueSize)
	}
	if cfg.MaxUploadBytes != 10485760 {
		t.Errorf("expected invalid upload limit to fall back, got %d", cfg.MaxUploadBytes)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("expected error without API key")
	}
	if err := (Config{APIKey: "k"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	missing := Config{APIKey: "k", CodeLanguagesFile: filepath.Join(t.TempDir(), "nope.yaml")}
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing languages file")
	}

	path := filepath.Join(t.TempDir(), "langs.yaml")
	if err := os.WriteFile(path, []byte("languages: [Go]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := (Config{APIKey: "k", CodeLanguagesFile: path}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
