package cli

import (
	"context"
	"strings"
	"testing"

	"quizmaster/internal/config"
)

func TestBuildServiceRejectsUnknownCatalogName(t *testing.T) {
	var cfg config.Config
	cfg.Quiz.Catalog = []string{"Books", "Knitting"}
	if _, _, err := buildService(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "Knitting") {
		t.Fatalf("expected unknown catalog name rejected, got %v", err)
	}
}

func TestBuildServiceInMemory(t *testing.T) {
	var cfg config.Config
	cfg.Assistant.Provider = "mock"
	service, cleanup, err := buildService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer cleanup()
	if _, err := service.AssistReply(context.Background(), "help"); err != nil {
		t.Fatalf("assist: %v", err)
	}
}
