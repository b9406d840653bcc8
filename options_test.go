package syncline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/syncline/syncline"
)

func TestSyncerStartBeforeBuild(t *testing.T) {
	s, err := syncline.New(syncline.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// No engine has wired in a runner yet.
	if err := s.Start(context.Background()); !errors.Is(err, syncline.ErrNotBuilt) {
		t.Errorf("Start = %v, want ErrNotBuilt", err)
	}
}

func TestSyncerStopBeforeBuild(t *testing.T) {
	s, err := syncline.New(syncline.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop on an unstarted syncer: %v", err)
	}
}
