package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"todo/internal/backend/local"
	"todo/internal/backend/remote"
	"todo/internal/config"
)

func TestOpen_Local(t *testing.T) {
	cfg := config.New(t.TempDir())

	b, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if b.Mode != ModeLocal {
		t.Errorf("expected local mode, got %s", b.Mode)
	}
	if _, ok := b.Service.(*local.Service); !ok {
		t.Errorf("expected *local.Service, got %T", b.Service)
	}

	if _, err := b.Create(context.Background(), "persisted"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}

func TestOpen_LocalDegradesToMemory(t *testing.T) {
	dir := t.TempDir()
	// A directory where the database file should be makes bolt fail.
	blocker := filepath.Join(dir, "tasks.db")
	if err := os.MkdirAll(blocker, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := config.New(dir)

	b, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("storage failure must not be fatal, got %v", err)
	}
	defer b.Close()

	task, err := b.Create(context.Background(), "in memory")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tasks, _ := b.List(context.Background())
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Errorf("expected in-memory task, got %+v", tasks)
	}
}

func TestOpen_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	cfg := config.New(t.TempDir())
	cfg.APIBase = srv.URL

	b, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if b.Mode != ModeRemote {
		t.Errorf("expected remote mode, got %s", b.Mode)
	}
	if _, ok := b.Service.(*remote.Client); !ok {
		t.Errorf("expected *remote.Client, got %T", b.Service)
	}
	if _, err := os.Stat(cfg.DatabasePath()); !os.IsNotExist(err) {
		t.Error("remote mode must not create a local database")
	}
}

func TestOpen_RemoteInvalidBase(t *testing.T) {
	cfg := config.New(t.TempDir())
	cfg.APIBase = "not a url"

	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}
