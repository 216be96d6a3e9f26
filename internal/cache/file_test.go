package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/wa-resumo-bot/internal/models"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), "UTC", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestFileStore_GetMissing(t *testing.T) {
	store := newTestFileStore(t)

	entry := store.Get(context.Background(), "group@g.us")
	if entry.LastN != 0 || entry.Summary != "" {
		t.Errorf("expected zero entry, got %+v", entry)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	want := models.CacheEntry{LastN: 7, Summary: "a conversa girou em torno do relatório"}
	if err := store.Set(ctx, "group@g.us", want); err != nil {
		t.Fatal(err)
	}

	got := store.Get(ctx, "group@g.us")
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestFileStore_SetReplacesEntirely(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, "g", models.CacheEntry{LastN: 3, Summary: "primeiro"})
	_ = store.Set(ctx, "g", models.CacheEntry{LastN: 8, Summary: "segundo"})

	got := store.Get(ctx, "g")
	if got.LastN != 8 || got.Summary != "segundo" {
		t.Errorf("expected full replace, got %+v", got)
	}
}

func TestFileStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "UTC", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(store.path("g"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	entry := store.Get(context.Background(), "g")
	if entry.LastN != 0 || entry.Summary != "" {
		t.Errorf("corrupt file should read as empty, got %+v", entry)
	}
}

func TestFileStore_GroupsAreIsolated(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, "a@g.us", models.CacheEntry{LastN: 1, Summary: "resumo a"})
	_ = store.Set(ctx, "b@g.us", models.CacheEntry{LastN: 2, Summary: "resumo b"})

	if got := store.Get(ctx, "a@g.us"); got.Summary != "resumo a" {
		t.Errorf("group a entry clobbered: %+v", got)
	}
	if got := store.Get(ctx, "b@g.us"); got.LastN != 2 {
		t.Errorf("group b entry clobbered: %+v", got)
	}
}

func TestKey_Shape(t *testing.T) {
	key := Key("group@g.us", time.UTC)

	date := time.Now().UTC().Format("2006-01-02")
	if !strings.HasPrefix(key, date+"_") {
		t.Errorf("key %q should start with today's date", key)
	}
	hash := strings.TrimPrefix(key, date+"_")
	if len(hash) != 16 {
		t.Errorf("expected 16 hex chars of hash, got %q", hash)
	}

	if key != Key("group@g.us", time.UTC) {
		t.Error("key derivation should be deterministic")
	}
	if key == Key("other@g.us", time.UTC) {
		t.Error("different groups should map to different keys")
	}
}

func TestFileStore_FileNameMatchesKey(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, "g", models.CacheEntry{LastN: 1, Summary: "s"})

	want := filepath.Join(store.dir, Key("g", time.UTC)+".json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected cache file at %s: %v", want, err)
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore(time.UTC)
	ctx := context.Background()

	if entry := store.Get(ctx, "g"); entry.LastN != 0 {
		t.Errorf("expected zero entry, got %+v", entry)
	}

	want := models.CacheEntry{LastN: 4, Summary: "resumo"}
	if err := store.Set(ctx, "g", want); err != nil {
		t.Fatal(err)
	}
	if got := store.Get(ctx, "g"); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
