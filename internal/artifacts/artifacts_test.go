package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nexuspro/nexus-render/internal/db"
	"github.com/nexuspro/nexus-render/internal/ident"
)

func setupTestRepo(t *testing.T) Repository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func createArtifact(t *testing.T, repo Repository, dir string) *Artifact {
	t.Helper()
	id := ident.New()
	path := filepath.Join(dir, FileName(id))
	if err := os.WriteFile(path, []byte("rendered"), 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	a := &Artifact{ID: id, Path: path, Size: 8, SourceAssetID: ident.New(), CreatedAt: time.Now()}
	if err := repo.CreateArtifact(context.Background(), a); err != nil {
		t.Fatalf("CreateArtifact() error = %v", err)
	}
	return a
}

func TestRepository_GetMissingReturnsNil(t *testing.T) {
	repo := setupTestRepo(t)
	a, err := repo.GetArtifact(context.Background(), ident.New())
	if err != nil {
		t.Fatalf("GetArtifact() error = %v", err)
	}
	if a != nil {
		t.Errorf("GetArtifact() = %+v, want nil", a)
	}
}

func TestRepository_RoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	want := createArtifact(t, repo, t.TempDir())

	got, err := repo.GetArtifact(context.Background(), want.ID)
	if err != nil || got == nil {
		t.Fatalf("GetArtifact() = %v, %v", got, err)
	}
	if got.Path != want.Path || got.SourceAssetID != want.SourceAssetID || got.Size != 8 {
		t.Errorf("GetArtifact() = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}

	list, err := repo.ListArtifacts(context.Background(), 0)
	if err != nil || len(list) != 1 {
		t.Errorf("ListArtifacts() = %d items, %v", len(list), err)
	}
}

func TestResolver_AcceptsIDAndFileName(t *testing.T) {
	repo := setupTestRepo(t)
	a := createArtifact(t, repo, t.TempDir())
	r := NewResolver(repo, nil)

	for _, name := range []string{a.ID, a.FileName()} {
		got, err := r.Resolve(context.Background(), name)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", name, err)
		}
		if got.ID != a.ID {
			t.Errorf("Resolve(%q).ID = %q, want %q", name, got.ID, a.ID)
		}
	}
}

func TestResolver_NotFound(t *testing.T) {
	repo := setupTestRepo(t)
	dir := t.TempDir()
	gone := createArtifact(t, repo, dir)
	os.Remove(gone.Path)
	r := NewResolver(repo, nil)

	tests := []struct {
		name  string
		input string
	}{
		{"unknown id", ident.New()},
		{"malformed", "not-an-id"},
		{"traversal", "../../etc/passwd"},
		{"empty", ""},
		{"file removed", gone.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.input)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Resolve(%q) error = %v, want ErrNotFound", tt.input, err)
			}
		})
	}
}

func TestParseName(t *testing.T) {
	if got := ParseName(" abc.mp4 "); got != "abc" {
		t.Errorf("ParseName() = %q", got)
	}
	if got := ParseName("abc"); got != "abc" {
		t.Errorf("ParseName() = %q", got)
	}
}
