package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nexuspro/nexus-render/internal/db"
)

func setupTestDB(t *testing.T) Repository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func setupStore(t *testing.T) (*Store, *Registry) {
	t.Helper()
	repo := setupTestDB(t)
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"), repo, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store, NewRegistry(repo, nil)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestStore_SaveVideo(t *testing.T) {
	store, registry := setupStore(t)
	ctx := context.Background()

	asset, err := store.Save(ctx, Upload{Kind: KindVideo, Filename: "My Clip.MP4"}, strings.NewReader("fake video"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if asset.ID == "" {
		t.Fatal("asset.ID is empty")
	}
	if filepath.Base(asset.Path) != asset.ID+".mp4" {
		t.Errorf("stored name = %s, want %s.mp4", filepath.Base(asset.Path), asset.ID)
	}
	if asset.OriginalName != "My Clip.MP4" {
		t.Errorf("OriginalName = %q", asset.OriginalName)
	}
	if asset.Size != int64(len("fake video")) {
		t.Errorf("Size = %d", asset.Size)
	}

	path, err := registry.Resolve(ctx, asset.ID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != asset.Path {
		t.Errorf("Resolve() = %s, want %s", path, asset.Path)
	}
}

func TestStore_SaveImageRecordsDimensions(t *testing.T) {
	store, registry := setupStore(t)
	ctx := context.Background()

	asset, err := store.Save(ctx, Upload{Kind: KindImage, Filename: "logo.png"}, bytes.NewReader(pngBytes(t, 64, 32)))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if asset.Width != 64 || asset.Height != 32 {
		t.Errorf("dimensions = %dx%d, want 64x32", asset.Width, asset.Height)
	}

	got, err := registry.Get(ctx, asset.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Kind != KindImage || got.Width != 64 {
		t.Errorf("stored asset = %+v", got)
	}
}

func TestStore_RejectsUndecodableImage(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Save(context.Background(), Upload{Kind: KindImage, Filename: "logo.png"}, strings.NewReader("not a png"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Save() error = %v, want ErrUnsupportedType", err)
	}

	entries, _ := os.ReadDir(store.Dir())
	if len(entries) != 0 {
		t.Errorf("uploads dir not cleaned up: %d entries", len(entries))
	}
}

func TestStore_RejectsWrongExtension(t *testing.T) {
	store, _ := setupStore(t)

	tests := []Upload{
		{Kind: KindVideo, Filename: "notes.txt"},
		{Kind: KindImage, Filename: "clip.mp4"},
		{Kind: KindVideo, Filename: "noext"},
		{Kind: Kind("audio"), Filename: "song.mp3"},
	}
	for _, up := range tests {
		if _, err := store.Save(context.Background(), up, strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Save(%+v) error = %v, want ErrUnsupportedType", up, err)
		}
	}
}

func TestStore_RejectsEmpty(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Save(context.Background(), Upload{Kind: KindVideo, Filename: "a.mp4"}, strings.NewReader(""))
	if !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("Save() error = %v, want ErrEmptyUpload", err)
	}
}

func TestRegistry_ResolveNotFound(t *testing.T) {
	_, registry := setupStore(t)

	for _, id := range []string{"", "v1", "../../etc/passwd", "6f1c2a9e-3b1d-4c55-9a2e-1f0e7d3c2b1a"} {
		if _, err := registry.Resolve(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestRegistry_ResolveMissingFile(t *testing.T) {
	store, registry := setupStore(t)
	ctx := context.Background()

	asset, err := store.Save(ctx, Upload{Kind: KindVideo, Filename: "a.mov"}, strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.Remove(asset.Path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := registry.Resolve(ctx, asset.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_List(t *testing.T) {
	store, registry := setupStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.mp4", "b.mp4"} {
		if _, err := store.Save(ctx, Upload{Kind: KindVideo, Filename: name}, strings.NewReader("x")); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	list, err := registry.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d assets, want 2", len(list))
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind(" Video "); !ok || k != KindVideo {
		t.Errorf("ParseKind(video) = %v, %v", k, ok)
	}
	if _, ok := ParseKind("audio"); ok {
		t.Error("ParseKind(audio) accepted")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" A\nB\rC\tD\x00 ", "ABCD"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\clip.mp4`, "clip.mp4"},
		{"bad<>|\"name.mp4", "bad____name.mp4"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in, 100); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := SanitizeName("abcdefghijklmnopqrstuvwxyz", 10); len([]rune(got)) != 10 {
		t.Errorf("SanitizeName max length = %q", got)
	}
}
