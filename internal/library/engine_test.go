package library_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stash/internal/archive"
	"stash/internal/library"
	"stash/internal/logging"
	"stash/internal/manifest"
	"stash/internal/testsupport"
)

func newEngine(t *testing.T) *library.Engine {
	t.Helper()
	return library.NewEngine(filepath.Join(t.TempDir(), "scratch"), logging.NewNop())
}

func createLibrary(t *testing.T, engine *library.Engine, name string) string {
	t.Helper()
	archivePath := filepath.Join(t.TempDir(), "lib.stash")
	if err := engine.CreateLibrary(context.Background(), archivePath, name); err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}
	return archivePath
}

func openSession(t *testing.T, engine *library.Engine, archivePath string) *library.Session {
	t.Helper()
	sess, err := engine.Open(archivePath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestCreateLibrary(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test Library")

	sess := openSession(t, engine, archivePath)
	doc := sess.Document()
	if doc.LibraryName != "Test Library" {
		t.Errorf("library name = %q", doc.LibraryName)
	}
	if doc.Version != manifest.FormatVersion {
		t.Errorf("version = %q", doc.Version)
	}
	if doc.EntryCount() != 0 {
		t.Errorf("fresh library has %d entries", doc.EntryCount())
	}
	if len(sess.ListAll()) != 0 {
		t.Error("fresh library should list no entries")
	}
}

func TestEndToEndAddAndReopen(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	source := testsupport.WriteSource(t, t.TempDir(), "tex.png", "pixels")

	result, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{{
		SourcePath: source,
		Name:       "Tex",
		Type:       "Texture2D",
	}})
	if err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if result.Added != 1 || result.Skipped != 0 {
		t.Fatalf("result = %+v", result)
	}

	sess := openSession(t, engine, archivePath)
	entries := sess.ListAll()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Name != "Tex" || entry.Type != "Texture2D" {
		t.Errorf("entry = %+v", entry)
	}
	if !strings.HasPrefix(entry.RelativePath, "assets/textures/") {
		t.Errorf("relativePath = %q, want under assets/textures/", entry.RelativePath)
	}
	// Self-thumbnail rule for image types.
	if entry.ThumbnailPath != entry.RelativePath {
		t.Errorf("thumbnailPath = %q, want %q", entry.ThumbnailPath, entry.RelativePath)
	}
	if entry.FileSize != int64(len("pixels")) {
		t.Errorf("fileSize = %d", entry.FileSize)
	}
	if entry.ID == "" || entry.DateAdded == "" {
		t.Errorf("missing engine-assigned fields: %+v", entry)
	}
	if got := sess.FetchContent(entry); string(got) != "pixels" {
		t.Errorf("content = %q", got)
	}
	if got := sess.FetchThumbnail(entry); string(got) != "pixels" {
		t.Errorf("thumbnail = %q", got)
	}
}

func TestAddBatchDefaultsNameToFileName(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	source := testsupport.WriteSource(t, t.TempDir(), "brick.png", "pixels")

	result, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{{
		SourcePath: source,
		Type:       "Texture2D",
	}})
	if err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if result.Added != 1 {
		t.Fatalf("result = %+v", result)
	}

	sess := openSession(t, engine, archivePath)
	entries := sess.ListAll()
	if len(entries) != 1 || entries[0].Name != "brick.png" {
		t.Errorf("entries = %+v, want name brick.png", entries)
	}
}

func TestAddBatchSkipsMissingSource(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	valid := testsupport.WriteSource(t, t.TempDir(), "ok.wav", "audio")

	result, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{
		{SourcePath: filepath.Join(t.TempDir(), "absent.png"), Name: "Gone", Type: "Texture2D"},
		{SourcePath: valid, Name: "Jump", Type: "AudioClip"},
	})
	if err != nil {
		t.Fatalf("AddBatch must not fail for a skipped request: %v", err)
	}
	if result.Added != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}

	sess := openSession(t, engine, archivePath)
	entries := sess.ListAll()
	if len(entries) != 1 || entries[0].Name != "Jump" {
		t.Fatalf("entries = %+v", entries)
	}
	if !strings.HasPrefix(entries[0].RelativePath, "assets/audio/") {
		t.Errorf("relativePath = %q", entries[0].RelativePath)
	}
	// Non-image without custom thumbnail: none.
	if entries[0].ThumbnailPath != "" {
		t.Errorf("thumbnailPath = %q, want empty", entries[0].ThumbnailPath)
	}
}

func TestAddBatchDisambiguatesSameBasename(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")

	dirA := t.TempDir()
	dirB := t.TempDir()
	first := testsupport.WriteSource(t, dirA, "foo.png", "first")
	second := testsupport.WriteSource(t, dirB, "foo.png", "second")

	result, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{
		{SourcePath: first, Name: "A", Type: "Texture2D"},
		{SourcePath: second, Name: "B", Type: "Texture2D"},
	})
	if err != nil || result.Added != 2 {
		t.Fatalf("AddBatch: %+v, %v", result, err)
	}

	sess := openSession(t, engine, archivePath)
	entries := sess.ListAll()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].RelativePath == entries[1].RelativePath {
		t.Fatalf("colliding relative paths: %q", entries[0].RelativePath)
	}
	if got := sess.FetchContent(entries[0]); string(got) != "first" {
		t.Errorf("first content = %q", got)
	}
	if got := sess.FetchContent(entries[1]); string(got) != "second" {
		t.Errorf("second content = %q", got)
	}
	if entries[1].RelativePath != "assets/textures/foo (1).png" {
		t.Errorf("second path = %q", entries[1].RelativePath)
	}
}

func TestAddBatchCustomThumbnail(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	source := testsupport.WriteSource(t, t.TempDir(), "blob.prefab", "prefab data")
	thumb := testsupport.WriteSource(t, t.TempDir(), "preview.png", "thumb png")

	_, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{{
		SourcePath:    source,
		Name:          "Crate",
		Type:          "Prefab",
		ThumbnailPath: thumb,
	}})
	if err != nil {
		t.Fatal(err)
	}

	sess := openSession(t, engine, archivePath)
	entry := sess.ListAll()[0]
	if !strings.HasPrefix(entry.ThumbnailPath, "thumbnails/") {
		t.Fatalf("thumbnailPath = %q", entry.ThumbnailPath)
	}
	if got := sess.FetchThumbnail(entry); string(got) != "thumb png" {
		t.Errorf("thumbnail bytes = %q", got)
	}
}

func TestIDUniquenessAcrossBatches(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	dir := t.TempDir()

	for i, name := range []string{"a.png", "b.png", "c.prefab"} {
		source := testsupport.WriteSource(t, dir, name, strings.Repeat("x", i+1))
		if _, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{{
			SourcePath: source, Name: name, Type: "Texture2D",
		}}); err != nil {
			t.Fatal(err)
		}
	}

	sess := openSession(t, engine, archivePath)
	seen := make(map[string]struct{})
	for _, entry := range sess.ListAll() {
		if _, dup := seen[entry.ID]; dup {
			t.Fatalf("duplicate id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	if len(seen) != 3 {
		t.Fatalf("ids = %d, want 3", len(seen))
	}
}

func TestUpdateMetadataPreservesImmutables(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	source := testsupport.WriteSource(t, t.TempDir(), "tex.png", "pixels")

	if _, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{{
		SourcePath: source, Name: "Tex", Type: "Texture2D", Group: "env",
	}}); err != nil {
		t.Fatal(err)
	}

	sess := openSession(t, engine, archivePath)
	original := sess.ListAll()[0]
	if err := sess.Close(); err != nil {
		t.Fatal(err)
	}

	candidate := manifest.Entry{
		ID:            "forged-id",
		Name:          "Renamed Tex",
		RelativePath:  "assets/other/forged.bin",
		Group:         "props",
		Tags:          []string{"new", "tags"},
		Description:   "updated",
		ThumbnailPath: "",
		FileSize:      999999,
		DateAdded:     "2001-01-01T00:00:00Z",
	}
	if err := engine.UpdateMetadata(context.Background(), archivePath, original.ID, candidate); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}

	sess = openSession(t, engine, archivePath)
	updated := sess.ListAll()[0]
	if updated.Name != "Renamed Tex" || updated.Group != "props" || updated.Description != "updated" {
		t.Errorf("mutable fields not applied: %+v", updated)
	}
	if len(updated.Tags) != 2 || updated.Tags[0] != "new" {
		t.Errorf("tags not applied: %v", updated.Tags)
	}
	if updated.ThumbnailPath != "" {
		t.Errorf("thumbnailPath not applied: %q", updated.ThumbnailPath)
	}
	if updated.ID != original.ID {
		t.Errorf("id changed: %q -> %q", original.ID, updated.ID)
	}
	if updated.RelativePath != original.RelativePath {
		t.Errorf("relativePath changed: %q", updated.RelativePath)
	}
	if updated.FileSize != original.FileSize {
		t.Errorf("fileSize changed: %d", updated.FileSize)
	}
	if updated.DateAdded != original.DateAdded {
		t.Errorf("dateAdded changed: %q", updated.DateAdded)
	}
	if updated.Type != original.Type {
		t.Errorf("type changed: %q", updated.Type)
	}
}

func TestUpdateMetadataNotFound(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")

	err := engine.UpdateMetadata(context.Background(), archivePath, "nope", manifest.Entry{Name: "x"})
	if !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRenameEntry(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	source := testsupport.WriteSource(t, t.TempDir(), "tex.png", "pixels")
	if _, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{{
		SourcePath: source, Name: "Old", Type: "Texture2D",
	}}); err != nil {
		t.Fatal(err)
	}
	sess := openSession(t, engine, archivePath)
	entry := sess.ListAll()[0]
	if err := sess.Close(); err != nil {
		t.Fatal(err)
	}

	if err := engine.RenameEntry(context.Background(), archivePath, entry.ID, "  "); !errors.Is(err, library.ErrInvalidInput) {
		t.Fatalf("blank rename: %v, want ErrInvalidInput", err)
	}
	if err := engine.RenameEntry(context.Background(), archivePath, "missing", "New"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("missing id: %v, want ErrNotFound", err)
	}
	if err := engine.RenameEntry(context.Background(), archivePath, entry.ID, "New Name"); err != nil {
		t.Fatalf("RenameEntry: %v", err)
	}

	sess = openSession(t, engine, archivePath)
	renamed := sess.ListAll()[0]
	if renamed.Name != "New Name" {
		t.Errorf("name = %q", renamed.Name)
	}
	// Display rename does not move the stored content.
	if renamed.RelativePath != entry.RelativePath {
		t.Errorf("relativePath moved: %q -> %q", entry.RelativePath, renamed.RelativePath)
	}
}

func TestDeleteEntryIsTotal(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	dir := t.TempDir()
	keep := testsupport.WriteSource(t, dir, "keep.png", "keep")
	gone := testsupport.WriteSource(t, dir, "gone.png", "gone")

	if _, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{
		{SourcePath: keep, Name: "Keep", Type: "Texture2D"},
		{SourcePath: gone, Name: "Gone", Type: "Texture2D"},
	}); err != nil {
		t.Fatal(err)
	}

	sess := openSession(t, engine, archivePath)
	var target manifest.Entry
	for _, e := range sess.ListAll() {
		if e.Name == "Gone" {
			target = e
		}
	}
	if err := sess.Close(); err != nil {
		t.Fatal(err)
	}

	if err := engine.DeleteEntry(context.Background(), archivePath, target.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if err := engine.DeleteEntry(context.Background(), archivePath, target.ID); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("second delete: %v, want ErrNotFound", err)
	}

	sess = openSession(t, engine, archivePath)
	if sess.Document().FindByID(target.ID) != nil {
		t.Error("deleted entry still in manifest")
	}
	if got := sess.FetchContent(target); got != nil {
		t.Errorf("deleted content still present: %q", got)
	}
	remaining := sess.ListAll()
	if len(remaining) != 1 || remaining[0].Name != "Keep" {
		t.Fatalf("remaining = %+v", remaining)
	}
	if got := sess.FetchContent(remaining[0]); string(got) != "keep" {
		t.Errorf("surviving content = %q", got)
	}
}

func TestMutationFailureLeavesArchiveUntouched(t *testing.T) {
	engine := newEngine(t)
	archivePath := createLibrary(t, engine, "Test")
	source := testsupport.WriteSource(t, t.TempDir(), "tex.png", "pixels")
	if _, err := engine.AddBatch(context.Background(), archivePath, []library.AddRequest{{
		SourcePath: source, Name: "Tex", Type: "Texture2D",
	}}); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatal(err)
	}

	// A failing mutation (unknown id) must not rewrite the archive.
	if err := engine.DeleteEntry(context.Background(), archivePath, "unknown"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	after, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("archive bytes changed after failed mutation")
	}
}

func TestMutateInvalidArchive(t *testing.T) {
	engine := newEngine(t)
	missing := filepath.Join(t.TempDir(), "absent.stash")

	_, err := engine.AddBatch(context.Background(), missing, []library.AddRequest{{SourcePath: "x"}})
	if !errors.Is(err, archive.ErrInvalidArchive) {
		t.Fatalf("err = %v, want ErrInvalidArchive", err)
	}
	if err := engine.RenameEntry(context.Background(), missing, "id", "Name"); !errors.Is(err, archive.ErrInvalidArchive) {
		t.Fatalf("err = %v, want ErrInvalidArchive", err)
	}
}
