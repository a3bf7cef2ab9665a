package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"stash/internal/importer"
	"stash/internal/library"
	"stash/internal/logging"
	"stash/internal/manifest"
	"stash/internal/testsupport"
)

type recordingRefresher struct {
	calls        int
	destinations []string
}

func (r *recordingRefresher) Refresh(_ context.Context, destination string) error {
	r.calls++
	r.destinations = append(r.destinations, destination)
	return nil
}

func seedLibrary(t *testing.T) (*library.Engine, *library.Session) {
	t.Helper()
	engine := library.NewEngine(filepath.Join(t.TempDir(), "scratch"), logging.NewNop())
	archivePath := filepath.Join(t.TempDir(), "lib.stash")
	if err := engine.CreateLibrary(context.Background(), archivePath, "Imports"); err != nil {
		t.Fatal(err)
	}

	dirA := t.TempDir()
	dirB := t.TempDir()
	requests := []library.AddRequest{
		{SourcePath: testsupport.WriteSource(t, dirA, "foo.png", "first bytes"), Name: "First", Type: "Texture2D"},
		{SourcePath: testsupport.WriteSource(t, dirB, "foo.png", "second bytes"), Name: "Second", Type: "Texture2D"},
	}
	if _, err := engine.AddBatch(context.Background(), archivePath, requests); err != nil {
		t.Fatal(err)
	}

	sess, err := engine.Open(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	return engine, sess
}

func TestImportSelectedCollisionResolution(t *testing.T) {
	_, sess := seedLibrary(t)
	dest := filepath.Join(t.TempDir(), "project-assets")
	refresher := &recordingRefresher{}
	imp := importer.New(refresher, logging.NewNop())

	// The two entries were disambiguated inside the archive
	// (foo.png, foo (1).png); pre-seed the destination so both collide.
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "foo.png"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries := sess.ListAll()
	result, err := imp.ImportSelected(context.Background(), sess, entries, dest)
	if err != nil {
		t.Fatalf("ImportSelected: %v", err)
	}
	if result.Imported != 2 || result.Total != 2 {
		t.Fatalf("result = %+v", result)
	}

	if got, _ := os.ReadFile(filepath.Join(dest, "foo.png")); string(got) != "existing" {
		t.Errorf("pre-existing file rewritten: %q", got)
	}
	if got, err := os.ReadFile(filepath.Join(dest, "foo (1).png")); err != nil || string(got) != "first bytes" {
		t.Errorf("first entry: %q, %v", got, err)
	}
	if got, err := os.ReadFile(filepath.Join(dest, "foo (1) (1).png")); err != nil || string(got) != "second bytes" {
		t.Errorf("second entry: %q, %v", got, err)
	}

	if refresher.calls != 1 || refresher.destinations[0] != dest {
		t.Errorf("refresher = %+v", refresher)
	}
}

func TestImportIntoFreshDestination(t *testing.T) {
	_, sess := seedLibrary(t)
	dest := filepath.Join(t.TempDir(), "new", "nested")
	imp := importer.New(nil, logging.NewNop())

	result, err := imp.ImportSelected(context.Background(), sess, sess.ListAll(), dest)
	if err != nil {
		t.Fatal(err)
	}
	if result.Imported != 2 {
		t.Fatalf("result = %+v", result)
	}
	if got, err := os.ReadFile(filepath.Join(dest, "foo.png")); err != nil || string(got) != "first bytes" {
		t.Errorf("foo.png: %q, %v", got, err)
	}
	if got, err := os.ReadFile(filepath.Join(dest, "foo (1).png")); err != nil || string(got) != "second bytes" {
		t.Errorf("foo (1).png: %q, %v", got, err)
	}
}

func TestImportSkipsMissingContent(t *testing.T) {
	_, sess := seedLibrary(t)
	dest := t.TempDir()
	imp := importer.New(nil, logging.NewNop())

	entries := sess.ListAll()
	phantom := manifest.Entry{ID: "ghost", Name: "Ghost", RelativePath: "assets/other/ghost.bin"}
	entries = append(entries, phantom)

	result, err := imp.ImportSelected(context.Background(), sess, entries, dest)
	if err != nil {
		t.Fatal(err)
	}
	if result.Imported != 2 || result.Total != 3 {
		t.Fatalf("result = %+v", result)
	}
}
