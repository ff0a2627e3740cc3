package section

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDBOpenMissingFileSeeds(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "sections.yaml"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	snap := db.Snapshot()
	if len(snap) != len(CanonicalNames) {
		t.Errorf("Snapshot() has %d entries, want %d seeded entries", len(snap), len(CanonicalNames))
	}
	if !snap[Experience].hasVariant(Normalize("Work Experience")) {
		t.Errorf("seeded %s entry missing expected variant", Experience)
	}
}

func TestDBCommitPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sections.yaml")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	m := NewMatcher(db.Snapshot(), nil)
	m.Match(context.Background(), "Bachelor's Degree")
	if err := db.Commit(m.Diff()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	snap := reopened.Snapshot()
	if !snap[Education].hasVariant("bachelorsdegree") {
		t.Errorf("reopened database missing learned variant, entries=%v", snap[Education].Variants)
	}
}

func TestDBCommitTwiceFails(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "sections.yaml"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	diff := NewDiff()
	diff.learn(Skills, "golang")
	if err := db.Commit(diff); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	if err := db.Commit(diff); err != ErrAlreadyFlushed {
		t.Errorf("second Commit(same diff) = %v, want ErrAlreadyFlushed", err)
	}
}

func TestDBSnapshotIsIndependentCopy(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "sections.yaml"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	snap := db.Snapshot()
	snap[Skills].addVariant("mutated")

	fresh := db.Snapshot()
	if fresh[Skills].hasVariant("mutated") {
		t.Error("mutating a Snapshot's entry leaked into the live database")
	}
}
