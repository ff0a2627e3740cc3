package section

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrAlreadyFlushed is returned by Commit when called twice on the same
// buffered diff.
var ErrAlreadyFlushed = errors.New("section: diff already committed")

// DB is the persisted section database (§4.6): a mapping canonical_name ->
// Entry, loaded from a YAML document at start and mutated under a coarse
// mutual-exclusion lock. Readers (one per parse) take a Snapshot at the
// start of a parse and never see partial writes from a concurrent commit.
type DB struct {
	mu      sync.RWMutex
	path    string
	entries map[string]*Entry
}

// Open loads (or, if absent, seeds) the database at path. A missing file is
// not an error: DB starts from the built-in seedVariants table, matching
// §7's "DatabaseWriteFailed ... keep in-memory state" philosophy extended to
// load time (absence of a file is the normal first-run state, not a fault).
func Open(path string) (*DB, error) {
	db := &DB{path: path, entries: seedEntries()}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("section: reading database %s: %w", path, err)
	}
	var raw map[string]yamlEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("section: parsing database %s: %w", path, err)
	}
	for name, ye := range raw {
		e := ye.toEntry(name)
		if existing, ok := db.entries[name]; ok {
			for v := range existing.Variants {
				e.addVariant(v)
			}
		}
		db.entries[name] = e
	}
	return db, nil
}

func seedEntries() map[string]*Entry {
	m := make(map[string]*Entry, len(CanonicalNames))
	for _, name := range CanonicalNames {
		e := newEntry(name)
		for _, v := range seedVariants[name] {
			e.addVariant(Normalize(v))
		}
		m[name] = e
	}
	return m
}

// Snapshot returns an immutable, independently-owned copy of the current
// entries for a Matcher to read during one parse.
func (db *DB) Snapshot() map[string]*Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make(map[string]*Entry, len(db.entries))
	for k, v := range db.entries {
		out[k] = v.clone()
	}
	return out
}

// Diff is the buffered set of mutations a single parse's Matcher
// accumulated; Commit applies it to the live map under the write lock.
type Diff struct {
	learned  map[string][]string // canonical -> new normalized variants
	centroid map[string][]float32
	flushed  bool
}

// NewDiff returns an empty mutation buffer.
func NewDiff() *Diff {
	return &Diff{learned: make(map[string][]string), centroid: make(map[string][]float32)}
}

func (d *Diff) learn(canonical, variant string) {
	d.learned[canonical] = append(d.learned[canonical], variant)
}

func (d *Diff) setCentroid(canonical string, c []float32) {
	d.centroid[canonical] = c
}

// LearnedVariants flattens the buffered learning into "Canonical: variant"
// strings, for assemble.Diagnostics.LearnedVariants.
func (d *Diff) LearnedVariants() []string {
	var out []string
	for canonical, variants := range d.learned {
		for _, v := range variants {
			out = append(out, canonical+": "+v)
		}
	}
	return out
}

// IsEmpty reports whether the diff learned nothing, used by the idempotence
// test ("second pass adds zero new variants").
func (d *Diff) IsEmpty() bool {
	for _, vs := range d.learned {
		if len(vs) > 0 {
			return false
		}
	}
	return true
}

// Commit applies diff to the live database and persists it atomically. It
// is safe to call with a nil diff (no-op). A failed persist (DatabaseWriteFailed
// per §7) leaves the in-memory state mutated and returns the error; callers
// must not fail the parse on this error.
func (db *DB) Commit(diff *Diff) error {
	if diff == nil {
		return nil
	}
	if diff.flushed {
		return ErrAlreadyFlushed
	}
	diff.flushed = true

	db.mu.Lock()
	for canonical, variants := range diff.learned {
		e, ok := db.entries[canonical]
		if !ok {
			e = newEntry(canonical)
			db.entries[canonical] = e
		}
		for _, v := range variants {
			if !e.hasVariant(v) {
				e.addVariant(v)
				e.UsageCount++
			}
		}
	}
	for canonical, c := range diff.centroid {
		if e, ok := db.entries[canonical]; ok {
			e.Centroid = c
		}
	}
	// Copy under the write lock already held: Snapshot takes the read lock.
	snapshot := make(map[string]*Entry, len(db.entries))
	for k, v := range db.entries {
		snapshot[k] = v.clone()
	}
	db.mu.Unlock()

	return db.persist(snapshot)
}

// persist does the whole-document replace + atomic rename §6 specifies.
func (db *DB) persist(entries map[string]*Entry) error {
	out := make(map[string]yamlEntry, len(entries))
	for name, e := range entries {
		out[name] = fromEntry(e)
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("section: marshaling database: %w", err)
	}
	dir := filepath.Dir(db.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("section: creating database dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".sections-*.tmp")
	if err != nil {
		return fmt.Errorf("section: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("section: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("section: closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, db.path); err != nil {
		return fmt.Errorf("section: renaming database into place: %w", err)
	}
	return nil
}

// yamlEntry is the on-disk shape of one Entry, round-tripping unrecognized
// keys through Extra so a newer writer's additions survive an older
// writer's rewrite.
type yamlEntry struct {
	Variants         []string       `yaml:"variants"`
	UsageCount       int            `yaml:"usage_count"`
	EmbeddingCentroid []float32     `yaml:"embedding_centroid,omitempty"`
	Extra            map[string]any `yaml:",inline"`
}

func (ye yamlEntry) toEntry(name string) *Entry {
	e := newEntry(name)
	for _, v := range ye.Variants {
		e.addVariant(v)
	}
	e.UsageCount = ye.UsageCount
	e.Centroid = ye.EmbeddingCentroid
	e.Extra = ye.Extra
	return e
}

func fromEntry(e *Entry) yamlEntry {
	variants := make([]string, 0, len(e.Variants))
	for v := range e.Variants {
		variants = append(variants, v)
	}
	return yamlEntry{
		Variants:          variants,
		UsageCount:        e.UsageCount,
		EmbeddingCentroid: e.Centroid,
		Extra:             e.Extra,
	}
}
