// Package store implements C6: the flat content directory plus the
// single JSON master index keyed by inscription id (spec §3, §4.6).
// The read-modify-write-then-atomic-rename shape for the master index
// follows spec §9's design note directly; the teacher repo keeps its
// master state in a SQL database (inscription/index/dao), which this
// spec's single-flat-JSON-file invariant rules out (see DESIGN.md), so
// the on-disk shape here is grounded on the teacher's own atomic-rename
// habit for index files elsewhere (inscription/index/db.go LSM flush)
// rather than on a teacher SQL table directly.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/decred/dcrd/lru"
	"github.com/zordinals/zordinals/log"
)

// ContentRecord is the persisted master-index entry for one inscription
// (spec §3 "Content Record").
type ContentRecord struct {
	InscriptionId string    `json:"inscriptionId"`
	Txid          string    `json:"txid"`
	Filename      string    `json:"filename"`
	MimeType      string    `json:"mimeType"`
	Ext           string    `json:"ext"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"createdAt"`
}

// masterSubdir and masterFile together locate the master index file
// under the content directory, per spec §6.3.
const (
	masterSubdir = "master"
	masterFile   = "master.json"
)

// negativeCacheSize bounds the findFile negative-lookup cache (spec
// §9's mime<->extension note applies the same "agree on the expected
// filename" discipline here: a prefix this cache has already failed to
// find stays absent until a successful WriteArtifact of a file under
// that prefix evicts it).
const negativeCacheSize = 4096

// Store owns the content directory and its master index. All Upsert
// calls are serialized through mu so that two concurrent reconstructions
// cannot lose an entry to a lost read-modify-write race (spec §5).
type Store struct {
	dir        string
	masterPath string

	mu       sync.Mutex
	negCache lru.Cache
}

// New builds a Store rooted at dir. The directory and its master/
// subdirectory are created lazily on first write, per spec §5's
// "lifecycle is lazy" rule.
func New(dir string) *Store {
	return &Store{
		dir:        dir,
		masterPath: filepath.Join(dir, masterSubdir, masterFile),
		negCache:   lru.NewCache(uint(negativeCacheSize)),
	}
}

// Lookup returns the master-index record for id, if any.
func (s *Store) Lookup(id string) (ContentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndexLocked()
	if err != nil {
		log.Store.Errorf("loading master index: %v", err)
		return ContentRecord{}, false
	}
	rec, ok := idx[id]
	return rec, ok
}

// FileExists reports whether rec's filename is present in the content
// directory.
func (s *Store) FileExists(rec ContentRecord) bool {
	_, err := os.Stat(filepath.Join(s.dir, rec.Filename))
	return err == nil
}

// FindFile implements spec §4.6's findFile: a case-insensitive match on
// any file beginning with "<id>." where id is tried as given, as the
// stripped base txid, and as "<base>i0".
func (s *Store) FindFile(id string) (string, bool) {
	for _, c := range candidatesFor(id) {
		key := strings.ToLower(c)
		if s.negCache.Contains(key) {
			continue
		}
		if name, ok := s.scanDirForPrefix(key); ok {
			return name, true
		}
		s.negCache.Add(key)
	}
	return "", false
}

// candidatesFor builds the three id forms spec §4.6 says findFile must
// try: as given, as the stripped base txid, and as "<base>i0".
func candidatesFor(id string) []string {
	base := id
	if idx := strings.LastIndex(id, "i"); idx > 0 && isDigits(id[idx+1:]) {
		base = id[:idx]
	}
	seen := make(map[string]bool, 3)
	var out []string
	for _, c := range []string{id, base, base + "i0"} {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Store) scanDirForPrefix(prefix string) (string, bool) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", false
	}
	want := prefix + "."
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(strings.ToLower(e.Name()), want) {
			return e.Name(), true
		}
	}
	return "", false
}

// WriteArtifact writes data to <dir>/filename via a temp-file-then-
// rename, so a reader never observes a partially written artifact.
func (s *Store) WriteArtifact(filename string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.dir, filename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	s.negCache.Delete(strings.ToLower(strings.TrimSuffix(filename, filepath.Ext(filename))))
	return nil
}

// ReadArtifact reads a previously written artifact back off disk, used
// by the dependency resolver (C7) when the artifact it needs to scan
// for references came from cache rather than a fresh decode.
func (s *Store) ReadArtifact(filename string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, filename))
}

// Upsert merges rec into the master index, preserving CreatedAt across
// updates per spec §3's Content Record invariant, then atomically
// overwrites master.json.
func (s *Store) Upsert(rec ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndexLocked()
	if err != nil {
		return err
	}
	if existing, ok := idx[rec.InscriptionId]; ok && !existing.CreatedAt.IsZero() {
		rec.CreatedAt = existing.CreatedAt
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	idx[rec.InscriptionId] = rec
	return s.saveIndexLocked(idx)
}

func (s *Store) loadIndexLocked() (map[string]ContentRecord, error) {
	raw, err := os.ReadFile(s.masterPath)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]ContentRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]ContentRecord{}, nil
	}
	var idx map[string]ContentRecord
	if err := json.Unmarshal(raw, &idx); err != nil {
		log.Store.Errorf("master index at %s is corrupt, resetting: %v", s.masterPath, err)
		return map[string]ContentRecord{}, nil
	}
	return idx, nil
}

func (s *Store) saveIndexLocked(idx map[string]ContentRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.masterPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.masterPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.masterPath)
}
