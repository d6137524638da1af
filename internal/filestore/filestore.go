// Package filestore provides a flat-file snapshot store backed by diskv.
//
// It mirrors each user's journal data as two JSON documents on disk: the full
// entry list and the thread-id -> messages map. Saves always rewrite the
// whole per-user document, which keeps the on-disk contract trivial (one
// readable JSON file per user per document) at the cost of write
// amplification. The store is used as a best-effort mirror next to SQLite;
// a failed save degrades with a logged warning instead of failing the
// request.
package filestore

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/mindease/go-journal-backend/internal/domain"
)

const (
	entriesDoc = "entries.json"
	threadsDoc = "threads.json"
)

// Store persists per-user JSON snapshots under a base directory, one
// subdirectory per user.
type Store struct {
	d *diskv.Diskv
}

// New creates a Store rooted at basePath. The directory is created lazily on
// first write.
func New(basePath string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

// keys are "username/document"; each user gets a subdirectory.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(pathKey.Path, pathKey.FileName), "/")
}

func docKey(username, doc string) string {
	return username + "/" + doc
}

func (s *Store) save(username, doc string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.d.Write(docKey(username, doc), data)
}

// missing reports whether err means the document has never been written.
func missing(err error) bool {
	return os.IsNotExist(err)
}

// SaveEntries rewrites the user's entry-list document.
func (s *Store) SaveEntries(username string, entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	return s.save(username, entriesDoc, entries)
}

// LoadEntries reads the user's entry-list document. A user without a
// document yields an empty list, not an error.
func (s *Store) LoadEntries(username string) ([]domain.Entry, error) {
	data, err := s.d.Read(docKey(username, entriesDoc))
	if missing(err) {
		return []domain.Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out []domain.Entry
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveThreads rewrites the user's thread-map document (thread id -> ordered
// messages).
func (s *Store) SaveThreads(username string, threads map[string][]domain.ThreadMessage) error {
	if threads == nil {
		threads = map[string][]domain.ThreadMessage{}
	}
	return s.save(username, threadsDoc, threads)
}

// LoadThreads reads the user's thread-map document. A user without a
// document yields an empty map, not an error.
func (s *Store) LoadThreads(username string) (map[string][]domain.ThreadMessage, error) {
	data, err := s.d.Read(docKey(username, threadsDoc))
	if missing(err) {
		return map[string][]domain.ThreadMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out map[string][]domain.ThreadMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Erase removes both of the user's documents. Missing documents are ignored.
func (s *Store) Erase(username string) error {
	for _, doc := range []string{entriesDoc, threadsDoc} {
		if err := s.d.Erase(docKey(username, doc)); err != nil && !missing(err) {
			return err
		}
	}
	return nil
}
