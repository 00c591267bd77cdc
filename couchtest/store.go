package couchtest

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// document is a stored revision of a document, already serialized.
type document struct {
	rev  string
	seq  int
	body []byte
}

type database struct {
	docs map[string]*document
}

// store holds databases and their documents.
type store struct {
	mu  sync.RWMutex
	dbs map[string]*database
}

func newStore() *store {
	return &store{dbs: make(map[string]*database)}
}

// newRev returns the revision following seq, e.g. "2-3f1c...".
func newRev(seq int) string {
	return fmt.Sprintf("%d-%s", seq, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (s *store) createDB(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dbs[name]; ok {
		return false
	}
	s.dbs[name] = &database{docs: make(map[string]*document)}
	return true
}

func (s *store) deleteDB(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dbs[name]; !ok {
		return false
	}
	delete(s.dbs, name)
	return true
}

// docCount returns the number of documents in name, or false if it does not exist.
func (s *store) docCount(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, ok := s.dbs[name]
	if !ok {
		return 0, false
	}
	return len(db.docs), true
}

func (s *store) dbNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.dbs))
	for name := range s.dbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type lookupResult int

const (
	found lookupResult = iota
	noDatabase
	noDocument
	revMismatch
)

func (s *store) getDoc(dbName, id string) (*document, lookupResult) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, ok := s.dbs[dbName]
	if !ok {
		return nil, noDatabase
	}
	doc, ok := db.docs[id]
	if !ok {
		return nil, noDocument
	}
	return doc, found
}

// putDoc stores a new revision of id. rev must match the current revision
// when the document exists. encode serializes the body for the new revision.
func (s *store) putDoc(dbName, id, rev string, encode func(newRev string) ([]byte, error)) (string, lookupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.dbs[dbName]
	if !ok {
		return "", noDatabase, nil
	}

	seq := 1
	if cur, exists := db.docs[id]; exists {
		if cur.rev != rev {
			return "", revMismatch, nil
		}
		seq = cur.seq + 1
	} else if rev != "" {
		return "", revMismatch, nil
	}

	next := newRev(seq)
	body, err := encode(next)
	if err != nil {
		return "", found, err
	}
	db.docs[id] = &document{rev: next, seq: seq, body: body}
	return next, found, nil
}

func (s *store) deleteDoc(dbName, id, rev string) (string, lookupResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.dbs[dbName]
	if !ok {
		return "", noDatabase
	}
	cur, ok := db.docs[id]
	if !ok {
		return "", noDocument
	}
	if cur.rev != rev {
		return "", revMismatch
	}
	delete(db.docs, id)
	return newRev(cur.seq + 1), found
}

type row struct {
	id  string
	doc *document
}

func (s *store) allDocs(dbName string) ([]row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, ok := s.dbs[dbName]
	if !ok {
		return nil, false
	}
	rows := make([]row, 0, len(db.docs))
	for id, doc := range db.docs {
		rows = append(rows, row{id: id, doc: doc})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })
	return rows, true
}
