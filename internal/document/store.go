// Package document holds the authoritative mirror of the documents a client
// has open. Every open document is kept as full text plus the version the
// client assigned to it; no other component keeps its own copy.
package document

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateDocument reports an open for a URI that is already tracked
	// at the same or a newer version.
	ErrDuplicateDocument = errors.New("document already open")
	// ErrUnknownDocument reports an operation on a URI that is not tracked.
	ErrUnknownDocument = errors.New("document not open")
	// ErrStaleVersion reports an update whose version does not advance.
	ErrStaleVersion = errors.New("stale document version")
)

// Document is an open text document.
type Document struct {
	URI        string
	LanguageID string
	Version    int
	Text       string
}

// ChangeKind tells observers what happened to a document.
type ChangeKind uint8

const (
	ChangeOpened ChangeKind = iota + 1
	ChangeUpdated
	ChangeClosed
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeOpened:
		return "opened"
	case ChangeUpdated:
		return "updated"
	case ChangeClosed:
		return "closed"
	}
	return "unknown"
}

// Change is delivered to observers after a mutation has been applied.
type Change struct {
	Kind    ChangeKind
	URI     string
	Version int
}

// Store tracks open documents by URI.
//
// Store is not safe for concurrent use: it is owned by a single session that
// applies one mutation at a time.
type Store struct {
	docs     map[string]*Document
	watchers []func(Change)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Watch registers fn to be called after every successful mutation.
func (s *Store) Watch(fn func(Change)) {
	if fn == nil {
		return
	}
	s.watchers = append(s.watchers, fn)
}

func (s *Store) notify(ch Change) {
	for _, fn := range s.watchers {
		fn(ch)
	}
}

// Open starts tracking a document. Opening a URI that is already tracked
// resets the entry when the new version is greater than the stored one and
// fails with ErrDuplicateDocument otherwise.
func (s *Store) Open(uri, languageID string, version int, text string) error {
	if existing, ok := s.docs[uri]; ok {
		if version <= existing.Version {
			return fmt.Errorf("%s (version %d, tracked %d): %w", uri, version, existing.Version, ErrDuplicateDocument)
		}
	}
	s.docs[uri] = &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Text:       text,
	}
	s.notify(Change{Kind: ChangeOpened, URI: uri, Version: version})
	return nil
}

// Update replaces the full text of a tracked document. The version must be
// strictly greater than the stored one; on failure the entry is unchanged.
func (s *Store) Update(uri string, version int, text string) error {
	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}
	if version <= doc.Version {
		return fmt.Errorf("%s (version %d, tracked %d): %w", uri, version, doc.Version, ErrStaleVersion)
	}
	doc.Version = version
	doc.Text = text
	s.notify(Change{Kind: ChangeUpdated, URI: uri, Version: version})
	return nil
}

// Close stops tracking a document.
func (s *Store) Close(uri string) error {
	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("%s: %w", uri, ErrUnknownDocument)
	}
	delete(s.docs, uri)
	s.notify(Change{Kind: ChangeClosed, URI: uri, Version: doc.Version})
	return nil
}

// Get returns a copy of the document for uri. The boolean is false when the
// document is not open.
func (s *Store) Get(uri string) (Document, bool) {
	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// All returns a snapshot of every open document ordered by URI.
func (s *Store) All() []Document {
	out := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].URI < out[j].URI
	})
	return out
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	return len(s.docs)
}
