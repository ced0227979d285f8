package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beanls/beanls/ast"
	"github.com/beanls/beanls/index"
	"github.com/beanls/beanls/parser"
	"github.com/beanls/beanls/telemetry"
	"github.com/tliron/commonlog"
)

// PublishFunc delivers a document's recomputed diagnostics to the
// protocol front-end, together with the text they were computed
// against so the front-end can map byte spans to protocol positions.
// Called with the session lock held; it must not call back into the
// session.
type PublishFunc func(uri string, version int32, text []byte, diags []Diagnostic)

// Session owns all per-editing-session state: the open documents,
// the symbol index, and the diagnostics derived from them. There is
// exactly one mutation path: open, change, and close notifications are
// serialized under a write lock, and each one re-derives the affected
// documents' trees, index contributions, and diagnostics before the
// next is admitted. Read queries share a read lock, so they run
// concurrently with each other and never observe a document mid-update.
type Session struct {
	mu    sync.RWMutex
	docs  map[string]*Document
	index *index.Index

	publish   PublishFunc
	validator *BeanCheck
	log       commonlog.Logger
}

// NewSession creates an empty session. publish may be nil when no
// front-end is attached, as in tests.
func NewSession(publish PublishFunc) *Session {
	return &Session{
		docs:    make(map[string]*Document),
		index:   index.New(),
		publish: publish,
		log:     commonlog.GetLogger("beanls.session"),
	}
}

// SetValidator attaches the external validator. Validation runs in the
// background after each mutation and merges its advisory findings into
// the published diagnostics if the document is still current.
func (s *Session) SetValidator(v *BeanCheck) {
	s.validator = v
}

// Open registers a document, parses it, and publishes its first
// diagnostic set. Re-opening an already open document replaces it.
func (s *Session) Open(ctx context.Context, uri string, version int32, text string) {
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("open %s", filenameFromURI(uri)))
	defer timer.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		URI:     uri,
		Version: version,
		Text:    []byte(text),
		Tree:    parser.Parse([]byte(text), filenameFromURI(uri)),
	}
	s.docs[uri] = doc

	affected := s.index.UpdateDocument(uri, doc.Tree)
	s.refresh(ctx, doc, affected)
}

// Change applies an edit batch to an open document. The version must
// be exactly one greater than the document's current version; anything
// else is rejected with ErrStaleEdit and leaves all state untouched,
// and the client is expected to resend the full document.
func (s *Session) Change(ctx context.Context, uri string, version int32, changes []TextChange) error {
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("change %s v%d", filenameFromURI(uri), version))
	defer timer.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	if version != doc.Version+1 {
		s.log.Warningf("stale edit for %s: got version %d, have %d", uri, version, doc.Version)
		return fmt.Errorf("%w: got version %d, have %d", ErrStaleEdit, version, doc.Version)
	}

	text := doc.Text
	tree := doc.Tree
	filename := filenameFromURI(uri)

	for _, change := range changes {
		if change.Start < 0 || change.End < change.Start || change.End > len(text) {
			return fmt.Errorf("%w: change range [%d,%d) out of bounds", ErrStaleEdit, change.Start, change.End)
		}
		newText := change.apply(text)
		tree = parser.Incremental(tree, text, newText, parser.Edit{
			Start:  change.Start,
			OldEnd: change.End,
			NewEnd: change.Start + len(change.Text),
		}, filename)
		text = newText
	}

	doc.Version = version
	doc.Text = text
	doc.Tree = tree

	affected := s.index.UpdateDocument(uri, tree)
	s.refresh(ctx, doc, affected)
	return nil
}

// Close removes the document, its index contributions, and its
// diagnostics. An index inconsistency during removal is logged and the
// document's contributions are rebuilt from nothing; the session keeps
// running.
func (s *Session) Close(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}

	affected, err := s.index.RemoveDocument(uri)
	if err != nil {
		// The reverse index disagrees with the document table. Reset
		// the document's contributions from scratch: adding an empty
		// tree then removing is equivalent to a clean removal.
		s.log.Errorf("index inconsistency closing %s: %s", uri, err)
		affected = s.index.UpdateDocument(uri, &ast.SyntaxTree{})
	}

	delete(s.docs, uri)
	doc.Diagnostics = nil

	if s.publish != nil {
		s.publish(uri, doc.Version, doc.Text, nil)
	}
	s.reanalyzeTouching(ctx, affected, uri)
	return nil
}

// Shutdown releases all session state. An index inconsistency during
// teardown is the one error allowed to surface to the caller.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for uri := range s.docs {
		if _, err := s.index.RemoveDocument(uri); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.docs = make(map[string]*Document)
	s.index = index.New()
	return firstErr
}

// refresh re-analyzes the edited document and every other open
// document sharing an affected symbol, publishing each result.
func (s *Session) refresh(ctx context.Context, doc *Document, affected []index.SymbolKey) {
	s.analyzeLocked(ctx, doc)
	s.reanalyzeTouching(ctx, affected, doc.URI)
}

func (s *Session) reanalyzeTouching(ctx context.Context, affected []index.SymbolKey, skip string) {
	for uri, doc := range s.docs {
		if uri == skip {
			continue
		}
		if !s.index.DocumentTouches(uri, affected) {
			continue
		}
		s.analyzeLocked(ctx, doc)
	}
}

func (s *Session) analyzeLocked(ctx context.Context, doc *Document) {
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("analyze %s", filenameFromURI(doc.URI)))
	doc.Diagnostics = Analyze(doc.URI, doc.Tree, s.index)
	timer.End()

	if s.publish != nil {
		s.publish(doc.URI, doc.Version, doc.Text, doc.Diagnostics)
	}

	if s.validator != nil {
		go s.validate(doc.URI, doc.Version, doc.Text, doc.Diagnostics)
	}
}

// validate runs the external validator off the mutation path and
// merges its findings if the document has not moved on meanwhile.
func (s *Session) validate(uri string, version int32, text []byte, base []Diagnostic) {
	extra := s.validator.Run(context.Background(), uri, text)
	if len(extra) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok || doc.Version != version {
		return
	}

	merged := make([]Diagnostic, 0, len(base)+len(extra))
	merged = append(merged, base...)
	merged = append(merged, extra...)
	sortDiagnostics(merged)

	doc.Diagnostics = merged
	if s.publish != nil {
		s.publish(uri, version, doc.Text, merged)
	}
}

// Snapshot returns the document's current version and text for
// protocol-side position mapping.
func (s *Session) Snapshot(uri string) (int32, []byte, error) {
	version, text, _, err := s.snapshot(uri)
	return version, text, err
}

// Diagnostics returns the current diagnostic set for the document.
func (s *Session) Diagnostics(uri string) ([]Diagnostic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return doc.Diagnostics, nil
}

// snapshot captures the immutable pieces of a document under the read
// lock. Text and tree are replaced wholesale on change, never mutated,
// so the snapshot stays consistent after the lock is released.
func (s *Session) snapshot(uri string) (int32, []byte, *ast.SyntaxTree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]
	if !ok {
		return 0, nil, nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return doc.Version, doc.Text, doc.Tree, nil
}

// still verifies the document has not changed since the snapshot was
// taken; the caller's result is abandoned with ErrSuperseded if it
// has.
func (s *Session) still(uri string, version int32) error {
	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("%w: %s closed during query", ErrSuperseded, uri)
	}
	if doc.Version != version {
		return fmt.Errorf("%w: %s moved from version %d to %d", ErrSuperseded, uri, version, doc.Version)
	}
	return nil
}

// CompletionAt returns completion candidates for the byte offset.
// The cursor context is computed outside the lock from the snapshot;
// the index is then consulted under the read lock, where the query is
// abandoned if an edit superseded it.
func (s *Session) CompletionAt(ctx context.Context, uri string, offset int) ([]CompletionItem, error) {
	version, text, _, err := s.snapshot(uri)
	if err != nil {
		return nil, err
	}

	cctx := completionAt(text, offset)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.still(uri, version); err != nil {
		return nil, err
	}
	return cctx.candidates(s.index, time.Now()), nil
}

// HoverAt returns hover text for the byte offset: symbol information
// when the cursor is on an indexable name, an aligned rendering of the
// transaction otherwise. Empty text means nothing to show.
func (s *Session) HoverAt(ctx context.Context, uri string, offset int) (string, error) {
	version, text, tree, err := s.snapshot(uri)
	if err != nil {
		return "", err
	}

	kind, name, onSymbol := symbolAt(text, offset)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.still(uri, version); err != nil {
		return "", err
	}

	if onSymbol {
		if content, ok := hoverSymbol(s.index, kind, name); ok {
			return content, nil
		}
	}
	if entry, ok := tree.EntryAt(offset); ok {
		if txn, ok := entry.(*ast.Transaction); ok {
			return hoverTransaction(txn), nil
		}
	}
	return "", nil
}

// DefinitionAt returns the declaration sites for the symbol under the
// cursor. An empty result is valid: the front-end reports "no
// definition".
func (s *Session) DefinitionAt(ctx context.Context, uri string, offset int) ([]index.Site, error) {
	version, text, _, err := s.snapshot(uri)
	if err != nil {
		return nil, err
	}

	kind, name, ok := symbolAt(text, offset)
	if !ok {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.still(uri, version); err != nil {
		return nil, err
	}
	return s.index.Definition(kind, name), nil
}
