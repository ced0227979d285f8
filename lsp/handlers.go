package lsp

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/beanls/beanls/analysis"
	"github.com/beanls/beanls/ast"
	"github.com/beanls/beanls/formatter"
)

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.setContext(ctx)
	if params.ClientInfo != nil {
		s.log.Infof("initialize from %s", params.ClientInfo.Name)
	}

	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{":", "#", "^", "\"", "2"},
	}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.log.Info("client initialized")
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return s.session.Shutdown()
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.setContext(ctx)
	s.session.Open(context.Background(),
		params.TextDocument.URI,
		params.TextDocument.Version,
		params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.setContext(ctx)
	uri := params.TextDocument.URI

	_, text, err := s.session.Snapshot(uri)
	if err != nil {
		return err
	}

	// Decode each event against the text as it stands after the
	// preceding events in the batch; that is how the client computed
	// the ranges.
	changes := make([]analysis.TextChange, 0, len(params.ContentChanges))
	for _, raw := range params.ContentChanges {
		var tc analysis.TextChange
		switch c := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			table := newLineTable(text)
			tc = analysis.TextChange{
				Start: table.offset(c.Range.Start),
				End:   table.offset(c.Range.End),
				Text:  c.Text,
			}
		case protocol.TextDocumentContentChangeEventWhole:
			tc = analysis.TextChange{Start: 0, End: len(text), Text: c.Text}
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
		changes = append(changes, tc)
		text = applyChange(text, tc)
	}

	err = s.session.Change(context.Background(), uri, params.TextDocument.Version, changes)
	if errors.Is(err, analysis.ErrStaleEdit) {
		// The client will follow up with a full resend; dropping the
		// edit here keeps the last consistent state published.
		s.log.Warningf("dropping edit: %s", err)
		return nil
	}
	return err
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.setContext(ctx)
	err := s.session.Close(context.Background(), params.TextDocument.URI)
	if errors.Is(err, analysis.ErrUnknownDocument) {
		s.log.Warningf("close for unopened document: %s", err)
		return nil
	}
	return err
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	_, text, err := s.session.Snapshot(uri)
	if err != nil {
		return nil, nil
	}
	table := newLineTable(text)

	items, err := s.session.CompletionAt(context.Background(), uri, table.offset(params.Position))
	if err != nil {
		if errors.Is(err, analysis.ErrSuperseded) {
			return nil, nil
		}
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	out := make([]protocol.CompletionItem, len(items))
	for i, item := range items {
		kind := toProtocolCompletionKind(item.Kind)
		out[i] = protocol.CompletionItem{
			Label: item.Label,
			Kind:  &kind,
			TextEdit: &protocol.TextEdit{
				Range:   table.rangeOf(item.Span),
				NewText: item.Label,
			},
		}
		if item.Detail != "" {
			detail := item.Detail
			out[i].Detail = &detail
		}
	}
	return out, nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	_, text, err := s.session.Snapshot(uri)
	if err != nil {
		return nil, nil
	}
	table := newLineTable(text)

	content, err := s.session.HoverAt(context.Background(), uri, table.offset(params.Position))
	if err != nil {
		if errors.Is(err, analysis.ErrSuperseded) {
			return nil, nil
		}
		return nil, err
	}
	if content == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}, nil
}

func (s *Server) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	_, text, err := s.session.Snapshot(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	formatted := formatter.New().Format(text)
	if bytes.Equal(formatted, text) {
		return nil, nil
	}

	// One edit replacing the whole document; the client merges it into
	// its undo history as a single step.
	table := newLineTable(text)
	return []protocol.TextEdit{{
		Range:   table.rangeOf(ast.Span{Start: 0, End: len(text)}),
		NewText: string(formatted),
	}}, nil
}

func (s *Server) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	_, text, err := s.session.Snapshot(uri)
	if err != nil {
		return nil, nil
	}
	table := newLineTable(text)

	sites, err := s.session.DefinitionAt(context.Background(), uri, table.offset(params.Position))
	if err != nil {
		if errors.Is(err, analysis.ErrSuperseded) {
			return nil, nil
		}
		return nil, err
	}
	if len(sites) == 0 {
		return nil, nil
	}

	// Declaration sites may live in other open documents; resolve each
	// span against its own document's text.
	tables := map[string]*lineTable{uri: table}
	var locations []protocol.Location
	for _, site := range sites {
		siteTable, ok := tables[site.URI]
		if !ok {
			_, siteText, err := s.session.Snapshot(site.URI)
			if err != nil {
				continue
			}
			siteTable = newLineTable(siteText)
			tables[site.URI] = siteTable
		}
		locations = append(locations, protocol.Location{
			URI:   site.URI,
			Range: siteTable.rangeOf(site.Span),
		})
	}
	return locations, nil
}
