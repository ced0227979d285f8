// Package lsp exposes the analysis session over the Language Server
// Protocol. The protocol layer owns nothing but plumbing: it decodes
// positions into byte offsets, forwards notifications and requests to
// the session, and encodes the session's results back into protocol
// shapes.
package lsp

import (
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/beanls/beanls/analysis"
)

const serverName = "beanls"

// Server wires the protocol handler to the analysis session.
type Server struct {
	handler *protocol.Handler
	session *analysis.Session
	version string
	log     commonlog.Logger

	// The client connection for server-initiated notifications,
	// captured from the most recent handler invocation. Diagnostics
	// published from the validator goroutine go through it.
	mu  sync.Mutex
	ctx *glsp.Context
}

// New builds the protocol server. version is reported back in the
// initialize response; validator may be nil when no external checker
// is installed.
func New(version string, validator *analysis.BeanCheck) *server.Server {
	ls := &Server{
		version: version,
		log:     commonlog.GetLogger("beanls.lsp"),
	}
	ls.session = analysis.NewSession(ls.publishDiagnostics)
	if validator != nil {
		ls.session.SetValidator(validator)
	}
	ls.handler = &protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentCompletion: ls.textDocumentCompletion,
		TextDocumentHover:      ls.textDocumentHover,
		TextDocumentDefinition: ls.textDocumentDefinition,
		TextDocumentFormatting: ls.textDocumentFormatting,
	}
	return server.NewServer(ls.handler, serverName, false)
}

func (s *Server) setContext(ctx *glsp.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
}

func (s *Server) currentContext() *glsp.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// publishDiagnostics is the session's publish callback. It runs both
// on the mutation path and from the validator goroutine, so it reaches
// the client through the captured connection.
func (s *Server) publishDiagnostics(uri string, version int32, text []byte, diags []analysis.Diagnostic) {
	ctx := s.currentContext()
	if ctx == nil {
		return
	}
	table := newLineTable(text)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(table, diags),
	})
}
