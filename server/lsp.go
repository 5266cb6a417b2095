package server

import (
	"context"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/objectscript/index"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "objectscript-lsp"

var log = commonlog.GetLogger("objectscript.server")

// LspServer bridges LSP editor features to a Workspace via a Worker.
type LspServer struct {
	worker *Worker
	ws     *Workspace

	handler protocol.Handler
	server  *glspserver.Server
	version string

	cancelIndex context.CancelFunc
}

// NewLSP creates a new LSP server over a fresh workspace.
func NewLSP(opts Options) *LspServer {
	ws := NewWorkspace(opts)
	s := &LspServer{
		worker:  NewWorker(ws),
		ws:      ws,
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("ObjectScript LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"$", "^", "#"},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.DocumentSymbolProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

// initialized fills the symbol index from the project sources in the
// background.
func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	bg, cancel := context.WithCancel(context.Background())
	s.cancelIndex = cancel
	go func() {
		n, err := s.ws.IndexSources(bg, s.storeSymbols)
		if err != nil {
			log.Errorf("indexing workspace: %v", err)
			return
		}
		if n > 0 {
			log.Infof("indexed %d source files", n)
		}
	}()
	return nil
}

// storeSymbols writes index entries on the worker so they cannot race an
// open buffer.
func (s *LspServer) storeSymbols(path string, syms []index.Symbol) error {
	v, err := s.worker.Do(func(ws *Workspace) interface{} {
		return ws.StoreSymbols(path, syms)
	})
	if err != nil {
		return err
	}
	if err, _ := v.(error); err != nil {
		return err
	}
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	if s.cancelIndex != nil {
		s.cancelIndex()
	}
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, string(params.TextDocument.URI), params.TextDocument.Text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.update(ctx, string(params.TextDocument.URI), whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.worker.Do(func(ws *Workspace) interface{} {
		ws.Close(string(uri))
		return nil
	})

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// update reparses a document and publishes its diagnostics.
func (s *LspServer) update(ctx *glsp.Context, uri, text string) {
	result, err := s.worker.Do(func(ws *Workspace) interface{} {
		return diagnostics(ws.Open(uri, text))
	})
	if err != nil {
		log.Errorf("parsing %s: %v", uri, err)
		return
	}
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: result.([]protocol.Diagnostic),
	})
}

// --- Language features ---

// atPosition runs fn on the worker with the document and byte offset of a
// cursor position. It returns nil when the document is not open.
func (s *LspServer) atPosition(uri protocol.DocumentUri, pos protocol.Position,
	fn func(ws *Workspace, doc *Document, offset int) interface{}) (interface{}, error) {
	return s.worker.Do(func(ws *Workspace) interface{} {
		doc := ws.Get(string(uri))
		if doc == nil {
			return nil
		}
		return fn(ws, doc, offsetAt(doc.Text, doc.Lines, pos))
	})
}

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	result, err := s.atPosition(params.TextDocument.URI, params.Position,
		func(ws *Workspace, doc *Document, offset int) interface{} {
			return ws.complete(doc, offset)
		})
	if err != nil || result == nil {
		return nil, err
	}
	return result, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	result, err := s.atPosition(params.TextDocument.URI, params.Position,
		func(ws *Workspace, doc *Document, offset int) interface{} {
			return ws.hover(doc, offset)
		})
	if err != nil {
		return nil, nil
	}
	hover, _ := result.(*protocol.Hover)
	return hover, nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	result, err := s.atPosition(params.TextDocument.URI, params.Position,
		func(ws *Workspace, doc *Document, offset int) interface{} {
			return ws.definition(doc, offset)
		})
	if err != nil || result == nil {
		return nil, nil
	}
	if locs := result.([]protocol.Location); len(locs) > 0 {
		return locs, nil
	}
	return nil, nil
}

func (s *LspServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	result, err := s.worker.Do(func(ws *Workspace) interface{} {
		doc := ws.Get(string(params.TextDocument.URI))
		if doc == nil {
			return nil
		}
		return documentSymbols(doc)
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result, nil
}

func boolPtr(b bool) *bool {
	return &b
}
