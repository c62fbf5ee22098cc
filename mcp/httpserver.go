package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
)

// httpRequestKey is a custom context key for storing the original HTTP request
type httpRequestKey struct{}

// withHTTPRequest adds the original HTTP request to the context
func withHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

// HTTPRequestFromContext extracts the original HTTP request from the context
func HTTPRequestFromContext(ctx context.Context) (*http.Request, bool) {
	req, ok := ctx.Value(httpRequestKey{}).(*http.Request)
	return req, ok
}

// httpContextFunc extracts the original HTTP request and adds it to the context
func httpContextFunc(ctx context.Context, r *http.Request) context.Context {
	return withHTTPRequest(ctx, r)
}

// NewMcpHTTPServer creates a streamable HTTP MCP server on endpoint
func NewMcpHTTPServer(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(endpoint),
		server.WithHTTPContextFunc(httpContextFunc),
	)
}

// NewHandler serves the MCP endpoint and the SSE endpoints below it.
func NewHandler(s *server.MCPServer, sseServer *SSEServer, endpoint string) http.Handler {
	r := chi.NewRouter()

	r.Handle(endpoint, NewMcpHTTPServer(s, endpoint))

	if sseServer != nil {
		r.Get(endpoint+"/sse", sseServer.HandleSSE)
		r.Get(endpoint+"/sse/clients", func(w http.ResponseWriter, r *http.Request) {
			clients := sseServer.GetConnectedClients()
			writeJSON(w, map[string]interface{}{
				"connectedClients": len(clients),
				"clients":          clients,
			})
		})
		r.Get(endpoint+"/sse/stats", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, sseServer.GetStats())
		})
	}
	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(v)
}
