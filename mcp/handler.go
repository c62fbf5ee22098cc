package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/foomo/devguide/router"
	"github.com/foomo/devguide/scrape"
	"github.com/foomo/devguide/service"
	"github.com/foomo/devguide/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "0.1.0"

type ListLanguagesRequest struct{}

type ListLanguagesResponse struct {
	Languages []router.LanguageCode `json:"languages"`
	Default   router.LanguageCode   `json:"default"`
}

type ListPagesRequest struct {
	Language string `json:"language"` // Language code, e.g. JP or EN
}

type ListPagesResponse struct {
	Language router.LanguageCode `json:"language"`
	Pages    router.PageSet      `json:"pages"`
}

type GetDocumentRequest struct {
	Language string `json:"language"` // Language code of the page set
	ID       string `json:"id"`       // Document identifier from listPages
}

type GetDocumentResponse struct {
	Document *vo.Document `json:"document"` // The document with its navigation
}

type ScrapeRequest struct {
	URL      string `json:"url"`      // The URL to scrape
	Selector string `json:"selector"` // CSS selector to extract content
}

type ScrapeResponse struct {
	Summary  *vo.DocumentSummary `json:"summary"`
	Markdown string              `json:"markdown"` // The extracted content in markdown format
}

// NewServer creates a new MCP server with the guide navigation tools and the
// scrape tool.
func NewServer(client *http.Client, serviceInstance service.Service) *server.MCPServer {
	if client == nil {
		client = http.DefaultClient
	}
	s := server.NewMCPServer(
		"Developer Guide MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape",
		mcp.WithDescription("Scrape content from a webpage and convert it to markdown"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the webpage to scrape"),
		),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector to extract specific content (e.g., '#content', '.article', 'article')"),
		),
	)
	s.AddTool(scrapeTool, mcp.NewTypedToolHandler(getScrapeHandler(client)))

	if serviceInstance == nil {
		return s
	}

	codes := serviceInstance.Router().Languages()
	enum := make([]string, len(codes))
	for i, code := range codes {
		enum[i] = string(code)
	}

	listLanguagesTool := mcp.NewTool("listLanguages",
		mcp.WithDescription("List the languages the guide is available in"),
	)
	s.AddTool(listLanguagesTool, mcp.NewTypedToolHandler(getListLanguagesHandler(serviceInstance)))

	listPagesTool := mcp.NewTool("listPages",
		mcp.WithDescription("List the pages of the guide for a language in navigation order"),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Enum(enum...),
			mcp.Description("Language code"),
		),
	)
	s.AddTool(listPagesTool, mcp.NewTypedToolHandler(getListPagesHandler(serviceInstance)))

	getDocumentTool := mcp.NewTool("getDocument",
		mcp.WithDescription("Get a guide page as markdown with its outline and previous/next pages"),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Enum(enum...),
			mcp.Description("Language code"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document identifier as returned by listPages"),
		),
	)
	s.AddTool(getDocumentTool, mcp.NewTypedToolHandler(getDocumentHandler(serviceInstance)))

	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

func getScrapeHandler(client *http.Client) func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		if args.Selector == "" {
			return mcp.NewToolResultError("selector is required"), nil
		}

		summary, markdown, err := scrape.Scrape(ctx, client, args.URL, args.Selector)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scrape content: %v", err)), nil
		}
		return jsonResult(ScrapeResponse{
			Summary:  summary,
			Markdown: string(markdown),
		})
	}
}

func getListLanguagesHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ListLanguagesRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ListLanguagesRequest) (*mcp.CallToolResult, error) {
		r := serviceInstance.Router()
		return jsonResult(ListLanguagesResponse{
			Languages: r.Languages(),
			Default:   r.Default(),
		})
	}
}

func getListPagesHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ListPagesRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ListPagesRequest) (*mcp.CallToolResult, error) {
		if args.Language == "" {
			return mcp.NewToolResultError("language is required"), nil
		}
		code, err := serviceInstance.Router().ParseLanguage(args.Language)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pages, err := serviceInstance.Pages(ctx, code)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list pages: %v", err)), nil
		}
		return jsonResult(ListPagesResponse{Language: code, Pages: pages})
	}
}

func getDocumentHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
		if args.Language == "" {
			return mcp.NewToolResultError("language is required"), nil
		}
		if args.ID == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		code, err := serviceInstance.Router().ParseLanguage(args.Language)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		document, err := serviceInstance.GetDocument(ctx, code, args.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get document: %v", err)), nil
		}
		return jsonResult(GetDocumentResponse{Document: document})
	}
}
