// Package websearch implements the one concrete tool SPEC_FULL.md ships:
// web_search. Grounded on haasonsaas-nexus's internal/tools/websearch
// (Config/SearchBackend selection, JSON-schema-described parameters,
// backend-per-request selection), trimmed to the two backends this module
// actually wires (SearXNG, Brave) plus a deterministic stub used whenever
// neither is configured, so the tool (and the workflow that calls it) stays
// exercisable without network access or API credentials.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/trussdev/agentcore/agentcoreerr"
)

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Response is the tool's return value, JSON-marshaled into
// agentmodel.ToolCallResult.Content by the caller.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	// Source identifies which backend answered: "searxng", "brave", or
	// "stub" when no backend is configured.
	Source string `json:"source"`
}

// Config selects and authenticates the backend. An empty Config (all
// fields zero) is valid and makes Tool operate purely in stub mode.
type Config struct {
	// SearXNGURL, when set, is the base URL of a SearXNG instance queried
	// via its JSON search API.
	SearXNGURL string
	// BraveAPIKey, when set, authenticates requests to the Brave Search API.
	BraveAPIKey string
	// DefaultResultCount bounds how many results are returned when the
	// caller does not specify result_count. Defaults to 5.
	DefaultResultCount int
}

// ConfigFromEnv builds a Config from SEARXNG_URL and BRAVE_API_KEY,
// matching spec.md §6's documented environment variables.
func ConfigFromEnv(lookup func(string) (string, bool)) Config {
	cfg := Config{DefaultResultCount: 5}
	if v, ok := lookup("SEARXNG_URL"); ok {
		cfg.SearXNGURL = v
	}
	if v, ok := lookup("BRAVE_API_KEY"); ok {
		cfg.BraveAPIKey = v
	}
	return cfg
}

// Tool implements tools.Tool for web_search.
type Tool struct {
	config     Config
	httpClient *http.Client
}

// New constructs a Tool. A zero Config is valid (stub-only mode).
func New(config Config) *Tool {
	if config.DefaultResultCount <= 0 {
		config.DefaultResultCount = 5
	}
	return &Tool{
		config:     config,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *Tool) Name() string { return "web_search" }

func (t *Tool) Description() string {
	return "Search the web for information relevant to the query and return a short list of titled results with snippets."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
			"result_count": map[string]any{
				"type":        "integer",
				"description": "Number of results to return (default 5, max 20)",
				"minimum":     1,
				"maximum":     20,
			},
		},
		"required": []string{"query"},
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return b
}

// Execute runs the search. Arguments must contain a non-empty "query"
// string; "result_count" is optional. When neither SearXNGURL nor
// BraveAPIKey is configured, Execute returns a deterministic stub response
// (spec.md §4.C, §6) instead of making a network call, so the tool, and any
// workflow exercising it, behaves identically with or without live search
// credentials.
func (t *Tool) Execute(ctx context.Context, arguments map[string]any) (any, error) {
	query, _ := arguments["query"].(string)
	if query == "" {
		return nil, agentcoreerr.New(agentcoreerr.KindInvalidInput, "query is required")
	}
	count := t.config.DefaultResultCount
	if rc, ok := arguments["result_count"].(float64); ok && rc > 0 {
		count = int(rc)
		if count > 20 {
			count = 20
		}
	}

	switch {
	case t.config.SearXNGURL != "":
		resp, err := t.searchSearXNG(ctx, query, count)
		if err != nil {
			return nil, err
		}
		return resp, nil
	case t.config.BraveAPIKey != "":
		resp, err := t.searchBrave(ctx, query, count)
		if err != nil {
			return nil, err
		}
		return resp, nil
	default:
		return stubResponse(query, count), nil
	}
}

func stubResponse(query string, count int) Response {
	results := make([]Result, 0, count)
	for i := 0; i < count; i++ {
		results = append(results, Result{
			Title:   fmt.Sprintf("Stub result for %s", query),
			URL:     fmt.Sprintf("https://example.invalid/search?q=%s&r=%d", url.QueryEscape(query), i+1),
			Snippet: "No search backend is configured; this is a deterministic placeholder result.",
		})
	}
	return Response{Query: query, Results: results, Source: "stub"}
}

func (t *Tool) searchSearXNG(ctx context.Context, query string, count int) (Response, error) {
	u, err := url.Parse(t.config.SearXNGURL)
	if err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "invalid searxng url")
	}
	u.Path = "/search"
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "build searxng request")
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "searxng request")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Response{}, agentcoreerr.New(agentcoreerr.KindToolExecutionFailed, "searxng returned status %d", resp.StatusCode)
	}

	var raw struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "read searxng response")
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "decode searxng response")
	}

	out := Response{Query: query, Source: "searxng"}
	for i, r := range raw.Results {
		if i >= count {
			break
		}
		out.Results = append(out.Results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return out, nil
}

func (t *Tool) searchBrave(ctx context.Context, query string, count int) (Response, error) {
	u := &url.URL{Scheme: "https", Host: "api.search.brave.com", Path: "/res/v1/web/search"}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", count))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "build brave request")
	}
	req.Header.Set("X-Subscription-Token", t.config.BraveAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "brave request")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Response{}, agentcoreerr.New(agentcoreerr.KindToolExecutionFailed, "brave returned status %d", resp.StatusCode)
	}

	var raw struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "read brave response")
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Response{}, agentcoreerr.Wrap(agentcoreerr.KindToolExecutionFailed, err, "decode brave response")
	}

	out := Response{Query: query, Source: "brave"}
	for i, r := range raw.Web.Results {
		if i >= count {
			break
		}
		out.Results = append(out.Results, Result{Title: r.Title, URL: r.URL, Snippet: r.Description})
	}
	return out, nil
}
