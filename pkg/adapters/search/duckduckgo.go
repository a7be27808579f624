package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the JavaScript-free HTML endpoint. No API key is needed.
type DuckDuckGo struct {
	client   *http.Client
	endpoint string
}

// NewDuckDuckGo creates the provider. An empty endpoint uses the public one.
func NewDuckDuckGo(endpoint string) *DuckDuckGo {
	if endpoint == "" {
		endpoint = duckDuckGoURL
	}
	return &DuckDuckGo{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
	}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Results fetches and parses the result page.
func (d *DuckDuckGo) Results(ctx context.Context, query string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	// A desktop User-Agent avoids the bot interstitial.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ddg error: %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ddg: failed to parse html: %w", err)
	}
	return parseDuckDuckGo(doc), nil
}

// parseDuckDuckGo walks the page in document order: every result__a anchor
// opens a result and the next result__snippet fills its snippet.
func parseDuckDuckGo(doc *html.Node) []Result {
	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				link := unwrapRedirect(attr(n, "href"))
				title := strings.TrimSpace(text(n))
				if link != "" && title != "" {
					results = append(results, Result{Title: title, Link: link})
				}
				return
			case hasClass(n, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = strings.TrimSpace(text(n))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

// unwrapRedirect turns //duckduckgo.com/l/?uddg=<target> into <target>.
func unwrapRedirect(raw string) string {
	if !strings.Contains(raw, "uddg=") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
