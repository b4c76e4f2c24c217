package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agenthands/sift/internal/config"
	"github.com/agenthands/sift/internal/core/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const duckDuckGoName = "duckduckgo"

// DuckDuckGo queries the no-JavaScript HTML endpoint and scrapes the result list.
type DuckDuckGo struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   CircuitBreaker
	log       *logrus.Entry
}

func NewDuckDuckGo(cfg config.SearchConfig, log *logrus.Entry) (*DuckDuckGo, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	var limiter *rate.Limiter
	if cfg.RateInterval > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Every(time.Duration(cfg.RateInterval)*time.Millisecond), burst)
	}

	d := &DuckDuckGo{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		limiter:   limiter,
		breaker: NewCircuitBreaker(duckDuckGoName,
			time.Duration(cfg.BreakerTimeout)*time.Second, cfg.BreakerMaxFailures),
		log: log.WithField("backend", duckDuckGoName),
	}

	client, err := newHTTPClient(cfg.Proxy, time.Duration(cfg.Timeout)*time.Second)
	if err != nil {
		return nil, err
	}
	d.client = client

	return d, nil
}

func (d *DuckDuckGo) Name() string { return duckDuckGoName }

// WithOptions returns a copy using its own HTTP client. The rate limiter and
// circuit breaker stay shared with the parent.
func (d *DuckDuckGo) WithOptions(opts Options) (Backend, error) {
	client, err := newHTTPClient(opts.Proxy, opts.Timeout)
	if err != nil {
		return nil, err
	}
	cp := *d
	cp.client = client
	return &cp, nil
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]model.Result, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var results []model.Result
	err := d.breaker.Execute(func() error {
		var err error
		results, err = d.fetch(ctx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search %q: %w", query, err)
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	d.log.WithFields(logrus.Fields{
		"query":   query,
		"results": len(results),
	}).Debug("backend search complete")

	return results, nil
}

func (d *DuckDuckGo) fetch(ctx context.Context, query string) ([]model.Result, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return ParseDuckDuckGoHTML(resp.Body)
}

// ParseDuckDuckGoHTML extracts organic results from an html.duckduckgo.com page.
func ParseDuckDuckGoHTML(r io.Reader) ([]model.Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var results []model.Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "result") {
			if !hasClass(n, "result--ad") {
				if res, ok := extractResult(n); ok {
					results = append(results, res)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

func extractResult(n *html.Node) (model.Result, bool) {
	var res model.Result
	found := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				res.Title = textContent(n)
				res.URL = unwrapRedirect(attr(n, "href"))
				found = true
				return
			case hasClass(n, "result__snippet"):
				res.Snippet = textContent(n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return res, found
}

// unwrapRedirect turns //duckduckgo.com/l/?uddg=<target> links into the target URL.
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func newHTTPClient(proxy string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		u, err := parseProxy(proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	case "socks5h":
		// net/http resolves hostnames through the socks5 proxy already
		u.Scheme = "socks5"
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidProxy)
	}
	return u, nil
}
