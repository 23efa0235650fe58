// Package oembed resolves pasted links into embeddable HTML fragments using
// the providers' public oEmbed endpoints.
//
// Results are sanitised before they are returned: only markup from the
// provider's own iframe hosts survives, scripts never do.
package oembed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultMaxWidth = 640

	maxResponseSize = 1 << 20
)

var (
	ErrNoProvider = errors.New("oembed: no provider for url")
	ErrEmptyEmbed = errors.New("oembed: provider returned no html")
)

// StatusError is returned when a provider answers with a non-200 status.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oembed: %s answered %d", e.Provider, e.Code)
}

// Response is the subset of the oEmbed 1.0 response we consume.
type Response struct {
	Type         string      `json:"type"`
	Version      string      `json:"version"`
	Title        string      `json:"title"`
	AuthorName   string      `json:"author_name"`
	ProviderName string      `json:"provider_name"`
	HTML         string      `json:"html"`
	URL          string      `json:"url"`
	Width        json.Number `json:"width"`
	Height       json.Number `json:"height"`
}

type Options struct {
	Client    *http.Client
	Timeout   time.Duration
	MaxWidth  int
	Providers []Provider
}

type Resolver struct {
	client    *http.Client
	maxWidth  int
	providers []Provider
	policy    *bluemonday.Policy

	group singleflight.Group
}

func NewResolver(opts Options) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.Providers == nil {
		opts.Providers = DefaultProviders()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Resolver{
		client:    client,
		maxWidth:  opts.MaxWidth,
		providers: opts.Providers,
		policy:    newPolicy(opts.Providers),
	}
}

func newPolicy(providers []Provider) *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	var hosts []string
	for _, prov := range providers {
		for _, h := range prov.IframeHosts {
			hosts = append(hosts, regexp.QuoteMeta(h))
		}
	}
	if len(hosts) > 0 {
		src := regexp.MustCompile(`^(?:https:)?//(?:` + strings.Join(hosts, "|") + `)(?:[/?#]|$)`)
		p.AllowElements("iframe")
		p.AllowAttrs("src").Matching(src).OnElements("iframe")
		p.AllowAttrs("width", "height").Matching(bluemonday.Number).OnElements("iframe")
		p.AllowAttrs("frameborder", "allow", "allowfullscreen", "title", "loading", "referrerpolicy").OnElements("iframe")
	}
	return p
}

// Provider returns the provider responsible for rawURL.
func (r *Resolver) Provider(rawURL string) (*Provider, bool) {
	rawURL = strings.TrimSpace(rawURL)
	for i := range r.providers {
		if r.providers[i].Matches(rawURL) {
			return &r.providers[i], true
		}
	}
	return nil, false
}

// Embed returns sanitised embed HTML for rawURL. Concurrent lookups of the
// same URL share a single provider request.
func (r *Resolver) Embed(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	p, ok := r.Provider(rawURL)
	if !ok {
		return "", ErrNoProvider
	}

	v, err, _ := r.group.Do(rawURL, func() (interface{}, error) {
		res, err := r.Fetch(ctx, p, rawURL)
		if err != nil {
			return "", err
		}
		return r.render(res)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Fetch performs the raw oEmbed request.
func (r *Resolver) Fetch(ctx context.Context, p *Provider, rawURL string) (*Response, error) {
	endpoint, err := url.Parse(p.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("oembed: bad endpoint for %s: %w", p.Name, err)
	}
	q := endpoint.Query()
	q.Set("url", rawURL)
	q.Set("format", "json")
	q.Set("maxwidth", strconv.Itoa(r.maxWidth))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed: %s: %w", p.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, &StatusError{Provider: p.Name, Code: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return nil, fmt.Errorf("oembed: decode %s response: %w", p.Name, err)
	}
	return &out, nil
}

func (r *Resolver) render(res *Response) (string, error) {
	var fragment string
	switch res.Type {
	case "photo":
		if res.URL == "" {
			return "", ErrEmptyEmbed
		}
		fragment = fmt.Sprintf(`<img src="%s" alt="%s"`, html.EscapeString(res.URL), html.EscapeString(res.Title))
		if w := res.Width.String(); w != "" {
			fragment += fmt.Sprintf(` width="%s"`, html.EscapeString(w))
		}
		if h := res.Height.String(); h != "" {
			fragment += fmt.Sprintf(` height="%s"`, html.EscapeString(h))
		}
		fragment += ` />`
	default:
		fragment = res.HTML
	}

	clean := strings.TrimSpace(r.policy.Sanitize(fragment))
	if clean == "" {
		return "", ErrEmptyEmbed
	}
	return clean, nil
}
