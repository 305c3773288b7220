// Package index lists published versions from a PEP 503 style HTML package index.
package index

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

const (
	httpClientTimeout = 30 * time.Second
	// maxPageSize bounds the index page read for one package.
	maxPageSize = 16 << 20
)

var (
	_ ports.VersionSource = (*Source)(nil)
	_ ports.Pinger        = (*Source)(nil)
)

// Source implements ports.VersionSource over an HTML package index.
type Source struct {
	baseURL      string
	httpClient   *http.Client
	requestGroup singleflight.Group
}

// NewSource creates a Source for the index rooted at baseURL.
func NewSource(baseURL string) *Source {
	return NewSourceWithClient(baseURL, &http.Client{Timeout: httpClientTimeout})
}

// NewSourceWithClient creates a Source that uses client for all requests.
func NewSourceWithClient(baseURL string, client *http.Client) *Source {
	return &Source{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// ListVersions fetches <base>/<name>/ and returns the versions of every archive it links.
// Identical concurrent queries share one request. A package the index does not know yields an empty set.
func (s *Source) ListVersions(ctx context.Context, name string) (domain.VersionSet, error) {
	pageURL, err := s.packageURL(name)
	if err != nil {
		return domain.VersionSet{}, err
	}

	result, err, _ := s.requestGroup.Do(pageURL, func() (any, error) {
		return s.fetchVersions(ctx, pageURL, name)
	})
	if err != nil {
		return domain.VersionSet{}, err
	}
	return result.(domain.VersionSet), nil
}

// Ping checks that the base URL answers with 200.
func (s *Source) Ping(ctx context.Context) error {
	body, status, err := s.get(ctx, s.baseURL)
	if err != nil {
		return err
	}
	_ = body.Close()
	if status != http.StatusOK {
		return zerr.With(zerr.With(domain.ErrIndexUnreachable, "url", redact(s.baseURL)), "status_code", status)
	}
	return nil
}

func (s *Source) fetchVersions(ctx context.Context, pageURL, name string) (domain.VersionSet, error) {
	body, status, err := s.get(ctx, pageURL)
	if err != nil {
		return domain.VersionSet{}, err
	}
	defer func() { _ = body.Close() }()

	if status == http.StatusNotFound {
		return domain.NewVersionSet(), nil
	}
	if status != http.StatusOK {
		return domain.VersionSet{}, zerr.With(zerr.With(domain.ErrIndexUnreachable, "url", redact(pageURL)), "status_code", status)
	}

	fileNames, err := ParseAnchors(io.LimitReader(body, maxPageSize))
	if err != nil {
		return domain.VersionSet{}, zerr.With(err, "url", redact(pageURL))
	}

	set := domain.NewVersionSet()
	for _, fileName := range fileNames {
		archive, err := domain.ParseArchiveName(fileName)
		if err != nil {
			err = zerr.With(zerr.Wrap(err, domain.ErrMalformedIndex.Error()), "anchor", fileName)
			return domain.VersionSet{}, zerr.With(err, "url", redact(pageURL))
		}
		if !archive.Matches(name) {
			continue
		}
		set.Add(archive.Version)
	}
	return set, nil
}

func (s *Source) get(ctx context.Context, target string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, 0, zerr.With(zerr.Wrap(err, domain.ErrIndexUnreachable.Error()), "url", redact(target))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, zerr.With(zerr.Wrap(err, domain.ErrIndexUnreachable.Error()), "url", redact(target))
	}
	return resp.Body, resp.StatusCode, nil
}

// packageURL joins the base URL and the package name, treating the base as a directory.
func (s *Source) packageURL(name string) (string, error) {
	base, err := url.Parse(s.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", zerr.With(domain.ErrIndexUnreachable, "url", redact(s.baseURL))
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.JoinPath(domain.NormalizeName(name)).String() + "/", nil
}

// ParseAnchors returns the trimmed text of every <a> element of an HTML page.
func ParseAnchors(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrMalformedIndex.Error())
	}

	var anchors []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			anchors = append(anchors, strings.TrimSpace(text(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return anchors, nil
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// redact masks passwords embedded in index URLs before they reach logs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
