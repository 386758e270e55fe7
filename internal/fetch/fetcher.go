package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/watch"
	"github.com/testudo/seatwatch/internal/obs/retry"
)

var (
	reTitle  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	reHead   = regexp.MustCompile(`(?is)<(script|style|head)[^>]*>.*?</(script|style|head)>`)
	reTags   = regexp.MustCompile(`(?s)<[^>]*>`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// Fetcher loads a target page and returns its visible text. Transient
// failures are retried internally; a returned error means all attempts
// failed and the current check should be abandoned.
type Fetcher struct {
	log       *zap.Logger
	session   *Session
	userAgent string
	policy    retry.Policy
}

func NewFetcher(log *zap.Logger, session *Session, userAgent string) *Fetcher {
	l := log.With(zap.String("component", "fetch"))
	return &Fetcher{
		log:       l,
		session:   session,
		userAgent: userAgent,
		policy:    retry.DefaultFetchPolicy(l),
	}
}

// WithPolicy replaces the internal retry policy.
func (f *Fetcher) WithPolicy(p retry.Policy) *Fetcher {
	cp := *f
	cp.policy = p
	return &cp
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*watch.Page, error) {
	url = normalizeURL(url)

	tr := otel.Tracer("fetch")
	ctx, span := tr.Start(ctx, "fetch.page")
	span.SetAttributes(attribute.String("page.url", url))
	defer span.End()

	var page *watch.Page
	err := retry.Do(ctx, func() error {
		p, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		page = p
		return nil
	}, f.policy)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	span.SetAttributes(attribute.Int("page.text_len", len(page.Text)))
	return page, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*watch.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.session.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	html := string(body)
	return &watch.Page{
		Text:  extractText(html),
		Title: extractTitle(html),
		URL:   url,
	}, nil
}

func extractTitle(html string) string {
	if m := reTitle.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(reSpaces.ReplaceAllString(m[1], " "))
	}
	return ""
}

// extractText strips markup and collapses every whitespace run to one space.
func extractText(html string) string {
	text := reHead.ReplaceAllString(html, " ")
	text = reTags.ReplaceAllString(text, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(text, " "))
}

func normalizeURL(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return t
	}
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return t
	}
	return "https://" + t
}
