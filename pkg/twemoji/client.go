package twemoji

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const (
	// DefaultBaseURL serves the Twemoji SVG assets.
	DefaultBaseURL = "https://cdn.jsdelivr.net/gh/twitter/twemoji@14.0.2/assets/svg"

	// rasterSize is the supersampled square the SVG is rendered at; the
	// line renderer scales it down to the glyph box.
	rasterSize = 256

	// canonicalDim is the Twemoji artboard size, used when a retrieved
	// asset carries neither explicit dimensions nor a usable viewBox.
	canonicalDim = "36"
)

// Cache is the optional byte cache for retrieved SVG markup. Errors from the
// cache degrade to a direct fetch; a cache never fails a glyph resolution.
type Cache interface {
	Key(parts ...string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Client resolves emoji sequences to rasterized glyph images by fetching the
// corresponding SVG asset from a Twemoji CDN.
type Client struct {
	http     *http.Client
	baseURL  string
	cache    Cache
	cacheTTL time.Duration
}

// NewClient creates a fetcher for the given CDN base URL (DefaultBaseURL when
// empty). cache may be nil.
func NewClient(baseURL string, cache Cache, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Fetch retrieves and rasterizes the glyph for one emoji sequence. It
// implements sticker.GlyphSource.
func (c *Client) Fetch(seq string) (image.Image, error) {
	key := CodePointKey(seq)
	if key == "" {
		return nil, fmt.Errorf("twemoji: empty sequence")
	}

	markup, err := c.fetchSVG(key)
	if err != nil {
		return nil, err
	}

	markup, err = EnsureDimensions(markup)
	if err != nil {
		return nil, fmt.Errorf("twemoji: normalize %s: %w", key, err)
	}

	return rasterize(markup, rasterSize)
}

func (c *Client) fetchSVG(key string) ([]byte, error) {
	ctx := context.Background()

	if c.cache != nil {
		cached, err := c.cache.Get(ctx, c.cache.Key("glyph", key))
		if err == nil && cached != "" {
			return []byte(cached), nil
		}
	}

	url := fmt.Sprintf("%s/%s.svg", c.baseURL, key)
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("twemoji: get %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twemoji: get %s: status %d", key, resp.StatusCode)
	}

	markup, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twemoji: read %s: %w", key, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, c.cache.Key("glyph", key), string(markup), c.cacheTTL); err != nil {
			log.Printf("Glyph cache write failed for %s: %v", key, err)
		}
	}

	return markup, nil
}

// CodePointKey maps an emoji sequence to its Twemoji asset key: lowercase hex
// code points joined by "-". Following the upstream filename convention, the
// variation selector U+FE0F is dropped when the sequence carries no ZWJ.
func CodePointKey(seq string) string {
	runes := []rune(seq)

	hasZWJ := false
	for _, r := range runes {
		if r == 0x200D {
			hasZWJ = true
			break
		}
	}

	parts := make([]string, 0, len(runes))
	for _, r := range runes {
		if r == 0xFE0F && !hasZWJ {
			continue
		}
		parts = append(parts, strconv.FormatInt(int64(r), 16))
	}
	return strings.Join(parts, "-")
}

// EnsureDimensions guarantees the SVG markup carries explicit width and
// height attributes, injecting them from the viewBox (or the canonical 36x36
// artboard) when absent. Some retrieved assets omit explicit sizing, which
// breaks rasterization targets downstream.
func EnsureDimensions(markup []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	svg := doc.Find("svg").First()
	if svg.Length() == 0 {
		return nil, fmt.Errorf("no svg element in markup")
	}

	_, hasW := svg.Attr("width")
	_, hasH := svg.Attr("height")
	if hasW && hasH {
		return markup, nil
	}

	w, h := viewBoxDimensions(svg)
	if !hasW {
		svg.SetAttr("width", w)
	}
	if !hasH {
		svg.SetAttr("height", h)
	}

	out, err := goquery.OuterHtml(svg)
	if err != nil {
		return nil, fmt.Errorf("serialize markup: %w", err)
	}
	return []byte(out), nil
}

func viewBoxDimensions(svg *goquery.Selection) (string, string) {
	vb, ok := svg.Attr("viewBox")
	if !ok {
		// The HTML parser lowercases unknown attribute names.
		vb, ok = svg.Attr("viewbox")
	}
	if ok {
		fields := strings.Fields(vb)
		if len(fields) == 4 {
			return fields[2], fields[3]
		}
	}
	return canonicalDim, canonicalDim
}

func rasterize(markup []byte, size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("twemoji: parse svg: %w", err)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)
	return img, nil
}
