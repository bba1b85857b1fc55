// Package assets loads the pictures shown by image shapes. Loads run in the
// background; callers poll a Handle and draw a placeholder until it is ready.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/reflow/truncate"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxSize caps the bytes read for a single image.
const MaxSize = 32 << 20

var (
	ErrEmptySource = errors.New("empty image source")
	ErrBadDataURL  = errors.New("malformed data url")
)

// namespace scopes the cache keys derived from sources.
var namespace = uuid.MustParse("6f1c5f3e-4b7a-4bd5-9a43-2f6f0c1e9d20")

// Key returns the cache key for a source string.
func Key(src string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(src))
}

type State int

const (
	Pending State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "pending"
}

// Handle is the result of a load that may still be running.
type Handle struct {
	Source string
	Key    uuid.UUID

	done chan struct{}
	img  image.Image
	err  error
}

// Ready returns the decoded image without blocking.
func (h *Handle) Ready() (image.Image, bool) {
	select {
	case <-h.done:
		return h.img, h.err == nil
	default:
		return nil, false
	}
}

func (h *Handle) State() State {
	select {
	case <-h.done:
		if h.err != nil {
			return Failed
		}
		return Loaded
	default:
		return Pending
	}
}

// Err returns the load error once the handle has settled.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the load settles or ctx ends.
func (h *Handle) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-h.done:
		return h.img, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loader starts loads and caches their handles by source.
type Loader struct {
	BaseDir string

	client  *http.Client
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	handles map[uuid.UUID]*Handle
	updates chan string
}

func NewLoader(baseDir string) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		BaseDir: baseDir,
		client:  &http.Client{Timeout: 20 * time.Second},
		ctx:     ctx,
		cancel:  cancel,
		handles: map[uuid.UUID]*Handle{},
		updates: make(chan string, 16),
	}
}

// Updates delivers the source of every load that settles. Deliveries are
// dropped when nobody is listening.
func (l *Loader) Updates() <-chan string { return l.updates }

// Load returns the handle for src, starting a load the first time a source
// is seen.
func (l *Loader) Load(src string) *Handle {
	key := Key(src)
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.handles[key]; ok {
		return h
	}
	h := &Handle{Source: src, Key: key, done: make(chan struct{})}
	l.handles[key] = h
	go l.run(h)
	return h
}

// Forget drops the cached handle so the next Load fetches again.
func (l *Loader) Forget(src string) {
	l.mu.Lock()
	delete(l.handles, Key(src))
	l.mu.Unlock()
}

// Close cancels loads in flight.
func (l *Loader) Close() {
	l.cancel()
}

func (l *Loader) run(h *Handle) {
	start := time.Now()
	h.img, h.err = l.fetch(l.ctx, h.Source)
	close(h.done)
	if h.err != nil {
		slog.Warn("image load failed", "src", abbreviate(h.Source), "err", h.err)
	} else {
		b := h.img.Bounds()
		slog.Debug("image loaded", "src", abbreviate(h.Source),
			"width", b.Dx(), "height", b.Dy(), "took", time.Since(start))
	}
	select {
	case l.updates <- h.Source:
	default:
	}
}

func (l *Loader) fetch(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}
	rc, err := l.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, _, err := Decode(io.LimitReader(rc, MaxSize))
	return img, err
}

func (l *Loader) open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		data, err := parseDataURL(src)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch image: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch image: unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	}
	path := strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(path) && l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}

// Decode sniffs and decodes png, jpeg, gif, bmp and webp data.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// parseDataURL returns the payload of data:[<mediatype>][;base64],<data>.
func parseDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, ErrBadDataURL
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return []byte(s), nil
}

// abbreviate shortens long sources, data: URLs mostly, for log lines.
func abbreviate(src string) string {
	return truncate.StringWithTail(src, 64, "...")
}
