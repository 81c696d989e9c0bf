// Package assets loads images in the background for the simulation. Loads of
// the same source are coalesced, results are cached, and failures are
// reported once and never retried.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Result is a finished load. Tag is whatever the requester passed along.
type Result struct {
	Source string
	Tag    any
	Image  image.Image
	Err    error
}

// Observer is told the outcome of every fetch, not every request.
type Observer interface {
	TextureLoaded(source string, err error)
}

type Options struct {
	// Files serves relative sources. A nil Files fails every relative source.
	Files fs.FS
	// Client fetches http and https sources.
	Client   *http.Client
	Timeout  time.Duration
	Buffer   int
	Observer Observer
}

const (
	defaultTimeout = 15 * time.Second
	defaultBuffer  = 64
)

var ErrNoFiles = errors.New("no texture directory configured")

// Loader runs fetches on their own goroutines and delivers results on a
// channel the simulation drains each frame.
type Loader struct {
	files    fs.FS
	client   *http.Client
	timeout  time.Duration
	observer Observer

	group   singleflight.Group
	mu      sync.Mutex
	cache   map[string]cached
	results chan Result

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type cached struct {
	img image.Image
	err error
}

func NewLoader(opts Options) *Loader {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		files:    opts.Files,
		client:   opts.Client,
		timeout:  opts.Timeout,
		observer: opts.Observer,
		cache:    make(map[string]cached),
		results:  make(chan Result, opts.Buffer),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Request starts loading source and returns immediately.
func (l *Loader) Request(source string, tag any) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		img, err := l.Load(l.ctx, source)
		select {
		case l.results <- Result{Source: source, Tag: tag, Image: img, Err: err}:
		case <-l.ctx.Done():
		}
	}()
}

func (l *Loader) Results() <-chan Result {
	return l.results
}

// Load fetches and decodes source, sharing the work with concurrent callers
// and remembering the outcome.
func (l *Loader) Load(ctx context.Context, source string) (image.Image, error) {
	l.mu.Lock()
	if c, ok := l.cache[source]; ok {
		l.mu.Unlock()
		return c.img, c.err
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(source, func() (any, error) {
		img, err := l.fetch(ctx, source)
		if ctx.Err() == nil {
			l.mu.Lock()
			l.cache[source] = cached{img: img, err: err}
			l.mu.Unlock()
		}
		if err != nil {
			log.Printf("assets: %s: %v", source, err)
		}
		if l.observer != nil {
			l.observer.TextureLoaded(source, err)
		}
		return img, err
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (l *Loader) fetch(ctx context.Context, source string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var (
		rc  io.ReadCloser
		err error
	)
	if IsRemote(source) {
		rc, err = l.get(ctx, source)
	} else {
		rc, err = l.open(source)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return img, nil
}

func (l *Loader) open(source string) (io.ReadCloser, error) {
	if l.files == nil {
		return nil, ErrNoFiles
	}
	f, err := l.files.Open(strings.TrimPrefix(source, "/"))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	return f, nil
}

func (l *Loader) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// Close cancels outstanding loads and waits for their goroutines.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
