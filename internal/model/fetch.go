package model

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Progress is the byte count of an in-flight fetch. Total is zero when
// unknown.
type Progress struct {
	Received int64
	Total    int64
}

// Fraction returns Received/Total, or false when the total is unknown.
func (p Progress) Fraction() (float32, bool) {
	if p.Total <= 0 {
		return 0, false
	}
	f := float32(p.Received) / float32(p.Total)
	if f > 1 {
		f = 1
	}
	return f, true
}

// Fetcher reads the asset at path, reporting progress as it goes.
type Fetcher func(ctx context.Context, path string, progress func(Progress)) ([]byte, error)

// IsURL reports whether path is fetched over HTTP.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// NewFetcher returns a Fetcher for local files and http(s) URLs. A nil
// client means http.DefaultClient.
func NewFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, path string, progress func(Progress)) ([]byte, error) {
		if IsURL(path) {
			return fetchHTTP(ctx, client, path, progress)
		}
		return fetchFile(ctx, path, progress)
	}
}

func fetchFile(ctx context.Context, path string, progress func(Progress)) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var total int64
	if st, err := f.Stat(); err == nil {
		total = st.Size()
	}
	return readAll(ctx, f, total, progress)
}

func fetchHTTP(ctx context.Context, client *http.Client, url string, progress func(Progress)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	return readAll(ctx, resp.Body, total, progress)
}

const chunk = 32 << 10

func readAll(ctx context.Context, r io.Reader, total int64, progress func(Progress)) ([]byte, error) {
	buf := make([]byte, 0, max(total, chunk))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(buf) == cap(buf) {
			buf = append(buf, 0)[:len(buf)]
		}
		n, err := r.Read(buf[len(buf):min(cap(buf), len(buf)+chunk)])
		buf = buf[:len(buf)+n]
		if n > 0 && progress != nil {
			progress(Progress{Received: int64(len(buf)), Total: total})
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
