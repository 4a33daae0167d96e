// Package hub downloads model snapshots from the Hugging Face hub into the
// local models directory. A snapshot is fetched file by file from the
// repository's main revision; files already present with the right size are
// skipped so an interrupted pull can be resumed.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"chatd/internal/common/fsutil"
)

// DefaultBaseURL is the public Hugging Face endpoint.
const DefaultBaseURL = "https://huggingface.co"

// downloadConcurrency bounds parallel file downloads per snapshot.
const downloadConcurrency = 4

// Client talks to a Hugging Face-compatible hub.
type Client struct {
	base  string
	token string
	http  *http.Client
	log   zerolog.Logger
}

// NewClient builds a hub client. An empty baseURL uses the public hub; the
// token may be empty for ungated models.
func NewClient(baseURL, token string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  &http.Client{Timeout: 10 * time.Minute},
		log:   log,
	}
}

// modelInfo is the subset of the hub model API we consume.
type modelInfo struct {
	Siblings []struct {
		Rfilename string `json:"rfilename"`
	} `json:"siblings"`
}

// Snapshot downloads every file of the model repository into
// destDir/<basename of modelID> and returns that directory.
func (c *Client) Snapshot(ctx context.Context, modelID, destDir string) (string, error) {
	if strings.TrimSpace(modelID) == "" {
		return "", fmt.Errorf("empty model id")
	}
	files, err := c.listFiles(ctx, modelID)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("model %s has no files", modelID)
	}
	snapDir := filepath.Join(destDir, path.Base(modelID))
	if err := fsutil.EnsureDir(snapDir); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)
	for _, f := range files {
		f := f
		g.Go(func() error {
			return c.fetchFile(ctx, modelID, f, snapDir)
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	c.log.Info().Str("model", modelID).Str("dir", snapDir).Int("files", len(files)).Msg("snapshot complete")
	return snapDir, nil
}

// listFiles queries the hub model API for the repository file list.
func (c *Client) listFiles(ctx context.Context, modelID string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/models/"+modelID, nil)
	if err != nil {
		return nil, err
	}
	c.auth(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, modelID); err != nil {
		return nil, err
	}
	var info modelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode model info: %w", err)
	}
	files := make([]string, 0, len(info.Siblings))
	for _, s := range info.Siblings {
		if s.Rfilename == "" || strings.Contains(s.Rfilename, "..") {
			continue
		}
		files = append(files, s.Rfilename)
	}
	return files, nil
}

// fetchFile downloads one repository file, skipping it when the local copy
// already has the remote size. Partial downloads go to a .partial file that
// is renamed only on success.
func (c *Client) fetchFile(ctx context.Context, modelID, name, snapDir string) error {
	dest := filepath.Join(snapDir, filepath.FromSlash(name))
	if err := fsutil.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	url := c.base + "/" + modelID + "/resolve/main/" + name

	if size, err := c.remoteSize(ctx, url); err == nil && size > 0 {
		if fi, err := os.Stat(dest); err == nil && fi.Size() == size {
			c.log.Debug().Str("file", name).Msg("already present, skipping")
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.auth(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, modelID); err != nil {
		return err
	}

	tmp := dest + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	c.log.Info().Str("file", name).Int64("bytes", resp.ContentLength).Msg("downloading")
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("download %s: %w", name, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return err
	}
	c.log.Debug().Str("file", name).Int64("bytes", n).Msg("downloaded")
	return nil
}

// remoteSize asks for the file size without downloading the body.
func (c *Client) remoteSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	c.auth(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return 0, fmt.Errorf("head status %d", resp.StatusCode)
	}
	return resp.ContentLength, nil
}

func (c *Client) auth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) checkStatus(resp *http.Response, modelID string) error {
	switch {
	case resp.StatusCode/100 == 2:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("access to %s denied (status %d): set %s for gated models", modelID, resp.StatusCode, "HUGGINGFACE_TOKEN")
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("model %s not found on hub", modelID)
	}
	return fmt.Errorf("hub returned status %d for %s", resp.StatusCode, modelID)
}
