package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hollowpine/kiln/internal/model"
)

// Fetcher downloads model assets over HTTP(S).
type Fetcher struct {
	// client is the HTTP client used for downloads. It deliberately has
	// no timeout: model assets are hundreds of megabytes and the
	// pipeline imposes no time limits on network steps. Cancellation is
	// available through the request context (operator interrupt).
	client *http.Client
}

// NewFetcher creates a Fetcher with a default HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{}}
}

// NewFetcherWithClient creates a Fetcher with a caller-supplied HTTP
// client. Used by tests.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Exists reports whether the asset file is already present. Only a
// regular file counts — a directory at the path is a configuration
// mistake and is treated as absent so the download surfaces the
// conflict as an error.
func (f *Fetcher) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Download fetches the asset at url into path, creating parent
// directories as needed.
//
// The body is streamed to "<path>.partial" and renamed into place only
// after the full response has been written and synced. The rename is
// atomic on POSIX filesystems, so the final path either holds the
// complete download or nothing.
func (f *Fetcher) Download(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to create parent directory for %s", path), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("invalid asset URL %q", url), err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to download %s", url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.NewCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to download %s: server returned %s", url, resp.Status))
	}

	partial := path + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to create %s", partial), err)
	}

	_, copyErr := io.Copy(out, resp.Body)
	if copyErr == nil {
		// Flush to stable storage before the rename publishes the file:
		// the rename's atomicity guarantee is only as good as the data
		// behind it.
		copyErr = out.Sync()
	}
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		// Remove the partial file so a later run restarts the download
		// from scratch instead of trusting a torn write.
		_ = os.Remove(partial)
		if copyErr == nil {
			copyErr = closeErr
		}
		return model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to write %s", partial), copyErr)
	}

	if err := os.Rename(partial, path); err != nil {
		_ = os.Remove(partial)
		return model.WrapCLIError(model.ExitDownloadFailed,
			fmt.Sprintf("failed to move download into place at %s", path), err)
	}
	return nil
}
