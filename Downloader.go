package docfill

import (
	"context"
	"crypto/md5" // #nosec  G501 - allowed weak hash here
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// DownloadClient to use instead of default http.Client
type DownloadClient struct {
}

// Downloader ..
type Downloader interface {
	DownloadFile(ctx context.Context, urlStr string) (tmpFile string, err error)
}

// DefaultDownloader to use as default client
var DefaultDownloader Downloader = &DownloadClient{}

// DownloadFile (satisfy interface) Download url file into temp dir
func (DownloadClient) DownloadFile(ctx context.Context, urlStr string) (tmpFile string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req) // #nosec  G107 - allowed url variable here
	if err != nil {
		return "", err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("download: close: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", http.ErrMissingFile
	}

	// Name by url hash so same url always lands on same temp file
	name := fmt.Sprintf("%x%s", md5.Sum([]byte(urlStr)), path.Ext(urlStr)) // #nosec  G401 - allowed weak hash here
	tmpFile = filepath.Join(os.TempDir(), name)

	out, err := os.Create(tmpFile) // #nosec  G304 - allowed filename variable here
	if err != nil {
		return "", err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Printf("download: close: %s", err)
		}
	}()

	// Write body to file
	if _, err = io.Copy(out, resp.Body); err != nil {
		return "", err
	}
	return tmpFile, nil
}
