package utils

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

// DownloadImage fetches the url into a temporary file, rewound for reading.
func DownloadImage(ctx context.Context, url string) (*os.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid image URI %s", url)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to download image file from URI %s", url)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unable to download image file from URI %s, status %s", url, res.Status)
	}

	tmpfile, err := os.CreateTemp("", "trimesh")
	if err != nil {
		return nil, errors.Wrap(err, "unable to create temporary file")
	}
	if _, err := io.Copy(tmpfile, res.Body); err != nil {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
		return nil, errors.Wrap(err, "unable to copy the source URI into the temporary file")
	}
	if _, err := tmpfile.Seek(0, io.SeekStart); err != nil {
		tmpfile.Close()
		return nil, errors.Wrap(err, "unable to rewind the temporary file")
	}
	return tmpfile, nil
}
