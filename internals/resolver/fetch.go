package resolver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dchest/uniuri"
)

// maxDocumentSize limits manifest bodies. The biggest asset indexes are a few MB
const maxDocumentSize = 64 << 20

func (r *Resolver) get(ctx context.Context, url string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: res.StatusCode, Status: res.Status}
	}
	return io.ReadAll(io.LimitReader(res.Body, maxDocumentSize))
}

// checkSha1 compares the sha1 of data. An empty expected sum always matches
func checkSha1(data []byte, expected string) error {
	if expected == "" {
		return nil
	}
	sum := sha1.Sum(data)
	if actual := hex.EncodeToString(sum[:]); actual != expected {
		return fmt.Errorf("%w: expected sha1 %s but got %s", ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// writeFileAtomic writes to a temporary file next to target and renames it into place
func writeFileAtomic(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return err
	}
	tmp := target + "." + uniuri.New() + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
