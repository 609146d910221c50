package downloadmgr

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
	"github.com/dchest/uniuri"
)

const chunkSize = 32 * 1024

// fetch downloads the task once. The body is written to a temporary file in the target
// directory while it is hashed. The file is only renamed to the target if it matches.
// Local errors & checksum mismatches are returned as permanent errors.
func (d *DownloadManager) fetch(ctx context.Context, task Task, sink Sink) (int64, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(task.Target), os.ModePerm); err != nil {
		return 0, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", task.URL, nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	res, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, &StatusError{URL: task.URL, StatusCode: res.StatusCode, Status: res.Status}
	}

	tmp := task.Target + "." + uniuri.New() + ".part"
	dest, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	done := false
	defer func() {
		if !done {
			dest.Close()
			os.Remove(tmp)
		}
	}()

	hasher := sha1.New()
	w := io.MultiWriter(dest, hasher)
	buf := make([]byte, chunkSize)
	var written int64
	for {
		// cancellation is checked between chunks
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := res.Body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, backoff.Permanent(err)
			}
			written += int64(n)
			sink.Bytes(int64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, readErr
		}
		if task.Size > 0 && written > task.Size {
			return written, backoff.Permanent(&ErrInvalidSize{task.Target, task.Size, written})
		}
	}

	if err := dest.Sync(); err != nil {
		return written, backoff.Permanent(err)
	}
	if err := dest.Close(); err != nil {
		return written, backoff.Permanent(err)
	}

	if task.Size > 0 && written != task.Size {
		return written, backoff.Permanent(&ErrInvalidSize{task.Target, task.Size, written})
	}
	if task.SHA1 != "" {
		actual := hex.EncodeToString(hasher.Sum(nil))
		if actual != task.SHA1 {
			return written, backoff.Permanent(&ErrInvalidSha{task.Target, task.SHA1, actual})
		}
	}

	if err := os.Rename(tmp, task.Target); err != nil {
		os.Remove(tmp)
		done = true
		return written, backoff.Permanent(err)
	}
	done = true
	return written, nil
}
