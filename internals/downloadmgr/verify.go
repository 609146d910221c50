package downloadmgr

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"os"
)

// Verify reports whether the target of task already exists with the expected size & sha1.
// Tasks without a sha1 are verified by their size only.
func Verify(task Task) (bool, error) {
	info, err := os.Stat(task.Target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}
	if task.Size > 0 && info.Size() != task.Size {
		return false, nil
	}
	if task.SHA1 == "" {
		return true, nil
	}

	actual, err := fileSha1(task.Target)
	if err != nil {
		return false, err
	}
	return actual == task.SHA1, nil
}

func fileSha1(p string) (string, error) {
	src, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer src.Close()

	hasher := sha1.New()
	// probably io error during hashing
	if _, err := io.Copy(hasher, src); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
