package downloadmgr

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

type fileServer struct {
	*httptest.Server
	mu       sync.Mutex
	files    map[string][]byte
	requests map[string]int
	// failures makes the next n requests of a path respond with 503
	failures map[string]int
	delay    time.Duration
}

func newFileServer(t *testing.T, files map[string][]byte) *fileServer {
	fs := &fileServer{files: files, requests: make(map[string]int), failures: make(map[string]int)}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.requests[r.URL.Path]++
		fail := fs.failures[r.URL.Path] > 0
		if fail {
			fs.failures[r.URL.Path]--
		}
		body, ok := fs.files[r.URL.Path]
		delay := fs.delay
		fs.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		switch {
		case fail:
			w.WriteHeader(http.StatusServiceUnavailable)
		case !ok:
			http.NotFound(w, r)
		default:
			w.Write(body)
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fileServer) total() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := 0
	for _, c := range fs.requests {
		n += c
	}
	return n
}

func (fs *fileServer) count(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests[path]
}

// tasks returns one task per file, sorted by name
func (fs *fileServer) tasks(dir string, names ...string) []Task {
	tasks := make([]Task, 0, len(names))
	for _, name := range names {
		body := fs.files["/"+name]
		tasks = append(tasks, Task{
			URL:    fs.URL + "/" + name,
			Target: filepath.Join(dir, "objects", name),
			SHA1:   sha1Hex(body),
			Size:   int64(len(body)),
			Kind:   KindAsset,
		})
	}
	return tasks
}

func testManager(client *http.Client) *DownloadManager {
	m := New(client)
	m.InitialInterval = time.Millisecond
	return m
}

func TestExecute_DownloadsAndSkips(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{
		"/a": []byte("first file"),
		"/b": []byte("second file"),
		"/c": []byte("third"),
	})
	dir := t.TempDir()
	tasks := srv.tasks(dir, "a", "b", "c")
	m := testManager(srv.Client())

	var bytes int64
	var done int32
	sink := SinkFuncs{
		OnBytes:    func(n int64) { atomic.AddInt64(&bytes, n) },
		OnTaskDone: func(r Result) { atomic.AddInt32(&done, 1) },
	}

	report := m.Execute(context.Background(), tasks, 2, sink)
	require.True(t, report.OK(), "unexpected failures: %v", report.Err())
	assert.Equal(t, tasks, report.Succeeded, "report should keep task order")
	assert.Empty(t, report.Skipped)
	assert.EqualValues(t, 26, bytes)
	assert.EqualValues(t, 3, done)
	assert.EqualValues(t, 26, report.Bytes)

	content, err := os.ReadFile(tasks[1].Target)
	require.NoError(t, err)
	assert.Equal(t, "second file", string(content))

	// everything is present now: no requests at all
	before := srv.total()
	report = m.Execute(context.Background(), tasks, 2, nil)
	require.True(t, report.OK())
	assert.Equal(t, tasks, report.Skipped)
	assert.Empty(t, report.Succeeded)
	assert.Equal(t, before, srv.total(), "present files should not be requested")
}

func TestExecute_RefetchesAlteredFile(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/a": []byte("original content")})
	dir := t.TempDir()
	tasks := srv.tasks(dir, "a")
	m := testManager(srv.Client())

	require.True(t, m.Execute(context.Background(), tasks, 1, nil).OK())

	// same size, other bytes
	require.NoError(t, os.WriteFile(tasks[0].Target, []byte("tampered content"), 0o644))

	report := m.Execute(context.Background(), tasks, 1, nil)
	require.True(t, report.OK())
	assert.Len(t, report.Succeeded, 1)
	assert.Equal(t, 2, srv.count("/a"))

	content, err := os.ReadFile(tasks[0].Target)
	require.NoError(t, err)
	assert.Equal(t, "original content", string(content))
}

// countingTransport records the maximum number of simultaneous requests
type countingTransport struct {
	inner    http.RoundTripper
	inFlight int32
	max      int32
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	now := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)
	for {
		old := atomic.LoadInt32(&c.max)
		if now <= old || atomic.CompareAndSwapInt32(&c.max, old, now) {
			break
		}
	}
	return c.inner.RoundTrip(req)
}

func TestExecute_ConcurrencyLimit(t *testing.T) {
	files := make(map[string][]byte)
	names := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("obj%02d", i)
		names = append(names, name)
		files["/"+name] = []byte("content of " + name)
	}
	srv := newFileServer(t, files)
	srv.delay = 20 * time.Millisecond

	transport := &countingTransport{inner: srv.Client().Transport}
	m := testManager(&http.Client{Transport: transport})

	report := m.Execute(context.Background(), srv.tasks(t.TempDir(), names...), 3, nil)
	require.True(t, report.OK(), "unexpected failures: %v", report.Err())
	assert.Len(t, report.Succeeded, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&transport.max), int32(3))
	assert.Greater(t, atomic.LoadInt32(&transport.max), int32(1), "downloads should run in parallel")
}

func TestExecute_ChecksumMismatch(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/a": []byte("served content")})
	dir := t.TempDir()
	tasks := srv.tasks(dir, "a")
	tasks[0].SHA1 = sha1Hex([]byte("expected content"))

	report := testManager(srv.Client()).Execute(context.Background(), tasks, 1, nil)
	require.Len(t, report.Failed, 1)
	failure := report.Failed[0]
	assert.Equal(t, FailureChecksumMismatch, failure.Kind)
	var shaErr *ErrInvalidSha
	assert.ErrorAs(t, failure.Err, &shaErr)
	assert.Equal(t, 1, srv.count("/a"), "checksum mismatches are not retried")

	assert.NoFileExists(t, tasks[0].Target)
	leftovers, _ := filepath.Glob(filepath.Join(dir, "objects", "*.part"))
	assert.Empty(t, leftovers, "temporary files should be removed")
}

func TestExecute_RetriesTransientFailures(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/a": []byte("eventually"), "/b": []byte("never")})
	srv.failures["/a"] = 2
	srv.failures["/b"] = 100
	tasks := srv.tasks(t.TempDir(), "a", "b")

	m := testManager(srv.Client())
	m.MaxAttempts = 3
	report := m.Execute(context.Background(), tasks, 2, nil)

	assert.Equal(t, []Task{tasks[0]}, report.Succeeded)
	assert.Equal(t, 3, srv.count("/a"))

	require.Len(t, report.Failed, 1)
	assert.Equal(t, FailureTransient, report.Failed[0].Kind)
	assert.Equal(t, 3, srv.count("/b"), "transient failures should be tried MaxAttempts times")
}

func TestExecute_PermanentFailure(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/a": []byte("a")})
	dir := t.TempDir()
	tasks := append(srv.tasks(dir, "a"), Task{URL: srv.URL + "/missing", Target: filepath.Join(dir, "missing"), Kind: KindLibrary})

	report := testManager(srv.Client()).Execute(context.Background(), tasks, 2, nil)
	assert.Len(t, report.Succeeded, 1, "a failed task should not stop others")
	require.Len(t, report.Failed, 1)
	assert.Equal(t, FailurePermanent, report.Failed[0].Kind)
	assert.Equal(t, 1, srv.count("/missing"))

	var statusErr *StatusError
	require.ErrorAs(t, report.Err(), &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestExecute_Timeout(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/slow": []byte("slow")})
	srv.delay = time.Second

	m := testManager(srv.Client())
	m.Timeout = 20 * time.Millisecond
	m.MaxAttempts = 2
	report := m.Execute(context.Background(), srv.tasks(t.TempDir(), "slow"), 1, nil)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, FailureTransient, report.Failed[0].Kind)
	assert.Equal(t, 2, srv.count("/slow"), "timeouts should be retried")
}

func TestExecute_Canceled(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/a": []byte("a"), "/b": []byte("b")})
	dir := t.TempDir()
	tasks := srv.tasks(dir, "a", "b")
	m := testManager(srv.Client())

	// a is verified already
	require.True(t, m.Execute(context.Background(), tasks[:1], 1, nil).OK())
	before := srv.total()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := m.Execute(ctx, tasks, 1, nil)

	require.Len(t, report.Failed, 2)
	for _, f := range report.Failed {
		assert.Equal(t, FailureCanceled, f.Kind)
	}
	assert.Equal(t, before, srv.total(), "canceled tasks should not start")
	assert.FileExists(t, tasks[0].Target, "verified files stay in place")
	assert.NoFileExists(t, tasks[1].Target)
}

func TestExecute_CanceledWhileDownloading(t *testing.T) {
	srv := newFileServer(t, map[string][]byte{"/slow": []byte("slow")})
	srv.delay = time.Second
	dir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	report := testManager(srv.Client()).Execute(ctx, srv.tasks(dir, "slow"), 1, nil)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, FailureCanceled, report.Failed[0].Kind)
	leftovers, _ := filepath.Glob(filepath.Join(dir, "objects", "*"))
	assert.Empty(t, leftovers)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"match", Task{Target: p, SHA1: sha1Hex([]byte("hello")), Size: 5}, true},
		{"no sha", Task{Target: p, Size: 5}, true},
		{"size mismatch", Task{Target: p, SHA1: sha1Hex([]byte("hello")), Size: 4}, false},
		{"sha mismatch", Task{Target: p, SHA1: sha1Hex([]byte("hallo"))}, false},
		{"missing", Task{Target: filepath.Join(dir, "nope")}, false},
		{"directory", Task{Target: dir}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Verify(tt.task)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute_UnsupportedScheme(t *testing.T) {
	task := Task{URL: "ftp://example.com/a.jar", Target: filepath.Join(t.TempDir(), "a.jar"), Kind: KindLibrary}
	report := testManager(&http.Client{}).Execute(context.Background(), []Task{task}, 1, nil)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, FailurePermanent, report.Failed[0].Kind)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"dial error", &url.Error{Op: "Get", URL: "u", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}, true},
		{"dns error", &url.Error{Op: "Get", URL: "u", Err: &net.DNSError{Err: "no such host", Name: "example.invalid"}}, true},
		{"timeout", &url.Error{Op: "Get", URL: "u", Err: timeoutError{}}, true},
		{"unsupported scheme", &url.Error{Op: "Get", URL: "u", Err: fmt.Errorf("unsupported protocol scheme %q", "ftp")}, false},
		{"server error", &StatusError{StatusCode: http.StatusBadGateway}, true},
		{"rate limited", &StatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"not found", &StatusError{StatusCode: http.StatusNotFound}, false},
		{"local file", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}
