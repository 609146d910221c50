package downloadmgr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is the number of parallel downloads if none is set
	DefaultConcurrency = 16
	// DefaultMaxAttempts is the number of tries for transient failures
	DefaultMaxAttempts = 4
	// DefaultTimeout is the timeout of a single request
	DefaultTimeout = 2 * time.Minute
)

var defaultClient = http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   DefaultConcurrency,
	},
}

// Sink receives progress while tasks are executed. It is called from multiple goroutines
type Sink interface {
	// Bytes is called for every chunk written to disk
	Bytes(n int64)
	// TaskDone is called once per task
	TaskDone(r Result)
}

// SinkFuncs implements [Sink] with optional callbacks
type SinkFuncs struct {
	OnBytes    func(n int64)
	OnTaskDone func(r Result)
}

func (s SinkFuncs) Bytes(n int64) {
	if s.OnBytes != nil {
		s.OnBytes(n)
	}
}

func (s SinkFuncs) TaskDone(r Result) {
	if s.OnTaskDone != nil {
		s.OnTaskDone(r)
	}
}

// DownloadManager downloads and verifies tasks
type DownloadManager struct {
	client *http.Client
	// MaxAttempts is the number of attempts for transient failures (including the first one)
	MaxAttempts int
	// Timeout is the timeout of a single attempt. 0 disables it
	Timeout time.Duration
	// InitialInterval is the first backoff delay
	InitialInterval time.Duration
}

// New creates a new downloadmgr. A nil client uses a client with sane timeouts
func New(client *http.Client) *DownloadManager {
	if client == nil {
		client = &defaultClient
	}
	return &DownloadManager{
		client:          client,
		MaxAttempts:     DefaultMaxAttempts,
		Timeout:         DefaultTimeout,
		InitialInterval: 500 * time.Millisecond,
	}
}

// Report aggregates the results of [DownloadManager.Execute]. All lists are in task order
type Report struct {
	Succeeded []Task
	Skipped   []Task
	Failed    []Failure
	// Bytes is the number of bytes written
	Bytes int64
}

// OK returns true if no task failed
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// Err joins all failures (nil if there are none)
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for i := range r.Failed {
		errs = append(errs, &r.Failed[i])
	}
	return errors.Join(errs...)
}

// Execute downloads all tasks using up to concurrency parallel downloads.
// Existing files with a matching size & sha1 are skipped without a request.
// A failing task never stops other tasks, failures are collected in the report.
// Canceling ctx stops running downloads and marks all unfinished tasks as canceled,
// already verified files stay in place.
func (d *DownloadManager) Execute(ctx context.Context, tasks []Task, concurrency int, sink Sink) *Report {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if sink == nil {
		sink = SinkFuncs{}
	}
	logger := cmdlog.FromContext(ctx)

	var mu sync.Mutex
	results := make([]Result, 0, len(tasks))
	collect := func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
		sink.TaskDone(r)
	}

	// not errgroup.WithContext: a failed task must not cancel its siblings
	g := errgroup.Group{}
	g.SetLimit(concurrency)
	for i, task := range tasks {
		i, task := i, task // per-iteration copy for Go < 1.22 loop semantics
		if ctx.Err() != nil {
			collect(canceled(i, task, ctx.Err()))
			continue
		}
		g.Go(func() error {
			r := d.run(ctx, task, sink)
			r.index = i
			collect(r)
			return nil
		})
	}
	g.Wait()

	slices.SortFunc(results, func(a, b Result) int { return a.index - b.index })

	report := &Report{}
	for _, r := range results {
		switch r.Status {
		case StatusDownloaded:
			report.Succeeded = append(report.Succeeded, r.Task)
		case StatusSkipped:
			report.Skipped = append(report.Skipped, r.Task)
		case StatusFailed:
			report.Failed = append(report.Failed, *r.Failure)
		}
		report.Bytes += r.Bytes
	}
	logger.Debug(
		"downloads done",
		"downloaded", len(report.Succeeded),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report
}

// run executes a single task including retries
func (d *DownloadManager) run(ctx context.Context, task Task, sink Sink) Result {
	if ctx.Err() != nil {
		return canceled(0, task, ctx.Err())
	}

	ok, err := Verify(task)
	if err != nil {
		cmdlog.FromContext(ctx).Debug("could not verify existing file", "target", task.Target, "err", err)
	}
	if ok {
		return Result{Task: task, Status: StatusSkipped}
	}

	var written int64
	attempt := 0
	op := func() error {
		attempt++
		n, err := d.fetch(ctx, task, sink)
		written = n
		if err == nil {
			return nil
		}
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return err
		}
		if !isTransient(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		cmdlog.FromContext(ctx).Debug("retrying download", "url", task.URL, "attempt", attempt, "err", err)
		return err
	}

	err = backoff.Retry(op, d.backOff(ctx))
	if err == nil {
		return Result{Task: task, Status: StatusDownloaded, Bytes: written}
	}
	return Result{
		Task:    task,
		Status:  StatusFailed,
		Failure: &Failure{Task: task, Kind: classify(ctx, err), Err: err},
	}
}

func (d *DownloadManager) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if d.InitialInterval > 0 {
		b.InitialInterval = d.InitialInterval
	}
	b.MaxElapsedTime = 0

	retries := d.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func canceled(i int, task Task, err error) Result {
	return Result{
		Task:    task,
		Status:  StatusFailed,
		Failure: &Failure{Task: task, Kind: FailureCanceled, Err: err},
		index:   i,
	}
}
