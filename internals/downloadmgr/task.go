package downloadmgr

// Kind is the type of artifact a task downloads
type Kind string

const (
	KindClient  Kind = "client"
	KindServer  Kind = "server"
	KindLibrary Kind = "library"
	KindNative  Kind = "native"
	KindAsset   Kind = "asset"
)

// Task is a URL, target pair with the expected checksum & size
type Task struct {
	URL    string
	Target string
	// SHA1 is the expected hex sha1 of the file. Empty skips verification
	SHA1 string
	// Size is the expected size in bytes. 0 skips the size check
	Size int64
	Kind Kind
	// Library is the maven coordinate of the library (library & native tasks only)
	Library string
	// Exclude are the extraction exclusion patterns (native tasks only)
	Exclude []string
}

// Status is the outcome of a single task
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result is reported to the [Sink] once a task is done
type Result struct {
	Task   Task
	Status Status
	// Bytes is the number of bytes written to the target (0 for skipped tasks)
	Bytes int64
	// Failure is set if Status is StatusFailed
	Failure *Failure

	index int
}
