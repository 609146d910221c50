package instances

import (
	"context"
	"errors"
	"net/http"

	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/minepkg/mclaunch/internals/natives"
	"github.com/minepkg/mclaunch/internals/planner"
	"github.com/minepkg/mclaunch/internals/resolver"
)

// Installation is the outcome of [Installer.Install]
type Installation struct {
	ID       string
	Manifest *minecraft.LaunchManifest
	Assets   *minecraft.AssetIndex
	// Tasks are all planned tasks in plan order
	Tasks      []downloadmgr.Task
	Downloads  *downloadmgr.Report
	Natives    *natives.Report
	NativesDir string
}

// Installed returns the planned tasks that did not fail to download, in plan order
func (in *Installation) Installed() []downloadmgr.Task {
	if in.Downloads == nil || len(in.Downloads.Failed) == 0 {
		return in.Tasks
	}
	failed := make(map[string]bool, len(in.Downloads.Failed))
	for _, f := range in.Downloads.Failed {
		failed[f.Task.Target] = true
	}
	installed := make([]downloadmgr.Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if !failed[t.Target] {
			installed = append(installed, t)
		}
	}
	return installed
}

// Installer resolves, downloads & extracts everything a version needs to be launched
type Installer struct {
	Instance  *Instance
	Resolver  *resolver.Resolver
	Planner   *planner.Planner
	Downloads *downloadmgr.DownloadManager
	Extractor *natives.Extractor
	// Platform is used to pick libraries & natives
	Platform minecraft.Platform
	// Concurrency is the number of parallel downloads
	Concurrency int
	// Sink receives download progress. Can be nil
	Sink downloadmgr.Sink
	// AllowFailure decides if a failed download (*downloadmgr.Failure) or
	// extraction (*natives.Failure) can be tolerated. nil tolerates nothing
	AllowFailure func(err error) bool
	// OnState is called for every state transition. err is only set for StateFailed
	OnState func(state State, err error)
	// OnPlanned receives the planned tasks before downloading starts
	OnPlanned func(tasks []downloadmgr.Task)
}

// NewInstaller returns an installer for instance using client for all requests
func NewInstaller(instance *Instance, client *http.Client) *Installer {
	return &Installer{
		Instance:    instance,
		Resolver:    resolver.New(client, instance),
		Planner:     planner.New(),
		Downloads:   downloadmgr.New(client),
		Extractor:   natives.New(),
		Platform:    minecraft.CurrentPlatform(),
		Concurrency: downloadmgr.DefaultConcurrency,
	}
}

// Install installs version id. Resolution & planning failures abort before anything is downloaded.
// Failed downloads & extractions are collected and returned as one error unless AllowFailure
// tolerates all of them. The returned Installation is set whenever planning succeeded.
func (i *Installer) Install(ctx context.Context, id string) (*Installation, error) {
	logger := cmdlog.FromContext(ctx)
	i.transition(StateNotResolved, nil)

	fail := func(stage State, err error) error {
		err = &StageError{ID: id, Stage: stage, Err: err}
		i.transition(StateFailed, err)
		return err
	}

	i.transition(StateResolving, nil)
	man, err := i.Resolver.Resolve(ctx, id)
	if err != nil {
		return nil, fail(StateResolving, err)
	}
	assets, err := i.Resolver.ResolveAssetIndex(ctx, man)
	if err != nil {
		return nil, fail(StateResolving, err)
	}
	i.transition(StateResolved, nil)

	i.transition(StatePlanning, nil)
	tasks, err := i.Planner.Plan(man, assets, i.Platform, i.Instance)
	if err != nil {
		return nil, fail(StatePlanning, err)
	}
	logger.Debug("planned installation", "version", man.ID, "tasks", len(tasks))
	if i.OnPlanned != nil {
		i.OnPlanned(tasks)
	}

	inst := &Installation{
		ID:         man.ID,
		Manifest:   man,
		Assets:     assets,
		Tasks:      tasks,
		NativesDir: i.Instance.NativesDir(man.ID),
	}

	i.transition(StateDownloading, nil)
	inst.Downloads = i.Downloads.Execute(ctx, tasks, i.Concurrency, i.Sink)
	if err := i.check(downloadErrs(inst.Downloads)); err != nil {
		return inst, fail(StateDownloading, err)
	}

	i.transition(StateExtracting, nil)
	inst.Natives = i.Extractor.Extract(ctx, inst.Installed(), inst.NativesDir)
	if err := i.check(nativeErrs(inst.Natives)); err != nil {
		return inst, fail(StateExtracting, err)
	}

	i.transition(StateReady, nil)
	return inst, nil
}

// check returns the joined errors AllowFailure does not tolerate.
// Cancellation is never tolerated.
func (i *Installer) check(errs []error) error {
	fatal := make([]error, 0, len(errs))
	for _, err := range errs {
		if i.AllowFailure != nil && !isCanceled(err) && i.AllowFailure(err) {
			continue
		}
		fatal = append(fatal, err)
	}
	return errors.Join(fatal...)
}

func isCanceled(err error) bool {
	var f *downloadmgr.Failure
	if errors.As(err, &f) {
		return f.Kind == downloadmgr.FailureCanceled
	}
	return errors.Is(err, context.Canceled)
}

func (i *Installer) transition(s State, err error) {
	if i.OnState != nil {
		i.OnState(s, err)
	}
}

func downloadErrs(r *downloadmgr.Report) []error {
	errs := make([]error, 0, len(r.Failed))
	for n := range r.Failed {
		errs = append(errs, &r.Failed[n])
	}
	return errs
}

func nativeErrs(r *natives.Report) []error {
	errs := make([]error, 0, len(r.Failed))
	for n := range r.Failed {
		errs = append(errs, &r.Failed[n])
	}
	return errs
}
