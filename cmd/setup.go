package cmd

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/minepkg/mclaunch/internals/ownhttp"
	"github.com/minepkg/mclaunch/internals/resolver"
	"github.com/shirou/gopsutil/v3/host"
)

func userAgent() string {
	return v.GetString("launcherName") + "/" + Version
}

// instance returns the configured installation root
func instance() (*instances.Instance, error) {
	root := v.GetString("root")
	if root == "" {
		var err error
		if root, err = instances.DefaultGlobalDir(); err != nil {
			return nil, err
		}
	}
	return instances.New(root), nil
}

// newResolver returns a resolver using the (throttled) api client
func newResolver(inst *instances.Instance) *resolver.Resolver {
	apiClient := ownhttp.NewWithOptions(ownhttp.Options{
		UserAgent: userAgent(),
		RateLimit: v.GetFloat64("apiRateLimit"),
	})
	r := resolver.New(apiClient, inst)
	r.ManifestURL = v.GetString("manifestURL")
	r.Timeout = v.GetDuration("timeout")
	return r
}

// newInstaller returns an installer configured from the config file, env & flags
func newInstaller(inst *instances.Instance) *instances.Installer {
	installer := instances.NewInstaller(inst, nil)
	installer.Resolver = newResolver(inst)
	installer.Downloads = downloadmgr.New(ownhttp.NewWithOptions(ownhttp.Options{UserAgent: userAgent()}))
	installer.Planner.ResourcesURL = v.GetString("resourcesURL")
	installer.Concurrency = v.GetInt("concurrency")
	installer.Downloads.MaxAttempts = v.GetInt("retries") + 1
	installer.Downloads.Timeout = v.GetDuration("timeout")
	return installer
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// interactive is true if we may prompt the user
func interactive() bool {
	return !v.GetBool("nonInteractive") && isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// detectPlatform returns the current platform including the os version used by some library rules
func detectPlatform(ctx context.Context) minecraft.Platform {
	p := minecraft.CurrentPlatform()
	_, _, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		cmdlog.FromContext(ctx).Debug("could not detect os version", "err", err)
		return p
	}
	p.Version = version
	return p
}
