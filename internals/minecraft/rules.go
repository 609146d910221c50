package minecraft

import (
	"regexp"
	"runtime"
)

// Action is what a [Rule] decides when it matches
type Action string

const (
	ActionAllow    Action = "allow"
	ActionDisallow Action = "disallow"
)

// Rule is a rule that can be applied to an argument or library.
// It can be used to determine if the argument or library should be applied to a specific OS.
type Rule struct {
	Action Action `json:"action"`
	OS     *OS    `json:"os,omitempty"`
	// Features are named boolean conditions supplied by the launcher (eg. "is_demo_user")
	Features map[string]bool `json:"features,omitempty"`
}

// OS defines the feature of an OS that can be used in a [Rule] to determine if it should be applied.
type OS struct {
	Name string `json:"name,omitempty"`
	// Version of the os (a regex string)
	Version string `json:"version,omitempty"`
	// Arch of the system
	Arch string `json:"arch,omitempty"`
}

// Platform is the context rules are evaluated against
type Platform struct {
	// OS is the os name as used in manifests: "linux", "osx" or "windows"
	OS string
	// Arch is the architecture as used in manifests: "x64", "x86", "arm64" …
	Arch string
	// Version is the version of the os. Only used for rules with an os.version regex
	Version string
	// Features are the active feature flags. A feature that is not set never matches
	Features map[string]bool
}

// CurrentPlatform returns the platform this program is running on (without any features)
func CurrentPlatform() Platform {
	return Platform{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: NormalizeArch(runtime.GOARCH),
	}
}

// WithFeatures returns a copy of the platform with the given feature flags set
func (p Platform) WithFeatures(features map[string]bool) Platform {
	merged := make(map[string]bool, len(p.Features)+len(features))
	for k, v := range p.Features {
		merged[k] = v
	}
	for k, v := range features {
		merged[k] = v
	}
	p.Features = merged
	return p
}

// NormalizeOS maps go os names to the names used in launcher manifests
func NormalizeOS(os string) string {
	if os == "darwin" || os == "macos" {
		return "osx"
	}
	return os
}

// NormalizeArch maps go arch names to the names used in launcher manifests
func NormalizeArch(arch string) string {
	switch arch {
	case "amd64", "x86_64":
		return "x64"
	case "386", "i386":
		return "x86"
	case "arm":
		return "arm32"
	case "aarch64":
		return "arm64"
	}
	// note: we don't know how other platforms are named
	return arch
}

// Matches reports whether all constraints of this rule are met by the platform.
// A rule without any constraints always matches.
func (r Rule) Matches(p Platform) bool {
	if r.OS != nil {
		if r.OS.Name != "" && NormalizeOS(r.OS.Name) != p.OS {
			return false
		}
		if r.OS.Arch != "" && NormalizeArch(r.OS.Arch) != p.Arch {
			return false
		}
		if r.OS.Version != "" {
			re, err := regexp.Compile(r.OS.Version)
			if err != nil || !re.MatchString(p.Version) {
				return false
			}
		}
	}

	for name, want := range r.Features {
		got, ok := p.Features[name]
		if !ok || got != want {
			return false
		}
	}

	return true
}

// Evaluate folds the rules in order into a single decision.
// No rules means the thing is always included. Otherwise it starts out excluded and
// every matching rule overwrites the decision with its action (the last match wins).
// Rules with an unknown action are ignored.
func Evaluate(rules []Rule, p Platform) bool {
	if len(rules) == 0 {
		return true
	}

	decision := false
	for _, rule := range rules {
		decision = rule.apply(decision, p)
	}
	return decision
}

func (r Rule) apply(decision bool, p Platform) bool {
	if !r.Matches(p) {
		return decision
	}
	switch r.Action {
	case ActionAllow:
		return true
	case ActionDisallow:
		return false
	default:
		return decision
	}
}
