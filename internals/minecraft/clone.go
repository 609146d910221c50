package minecraft

import "golang.org/x/exp/maps"

// Clone returns a deep copy of the manifest. Nothing is shared with l.
func (l *LaunchManifest) Clone() *LaunchManifest {
	if l == nil {
		return nil
	}
	c := *l

	if l.Arguments != nil {
		c.Arguments = &Arguments{
			Game: cloneArguments(l.Arguments.Game),
			JVM:  cloneArguments(l.Arguments.JVM),
		}
	}
	if l.Downloads != nil {
		c.Downloads = maps.Clone(l.Downloads)
	}
	if l.Libraries != nil {
		c.Libraries = make(Libraries, len(l.Libraries))
		for i := range l.Libraries {
			c.Libraries[i] = l.Libraries[i].clone()
		}
	}
	if l.AssetIndex != nil {
		ref := *l.AssetIndex
		c.AssetIndex = &ref
	}
	if l.JavaVersion != nil {
		java := *l.JavaVersion
		c.JavaVersion = &java
	}
	return &c
}

func (l Library) clone() Library {
	c := l
	if l.Downloads.Artifact != nil {
		a := *l.Downloads.Artifact
		c.Downloads.Artifact = &a
	}
	if l.Downloads.Classifiers != nil {
		c.Downloads.Classifiers = maps.Clone(l.Downloads.Classifiers)
	}
	c.Rules = cloneRules(l.Rules)
	if l.Natives != nil {
		c.Natives = maps.Clone(l.Natives)
	}
	if l.Extract != nil {
		c.Extract = &ExtractRules{Exclude: append([]string(nil), l.Extract.Exclude...)}
	}
	return c
}

func cloneArguments(args []Argument) []Argument {
	if args == nil {
		return nil
	}
	c := make([]Argument, len(args))
	for i, a := range args {
		c[i] = Argument{
			Value: append(stringSlice(nil), a.Value...),
			Rules: cloneRules(a.Rules),
		}
	}
	return c
}

func cloneRules(rules []Rule) []Rule {
	if rules == nil {
		return nil
	}
	c := make([]Rule, len(rules))
	for i, r := range rules {
		c[i] = r
		if r.OS != nil {
			os := *r.OS
			c[i].OS = &os
		}
		if r.Features != nil {
			c[i].Features = maps.Clone(r.Features)
		}
	}
	return c
}
