package minecraft

import (
	"errors"
	"testing"
)

func TestParseLaunchManifest(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		json      string
		wantField string
	}{
		{
			name: "valid",
			id:   "1.20.1",
			json: `{"id": "1.20.1", "mainClass": "net.minecraft.client.main.Main", "libraries": [{"name": "a:b:1"}]}`,
		},
		{
			name:      "missing id",
			id:        "1.20.1",
			json:      `{"mainClass": "x"}`,
			wantField: "id",
		},
		{
			name:      "other id",
			id:        "1.20.1",
			json:      `{"id": "1.19"}`,
			wantField: "id",
		},
		{
			name:      "wrong type",
			id:        "1.20.1",
			json:      `{"id": "1.20.1", "mainClass": 12}`,
			wantField: "mainClass",
		},
		{
			name:      "library without name",
			id:        "1.20.1",
			json:      `{"id": "1.20.1", "libraries": [{"name": "a:b:1"}, {"url": "https://maven.fabricmc.net/"}]}`,
			wantField: "libraries[1].name",
		},
		{
			name:      "unknown rule action",
			id:        "1.20.1",
			json:      `{"id": "1.20.1", "libraries": [{"name": "a:b:1", "rules": [{"action": "maybe"}]}]}`,
			wantField: "libraries[0].rules",
		},
		{
			name: "syntax error",
			id:   "1.20.1",
			json: `{"id": `,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			man, err := ParseLaunchManifest(tt.id, []byte(tt.json))
			if tt.name == "valid" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if man.ID != tt.id || len(man.Libraries) != 1 {
					t.Fatalf("unexpected manifest %+v", man)
				}
				return
			}

			var parseErr *ManifestParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ManifestParseError, got %v", err)
			}
			if parseErr.ID != tt.id {
				t.Errorf("error names version %q, want %q", parseErr.ID, tt.id)
			}
			if parseErr.Field != tt.wantField {
				t.Errorf("error names field %q, want %q", parseErr.Field, tt.wantField)
			}
		})
	}
}

func TestLaunchManifest_Validate(t *testing.T) {
	man := &LaunchManifest{ID: "1.20.1", MainClass: "Main"}
	err := man.Validate()
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing client download, got %v", err)
	}

	man.Downloads = map[string]Artifact{DownloadClient: {URL: "https://example.com/client.jar"}}
	if err := man.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMergeManifests(t *testing.T) {
	parent := &LaunchManifest{
		ID:         "1.20.1",
		Type:       "release",
		MainClass:  "net.minecraft.client.main.Main",
		Assets:     "5",
		AssetIndex: &AssetIndexRef{ID: "5", URL: "https://example.com/5.json"},
		Downloads: map[string]Artifact{
			DownloadClient: {URL: "https://example.com/client.jar", SHA1: "aa"},
			DownloadServer: {URL: "https://example.com/server.jar", SHA1: "bb"},
		},
		Libraries: Libraries{{Name: "a:parent:1"}},
		Arguments: &Arguments{
			Game: []Argument{Literal("--username"), Literal("${auth_player_name}")},
			JVM:  []Argument{Literal("-cp"), Literal("${classpath}")},
		},
	}
	child := &LaunchManifest{
		ID:           "modded",
		InheritsFrom: "1.20.1",
		MainClass:    "net.fabricmc.loader.impl.launch.knot.KnotClient",
		Downloads: map[string]Artifact{
			DownloadClient: {URL: "https://example.com/modded.jar", SHA1: "cc"},
		},
		Libraries: Libraries{{Name: "a:child:1"}},
		Arguments: &Arguments{JVM: []Argument{Literal("-DFabricMcEmu=net.minecraft.client.main.Main")}},
	}

	merged := MergeManifests(parent, child)

	if merged.ID != "modded" || merged.Type != "release" || merged.AssetIndexName() != "5" {
		t.Errorf("scalar fields not merged: %+v", merged)
	}
	if merged.MainClass != child.MainClass {
		t.Errorf("mainClass = %q, want child value", merged.MainClass)
	}
	if merged.Downloads[DownloadClient].SHA1 != "cc" || merged.Downloads[DownloadServer].SHA1 != "bb" {
		t.Errorf("downloads not merged per key: %+v", merged.Downloads)
	}
	if len(merged.Libraries) != 2 || merged.Libraries[0].Name != "a:parent:1" {
		t.Errorf("libraries not concatenated parent first: %+v", merged.Libraries)
	}
	if len(merged.Arguments.Game) != 2 || len(merged.Arguments.JVM) != 3 {
		t.Errorf("arguments not concatenated: %+v", merged.Arguments)
	}

	// inputs stay untouched
	if len(parent.Libraries) != 1 || len(child.Libraries) != 1 || len(parent.Arguments.JVM) != 2 {
		t.Error("merge modified its inputs")
	}
	if parent.Downloads[DownloadClient].SHA1 != "aa" {
		t.Error("merge modified parent downloads")
	}
}

func TestMergeManifests_LegacyArguments(t *testing.T) {
	parent := &LaunchManifest{ID: "1.7.10", MinecraftArguments: "--username ${auth_player_name} --version ${version_name}"}
	forge := &LaunchManifest{ID: "1.7.10-forge", InheritsFrom: "1.7.10", MinecraftArguments: "--username ${auth_player_name} --tweakClass cpw.mods.fml.common.launcher.FMLTweaker"}

	merged := MergeManifests(parent, forge)
	if merged.MinecraftArguments != forge.MinecraftArguments {
		t.Errorf("minecraftArguments = %q, want the child line", merged.MinecraftArguments)
	}
	if got := merged.GameArguments(); len(got) != 4 {
		t.Errorf("expected the 4 child arguments only, got %+v", got)
	}

	vanilla := MergeManifests(parent, &LaunchManifest{ID: "custom", InheritsFrom: "1.7.10"})
	if vanilla.MinecraftArguments != parent.MinecraftArguments {
		t.Errorf("minecraftArguments = %q, want inherited parent line", vanilla.MinecraftArguments)
	}
}

func TestMergeManifests_SharesNothing(t *testing.T) {
	parent := &LaunchManifest{
		ID:          "1.20.1",
		AssetIndex:  &AssetIndexRef{ID: "5"},
		JavaVersion: &JavaVersion{MajorVersion: 17},
		Libraries: Libraries{{
			Name:      "a:parent:1",
			Downloads: LibraryDownloads{Artifact: &Artifact{Path: "a/parent.jar"}},
			Rules:     []Rule{{Action: ActionAllow, OS: &OS{Name: "linux"}, Features: map[string]bool{"x": true}}},
			Natives:   map[string]string{"linux": "natives-linux"},
			Extract:   &ExtractRules{Exclude: []string{"META-INF/"}},
		}},
		Arguments: &Arguments{Game: []Argument{{Value: stringSlice{"--demo"}, Rules: []Rule{{Action: ActionAllow}}}}},
	}
	child := &LaunchManifest{ID: "modded", Downloads: map[string]Artifact{DownloadClient: {URL: "a"}}}

	merged := MergeManifests(parent, child)
	merged.AssetIndex.ID = "mutated"
	merged.JavaVersion.MajorVersion = 8
	lib := &merged.Libraries[0]
	lib.Downloads.Artifact.Path = "mutated"
	lib.Rules[0].OS.Name = "mutated"
	lib.Rules[0].Features["x"] = false
	lib.Natives["linux"] = "mutated"
	lib.Extract.Exclude[0] = "mutated"
	merged.Arguments.Game[0].Value[0] = "mutated"
	merged.Arguments.Game[0].Rules[0].Action = ActionDisallow
	merged.Downloads[DownloadClient] = Artifact{URL: "mutated"}

	plib := parent.Libraries[0]
	switch {
	case parent.AssetIndex.ID != "5", parent.JavaVersion.MajorVersion != 17:
		t.Error("merged manifest shares pointers with the parent")
	case plib.Downloads.Artifact.Path != "a/parent.jar", plib.Rules[0].OS.Name != "linux",
		!plib.Rules[0].Features["x"], plib.Natives["linux"] != "natives-linux", plib.Extract.Exclude[0] != "META-INF/":
		t.Errorf("merged manifest shares library state with the parent: %+v", plib)
	case parent.Arguments.Game[0].Value[0] != "--demo", parent.Arguments.Game[0].Rules[0].Action != ActionAllow:
		t.Error("merged manifest shares arguments with the parent")
	case child.Downloads[DownloadClient].URL != "a":
		t.Error("merged manifest shares downloads with the child")
	}
}

func TestLaunchManifest_GameArguments(t *testing.T) {
	legacy := &LaunchManifest{MinecraftArguments: "--username ${auth_player_name}"}
	if got := legacy.GameArguments(); len(got) != 2 {
		t.Fatalf("expected 2 legacy arguments, got %d", len(got))
	}
	if legacy.JVMArguments() != nil {
		t.Fatal("legacy manifests should have no jvm arguments")
	}

	both := &LaunchManifest{
		MinecraftArguments: "--username ${auth_player_name}",
		Arguments:          &Arguments{Game: []Argument{Literal("--demo")}},
	}
	got := both.GameArguments()
	if len(got) != 1 || got[0].Value[0] != "--demo" {
		t.Fatalf("structured arguments should take precedence, got %+v", got)
	}
}

func TestParseVersionManifest(t *testing.T) {
	object := `{
		"latest": {"release": "1.20.1", "snapshot": "23w31a"},
		"versions": [
			{"id": "23w31a", "type": "snapshot", "url": "https://example.com/23w31a.json"},
			{"id": "1.20.1", "type": "release", "url": "https://example.com/1.20.1.json", "sha1": "abc"}
		]
	}`
	m, err := ParseVersionManifest([]byte(object))
	if err != nil {
		t.Fatal(err)
	}
	if m.ResolveAlias(AliasLatest) != "1.20.1" || m.ResolveAlias(AliasLatestSnapshot) != "23w31a" {
		t.Errorf("aliases resolved wrong: %+v", m.Latest)
	}
	if entry, ok := m.Find("1.20.1"); !ok || entry.SHA1 != "abc" {
		t.Errorf("Find(1.20.1) = %+v, %v", entry, ok)
	}

	array := `[{"id": "1.20.1", "type": "release", "url": "u"}, {"id": "b1.7.3", "type": "old_beta", "url": "u"}]`
	m, err = ParseVersionManifest([]byte(array))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Versions) != 2 || m.ResolveAlias(AliasLatest) != "1.20.1" {
		t.Errorf("bare array not parsed: %+v", m)
	}
	if _, ok := m.Find("1.12"); ok {
		t.Error("found a version that is not listed")
	}

	if _, err := ParseVersionManifest([]byte(`[{"type": "release"}]`)); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected missing id error, got %v", err)
	}
}

func TestMavenPath(t *testing.T) {
	tests := []struct {
		coordinate string
		classifier string
		want       string
		wantErr    bool
	}{
		{"org.ow2.asm:asm:9.3", "", "org/ow2/asm/asm/9.3/asm-9.3.jar", false},
		{"org.lwjgl:lwjgl:3.3.1:natives-linux", "", "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar", false},
		{"org.lwjgl:lwjgl:3.3.1", "natives-windows", "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-windows.jar", false},
		{"net.fabricmc:yarn:1.20.1+build.1@zip", "", "net/fabricmc/yarn/1.20.1+build.1/yarn-1.20.1+build.1.zip", false},
		{"broken", "", "", true},
		{"a::1", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.coordinate, func(t *testing.T) {
			got, err := MavenPath(tt.coordinate, tt.classifier)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MavenPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("MavenPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLibrary_NativeArtifact(t *testing.T) {
	lib := Library{
		Name:    "org.lwjgl.lwjgl:lwjgl-platform:2.9.4",
		Natives: map[string]string{"linux": "natives-linux", "windows": "natives-windows-${arch}"},
		Downloads: LibraryDownloads{
			Classifiers: map[string]Artifact{
				"natives-linux":      {Path: "lwjgl-platform-natives-linux.jar", URL: "https://example.com/linux.jar"},
				"natives-windows-64": {Path: "lwjgl-platform-natives-windows-64.jar", URL: "https://example.com/win.jar"},
			},
		},
	}

	if base, ok, err := lib.BaseArtifact(); err != nil || ok || base != nil {
		t.Fatalf("natives only library should have no base artifact, got %+v %v %v", base, ok, err)
	}

	native, classifier, err := lib.NativeArtifact(Platform{OS: "windows", Arch: "x64"})
	if err != nil || classifier != "natives-windows-64" || native.URL != "https://example.com/win.jar" {
		t.Errorf("windows native = %+v %q %v", native, classifier, err)
	}

	native, _, err = lib.NativeArtifact(Platform{OS: "osx", Arch: "arm64"})
	if err != nil || native != nil {
		t.Errorf("expected no osx native, got %+v %v", native, err)
	}

	modern := Library{
		Name: "org.lwjgl:lwjgl:3.3.1:natives-macos",
		Downloads: LibraryDownloads{
			Artifact: &Artifact{Path: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-macos.jar", URL: "https://example.com/mac.jar"},
		},
	}
	native, _, err = modern.NativeArtifact(Platform{OS: "osx"})
	if err != nil || native != nil {
		t.Errorf("rule gated natives have no classifier, got %+v %v", native, err)
	}
}

func TestLibrary_BaseArtifact(t *testing.T) {
	lib := Library{Name: "net.fabricmc:fabric-loader:0.14.21", URL: "https://maven.fabricmc.net"}
	a, ok, err := lib.BaseArtifact()
	if err != nil || !ok {
		t.Fatalf("BaseArtifact() = %v, %v", ok, err)
	}
	want := "https://maven.fabricmc.net/net/fabricmc/fabric-loader/0.14.21/fabric-loader-0.14.21.jar"
	if a.URL != want {
		t.Errorf("url = %q, want %q", a.URL, want)
	}

	lib = Library{Name: "com.mojang:brigadier:1.1.8"}
	a, _, _ = lib.BaseArtifact()
	if a.URL != DefaultLibrariesURL+"com/mojang/brigadier/1.1.8/brigadier-1.1.8.jar" {
		t.Errorf("unexpected default repository url %q", a.URL)
	}
}

func TestParseAssetIndex(t *testing.T) {
	index, err := ParseAssetIndex("5", []byte(`{"objects": {"icons/icon_16x16.png": {"hash": "bdf48ef6b5d0d23bbb02e17d04865216179f510a", "size": 3665}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(index.Objects) != 1 {
		t.Fatalf("expected one object, got %+v", index.Objects)
	}

	tests := []struct {
		hash string
		want error
	}{
		{"", ErrMissingField},
		{"../../../../home/u/.bashrc", ErrInvalidHash},
		{"bdf48ef6b5d0d23bbb02e17d04865216179f510", ErrInvalidHash},
		{"zdf48ef6b5d0d23bbb02e17d04865216179f510a", ErrInvalidHash},
	}
	for _, tt := range tests {
		_, err := ParseAssetIndex("5", []byte(`{"objects": {"x": {"hash": "`+tt.hash+`"}}}`))
		var parseErr *ManifestParseError
		if !errors.As(err, &parseErr) || parseErr.Field != "objects.x.hash" || !errors.Is(err, tt.want) {
			t.Errorf("hash %q: expected %v, got %v", tt.hash, tt.want, err)
		}
	}
}
