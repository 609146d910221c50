package natives

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, p string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), os.ModePerm))
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func nativeTask(archive string, library string) downloadmgr.Task {
	return downloadmgr.Task{
		Target:  archive,
		Kind:    downloadmgr.KindNative,
		Library: library,
		Exclude: []string{"META-INF/"},
	}
}

func TestExtractor_Extract(t *testing.T) {
	libs := t.TempDir()
	dir := filepath.Join(t.TempDir(), "natives")

	lwjgl := filepath.Join(libs, "lwjgl-platform-natives-linux.jar")
	writeZip(t, lwjgl, map[string]string{
		"liblwjgl64.so":        "lwjgl",
		"libopenal64.so":       "openal",
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0",
	})
	jinput := filepath.Join(libs, "jinput-platform-natives-linux.jar")
	writeZip(t, jinput, map[string]string{"linux/libjinput-linux64.so": "jinput"})
	corrupt := filepath.Join(libs, "broken.jar")
	require.NoError(t, os.WriteFile(corrupt, []byte("this is not a zip"), 0o644))

	tasks := []downloadmgr.Task{
		{Target: filepath.Join(libs, "plain.jar"), Kind: downloadmgr.KindLibrary, Library: "some:lib:1"},
		nativeTask(lwjgl, "org.lwjgl.lwjgl:lwjgl-platform:2.9.4"),
		nativeTask(corrupt, "broken:natives:1"),
		nativeTask(jinput, "net.java.jinput:jinput-platform:2.0.5"),
	}

	report := New().Extract(context.Background(), tasks, dir)
	assert.Equal(t, []string{"org.lwjgl.lwjgl:lwjgl-platform:2.9.4", "net.java.jinput:jinput-platform:2.0.5"}, report.Extracted)
	require.Len(t, report.Failed, 1, "a corrupt archive should not stop the others")
	assert.Equal(t, "broken:natives:1", report.Failed[0].Library)

	content, err := os.ReadFile(filepath.Join(dir, "liblwjgl64.so"))
	require.NoError(t, err)
	assert.Equal(t, "lwjgl", string(content))
	assert.FileExists(t, filepath.Join(dir, "libopenal64.so"))
	assert.FileExists(t, filepath.Join(dir, "linux", "libjinput-linux64.so"))
	assert.NoDirExists(t, filepath.Join(dir, "META-INF"), "excluded entries should not be extracted")
	assert.FileExists(t, filepath.Join(dir, MarkerFile))

	// second run: the marker matches, nothing is extracted again
	require.NoError(t, os.Remove(filepath.Join(dir, "libopenal64.so")))
	report = New().Extract(context.Background(), tasks, dir)
	assert.Empty(t, report.Extracted)
	assert.Equal(t, []string{"org.lwjgl.lwjgl:lwjgl-platform:2.9.4", "net.java.jinput:jinput-platform:2.0.5"}, report.Skipped)
	assert.NoFileExists(t, filepath.Join(dir, "libopenal64.so"))
	assert.Len(t, report.Failed, 1)

	// an updated archive is extracted again
	writeZip(t, lwjgl, map[string]string{"liblwjgl64.so": "lwjgl 2"})
	report = New().Extract(context.Background(), tasks, dir)
	assert.Equal(t, []string{"org.lwjgl.lwjgl:lwjgl-platform:2.9.4"}, report.Extracted)
	content, err = os.ReadFile(filepath.Join(dir, "liblwjgl64.so"))
	require.NoError(t, err)
	assert.Equal(t, "lwjgl 2", string(content))
}

func TestExtractor_KnownSha(t *testing.T) {
	libs := t.TempDir()
	dir := t.TempDir()
	archive := filepath.Join(libs, "natives.jar")
	writeZip(t, archive, map[string]string{"lib.so": "x"})

	task := nativeTask(archive, "a:b:1")
	task.SHA1 = "0123456789abcdef0123456789abcdef01234567"
	require.True(t, New().Extract(context.Background(), []downloadmgr.Task{task}, dir).OK())

	report := New().Extract(context.Background(), []downloadmgr.Task{task}, dir)
	assert.Equal(t, []string{"a:b:1"}, report.Skipped)
}

func TestExtractor_UnsafeEntry(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "natives")
	archive := filepath.Join(root, "evil.jar")
	writeZip(t, archive, map[string]string{"../escaped.so": "evil"})

	report := New().Extract(context.Background(), []downloadmgr.Task{nativeTask(archive, "evil:natives:1")}, dir)
	require.Len(t, report.Failed, 1)
	assert.NoFileExists(t, filepath.Join(root, "escaped.so"))
}

func TestExtractor_MissingArchive(t *testing.T) {
	dir := t.TempDir()
	report := New().Extract(context.Background(), []downloadmgr.Task{nativeTask(filepath.Join(dir, "nope.jar"), "a:b:1")}, dir)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Err(), os.ErrNotExist)
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     bool
	}{
		{"META-INF/MANIFEST.MF", []string{"META-INF/"}, true},
		{"liblwjgl.so", []string{"META-INF/"}, false},
		{"liblwjgl.so.git", []string{"*.git"}, true},
		{"liblwjgl.so", nil, false},
		{"liblwjgl.so", []string{""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excluded(tt.name, tt.patterns); got != tt.want {
				t.Errorf("Excluded(%q, %v) = %v, want %v", tt.name, tt.patterns, got, tt.want)
			}
		})
	}
}
