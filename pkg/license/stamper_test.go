package license

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStamper(year int) *Stamper {
	s := NewStamper(testConfig(year), zerolog.Nop())
	s.Guess = nil
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestStampPrependsWithoutComment(t *testing.T) {
	s := newTestStamper(2026)
	path := filepath.Join(t.TempDir(), "main.cpp")
	original := "#include <cstdio>\n\nint main() {}\n"
	writeFile(t, path, original)

	result, err := s.Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, result.Status)
	assert.Equal(t, 0, result.Replaced)
	assert.Equal(t, "UTF-8", result.Encoding)
	assert.Equal(t, s.Templates.Get(".cpp")+original, readFile(t, path))
}

func TestStampKeepsUnrelatedComment(t *testing.T) {
	s := newTestStamper(2026)
	path := filepath.Join(t.TempDir(), "Program.cs")
	original := "// Program.cs\n// Entry point of the backend\n// Owned by the tools team\nclass Program {}\n"
	writeFile(t, path, original)

	result, err := s.Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, result.Status)
	assert.Equal(t, 0, result.Replaced)

	content := readFile(t, path)
	assert.Equal(t, s.Templates.Get(".cs")+original, content)
	assert.True(t, strings.HasSuffix(content, original))
}

func TestStampReplacesOutdatedLicense(t *testing.T) {
	old := testConfig(2024).Render(DefaultStyle)
	code := "#pragma once\n\nstruct Foo {};\n"

	s := newTestStamper(2026)
	path := filepath.Join(t.TempDir(), "Foo.h")
	writeFile(t, path, old+code)

	result, err := s.Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, result.Status)
	assert.Equal(t, len(old), result.Replaced)
	assert.Equal(t, s.Templates.Get(".h")+code, readFile(t, path))
}

func TestStampReplacesLicenseWithLFEndings(t *testing.T) {
	old := strings.ReplaceAll(testConfig(2023).Render(DefaultStyle), "\r\n", "\n")
	code := "void Foo();\n"

	s := newTestStamper(2026)
	path := filepath.Join(t.TempDir(), "Foo.hpp")
	writeFile(t, path, old+code)

	_, err := s.Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, s.Templates.Get(".hpp")+code, readFile(t, path))
}

func TestStampUpToDate(t *testing.T) {
	s := newTestStamper(2026)
	dir := t.TempDir()

	for name, content := range map[string]string{
		"crlf.cpp": s.Templates.Get(".cpp") + "int x;\r\n",
		"lf.cpp":   strings.ReplaceAll(s.Templates.Get(".cpp"), "\r\n", "\n") + "int x;\n",
		"only.py":  s.Templates.Get(".py"),
	} {
		path := filepath.Join(dir, name)
		writeFile(t, path, content)
		before, err := os.Stat(path)
		require.NoError(t, err)

		result, err := s.Stamp(path)
		require.NoError(t, err, name)
		assert.Equal(t, StatusUpToDate, result.Status, name)
		assert.Equal(t, content, readFile(t, path), name)

		after, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, before.ModTime(), after.ModTime(), name)
	}
}

func TestStampIsIdempotent(t *testing.T) {
	s := newTestStamper(2026)
	path := filepath.Join(t.TempDir(), "Shader.hlsl")
	writeFile(t, path, "// shader\nfloat4 main() : SV_Target { return 0; }\n")

	result, err := s.Stamp(path)
	require.NoError(t, err)
	require.Equal(t, StatusUpdated, result.Status)
	first := readFile(t, path)

	result, err = s.Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, StatusUpToDate, result.Status)
	assert.Equal(t, first, readFile(t, path))
}

func TestStampStyles(t *testing.T) {
	s := newTestStamper(2026)
	dir := t.TempDir()

	tests := map[string]string{
		"build.py":       "# ",
		"CMakeLists.txt": "# ",
		"Utils.cmake":    "# ",
		"setup.bat":      "rem ",
		"Layer.inl":      "// ",
	}

	for name, prefix := range tests {
		path := filepath.Join(dir, name)
		writeFile(t, path, "content\n")

		_, err := s.Stamp(path)
		require.NoError(t, err, name)

		content := readFile(t, path)
		assert.True(t, strings.HasPrefix(content, prefix+"\r\n"+prefix+DefaultHeader), name)
		assert.True(t, strings.HasSuffix(content, "\r\n\r\ncontent\n"), name)
	}
}

func TestStampKeepsEncoding(t *testing.T) {
	s := newTestStamper(2026)
	path := filepath.Join(t.TempDir(), "Legacy.cpp")
	original := "// Gr\xFC\xDFe\nint x;\n"
	writeFile(t, path, original)

	result, err := s.Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", result.Encoding)
	assert.Equal(t, s.Templates.Get(".cpp")+original, readFile(t, path))
}

func TestStampKeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not supported")
	}

	s := newTestStamper(2026)
	path := filepath.Join(t.TempDir(), "run.py")
	writeFile(t, path, "print()\n")
	require.NoError(t, os.Chmod(path, 0o755))

	_, err := s.Stamp(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestStampDry(t *testing.T) {
	s := newTestStamper(2026)
	s.Dry = true
	path := filepath.Join(t.TempDir(), "main.cpp")
	writeFile(t, path, "int x;\n")

	result, err := s.Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, StatusWouldUpdate, result.Status)
	assert.Equal(t, "int x;\n", readFile(t, path))
}

func TestStampUnknownExtension(t *testing.T) {
	s := newTestStamper(2026)
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "x")

	_, err := s.Stamp(path)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	s := newTestStamper(2026)
	s.Config.Fallbacks = []string{"UTF-8"}

	writeFile(t, filepath.Join(root, "Source", "a.cpp"), "int a;\n")
	writeFile(t, filepath.Join(root, "Source", "b.h"), s.Templates.Get(".h")+"int b;\n")
	writeFile(t, filepath.Join(root, "Source", "bad.cpp"), "// caf\xE9\n")
	writeFile(t, filepath.Join(root, "Source", "obj", "gen.cpp"), "int gen;\n")
	writeFile(t, filepath.Join(root, "Source", "notes.txt"), "notes\n")

	summary, err := s.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.UpToDate)
	assert.Equal(t, []string{filepath.Join(root, "Source", "bad.cpp")}, summary.Failed)

	assert.True(t, strings.HasPrefix(readFile(t, filepath.Join(root, "Source", "a.cpp")), s.Templates.Get(".cpp")))
	assert.Equal(t, "// caf\xE9\n", readFile(t, filepath.Join(root, "Source", "bad.cpp")))
	assert.Equal(t, "int gen;\n", readFile(t, filepath.Join(root, "Source", "obj", "gen.cpp")))
	assert.Equal(t, "notes\n", readFile(t, filepath.Join(root, "Source", "notes.txt")))

	summary, err = s.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 2, summary.UpToDate)
}

func TestRunDryCountsSeparately(t *testing.T) {
	root := t.TempDir()
	s := newTestStamper(2026)
	s.Dry = true

	writeFile(t, filepath.Join(root, "Source", "a.cpp"), "int a;\n")
	writeFile(t, filepath.Join(root, "Source", "b.h"), s.Templates.Get(".h")+"int b;\n")

	summary, err := s.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.WouldUpdate)
	assert.Equal(t, 1, summary.UpToDate)
	assert.Equal(t, "int a;\n", readFile(t, filepath.Join(root, "Source", "a.cpp")))
}

func TestRunCanceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cpp"), "int a;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestStamper(2026).Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "int a;\n", readFile(t, filepath.Join(root, "a.cpp")))
}
