package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o770))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// captureStdout runs fn with os.Stdout redirected into a pipe and returns everything written to it
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	reader, writer, err := os.Pipe()
	require.NoError(t, err)

	original := os.Stdout
	os.Stdout = writer
	defer func() {
		os.Stdout = original
	}()

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, reader)
		done <- buf.String()
	}()

	fn()
	require.NoError(t, writer.Close())
	return <-done
}

func TestUpdateLicenseCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Source", "main.cpp"), "int main() {}\n")

	rootCmd.SetArgs([]string{"update-license", "--root", root, "--log-level", "error", "--base-year", "2023"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(filepath.Join(root, "Source", "main.cpp"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "// \r\n// The MIT License (MIT)\r\n"))
	assert.True(t, strings.HasSuffix(string(data), "\r\n\r\nint main() {}\n"))
}

func TestUpdateLicenseCommandReportsOnStdout(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Cleanup(func() {
		_ = updateLicenseCmd.Flags().Set("dry", "false")
	})
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Source", "a.cpp"), "int a;\n")

	var err error
	output := captureStdout(t, func() {
		rootCmd.SetArgs([]string{"update-license", "--root", root, "--log-level", "info", "--base-year", "2023"})
		err = rootCmd.ExecuteContext(context.Background())
	})
	require.NoError(t, err)
	assert.Contains(t, output, filepath.Join(root, "Source", "a.cpp")+": updated as ")

	output = captureStdout(t, func() {
		rootCmd.SetArgs([]string{"update-license", "--root", root, "--log-level", "info", "--dry"})
		err = rootCmd.ExecuteContext(context.Background())
	})
	require.NoError(t, err)
	assert.Contains(t, output, filepath.Join(root, "Source", "a.cpp")+": up to date")
	assert.Contains(t, output, "0 of 1 files would be updated")
}

func TestPackageCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Bin", "Release", "app.exe"), "exe")
	writeFile(t, filepath.Join(root, "Bin", "Release", "app.pdb"), "pdb")
	writeFile(t, filepath.Join(root, "Bin", "Release", "vulkan-1.dll"), "loader")

	rules := filepath.Join(root, "rules.yaml")
	writeFile(t, rules, "folders: []\nextraFolders: []\npublish: []\n")

	rootCmd.SetArgs([]string{
		"package", "Release",
		"--build-root", filepath.Join(root, "Bin"),
		"--package-root", filepath.Join(root, "Package"),
		"--rules", rules,
		"--no-publish",
		"--no-progress",
		"--log-level", "error",
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	entries, err := os.ReadDir(filepath.Join(root, "Package", "Release"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "app.exe", entries[0].Name())

	_, err = os.Stat(filepath.Join(root, "Package", "Symbols", "Release", "app.pdb"))
	assert.NoError(t, err)
}

func TestPosixHelpers(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b")

	rootCmd.SetArgs([]string{"mkdir", "-p", dir})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	writeFile(t, filepath.Join(root, "file.txt"), "x")
	rootCmd.SetArgs([]string{"mv", filepath.Join(root, "file.txt"), dir})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	_, err := os.Stat(filepath.Join(dir, "file.txt"))
	require.NoError(t, err)

	rootCmd.SetArgs([]string{"rm", "-rf", filepath.Join(root, "a")})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	_, err = os.Stat(filepath.Join(root, "a"))
	assert.True(t, os.IsNotExist(err))
}
