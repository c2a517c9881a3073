package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConsoleWriter(t *testing.T) {
	base := t.TempDir()
	var out bytes.Buffer
	logger := zerolog.New(NewConsoleWriter(&out, false, base))

	logger.Info().Str("package", "Release").Str("file", "app.exe").Msg("copying")
	logger.Info().Str("path", filepath.Join(base, "Source", "a.cpp")).Msg("up to date")
	logger.Warn().Str("path", "/elsewhere/b.cpp").Msg("encoding not detected")

	dest := filepath.Join(base, "Package", "Release")
	logger.Info().Str("path", dest).Msgf("packaging into %s", dest)

	want := "Release: copying app.exe\n" +
		filepath.Join("Source", "a.cpp") + ": up to date\n" +
		"/elsewhere/b.cpp: encoding not detected\n" +
		"packaging into " + filepath.Join("Package", "Release") + "\n"
	assert.Equal(t, want, out.String())
}

func TestConsoleWriterErrors(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(NewConsoleWriter(&out, false, ""))

	logger.Error().Str("package", "Debug").Err(eris.New("boom")).Msg("Failed")

	assert.Contains(t, out.String(), "Debug: Error: Failed\n")
	assert.Contains(t, out.String(), "boom")
}

func TestConsoleWriterColor(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(NewConsoleWriter(&out, true, ""))

	logger.Warn().Msg("careful")
	assert.Equal(t, "\033[33mcareful\033[0m\n\033[0m", out.String())
}

func TestConsoleWriterVerbose(t *testing.T) {
	var out bytes.Buffer
	w := NewConsoleWriter(&out, false, "")
	w.verbose = true
	logger := zerolog.New(w)

	logger.Info().Int("updated", 3).Msg("done")
	assert.Equal(t, "done\n  level: info\n  message: done\n  updated: 3\n\n", out.String())
}

func TestConsoleWriterInvalidInput(t *testing.T) {
	w := NewConsoleWriter(&bytes.Buffer{}, false, "")
	_, err := w.Write([]byte("not json"))
	assert.Error(t, err)
}
