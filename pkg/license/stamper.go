package license

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Status describes what Stamp did to a file
type Status int

const (
	StatusUpToDate Status = iota
	StatusUpdated
	// StatusWouldUpdate is reported instead of StatusUpdated in dry mode
	StatusWouldUpdate
)

func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up to date"
	case StatusUpdated:
		return "updated"
	case StatusWouldUpdate:
		return "would update"
	default:
		return "unknown"
	}
}

// Result is the outcome of stamping a single file
type Result struct {
	Status   Status
	Encoding string
	// Replaced is the number of characters removed from the start of the file
	Replaced int
}

// Summary counts the outcomes of a run. Failed lists the files whose encoding couldn't be detected.
type Summary struct {
	Updated     int
	UpToDate    int
	// WouldUpdate counts the files a dry run left untouched
	WouldUpdate int
	Failed      []string
}

// Stamper makes sure files begin with the current license block
type Stamper struct {
	Config    *Config
	Templates *Templates
	Logger    zerolog.Logger
	// Dry reports the files that would change without writing them
	Dry   bool
	Guess Guesser
}

// NewStamper creates a stamper for cfg using chardet for encoding detection
func NewStamper(cfg *Config, logger zerolog.Logger) *Stamper {
	return &Stamper{
		Config:    cfg,
		Templates: NewTemplates(cfg),
		Logger:    logger,
		Guess:     ChardetGuesser,
	}
}

// Stamp updates the license block of a single file. Files with an existing, current license are left untouched. An
// existing leading comment is only replaced if it contains the license header. Otherwise the license is inserted
// in front of it.
func (s *Stamper) Stamp(path string) (Result, error) {
	ext, ok := s.Config.ResolveExtension(path)
	if !ok {
		return Result{}, eris.Errorf("%s has no license template", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, eris.Wrapf(err, "Failed to stat %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, eris.Wrapf(err, "Could not open file %s", path)
	}

	enc, text, err := DetectEncoding(data, s.Guess, s.Config.Fallbacks)
	if err != nil {
		return Result{}, eris.Wrapf(err, "Failed to decode %s", path)
	}

	tmpl := s.Templates.Get(ext)
	if HasPrefixIgnoringCR(text, tmpl) {
		return Result{Status: StatusUpToDate, Encoding: enc.Name}, nil
	}

	end := LeadingBlockEnd(text, s.Config.StyleFor(ext))
	if !strings.Contains(text[:end], s.Config.Header) {
		end = 0
	}

	result := Result{Status: StatusWouldUpdate, Encoding: enc.Name, Replaced: end}
	if s.Dry {
		return result, nil
	}

	out, err := enc.Encode(tmpl + text[end:])
	if err != nil {
		return Result{}, eris.Wrapf(err, "Failed to encode %s", path)
	}

	err = os.WriteFile(path, out, info.Mode().Perm())
	if err != nil {
		return Result{}, eris.Wrapf(err, "Failed to write %s", path)
	}

	result.Status = StatusUpdated
	return result, nil
}

// Run stamps every file Discover finds under root. Files with an undetectable encoding are logged and collected in
// Summary.Failed, every other error aborts the run.
func (s *Stamper) Run(ctx context.Context, root string) (Summary, error) {
	summary := Summary{}

	files, err := Discover(root, s.Config)
	if err != nil {
		return summary, err
	}

	for _, path := range files {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		result, err := s.Stamp(path)
		if err != nil {
			if eris.Is(err, ErrUndetectedEncoding) {
				s.Logger.Warn().Str("path", path).Msg("encoding not detected")
				summary.Failed = append(summary.Failed, path)
				continue
			}

			return summary, err
		}

		switch result.Status {
		case StatusUpToDate:
			summary.UpToDate++
			s.Logger.Info().Str("path", path).Msg("up to date")
		case StatusUpdated:
			summary.Updated++
			s.Logger.Info().Str("path", path).Msgf("updated as %s", result.Encoding)
		case StatusWouldUpdate:
			summary.WouldUpdate++
			s.Logger.Info().Str("path", path).Str("encoding", result.Encoding).Msg("would update")
		}
	}

	event := s.Logger.Info().
		Int("updated", summary.Updated).
		Int("upToDate", summary.UpToDate).
		Int("failed", len(summary.Failed))
	if s.Dry {
		event.Int("wouldUpdate", summary.WouldUpdate).
			Msgf("%d of %d files would be updated", summary.WouldUpdate, len(files))
	} else {
		event.Msgf("%d of %d files updated", summary.Updated, len(files))
	}

	return summary, nil
}
