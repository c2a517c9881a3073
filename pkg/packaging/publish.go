package packaging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/GPUOpen-Tools/GPU-Reshape/pkg/fsutil"
)

// DefaultPublishCommand builds a self-contained release of $PROJECT for $PLATFORM into $DESTINATION
const DefaultPublishCommand = `dotnet publish "$PROJECT" -c "$CONFIGURATION" -o "$DESTINATION" -r "$PLATFORM" --self-contained`

// DefaultPlatform is the runtime identifier passed to publish commands
const DefaultPlatform = "win-x64"

// Publisher builds a sub-project into a package
type Publisher interface {
	Publish(ctx context.Context, target PublishTarget, configuration, destination string) error
}

// ShellPublisher runs the publish command of each target through an embedded shell. rm, mkdir and mv always use the
// cross-platform implementations from fsutil.
type ShellPublisher struct {
	// Dir is the working directory for the command and the base for relative project paths
	Dir      string
	Platform string
	// Dry logs the command instead of running it
	Dry    bool
	Stdout io.Writer
	Stderr io.Writer
	Logger zerolog.Logger
}

func builtinHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) > 0 && fsutil.IsBuiltin(args[0]) {
			hc := interp.HandlerCtx(ctx)
			err := fsutil.RunBuiltin(hc.Dir, args)
			if err != nil {
				if hc.Stderr != nil {
					_, _ = io.WriteString(hc.Stderr, err.Error()+"\n")
				}
				return interp.NewExitStatus(1)
			}
			return nil
		}

		return next(ctx, args)
	}
}

func (p *ShellPublisher) environ(target PublishTarget, configuration, destination string) []string {
	platform := p.Platform
	if platform == "" {
		platform = DefaultPlatform
	}

	return append(os.Environ(),
		"PROJECT="+target.Project,
		"CONFIGURATION="+configuration,
		"DESTINATION="+destination,
		"PLATFORM="+platform,
	)
}

// Publish runs the command for target. A non-zero exit status is returned as an error.
func (p *ShellPublisher) Publish(ctx context.Context, target PublishTarget, configuration, destination string) error {
	command := target.Command
	if command == "" {
		command = DefaultPublishCommand
	}

	script, err := syntax.NewParser().Parse(strings.NewReader(command), target.Project)
	if err != nil {
		return eris.Wrapf(err, "Failed to parse publish command for %s", target.Project)
	}

	env := p.environ(target, configuration, destination)
	if p.Dry {
		cfg := &expand.Config{Env: expand.ListEnviron(env...)}
		words := []string{}
		syntax.Walk(script, func(node syntax.Node) bool {
			if call, ok := node.(*syntax.CallExpr); ok {
				fields, err := expand.Fields(cfg, call.Args...)
				if err == nil {
					words = append(words, strings.Join(fields, " "))
				}
				return false
			}
			return true
		})

		p.Logger.Info().Str("project", target.Project).Msgf("would run: %s", strings.Join(words, "; "))
		return nil
	}

	stdout := p.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := p.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	runner, err := interp.New(
		interp.Dir(p.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.ExecHandlers(builtinHandler),
		interp.StdIO(nil, stdout, stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "failed to initialize runner")
	}

	p.Logger.Info().Str("project", target.Project).Str("configuration", configuration).Msg("publishing")
	err = runner.Run(ctx, script)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return eris.Errorf("Publishing %s failed with exit status %d", target.Project, status)
		}
		return eris.Wrapf(err, "Failed to publish %s", target.Project)
	}

	return nil
}
