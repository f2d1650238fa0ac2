package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rts/cli/cmd"
	"github.com/ardnew/rts/lang"
	"github.com/ardnew/rts/log"
	"github.com/ardnew/rts/pkg"
)

// CLI is the top-level command-line interface for rts.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Define   []string `help:"Bind name to the value of a host expression before any script runs" name:"define"    placeholder:"NAME=EXPR" short:"D"`
	Source   []string `help:"Script file(s) run before the command's script, or '-' for stdin"   name:"source"    short:"s"              type:"existingfile"`
	Path     []string `help:"Directory prepended to PATH for exec"                               name:"path"      type:"existingdir"`
	MaxDepth int      `default:"${maxDepth}"                                                     help:"Maximum nesting of calls and namespace bodies" name:"max-depth"`

	Run     cmd.Run     `cmd:"" default:"withargs" help:"Run a script"`
	Drun    cmd.Drun    `cmd:"" help:"Run a script with tracing, a line tree dump and a summary"`
	Tree    cmd.Tree    `cmd:"" help:"Print the nested line tree of a script"`
	Repl    cmd.Repl    `cmd:"" help:"Start an interactive session"`
	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`
	Version cmd.Version `cmd:"" help:"Print version"`
	Package cmd.Package `cmd:"" help:"Bundle a script into an executable"`
}

// Run executes the rts CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion,
// including the code a script passes to exit.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) (err error) {
	var cli CLI

	err = mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"maxDepth":           "256",
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that the configuration script and the
	// parser itself log with the requested settings.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defines, err := parseDefines(cli.Define)
	if err != nil {
		return err
	}

	// Report a script's exit code after the deferred log and pprof
	// shutdowns below have run.
	defer func() {
		if code, ok := cmd.ExitCode(err); ok {
			err = nil

			exit(code)
		}
	}()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSetup(ctx, cmd.Setup{
		Options: []lang.Option{
			lang.WithLogger(log.Default()),
			lang.WithExecPath(cli.Path...),
			lang.WithMaxDepth(cli.MaxDepth),
		},
		Defines: defines,
		Sources: cli.Source,
	})

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
