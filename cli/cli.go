package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/haiku/cli/cmd"
	"github.com/ardnew/haiku/pkg"
)

// CLI is the top-level command-line interface for haiku.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit"`

	Data     []string `help:"Data record file(s) in YAML or JSON, or '-' for stdin"      short:"d"   type:"existingfile"`
	Catalogs []string `help:"Template catalog file(s) or directories"                    name:"templates" short:"t" type:"path"`
	Depth    int      `default:"1"                                                       help:"Levels of nested record data visible to expressions"`

	Expand    cmd.Expand    `cmd:"" default:"withargs" help:"Expand an expression or template"`
	Bind      cmd.Bind      `cmd:""                    help:"Bind a view to the data record"`
	Templates cmd.Templates `cmd:""                    help:"List registered templates"`
	Fmt       cmd.Fmt       `cmd:""                    help:"Format a view"`
	Serve     cmd.Serve     `cmd:""                    help:"Serve expansion over HTTP"`
	Repl      cmd.Repl      `cmd:""                    help:"Start an interactive session"`
	Init      cmd.Init      `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the haiku CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, os.Stdout, os.Stderr, args...)
}

func run(
	ctx context.Context,
	exit func(code int),
	stdout, stderr io.Writer,
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Name + " " + pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, stderr),
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
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSourceFiles(ctx, cli.Data)
	ctx = cmd.WithCatalogs(ctx, cli.Catalogs)
	ctx = cmd.WithDepth(ctx, cli.Depth)
	ctx = cmd.WithOutput(ctx, stdout)

	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
