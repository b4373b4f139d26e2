package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"

	"github.com/lugehorsam/postfix-spreadsheet/internal/app"
	"github.com/lugehorsam/postfix-spreadsheet/internal/grid"
	"github.com/lugehorsam/postfix-spreadsheet/internal/render"
	"github.com/lugehorsam/postfix-spreadsheet/internal/server"
	"github.com/lugehorsam/postfix-spreadsheet/internal/storage"
)

const ExitCodeMainError = 1

const ProgramName = "postfix-spreadsheet"

const Usage = "Usage: " + ProgramName + " [-h] [-i] [-n] [-o file] [-p precision] [-s addr] <file>"

const helpText = Usage + `

Evaluates a CSV file of postfix expressions and prints the rendered grid.

  -h            show this help
  -i            browse the rendered grid interactively
  -n            re-evaluate referenced cells instead of caching them per render
  -o file       write the rendered grid to file instead of stdout
  -p precision  decimal places (default 3)
  -s addr       serve POST /render and /evaluate on addr instead of reading a file`

// replaced in tests
var (
	newScreen = tcell.NewScreen
	serve     = server.ListenAndServe
)

// Config is the parsed command line.
type Config struct {
	Files       []string
	Interactive bool
	Output      string
	Addr        string
	Help        bool
	Options     render.Options
}

// ParseArgs parses argv, including the program name in args[0].
func ParseArgs(args []string) (Config, error) {
	cfg := Config{Options: render.DefaultOptions()}
	if len(args) == 0 {
		args = []string{ProgramName}
	}

	opts, optind, err := getopt.Getopts(args, "hino:p:s:")
	if err != nil {
		return cfg, err
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'h':
			cfg.Help = true
		case 'i':
			cfg.Interactive = true
		case 'n':
			cfg.Options.Memoize = false
		case 'o':
			cfg.Output = opt.Value
		case 'p':
			precision, err := strconv.Atoi(opt.Value)
			if err != nil || precision < 0 || precision > 15 {
				return cfg, fmt.Errorf("invalid precision: %s", opt.Value)
			}
			cfg.Options.Precision = precision
		case 's':
			cfg.Addr = opt.Value
		}
	}
	cfg.Files = args[optind:]
	return cfg, nil
}

// Run executes the command line and returns the process exit code. Argument
// and missing-file problems are reported on stdout and are not failures.
func Run(args []string, stdout, stderr io.Writer) int {
	cfg, err := ParseArgs(args)
	if err != nil {
		warn(stdout, err.Error())
		warn(stdout, Usage)
		return 0
	}
	if cfg.Help {
		_, _ = fmt.Fprintln(stdout, helpText)
		return 0
	}

	if cfg.Addr != "" {
		return HandleExitError(stderr, serve(cfg.Addr, cfg.Options))
	}

	if len(cfg.Files) != 1 {
		warn(stdout, Usage)
		return 0
	}
	filename := cfg.Files[0]

	g, err := storage.LoadGrid(filename)
	if errors.Is(err, storage.ErrNotFound) {
		warn(stdout, "File not found: "+filename)
		return 0
	}
	if err != nil {
		return HandleExitError(stderr, err)
	}

	if cfg.Interactive {
		return HandleExitError(stderr, view(g, cfg.Options))
	}

	text := render.Render(g, cfg.Options)
	if cfg.Output != "" {
		return HandleExitError(stderr, storage.Save(cfg.Output, text))
	}
	_, _ = fmt.Fprintln(stdout, text)
	return 0
}

func view(g *grid.Grid, opts render.Options) error {
	s, err := newScreen()
	if err != nil {
		return fmt.Errorf("cannot create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("cannot init screen: %w", err)
	}
	defer s.Fini()

	app.NewApp(g, opts).Run(s)
	return nil
}

// HandleExitError prints err and maps it to an exit code.
func HandleExitError(errStream io.Writer, err error) int {
	if err == nil {
		return 0
	}
	_, _ = color.New(color.FgRed).Fprintln(errStream, err)
	return ExitCodeMainError
}

func warn(w io.Writer, msg string) {
	_, _ = color.New(color.FgYellow).Fprintln(w, msg)
}
