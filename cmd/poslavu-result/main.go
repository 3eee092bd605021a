// Command poslavu-result converts POSLavu <result> XML fragments to and
// from JSON and YAML, and checks or fingerprints them.
//
// Usage:
//
//	poslavu-result parse [file] [--output json|yaml] [--all]
//	poslavu-result encode [file] [--input json|yaml] [--all] [--wrap name] [--indent]
//	poslavu-result check [file]
//	poslavu-result digest [file] [--verify hash]
//	poslavu-result version
//
// A missing file argument or "-" reads standard input.
//
// Exit status is 0 on success, 2 when the input holds no or several
// <result> elements, 3 when input cannot be read, and 1 otherwise.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/poslavu/core/errors"
	"github.com/FocuswithJustin/poslavu/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for poslavu-result.
type CLI struct {
	Globals

	Parse   ParseCmd   `cmd:"" help:"Convert a <result> fragment to JSON or YAML"`
	Encode  EncodeCmd  `cmd:"" help:"Convert a JSON or YAML object to a <result> fragment"`
	Check   CheckCmd   `cmd:"" help:"Check that input holds exactly one well-formed <result> element"`
	Digest  DigestCmd  `cmd:"" help:"Print BLAKE3 and SHA-256 fingerprints of the canonical fragment"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Globals holds flags shared by every command.
type Globals struct {
	LogLevel  string `name:"log-level" default:"warn" enum:"debug,info,warn,error" env:"POSLAVU_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" env:"POSLAVU_LOG_FORMAT" help:"Log format (text, json)"`
}

// env carries the streams and context a command runs against.
type env struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	exit   func(int)
}

func (g *Globals) configureLogging(w io.Writer) error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(w, level, format)
	return nil
}

// run parses args and executes the selected command.
func run(args []string, e *env) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("poslavu-result"),
		kong.Description("POSLavu result fragment converter"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(e.stdout, e.stderr),
		kong.Exit(e.exit),
		kong.Bind(e),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if err := cli.configureLogging(e.stderr); err != nil {
		return err
	}

	e.ctx = logging.WithRunID(e.ctx, uuid.NewString())
	logging.DebugContext(e.ctx, "command_start", "command", kctx.Command())
	return kctx.Run()
}

func main() {
	e := &env{
		ctx:    context.Background(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		exit:   os.Exit,
	}
	if err := run(os.Args[1:], e); err != nil {
		fmt.Fprintf(os.Stderr, "poslavu-result: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var ioErr *errors.IOError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errors.ErrShape):
		return 2
	case errors.As(err, &ioErr):
		return 3
	}
	return 1
}
