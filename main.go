package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mcncl/jsonedit/internal/analyzer"
	"github.com/mcncl/jsonedit/internal/cli"
	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/editor"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config  string           `help:"Path to a config file. Searched for from the working directory when omitted." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging and view consistency checks." short:"d"`
	Indent  string           `help:"Indent used when writing JSON."`
	Depth   int              `help:"Levels of the view tree built when a document is loaded (0 keeps the configured value)."`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Show     ShowCmd     `cmd:"" help:"Print the view tree of a JSON document."`
	Apply    ApplyCmd    `cmd:"" help:"Run edit commands against a JSON document."`
	Validate ValidateCmd `cmd:"" help:"Check that a JSON document is well formed."`
	New      NewCmd      `cmd:"" help:"Write an empty object or array document."`
	Infer    InferCmd    `cmd:"" help:"Write a JSON Schema describing a document."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Config *config.Config
	Logger *zap.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ShowCmd prints the view tree
type ShowCmd struct {
	File      string `arg:"" optional:"" help:"JSON file. Reads from stdin when omitted." type:"path"`
	ExpandAll bool   `help:"Expand every branch before printing." short:"a"`
}

// Run executes the show command
func (s *ShowCmd) Run(ctx *Context) error {
	ed := newEditor(ctx)
	if err := load(ed, s.File, ctx.Stdin); err != nil {
		return err
	}
	root := ed.Tree().Root()
	if s.ExpandAll {
		count, err := ed.Tree().ExpandAll(root)
		if err != nil {
			return err
		}
		ctx.Logger.Debug("expanded tree", zap.Int("nodes", count))
	}
	return cli.WriteTree(ctx.Stdout, root, nil)
}

// ApplyCmd runs an edit script, or reads commands from stdin when no script
// is given
type ApplyCmd struct {
	File   string `arg:"" help:"JSON file to edit." type:"path"`
	Script string `help:"File of edit commands, one per line." short:"s" type:"path"`
	Output string `help:"Path to write the edited document to. Writes to stdout when omitted." short:"o" type:"path"`
}

// Run executes the apply command
func (a *ApplyCmd) Run(ctx *Context) error {
	ed := newEditor(ctx)
	if err := ed.LoadFile(a.File); err != nil {
		return err
	}

	session := cli.NewSession(ed, ctx.Stdout, ctx.Logger)
	if a.Script == "" {
		if err := session.Interactive(ctx.Stdin, ctx.Stderr); err != nil {
			return err
		}
	} else {
		f, err := os.Open(a.Script)
		if err != nil {
			return errors.NewInputError(fmt.Sprintf("failed to open script '%s'", a.Script), err)
		}
		defer func() { _ = f.Close() }()
		if err := session.Run(f); err != nil {
			return err
		}
	}
	return writeOutput(ctx, ed, a.Output)
}

// ValidateCmd checks a document without loading it into a view
type ValidateCmd struct {
	File string `arg:"" optional:"" help:"JSON file. Reads from stdin when omitted." type:"path"`
}

// Run executes the validate command
func (v *ValidateCmd) Run(ctx *Context) error {
	data, err := readInput(v.File, ctx.Stdin)
	if err != nil {
		return err
	}
	text := string(data)
	doc, err := parser.ParseString(text)
	if err != nil {
		return err
	}
	if !gjson.Valid(text) {
		return errors.NewParsingError("document rejected by strict validation", errors.ErrInvalidJSON)
	}
	ctx.Logger.Debug("document validated", zap.Stringer("root", doc.Kind()), zap.Int("bytes", len(data)))

	_, err = fmt.Fprintln(ctx.Stdout, editor.StatusValidated)
	return err
}

// NewCmd writes an empty document
type NewCmd struct {
	Kind   string `arg:"" enum:"object,array" help:"Kind of the root value (object or array)."`
	Output string `help:"Path to write the document to. Writes to stdout when omitted." short:"o" type:"path"`
}

// Run executes the new command
func (n *NewCmd) Run(ctx *Context) error {
	ed := newEditor(ctx)
	var err error
	if n.Kind == "array" {
		err = ed.NewArray()
	} else {
		err = ed.NewObject()
	}
	if err != nil {
		return err
	}
	return writeOutput(ctx, ed, n.Output)
}

// InferCmd writes a schema inferred from an example document
type InferCmd struct {
	File      string `arg:"" optional:"" help:"JSON file. Reads from stdin when omitted." type:"path"`
	Output    string `help:"Path to write the schema to. Writes to stdout when omitted." short:"o" type:"path"`
	NoFormats bool   `help:"Do not detect uuid, date and date-time strings."`
}

// Run executes the infer command
func (i *InferCmd) Run(ctx *Context) error {
	data, err := readInput(i.File, ctx.Stdin)
	if err != nil {
		return err
	}
	doc, err := parser.ParseString(string(data))
	if err != nil {
		return err
	}

	a := analyzer.NewAnalyzer()
	a.DetectFormats = !i.NoFormats
	inferred, err := a.Analyze(doc)
	if err != nil {
		return err
	}
	text, err := inferred.Marshal(ctx.Config.Editor.Indent)
	if err != nil {
		return err
	}

	if i.Output == "" {
		if _, err := ctx.Stdout.Write(text); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
		return nil
	}
	if err := os.WriteFile(i.Output, text, 0644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", i.Output), err)
	}
	fmt.Fprintf(ctx.Stderr, "Schema written to %s\n", i.Output)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cliArgs CLI
	app, err := kong.New(&cliArgs,
		kong.Name("jsonedit"),
		kong.Description("A structured editor for JSON documents"),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	kctx, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		fmt.Fprintf(stderr, "\nFor help, run: jsonedit --help\n")
		return 1
	}

	ctx, err := newContext(&cliArgs, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}
	defer func() { _ = ctx.Logger.Sync() }()

	if err := kctx.Run(ctx); err != nil {
		ctx.Logger.Debug("command failed", zap.String("command", kctx.Command()), zap.Error(err))
		fmt.Fprintf(stderr, "%s\n", describe(err))
		return 1
	}
	return 0
}

func newContext(cliArgs *CLI, stdin io.Reader, stdout, stderr io.Writer) (*Context, error) {
	configPath := cliArgs.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, cliArgs.Indent, cliArgs.Depth, cliArgs.Debug)
	if err != nil {
		return nil, errors.NewInputError("failed to load configuration", err)
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return nil, err
	}
	return &Context{
		Config: cfg,
		Logger: logger,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}, nil
}

// newLogger builds a production logger writing to w at the configured level
func newLogger(cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		return nil, errors.NewInputError("failed to initialize logger", err)
	}
	prod := zap.NewProductionConfig()
	prod.Level = zap.NewAtomicLevelAt(level)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(prod.EncoderConfig), zapcore.AddSync(w), prod.Level)
	return zap.New(core), nil
}

// describe renders err for the terminal, naming the script line when a
// script command failed
func describe(err error) string {
	msg := errors.UserFriendlyError(err)
	var scriptErr *cli.ScriptError
	if stderrors.As(err, &scriptErr) {
		return fmt.Sprintf("line %d (%s): %s", scriptErr.Line, scriptErr.Command, msg)
	}
	return msg
}

func newEditor(ctx *Context) *editor.Editor {
	return editor.New(editor.WithConfig(ctx.Config), editor.WithLogger(ctx.Logger))
}

// load reads the document from path, or from stdin when path is empty or "-"
func load(ed *editor.Editor, path string, stdin io.Reader) error {
	if path == "" || path == "-" {
		return ed.LoadReader(stdin)
	}
	return ed.LoadFile(path)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.NewInputError("failed to read from stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' does not exist", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
	}
	return data, nil
}

// writeOutput writes the document to path, or to stdout when path is empty
func writeOutput(ctx *Context, ed *editor.Editor, path string) error {
	if path == "" {
		return ed.SaveTo(ctx.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	if err := ed.SaveTo(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	fmt.Fprintf(ctx.Stderr, "Document written to %s\n", path)
	return nil
}
