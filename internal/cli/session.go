// Package cli runs edit scripts against an editor. Each script line is one
// command applied to the selected node.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/dragdrop"
	"github.com/mcncl/jsonedit/internal/editor"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/view"
)

const maxLineSize = 4 * 1024 * 1024

// ScriptError reports the script line a command failed on
type ScriptError struct {
	Line    int
	Command string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Command, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

type command struct {
	usage string
	arg   bool
	run   func(s *Session, arg string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"select":       {usage: "select PATH", arg: true, run: (*Session).selectPath},
		"expand":       {usage: "expand", run: (*Session).expand},
		"collapse":     {usage: "collapse", run: (*Session).collapse},
		"expand-all":   {usage: "expand-all", run: (*Session).expandAll},
		"collapse-all": {usage: "collapse-all", run: (*Session).collapseAll},
		"copy":         {usage: "copy", run: (*Session).copy},
		"cut":          {usage: "cut", run: (*Session).cut},
		"paste-after":  {usage: "paste-after", run: paste((*editor.Editor).PasteAfter)},
		"paste-before": {usage: "paste-before", run: paste((*editor.Editor).PasteBefore)},
		"paste-into":   {usage: "paste-into", run: paste((*editor.Editor).PasteInto)},
		"replace":      {usage: "replace", run: paste((*editor.Editor).PasteReplace)},
		"delete":       {usage: "delete", run: (*Session).delete},
		"set":          {usage: "set TEXT", arg: true, run: (*Session).set},
		"drop":         {usage: "drop PATH copy|move", arg: true, run: (*Session).drop},
		"print":        {usage: "print", run: (*Session).print},
		"tree":         {usage: "tree", run: (*Session).tree},
		"info":         {usage: "info", run: (*Session).info},
		"help":         {usage: "help", run: (*Session).help},
	}
}

// Session applies commands to one editor and writes command output to out
type Session struct {
	editor *editor.Editor
	out    io.Writer
	logger *zap.Logger
}

// NewSession creates a session over ed
func NewSession(ed *editor.Editor, out io.Writer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{editor: ed, out: out, logger: logger}
}

// Editor returns the editor the session works on
func (s *Session) Editor() *editor.Editor { return s.editor }

// Run executes every line of r and stops at the first failing command
func (s *Session) Run(r io.Reader) error {
	return s.scan(r, func(lineNo int, line string) error {
		if err := s.Exec(line); err != nil {
			return &ScriptError{Line: lineNo, Command: line, Err: err}
		}
		return nil
	})
}

// Interactive executes commands from r until EOF, reporting failures to
// errOut and carrying on with the next command
func (s *Session) Interactive(r io.Reader, errOut io.Writer) error {
	fmt.Fprintln(errOut, "jsonedit interactive mode, type help for the command list")
	return s.scan(r, func(_ int, line string) error {
		if err := s.Exec(line); err != nil {
			fmt.Fprintln(errOut, errors.UserFriendlyError(err))
		}
		return nil
	})
}

func (s *Session) scan(r io.Reader, handle func(int, string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := handle(lineNo, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.NewInputError("failed to read commands", err)
	}
	return nil
}

// Exec runs one command line. Blank lines and lines starting with # are
// ignored.
func (s *Session) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	cmd, ok := commands[name]
	if !ok {
		return errors.NewInputError(fmt.Sprintf("unknown command %q", name), nil)
	}
	if cmd.arg && arg == "" {
		return errors.NewInputError("usage: "+cmd.usage, nil)
	}
	if !cmd.arg && arg != "" {
		return errors.NewInputError(fmt.Sprintf("%s takes no argument", name), nil)
	}

	s.logger.Debug("command", zap.String("name", name), zap.String("arg", arg))
	return cmd.run(s, arg)
}

func (s *Session) selected() (*view.Node, error) {
	n := s.editor.Selected()
	if n == nil {
		return nil, errors.NewInputError("nothing selected", errors.ErrNoSelection)
	}
	return n, nil
}

func (s *Session) selectPath(path string) error {
	n, err := s.editor.Locate(path)
	if err != nil {
		return err
	}
	return s.editor.Select(n)
}

func (s *Session) expand(string) error {
	n, err := s.selected()
	if err != nil {
		return err
	}
	return s.editor.Tree().Expand(n)
}

func (s *Session) collapse(string) error {
	n, err := s.selected()
	if err != nil {
		return err
	}
	s.editor.Tree().Collapse(n)
	return nil
}

func (s *Session) expandAll(string) error {
	n, err := s.selected()
	if err != nil {
		return err
	}
	count, err := s.editor.Tree().ExpandAll(n)
	s.logger.Debug("expanded nodes", zap.Int("count", count))
	return err
}

func (s *Session) collapseAll(string) error {
	n, err := s.selected()
	if err != nil {
		return err
	}
	count := s.editor.Tree().CollapseAll(n)
	s.logger.Debug("collapsed nodes", zap.Int("count", count))
	return nil
}

func (s *Session) copy(string) error {
	n, err := s.selected()
	if err != nil {
		return err
	}
	return s.editor.Copy(n)
}

func (s *Session) cut(string) error {
	n, err := s.selected()
	if err != nil {
		return err
	}
	return s.editor.Cut(n)
}

// paste adapts a paste operation into a command that selects the new node
func paste(op func(*editor.Editor, *view.Node) (*view.Node, error)) func(*Session, string) error {
	return func(s *Session, _ string) error {
		n, err := s.selected()
		if err != nil {
			return err
		}
		node, err := op(s.editor, n)
		if err != nil {
			return err
		}
		return s.editor.Select(node)
	}
}

func (s *Session) delete(string) error {
	n, err := s.selected()
	if err != nil {
		return err
	}
	return s.editor.Delete(n)
}

func (s *Session) set(text string) error {
	_, err := s.editor.UpdateSelected(text)
	return err
}

func (s *Session) drop(arg string) error {
	src, err := s.selected()
	if err != nil {
		return err
	}
	path, mode, ok := strings.Cut(arg, " ")
	if !ok {
		return errors.NewInputError("usage: "+commands["drop"].usage, nil)
	}
	effect, ok := dragdrop.ParseEffect(strings.TrimSpace(mode))
	if !ok {
		return errors.NewInputError(fmt.Sprintf("unknown drop effect %q", mode), nil)
	}
	dst, err := s.editor.Locate(path)
	if err != nil {
		return err
	}
	node, err := s.editor.Transfer(src, dst, effect)
	if err != nil {
		return err
	}
	return s.editor.Select(node)
}

func (s *Session) print(string) error {
	return s.editor.SaveTo(s.out)
}

func (s *Session) tree(string) error {
	root := s.editor.Tree().Root()
	if root == nil {
		return errors.NewInputError("nothing to show", errors.ErrNoDocument)
	}
	return WriteTree(s.out, root, s.editor.Selected())
}

func (s *Session) info(string) error {
	n, err := s.selected()
	if err != nil {
		return err
	}
	actions := s.editor.Actions(n)
	clip := "empty"
	if item, mode, ok := s.editor.Clipboard().Peek(); ok {
		clip = fmt.Sprintf("%s %s", mode, item.Path())
	}

	lines := []string{
		"path:      " + n.Path(),
		"kind:      " + n.Kind().Label(),
		"type:      " + n.Value().TypeName(),
		"label:     " + n.Label(),
		"actions:   " + strings.Join(actionNames(actions), " "),
		"clipboard: " + clip,
	}
	_, err = fmt.Fprintln(s.out, strings.Join(lines, "\n"))
	return err
}

func (s *Session) help(string) error {
	for _, name := range commandNames() {
		if _, err := fmt.Fprintln(s.out, commands[name].usage); err != nil {
			return err
		}
	}
	return nil
}
