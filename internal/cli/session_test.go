package cli_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/mcncl/jsonedit/internal/cli"
	"github.com/mcncl/jsonedit/internal/editor"
	apperrors "github.com/mcncl/jsonedit/internal/errors"
)

func newSession(t *testing.T, doc string) (*cli.Session, *bytes.Buffer) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel))
	ed := editor.New(editor.WithLogger(logger))
	require.NoError(t, ed.Load(doc))
	var out bytes.Buffer
	return cli.NewSession(ed, &out, logger), &out
}

func TestRun_EditScript(t *testing.T) {
	s, out := newSession(t, `{"users": [{"name": "ann"}, {"name": "bob"}]}`)

	script := `
# duplicate the first user at the end and rename it
select /users/@/0
copy
select /users/@/1
paste-after
select /users/@/2/name/@
set "cid"
print
`
	require.NoError(t, s.Run(strings.NewReader(script)))

	doc := out.String()
	require.True(t, gjson.Valid(doc), doc)
	assert.Equal(t, int64(3), gjson.Get(doc, "users.#").Int())
	assert.Equal(t, "ann", gjson.Get(doc, "users.0.name").String())
	assert.Equal(t, "cid", gjson.Get(doc, "users.2.name").String())
}

func TestRun_CutAndDrop(t *testing.T) {
	s, out := newSession(t, `{"from": {"k": 1, "j": 2}, "to": {}}`)

	script := strings.Join([]string{
		"select /from/k",
		"drop /to/@ move",
		"select /from/j",
		"cut",
		"select /to/@",
		"paste-into",
		"print",
	}, "\n")
	require.NoError(t, s.Run(strings.NewReader(script)))

	doc := out.String()
	assert.Equal(t, "{}", gjson.Get(doc, "from").Raw)
	assert.Equal(t, int64(1), gjson.Get(doc, "to.k").Int())
	assert.Equal(t, int64(2), gjson.Get(doc, "to.j").Int())
}

func TestRun_StopsAtFailingLine(t *testing.T) {
	s, out := newSession(t, `[1, 2]`)

	err := s.Run(strings.NewReader("select /0\nselect /9\ndelete\n"))
	require.Error(t, err)

	var scriptErr *cli.ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, 2, scriptErr.Line)
	assert.Equal(t, "select /9", scriptErr.Command)
	assert.True(t, errors.Is(err, apperrors.ErrPathNotFound))

	// delete never ran
	assert.Empty(t, out.String())
	require.NoError(t, s.Exec("print"))
	assert.Equal(t, int64(2), gjson.Get(out.String(), "#").Int())
}

func TestExec_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		target error
		kind   apperrors.ErrorType
	}{
		{"unknown command", "frobnicate", nil, apperrors.ErrorTypeInput},
		{"missing argument", "select", nil, apperrors.ErrorTypeInput},
		{"unexpected argument", "copy now", nil, apperrors.ErrorTypeInput},
		{"bad drop effect", "drop / sideways", nil, apperrors.ErrorTypeInput},
		{"delete root", "delete", apperrors.ErrRootNode, apperrors.ErrorTypeStructural},
		{"paste nothing", "paste-into", apperrors.ErrClipboardEmpty, apperrors.ErrorTypeStructural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t, `{"a": 1}`)
			err := s.Exec(tt.line)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.kind), err.Error())
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target), err.Error())
			}
		})
	}
}

func TestExec_IgnoresBlankAndComments(t *testing.T) {
	s, out := newSession(t, `[]`)
	for _, line := range []string{"", "   ", "# print"} {
		require.NoError(t, s.Exec(line))
	}
	assert.Empty(t, out.String())
}

func TestExec_SetInvalidText(t *testing.T) {
	s, _ := newSession(t, `{"a": 1}`)
	require.NoError(t, s.Exec("select /a/@"))

	err := s.Exec("set [1,")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(apperrors.UserFriendlyError(err), "INVALID Json format at"))
}

func TestTree(t *testing.T) {
	s, out := newSession(t, `[1, [2]]`)

	require.NoError(t, s.Exec("tree"))
	assert.Equal(t, "*- []\n     1\n   + [2]\n", out.String())

	out.Reset()
	require.NoError(t, s.Exec("select /1"))
	require.NoError(t, s.Exec("expand"))
	require.NoError(t, s.Exec("tree"))
	assert.Equal(t, " - []\n     1\n*  - []\n       2\n", out.String())

	out.Reset()
	require.NoError(t, s.Exec("select /"))
	require.NoError(t, s.Exec("collapse-all"))
	require.NoError(t, s.Exec("tree"))
	assert.Equal(t, "*+ [1,[2]]\n", out.String())
}

func TestInfo(t *testing.T) {
	s, out := newSession(t, `{"a": [1]}`)
	require.NoError(t, s.Exec("select /a/@/0"))
	require.NoError(t, s.Exec("copy"))
	require.NoError(t, s.Exec("info"))

	text := out.String()
	assert.Contains(t, text, "path:      /a/0")
	assert.Contains(t, text, "kind:      Scalar")
	assert.Contains(t, text, "type:      Number")
	assert.Contains(t, text, "actions:   copy cut paste-after paste-before replace delete\n")
	assert.Contains(t, text, "clipboard: persistent /a/0")
}

func TestInteractive_ContinuesAfterErrors(t *testing.T) {
	s, out := newSession(t, `[1]`)
	var errOut bytes.Buffer

	input := "select /5\nselect /0\ndelete\nprint\n"
	require.NoError(t, s.Interactive(strings.NewReader(input), &errOut))

	assert.Contains(t, errOut.String(), "Input error:")
	assert.Equal(t, "[]", strings.TrimSpace(out.String()))
}

func TestHelp(t *testing.T) {
	s, out := newSession(t, `[]`)
	require.NoError(t, s.Exec("help"))
	for _, usage := range []string{"select PATH", "set TEXT", "drop PATH copy|move", "paste-into"} {
		assert.Contains(t, out.String(), usage+"\n")
	}
}
