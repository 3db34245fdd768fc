package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mcncl/jsonedit/internal/config"
)

func newLiveEditor(t *testing.T, delay time.Duration) (*Editor, *LiveEdit, chan func(), *[]Status) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Editor.ValidationDelay = delay
	e := New(WithConfig(cfg))
	require.NoError(t, e.Load(`{"a": 1}`))
	require.NoError(t, e.Select(node(t, e, "/a/@")))

	work := make(chan func(), 4)
	statuses := &[]Status{}
	live := e.NewLiveEdit(
		func(fn func()) { work <- fn },
		func(s Status) { *statuses = append(*statuses, s) },
	)
	return e, live, work, statuses
}

// runPosted runs the next function posted to the owner, as a UI loop would
func runPosted(t *testing.T, work chan func()) {
	t.Helper()
	select {
	case fn := <-work:
		fn()
	case <-time.After(time.Second):
		t.Fatal("nothing was posted")
	}
}

func TestLiveEdit_LatestWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	e, live, work, statuses := newLiveEditor(t, 20*time.Millisecond)
	live.TextChanged("2")
	live.TextChanged("[3")
	live.TextChanged("[3]")

	runPosted(t, work)

	assert.Equal(t, `{"a":[3]}`, compact(t, e))
	require.Len(t, *statuses, 1)
	assert.True(t, (*statuses)[0].Valid)
	assert.Equal(t, StatusValidated, (*statuses)[0].Message)
	assert.Equal(t, "/a/@", e.Selected().Path())
	assert.Empty(t, work, "earlier edits were dropped")
}

func TestLiveEdit_InvalidText(t *testing.T) {
	defer goleak.VerifyNone(t)

	e, live, work, statuses := newLiveEditor(t, time.Hour)
	live.TextChanged("[1,")
	assert.True(t, live.Pending())
	assert.True(t, live.Flush())

	runPosted(t, work)

	assert.Equal(t, `{"a":1}`, compact(t, e))
	require.Len(t, *statuses, 1)
	status := (*statuses)[0]
	assert.False(t, status.Valid)
	assert.Error(t, status.Err)
	assert.Equal(t, "INVALID Json format at (line 1, position 4)", status.Message)
}

func TestLiveEdit_Cancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	e, live, work, statuses := newLiveEditor(t, 20*time.Millisecond)
	live.TextChanged("5")
	live.Cancel()
	assert.False(t, live.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, work)
	assert.Empty(t, *statuses)
	assert.Equal(t, `{"a":1}`, compact(t, e))
}

func TestLiveEdit_DirectPost(t *testing.T) {
	e := New()
	require.NoError(t, e.Load(`[1]`))
	require.NoError(t, e.Select(node(t, e, "/0")))

	var got Status
	live := e.NewLiveEdit(nil, func(s Status) { got = s })
	live.TextChanged("true")
	require.True(t, live.Flush())

	assert.True(t, got.Valid)
	assert.Equal(t, `[true]`, compact(t, e))
}
