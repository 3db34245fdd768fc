package editor

import (
	"sync"

	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/debounce"
	"github.com/mcncl/jsonedit/internal/errors"
)

// StatusValidated is reported after edited text was applied
const StatusValidated = "Json format validated."

// Status is the outcome of applying edited text
type Status struct {
	Valid   bool
	Message string
	Err     error
}

// LiveEdit applies the text of the selected node while it is being typed.
// Each change restarts the validation delay and only the latest text is
// applied. The tree is only touched from functions handed to post, which
// must run them on the goroutine that owns the editor.
type LiveEdit struct {
	editor    *Editor
	debouncer *debounce.Debouncer
	post      func(func())
	onStatus  func(Status)

	mu   sync.Mutex
	text string
}

// NewLiveEdit creates a LiveEdit for the editor's selection. A nil post runs
// the work directly on the timer goroutine.
func (e *Editor) NewLiveEdit(post func(func()), onStatus func(Status)) *LiveEdit {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &LiveEdit{
		editor:    e,
		debouncer: debounce.New(e.cfg.Editor.ValidationDelay),
		post:      post,
		onStatus:  onStatus,
	}
}

// TextChanged records text as the pending edit and restarts the delay
func (l *LiveEdit) TextChanged(text string) {
	l.mu.Lock()
	l.text = text
	l.mu.Unlock()
	l.debouncer.Call(l.fire)
}

// Flush applies the pending edit now. It reports whether one was pending.
func (l *LiveEdit) Flush() bool {
	return l.debouncer.Flush()
}

// Cancel drops the pending edit
func (l *LiveEdit) Cancel() {
	l.debouncer.Cancel()
}

// Pending reports whether an edit is waiting for the delay to pass
func (l *LiveEdit) Pending() bool {
	return l.debouncer.IsPending()
}

func (l *LiveEdit) fire() {
	l.mu.Lock()
	text := l.text
	l.mu.Unlock()
	l.post(func() { l.apply(text) })
}

func (l *LiveEdit) apply(text string) {
	status := Status{Valid: true, Message: StatusValidated}
	if _, err := l.editor.UpdateSelected(text); err != nil {
		status = Status{Message: errors.UserFriendlyError(err), Err: err}
		l.editor.logger.Debug("live edit rejected", zap.Error(err))
	}
	if l.onStatus != nil {
		l.onStatus(status)
	}
}
