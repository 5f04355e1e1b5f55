package errors

import (
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingOutput captures console calls.
type recordingOutput struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingOutput) record(level string, msgs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.lines = append(r.lines, level+": "+m)
	}
}

func (r *recordingOutput) Error(msgs ...string)   { r.record("error", msgs) }
func (r *recordingOutput) Warning(msgs ...string) { r.record("warning", msgs) }
func (r *recordingOutput) Info(msgs ...string)    { r.record("info", msgs) }
func (r *recordingOutput) Success(msgs ...string) { r.record("success", msgs) }

func TestCLIHandlerForwards(t *testing.T) {
	out := &recordingOutput{}
	h := NewCLIHandler(out)

	h.Error("e")
	h.Warning("w")
	h.Info("i")
	h.Success("s")

	assert.Equal(t, []string{"error: e", "warning: w", "info: i", "success: s"}, out.lines)
}

func TestCLIHandlerConcurrentUse(t *testing.T) {
	out := &recordingOutput{}
	h := NewCLIHandler(out)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Error(fmt.Sprint(i))
		}(i)
	}
	wg.Wait()
	assert.Len(t, out.lines, 20)
}

func TestMessageHandlerKeepsNewest(t *testing.T) {
	h := NewMessageHandler(2)
	h.now = func() time.Time { return time.Unix(100, 0) }

	_, ok := h.Last()
	assert.False(t, ok)

	h.Info("one")
	h.Warning("two")
	h.Error("three")

	msgs := h.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Text)
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, Message{Text: "three", Type: MessageTypeError, Timestamp: time.Unix(100, 0)}, last)

	h.Clear()
	assert.Empty(t, h.Messages())
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       Outcome
		wantLogout bool
		wantLines  []string
	}{
		{name: "nil", err: nil, want: OutcomeNone},
		{
			name:       "unauthorized forces logout",
			err:        fmt.Errorf("load: %w", &api.Error{Kind: api.KindUnauthorized, Code: api.CodeTokenExpired}),
			want:       OutcomeLogout,
			wantLogout: true,
			wantLines:  []string{"warning: " + MsgSessionExpired},
		},
		{
			name:      "not found",
			err:       &api.Error{Kind: api.KindNotFound, Status: 404},
			want:      OutcomeNotFound,
			wantLines: []string{"info: " + MsgNotFound},
		},
		{
			name: "validation fields inline",
			err: &api.Error{Kind: api.KindValidation, Fields: map[string]api.FieldError{
				"purchasePrice": {Message: "must be positive"},
				"condition":     {Message: "required"},
			}},
			want:      OutcomeFieldErrors,
			wantLines: []string{"error: condition: required", "error: purchasePrice: must be positive"},
		},
		{
			name:      "validation without fields",
			err:       &api.Error{Kind: api.KindValidation, Message: "bad request"},
			want:      OutcomeFieldErrors,
			wantLines: []string{"error: bad request"},
		},
		{
			name:      "conflict",
			err:       &api.Error{Kind: api.KindConflict, Message: "already in collection"},
			want:      OutcomeMessage,
			wantLines: []string{"warning: already in collection"},
		},
		{
			name:      "transient hides details",
			err:       &api.Error{Kind: api.KindTransient, Status: 503, Message: "pool exhausted"},
			want:      OutcomeMessage,
			wantLines: []string{"error: " + MsgUnavailable},
		},
		{
			name:      "unknown",
			err:       stderrors.New("boom"),
			want:      OutcomeMessage,
			wantLines: []string{"error: boom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &recordingOutput{}
			loggedOut := false
			got := Dispatch(tt.err, NewCLIHandler(out), func() { loggedOut = true })

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLogout, loggedOut)
			assert.Equal(t, tt.wantLines, out.lines)
		})
	}
}

func TestDispatchNilLogout(t *testing.T) {
	h := NewMessageHandler(5)
	got := Dispatch(&api.Error{Kind: api.KindUnauthorized}, h, nil)
	assert.Equal(t, OutcomeLogout, got)
}

func TestFieldErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(stderrors.New("x")))
	assert.Equal(t, map[string]string{"notes": "too long"}, FieldErrors(&api.Error{
		Kind:   api.KindValidation,
		Fields: map[string]api.FieldError{"notes": {Message: "too long"}},
	}))
}
