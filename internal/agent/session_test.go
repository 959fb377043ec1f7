package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"mcpchat/internal/chat"
	"mcpchat/internal/middleware"
	"mcpchat/internal/tools"
)

type sessionRecorder struct {
	ids *[]string
}

func (sessionRecorder) ID() string    { return "recorder" }
func (sessionRecorder) Priority() int { return 0 }

func (p sessionRecorder) OnEvent(_ context.Context, e *middleware.Event) (middleware.Decision, error) {
	*p.ids = append(*p.ids, e.SessionID)
	return middleware.Decision{}, nil
}

func TestSessionCommitsOnSuccess(t *testing.T) {
	gw := &fakeGateway{responses: []*chat.Response{stop("one"), stop("two")}}
	s := NewSession(New(gw, newCatalog(t, &fakeTransport{}, nil)))

	reply, err := s.Send(context.Background(), "  first  ")
	require.NoError(t, err)
	require.Equal(t, "one", reply)
	require.Len(t, s.History(), 3)
	require.Equal(t, "first", s.History()[1].Content)

	_, err = s.Send(context.Background(), "second")
	require.NoError(t, err)
	require.Len(t, s.History(), 5)
	require.Equal(t, chat.RoleSystem, s.History()[0].Role)
}

func TestSessionKeepsHistoryOnFailure(t *testing.T) {
	gw := &fakeGateway{
		responses: []*chat.Response{stop("one"), nil, stop("three")},
		errs:      []error{nil, errors.New("upstream down")},
	}
	s := NewSession(New(gw, newCatalog(t, &fakeTransport{}, nil)))

	_, err := s.Send(context.Background(), "first")
	require.NoError(t, err)
	before := s.History()

	_, err = s.Send(context.Background(), "second")
	require.ErrorIs(t, err, chat.ErrProvider)
	require.Equal(t, before, s.History())

	reply, err := s.Send(context.Background(), "third")
	require.NoError(t, err)
	require.Equal(t, "three", reply)
	require.Len(t, s.History(), 5)
	require.Equal(t, "third", s.History()[3].Content)
}

func TestSessionRejectsBlankInput(t *testing.T) {
	gw := &fakeGateway{}
	s := NewSession(New(gw, newCatalog(t, &fakeTransport{}, nil)))

	_, err := s.Send(context.Background(), " \t\n")
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Empty(t, gw.requests)
	require.Empty(t, s.History())
}

func TestSessionClear(t *testing.T) {
	gw := &fakeGateway{responses: []*chat.Response{stop("one"), stop("two")}}
	s := NewSession(New(gw, newCatalog(t, &fakeTransport{}, nil)))

	_, err := s.Send(context.Background(), "first")
	require.NoError(t, err)
	s.Clear()
	require.Empty(t, s.History())

	_, err = s.Send(context.Background(), "again")
	require.NoError(t, err)
	require.Len(t, gw.requests[1].Messages, 2)
	require.Equal(t, chat.RoleSystem, gw.requests[1].Messages[0].Role)
}

func TestSessionHistoryIsACopy(t *testing.T) {
	gw := &fakeGateway{responses: []*chat.Response{stop("one")}}
	s := NewSession(New(gw, newCatalog(t, &fakeTransport{}, nil)))

	_, err := s.Send(context.Background(), "first")
	require.NoError(t, err)

	h := s.History()
	h[0].Content = "tampered"
	require.NotEqual(t, "tampered", s.History()[0].Content)
}

func TestSessionHistoryCopiesToolCalls(t *testing.T) {
	tr := &fakeTransport{results: map[string]any{"a": "r"}}
	gw := &fakeGateway{responses: []*chat.Response{
		toolCalls(call("1", "a", `{"k":"v"}`)),
		stop("done"),
	}}
	s := NewSession(New(gw, newCatalog(t, tr, nil, tools.Descriptor{Name: "a"})))

	_, err := s.Send(context.Background(), "q")
	require.NoError(t, err)

	h := s.History()
	h[2].ToolCalls[0].Name = "tampered"
	h[2].ToolCalls[0].Arguments[1] = 'X'

	fresh := s.History()[2].ToolCalls[0]
	require.Equal(t, "a", fresh.Name)
	require.Equal(t, `{"k":"v"}`, fresh.Arguments.Text())
}

func TestSessionIDReachesMiddleware(t *testing.T) {
	tr := &fakeTransport{results: map[string]any{"a": "r"}}
	gw := &fakeGateway{responses: []*chat.Response{
		toolCalls(call("1", "a", `{}`)),
		stop("done"),
	}}
	var ids []string
	chain := middleware.NewChain(sessionRecorder{ids: &ids})

	a := New(gw, newCatalog(t, tr, nil, tools.Descriptor{Name: "a"}), WithMiddlewareChain(chain))
	s1, s2 := NewSession(a), NewSession(a)
	require.NotEqual(t, s1.ID(), s2.ID())

	_, err := s1.Send(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, ids, 6)
	for _, id := range ids {
		require.Equal(t, s1.ID(), id)
	}
	require.Empty(t, s2.History())
}
