package chat_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/bookchat"
	"github.com/fwojciec/bookchat/chat"
	bchttp "github.com/fwojciec/bookchat/http"
	"github.com/fwojciec/bookchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answering returns an Asker that replies with the given answer.
func answering(ans *bookchat.Answer) *mock.Asker {
	return &mock.Asker{
		AskFn: func(_ context.Context, _ *bookchat.Question) (*bookchat.Answer, error) {
			return ans, nil
		},
	}
}

// blocking returns an Asker that waits for release before answering.
func blocking(release <-chan struct{}) *mock.Asker {
	return &mock.Asker{
		AskFn: func(_ context.Context, q *bookchat.Question) (*bookchat.Answer, error) {
			<-release
			return &bookchat.Answer{Answer: "answer to " + q.Question}, nil
		},
	}
}

func TestWidget_Submit(t *testing.T) {
	t.Parallel()

	t.Run("appends user message then bot answer", func(t *testing.T) {
		t.Parallel()

		w := chat.NewWidget(answering(&bookchat.Answer{
			Answer:          "42",
			SourceCitations: []bookchat.Source{},
			ConfidenceScore: bookchat.Float64(0.9),
		}))

		done := w.Submit(context.Background(), "What is the answer?")
		require.NotNil(t, done)
		bot := <-done

		messages := w.Messages()
		require.Len(t, messages, 2)
		assert.Equal(t, bookchat.MessageUser, messages[0].Type)
		assert.Equal(t, "What is the answer?", messages[0].Content)
		assert.Nil(t, messages[0].Confidence)

		assert.Equal(t, bot, messages[1])
		assert.Equal(t, bookchat.MessageBot, bot.Type)
		assert.Equal(t, "42", bot.Content)
		assert.Equal(t, []bookchat.Source{}, bot.Sources)
		require.NotNil(t, bot.Confidence)
		assert.InDelta(t, 0.9, *bot.Confidence, 1e-9)
		assert.False(t, w.IsLoading())
	})

	t.Run("sends question with fixed session id", func(t *testing.T) {
		t.Parallel()

		var got *bookchat.Question
		asker := &mock.Asker{
			AskFn: func(_ context.Context, q *bookchat.Question) (*bookchat.Answer, error) {
				got = q
				return &bookchat.Answer{Answer: "ok"}, nil
			},
		}
		w := chat.NewWidget(asker)

		<-w.Submit(context.Background(), "  padded question  ")

		require.NotNil(t, got)
		assert.Equal(t, "  padded question  ", got.Question)
		assert.Equal(t, "docusaurus-chat-session", got.SessionID)
	})

	t.Run("ignores blank input", func(t *testing.T) {
		t.Parallel()

		called := false
		asker := &mock.Asker{
			AskFn: func(_ context.Context, _ *bookchat.Question) (*bookchat.Answer, error) {
				called = true
				return &bookchat.Answer{}, nil
			},
		}
		w := chat.NewWidget(asker)
		w.SetInput("   ")

		for _, text := range []string{"", "   ", "\n\t"} {
			assert.Nil(t, w.Submit(context.Background(), text))
		}

		assert.Empty(t, w.Messages())
		assert.False(t, w.IsLoading())
		assert.Equal(t, "   ", w.Input())
		assert.False(t, called)
	})

	t.Run("ignores submission while loading", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		w := chat.NewWidget(blocking(release))

		first := w.Submit(context.Background(), "first")
		require.NotNil(t, first)

		second := w.Submit(context.Background(), "second")
		assert.Nil(t, second)
		assert.Len(t, w.Messages(), 1)

		close(release)
		<-first

		messages := w.Messages()
		require.Len(t, messages, 2)
		assert.Equal(t, "first", messages[0].Content)
		assert.Equal(t, "answer to first", messages[1].Content)
	})

	t.Run("loading is true strictly between submit and response", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		w := chat.NewWidget(blocking(release))
		w.Toggle()

		assert.False(t, w.IsLoading())
		assert.Equal(t, chat.StateOpenIdle, w.State())

		done := w.Submit(context.Background(), "question")
		assert.True(t, w.IsLoading())
		assert.Equal(t, chat.StateOpenWaiting, w.State())

		close(release)
		<-done

		assert.False(t, w.IsLoading())
		assert.Equal(t, chat.StateOpenIdle, w.State())
	})

	t.Run("clears input on submit", func(t *testing.T) {
		t.Parallel()

		w := chat.NewWidget(answering(&bookchat.Answer{Answer: "ok"}))
		w.SetInput("What is a servo?")

		done := w.SubmitInput(context.Background())
		require.NotNil(t, done)
		assert.Empty(t, w.Input())
		<-done

		assert.Equal(t, "What is a servo?", w.Messages()[0].Content)
	})

	t.Run("converts asker error into bot message", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, _ *bookchat.Question) (*bookchat.Answer, error) {
				return nil, bookchat.Errorf(bookchat.ENETWORK, "connection refused")
			},
		}
		w := chat.NewWidget(asker)

		bot := <-w.Submit(context.Background(), "anyone there?")

		assert.Equal(t, bookchat.MessageBot, bot.Type)
		assert.Equal(t, "Sorry, I encountered an error: connection refused. Please make sure the backend server is running.", bot.Content)
		assert.Nil(t, bot.Sources)
		assert.Nil(t, bot.Confidence)
		assert.False(t, w.IsLoading())
	})

	t.Run("treats nil answer as parse error", func(t *testing.T) {
		t.Parallel()

		w := chat.NewWidget(answering(nil))

		bot := <-w.Submit(context.Background(), "hello?")

		assert.Contains(t, bot.Content, "Sorry, I encountered an error")
		assert.False(t, w.IsLoading())
	})

	t.Run("remains usable after an error", func(t *testing.T) {
		t.Parallel()

		calls := 0
		asker := &mock.Asker{
			AskFn: func(_ context.Context, _ *bookchat.Question) (*bookchat.Answer, error) {
				calls++
				if calls == 1 {
					return nil, errors.New("boom")
				}
				return &bookchat.Answer{Answer: "recovered"}, nil
			},
		}
		w := chat.NewWidget(asker)

		<-w.Submit(context.Background(), "one")
		bot := <-w.Submit(context.Background(), "two")

		assert.Equal(t, "recovered", bot.Content)
		assert.Len(t, w.Messages(), 4)
	})
}

func TestWidget_Submit_HTTPBackend(t *testing.T) {
	t.Parallel()

	t.Run("renders answer from backend", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"answer":"42","source_citations":[],"confidence_score":0.9}`))
		}))
		defer server.Close()

		w := chat.NewWidget(bchttp.NewClient(server.URL))
		<-w.Submit(context.Background(), "What is the answer?")

		messages := w.Messages()
		require.Len(t, messages, 2)
		assert.Equal(t, "What is the answer?", messages[0].Content)
		assert.Equal(t, "42", messages[1].Content)
		assert.Empty(t, messages[1].Sources)
		assert.InDelta(t, 0.9, *messages[1].Confidence, 1e-9)
	})

	t.Run("leaves confidence unset when backend omits it", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"answer":"42"}`))
		}))
		defer server.Close()

		w := chat.NewWidget(bchttp.NewClient(server.URL))
		bot := <-w.Submit(context.Background(), "What is the answer?")

		assert.Equal(t, "42", bot.Content)
		assert.Nil(t, bot.Confidence)
		assert.Equal(t, "Assistant: 42", bookchat.FormatMessage(bot))
	})

	t.Run("renders error for HTTP 500", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		w := chat.NewWidget(bchttp.NewClient(server.URL))
		<-w.Submit(context.Background(), "What is the answer?")

		last := w.Snapshot().LastMessage()
		require.NotNil(t, last)
		assert.Equal(t, bookchat.MessageBot, last.Type)
		assert.Contains(t, last.Content, "error")
		assert.Contains(t, last.Content, "API error: 500")
		assert.False(t, w.IsLoading())
	})
}

func TestWidget_Messages(t *testing.T) {
	t.Parallel()

	t.Run("returned messages do not alias the log", func(t *testing.T) {
		t.Parallel()

		ans := &bookchat.Answer{
			Answer:          "42",
			SourceCitations: []bookchat.Source{{Section: "Chapter 1", Page: "3"}},
			ConfidenceScore: bookchat.Float64(0.9),
		}
		w := chat.NewWidget(answering(ans))
		bot := <-w.Submit(context.Background(), "q")

		bot.Content = "changed"
		bot.Sources[0].Section = "changed"
		*bot.Confidence = 0.1

		got := w.Messages()
		got[0].Content = "changed"
		got[1].Sources[0].Page = "changed"

		snap := w.Snapshot().Messages
		require.Len(t, snap, 2)
		assert.Equal(t, "q", snap[0].Content)
		assert.Equal(t, "42", snap[1].Content)
		assert.Equal(t, bookchat.Source{Section: "Chapter 1", Page: "3"}, snap[1].Sources[0])
		assert.InDelta(t, 0.9, *snap[1].Confidence, 1e-9)
		assert.Equal(t, "Chapter 1", ans.SourceCitations[0].Section)

		ans.SourceCitations[0].Text = "changed"
		assert.Empty(t, w.Messages()[1].Sources[0].Text)
	})
}

func TestWidget_Toggle(t *testing.T) {
	t.Parallel()

	t.Run("starts closed", func(t *testing.T) {
		t.Parallel()

		w := chat.NewWidget(answering(nil))

		assert.False(t, w.IsOpen())
		assert.Equal(t, chat.StateClosed, w.State())
	})

	t.Run("toggling twice restores state without touching the log", func(t *testing.T) {
		t.Parallel()

		w := chat.NewWidget(answering(&bookchat.Answer{Answer: "ok"}))
		<-w.Submit(context.Background(), "hi")
		before := w.Messages()

		w.Toggle()
		assert.True(t, w.IsOpen())
		w.Toggle()
		assert.False(t, w.IsOpen())

		assert.Equal(t, before, w.Messages())
	})

	t.Run("closing mid-request still applies the response", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		w := chat.NewWidget(blocking(release))
		w.Toggle()

		done := w.Submit(context.Background(), "q")
		w.Toggle()
		assert.Equal(t, chat.StateClosed, w.State())
		assert.Nil(t, w.Submit(context.Background(), "again"))

		close(release)
		<-done

		assert.Len(t, w.Messages(), 2)
	})
}

func TestWidget_MessageIDs(t *testing.T) {
	t.Parallel()

	fixed := time.UnixMilli(1_700_000_000_000)
	w := chat.NewWidget(answering(&bookchat.Answer{Answer: "ok"}), chat.WithClock(func() time.Time { return fixed }))

	<-w.Submit(context.Background(), "one")
	<-w.Submit(context.Background(), "two")

	messages := w.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, int64(1_700_000_000_000), messages[0].ID)
	for i := 1; i < len(messages); i++ {
		assert.Equal(t, messages[i-1].ID+1, messages[i].ID)
	}
}

func TestWidget_OnChange(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var states []bookchat.ConversationState
	w := chat.NewWidget(answering(&bookchat.Answer{Answer: "ok"}), chat.WithOnChange(func(s bookchat.ConversationState) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	}))

	w.Toggle()
	<-w.Submit(context.Background(), "q")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 3)
	assert.True(t, states[0].IsOpen)
	assert.Empty(t, states[0].Messages)
	assert.True(t, states[1].IsLoading)
	assert.Len(t, states[1].Messages, 1)
	assert.False(t, states[2].IsLoading)
	assert.Len(t, states[2].Messages, 2)
}

func TestWidget_Listen(t *testing.T) {
	t.Parallel()

	t.Run("toggles once per event until source closes", func(t *testing.T) {
		t.Parallel()

		acks := 0
		ev := &mock.ToggleEvent{AckFn: func() bool { acks++; return true }}
		events := make(chan bookchat.ToggleEvent, 3)
		events <- ev
		events <- ev
		events <- ev
		close(events)
		src := &mock.ToggleSource{
			TogglesFn: func(_ context.Context) (<-chan bookchat.ToggleEvent, error) {
				return events, nil
			},
		}
		w := chat.NewWidget(answering(nil))

		err := w.Listen(context.Background(), src)

		require.NoError(t, err)
		assert.True(t, w.IsOpen())
		assert.Equal(t, 3, acks)
	})

	t.Run("returns when context is done", func(t *testing.T) {
		t.Parallel()

		src := &mock.ToggleSource{
			TogglesFn: func(_ context.Context) (<-chan bookchat.ToggleEvent, error) {
				return make(chan bookchat.ToggleEvent), nil
			},
		}
		w := chat.NewWidget(answering(nil))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, w.Listen(ctx, src))
	})

	t.Run("returns subscription error", func(t *testing.T) {
		t.Parallel()

		src := &mock.ToggleSource{
			TogglesFn: func(_ context.Context) (<-chan bookchat.ToggleEvent, error) {
				return nil, errors.New("bus closed")
			},
		}
		w := chat.NewWidget(answering(nil))

		err := w.Listen(context.Background(), src)

		assert.ErrorContains(t, err, "bus closed")
	})
}

func TestWidget_ConsumeToggles(t *testing.T) {
	t.Parallel()

	t.Run("acknowledges after the toggle is applied", func(t *testing.T) {
		t.Parallel()

		w := chat.NewWidget(answering(nil))
		var openAtAck []bool
		ev := &mock.ToggleEvent{AckFn: func() bool {
			openAtAck = append(openAtAck, w.IsOpen())
			return true
		}}
		events := make(chan bookchat.ToggleEvent, 2)
		events <- ev
		events <- ev
		close(events)

		err := w.ConsumeToggles(context.Background(), events)

		require.NoError(t, err)
		assert.Equal(t, []bool{true, false}, openAtAck)
	})
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "closed", chat.StateClosed.String())
	assert.Equal(t, "open-idle", chat.StateOpenIdle.String())
	assert.Equal(t, "open-waiting", chat.StateOpenWaiting.String())
}
