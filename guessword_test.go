package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *engine {
	return newEngine(&Config{maxQuestions: 20})
}

func attachClient(e *engine, handle string) *client {
	c := &client{
		send:   make(chan any, 8),
		handle: handle,
	}
	e.clients[handle] = c
	return c
}

// recv reads one delivered message, failing fast instead of hanging the
// suite if nothing arrives.
func recv(t *testing.T, c *client) any {
	t.Helper()

	select {
	case msg := <-c.send:
		return msg
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "no message delivered")
		return nil
	}
}

func TestDispatchCreate(t *testing.T) {
	e := testEngine()
	c := attachClient(e, alice)

	e.dispatch(command{client: c, msg: clientMessage{
		Type: "create",
		Code: "ABCD",
		Name: "Alice",
	}})

	state, ok := recv(t, c).(roomStateMessage)
	require.True(t, ok)
	assert.Equal(t, "ABCD", state.Code)

	_, exists := e.reg.lookup("ABCD")
	assert.True(t, exists)
}

func TestDispatchUnknownTypeIgnored(t *testing.T) {
	e := testEngine()
	c := attachClient(e, alice)

	e.dispatch(command{client: c, msg: clientMessage{Type: "dance"}})

	select {
	case msg := <-c.send:
		require.Failf(t, "unexpected delivery", "got %v", msg)
	default:
	}
}

func TestDispatchRoutesOperations(t *testing.T) {
	e := testEngine()
	thinker := attachClient(e, alice)
	guesser := attachClient(e, bob)

	e.dispatch(command{client: thinker, msg: clientMessage{Type: "create", Code: "ABCD", Name: "Alice"}})
	e.dispatch(command{client: guesser, msg: clientMessage{Type: "join", Code: "ABCD", Name: "Bob"}})
	e.dispatch(command{client: thinker, msg: clientMessage{Type: "start", Code: "ABCD", Secret: "turtle"}})
	e.dispatch(command{client: guesser, msg: clientMessage{Type: "ask", Code: "ABCD", Text: "Is it alive?"}})
	e.dispatch(command{client: thinker, msg: clientMessage{Type: "answer", Code: "ABCD", ID: 1, Answer: "yes"}})
	e.dispatch(command{client: guesser, msg: clientMessage{Type: "guess", Code: "ABCD", Text: "turtle"}})

	// Drain the guesser's inbox; the round must have ended with a win.
	var sawEnd bool
	for len(guesser.send) > 0 {
		if ended, ok := recv(t, guesser).(roundEndedMessage); ok {
			sawEnd = true
			assert.Equal(t, "Bob guessed the word!", ended.Message)
			assert.Equal(t, "turtle", ended.SecretWord)
		}
	}
	assert.True(t, sawEnd)

	// The Thinker's private secret event never reaches the guesser but
	// does reach the Thinker.
	var sawSecret bool
	for len(thinker.send) > 0 {
		if secret, ok := recv(t, thinker).(roundSecretMessage); ok {
			sawSecret = true
			assert.Equal(t, "turtle", secret.SecretWord)
		}
	}
	assert.True(t, sawSecret)
}

func TestDeliverDropsSlowClient(t *testing.T) {
	e := testEngine()
	c := attachClient(e, alice)
	for i := 0; i < cap(c.send); i++ {
		c.send <- systemError("filler")
	}

	e.deliver(outbound{to: []string{alice}, msg: systemError("overflow")})

	_, still := e.clients[alice]
	assert.False(t, still)

	// The send channel is closed once drained.
	for i := 0; i < cap(c.send); i++ {
		<-c.send
	}
	_, open := <-c.send
	assert.False(t, open)
}

func TestDeliverSkipsUnknownHandle(t *testing.T) {
	e := testEngine()

	// Must not panic or create anything.
	e.deliver(outbound{to: []string{"gone"}, msg: systemError("late")})
	assert.Empty(t, e.clients)
}

func TestEngineLoopLifecycle(t *testing.T) {
	e := testEngine()
	go e.run()

	thinker := &client{send: make(chan any, 8), handle: alice}
	guesser := &client{send: make(chan any, 8), handle: bob}
	e.register <- thinker
	e.register <- guesser

	e.commands <- command{client: thinker, msg: clientMessage{Type: "create", Code: "ABCD", Name: "Alice"}}
	state, ok := recv(t, thinker).(roomStateMessage)
	require.True(t, ok)
	assert.Equal(t, statusWaiting, state.Status)

	e.commands <- command{client: guesser, msg: clientMessage{Type: "join", Code: "ABCD", Name: "Bob"}}
	recv(t, thinker)
	recv(t, guesser)

	// Dropping the Thinker's connection reconciles every room he was in:
	// the room is torn down and the survivors are told.
	e.unreg <- thinker

	errMsg, ok := recv(t, guesser).(errorMessage)
	require.True(t, ok)
	assert.Equal(t, errThinkerLeft, errMsg.Message)

	_, open := <-thinker.send
	assert.False(t, open)
}

func TestQRHandler(t *testing.T) {
	mux := httprouter.New()
	mux.GET("/qr/:code", qrHandler)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qr/ABCD", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}
