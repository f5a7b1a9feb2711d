package main

import (
	"fmt"
	"strings"
	"time"
)

type roomStatus string

const (
	statusWaiting roomStatus = "waiting"
	statusPlaying roomStatus = "playing"
	statusEnded   roomStatus = "ended"
)

type playerRole string

const (
	roleThinker playerRole = "thinker"
	roleGuesser playerRole = "guesser"
)

const (
	errCodeTaken    = "room code already in use"
	errRoomNotFound = "room not found"
	errGameStarted  = "game already started"
	errEmptySecret  = "secret word is empty"
	errNotYourTurn  = "not your turn"
	errThinkerLeft  = "the Thinker left the room; round over"
	errRoomExpired  = "room closed due to inactivity"
)

// player is one participant, keyed by their connection handle.
type player struct {
	Handle string     `json:"id"`
	Name   string     `json:"name"`
	Role   playerRole `json:"role"`
}

type question struct {
	ID     int     `json:"id"`
	By     string  `json:"by"`
	Text   string  `json:"text"`
	Answer *string `json:"answer"`
}

type guess struct {
	By      string `json:"by"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// room holds one game session. Players are kept as a slice so that turn
// order seeding follows join order. The turn order is frozen at round start:
// players joining or leaving mid-round never change it.
type room struct {
	code          string
	status        roomStatus
	players       []player
	thinkerHandle string
	secretWord    string
	questions     []question
	guesses       []guess
	turnOrder     []string
	turnIndex     int
	maxQuestions  int
	lastActive    time.Time
}

// outbound is one event produced by a room operation, addressed to an
// explicit set of connection handles. Recipient sets are snapshotted when
// the event is created, so an event built just before a room is deleted
// still reaches the participants the room had at that moment.
type outbound struct {
	to  []string
	msg any
}

func toOne(handle string, msg any) outbound {
	return outbound{to: []string{handle}, msg: msg}
}

func (r *room) audience() []string {
	to := make([]string, 0, len(r.players))
	for _, p := range r.players {
		to = append(to, p.Handle)
	}
	return to
}

func (r *room) toRoom(msg any) outbound {
	return outbound{to: r.audience(), msg: msg}
}

func (r *room) findPlayer(handle string) *player {
	for i := range r.players {
		if r.players[i].Handle == handle {
			return &r.players[i]
		}
	}
	return nil
}

func (r *room) playerName(handle string) string {
	if p := r.findPlayer(handle); p != nil {
		return p.Name
	}
	return ""
}

func (r *room) publicState() roomStateMessage {
	players := make([]player, len(r.players))
	copy(players, r.players)

	return roomStateMessage{
		Type:         "room:state",
		Code:         r.code,
		Status:       r.status,
		Players:      players,
		MaxQuestions: r.maxQuestions,
	}
}

// turnNow builds the active-turn announcement for the whole room. The name
// lookup can miss if the player at the current position has disconnected
// mid-round; the handle is announced regardless.
func (r *room) turnNow() outbound {
	handle := r.turnOrder[r.turnIndex]

	return r.toRoom(turnMessage{
		Type:   "turn:now",
		Handle: handle,
		Name:   r.playerName(handle),
	})
}

// endRound moves the room to its terminal state and emits the single
// round:ended event with the revealed secret and full history. Guarded
// operations stop accepting input once status leaves playing.
func (r *room) endRound(message string) outbound {
	r.status = statusEnded

	return r.toRoom(roundEndedMessage{
		Type:       "round:ended",
		Message:    message,
		SecretWord: r.secretWord,
		Questions:  r.questions,
		Guesses:    r.guesses,
	})
}

// registry owns every room in the process, keyed by the human-chosen room
// code. It is only ever touched by the engine goroutine, so it needs no
// locking of its own.
type registry struct {
	rooms        map[string]*room
	maxQuestions int
}

func newRegistry(maxQuestions int) *registry {
	return &registry{
		rooms:        make(map[string]*room),
		maxQuestions: maxQuestions,
	}
}

func (reg *registry) lookup(code string) (*room, bool) {
	r, ok := reg.rooms[code]
	return r, ok
}

func (reg *registry) delete(code string) {
	delete(reg.rooms, code)
}

func (reg *registry) count() int {
	return len(reg.rooms)
}

// handleCreate creates a room in the waiting state with the caller as its
// Thinker. The code is the registry key, so a taken code is rejected.
func (reg *registry) handleCreate(handle, code, name string) []outbound {
	if _, exists := reg.rooms[code]; exists {
		return []outbound{toOne(handle, systemError(errCodeTaken))}
	}

	r := &room{
		code:          code,
		status:        statusWaiting,
		thinkerHandle: handle,
		maxQuestions:  reg.maxQuestions,
		lastActive:    time.Now(),
		players: []player{{
			Handle: handle,
			Name:   name,
			Role:   roleThinker,
		}},
	}
	reg.rooms[code] = r

	return []outbound{r.toRoom(r.publicState())}
}

// handleJoin adds a Guesser to a waiting room. Re-joining with a handle
// already present overwrites that player's name and role; the transport
// layer guarantees distinct handles per connection.
func (reg *registry) handleJoin(handle, code, name string) []outbound {
	r, ok := reg.lookup(code)
	if !ok {
		return []outbound{toOne(handle, systemError(errRoomNotFound))}
	}
	if r.status != statusWaiting {
		return []outbound{toOne(handle, systemError(errGameStarted))}
	}

	if p := r.findPlayer(handle); p != nil {
		p.Name = name
		p.Role = roleGuesser
	} else {
		r.players = append(r.players, player{
			Handle: handle,
			Name:   name,
			Role:   roleGuesser,
		})
	}
	r.lastActive = time.Now()

	return []outbound{r.toRoom(r.publicState())}
}

// handleStart begins a round: only the Thinker may start, and a start from
// anyone else is silently ignored. The turn rotation is every player except
// the Thinker, in join order, frozen for the whole round.
func (reg *registry) handleStart(handle, code, secret string) []outbound {
	r, ok := reg.lookup(code)
	if !ok {
		return nil
	}
	if handle != r.thinkerHandle {
		return nil
	}
	// One round per room: once playing or ended, a start is a stale request.
	if r.status != statusWaiting {
		return nil
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return []outbound{toOne(handle, systemError(errEmptySecret))}
	}

	r.secretWord = secret
	r.status = statusPlaying
	r.questions = nil
	r.guesses = nil
	r.turnIndex = 0
	r.turnOrder = r.turnOrder[:0]
	for _, p := range r.players {
		if p.Handle != r.thinkerHandle {
			r.turnOrder = append(r.turnOrder, p.Handle)
		}
	}
	r.lastActive = time.Now()

	events := []outbound{
		r.toRoom(roundStartedMessage{
			Type:         "round:started",
			MaxQuestions: r.maxQuestions,
			Players:      r.publicState().Players,
		}),
		toOne(r.thinkerHandle, roundSecretMessage{
			Type:       "round:secret",
			SecretWord: r.secretWord,
		}),
	}

	// With no guessers yet there is nobody to hand the turn to.
	if len(r.turnOrder) > 0 {
		events = append(events, r.turnNow())
	}

	return events
}

// handleAsk appends a question for the player whose turn it is. Asking does
// not advance the turn; that happens when the Thinker answers, so at most
// one question is ever outstanding.
func (reg *registry) handleAsk(handle, code, text string) []outbound {
	r, ok := reg.lookup(code)
	if !ok || r.status != statusPlaying {
		return nil
	}
	if len(r.turnOrder) == 0 || r.turnOrder[r.turnIndex] != handle {
		return []outbound{toOne(handle, systemError(errNotYourTurn))}
	}
	if len(r.questions) >= r.maxQuestions {
		return []outbound{toOne(handle, systemError(
			fmt.Sprintf("question limit of %d reached", r.maxQuestions)))}
	}

	q := question{
		ID:   len(r.questions) + 1,
		By:   handle,
		Text: strings.TrimSpace(text),
	}
	r.questions = append(r.questions, q)
	r.lastActive = time.Now()

	return []outbound{r.toRoom(questionNewMessage{
		Type:     "question:new",
		question: q,
		ByName:   r.playerName(handle),
	})}
}

// handleAnswer records the Thinker's answer to a question, hands the turn
// to the next guesser, and ends the round once the question budget is
// spent. Anyone other than the Thinker is silently ignored.
func (reg *registry) handleAnswer(handle, code string, id int, answer string) []outbound {
	r, ok := reg.lookup(code)
	if !ok || handle != r.thinkerHandle {
		return nil
	}

	var q *question
	for i := range r.questions {
		if r.questions[i].ID == id {
			q = &r.questions[i]
			break
		}
	}
	if q == nil {
		return nil
	}

	q.Answer = &answer
	r.lastActive = time.Now()

	events := []outbound{r.toRoom(questionUpdateMessage{
		Type:     "question:update",
		question: *q,
	})}

	if len(r.turnOrder) > 0 {
		r.turnIndex = (r.turnIndex + 1) % len(r.turnOrder)
		events = append(events, r.turnNow())
	}

	if len(r.questions) >= r.maxQuestions {
		events = append(events, r.endRound("Questions exhausted. Nobody guessed the word."))
	}

	return events
}

// handleGuess resolves a guess against the secret word: trimmed,
// case-insensitive exact match. Guessing is open to any participant at any
// time during play, independent of the question rotation.
func (reg *registry) handleGuess(handle, code, text string) []outbound {
	r, ok := reg.lookup(code)
	if !ok || r.status != statusPlaying {
		return nil
	}

	text = strings.TrimSpace(text)
	correct := strings.EqualFold(text, r.secretWord)
	r.guesses = append(r.guesses, guess{
		By:      handle,
		Text:    text,
		Correct: correct,
	})
	r.lastActive = time.Now()

	events := []outbound{r.toRoom(guessMessage{
		Type:    "guess:new",
		By:      handle,
		Name:    r.playerName(handle),
		Text:    text,
		Correct: correct,
	})}

	if correct {
		events = append(events, r.endRound(r.playerName(handle)+" guessed the word!"))
	}

	return events
}

// handleDisconnect reconciles a dropped connection with every room it was
// part of. A room dies with its Thinker; losing a Guesser only updates the
// roster. A departed Guesser deliberately stays in the turn rotation, so
// the turn can land on an absent handle until the Thinker answers again.
func (reg *registry) handleDisconnect(handle string) []outbound {
	var events []outbound

	for code, r := range reg.rooms {
		p := r.findPlayer(handle)
		if p == nil {
			continue
		}

		dst := r.players[:0]
		for _, kept := range r.players {
			if kept.Handle != handle {
				dst = append(dst, kept)
			}
		}
		r.players = dst

		if handle == r.thinkerHandle {
			events = append(events, r.toRoom(systemError(errThinkerLeft)))
			reg.delete(code)
		} else {
			r.lastActive = time.Now()
			events = append(events, r.toRoom(r.publicState()))
		}
	}

	return events
}

// reapIdle deletes rooms whose last activity predates the cutoff and tells
// their remaining participants. Only called when an idle timeout has been
// configured; by default rooms live until their Thinker disconnects.
func (reg *registry) reapIdle(cutoff time.Time) []outbound {
	var events []outbound

	for code, r := range reg.rooms {
		if r.lastActive.Before(cutoff) {
			events = append(events, r.toRoom(systemError(errRoomExpired)))
			reg.delete(code)
		}
	}

	return events
}
