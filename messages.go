package main

// Messages coming from clients. One envelope covers every operation; the
// Type field selects which of the remaining fields are meaningful.
type clientMessage struct {
	Type   string `json:"type"`             // "create", "join", "start", "ask", "answer", "guess"
	Code   string `json:"code,omitempty"`   // room code, all operations
	Name   string `json:"name,omitempty"`   // create / join
	Secret string `json:"secret,omitempty"` // start
	Text   string `json:"text,omitempty"`   // ask / guess
	ID     int    `json:"id,omitempty"`     // answer: question id
	Answer string `json:"answer,omitempty"` // answer: answer value
}

// Sent to a single client when an operation is rejected.
type errorMessage struct {
	Type    string `json:"type"` // "system:error"
	Message string `json:"message"`
}

func systemError(message string) errorMessage {
	return errorMessage{
		Type:    "system:error",
		Message: message,
	}
}

// roomStateMessage carries the public room view: everything about the room
// that is safe to show every participant. The secret word is never in it.
type roomStateMessage struct {
	Type         string     `json:"type"` // "room:state"
	Code         string     `json:"code"`
	Status       roomStatus `json:"status"`
	Players      []player   `json:"players"`
	MaxQuestions int        `json:"maxQuestions"`
}

// roundStartedMessage is broadcast to the whole room when the Thinker
// starts a round.
type roundStartedMessage struct {
	Type         string   `json:"type"` // "round:started"
	MaxQuestions int      `json:"maxQuestions"`
	Players      []player `json:"players"`
}

// roundSecretMessage is sent to the Thinker only.
type roundSecretMessage struct {
	Type       string `json:"type"` // "round:secret"
	SecretWord string `json:"secretWord"`
}

// turnMessage announces whose turn it is to ask.
type turnMessage struct {
	Type   string `json:"type"` // "turn:now"
	Handle string `json:"id"`
	Name   string `json:"name"`
}

// questionNewMessage broadcasts a freshly asked question along with the
// asker's display name.
type questionNewMessage struct {
	Type string `json:"type"` // "question:new"
	question
	ByName string `json:"byName"`
}

// questionUpdateMessage broadcasts a question once the Thinker answers it.
type questionUpdateMessage struct {
	Type string `json:"type"` // "question:update"
	question
}

// guessMessage broadcasts a submitted guess, right or wrong, so everyone
// sees guesses live.
type guessMessage struct {
	Type    string `json:"type"` // "guess:new"
	By      string `json:"by"`
	Name    string `json:"name"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// roundEndedMessage is the single terminal event of a round: the outcome
// message, the revealed secret, and the full history.
type roundEndedMessage struct {
	Type       string     `json:"type"` // "round:ended"
	Message    string     `json:"message"`
	SecretWord string     `json:"secretWord"`
	Questions  []question `json:"questions"`
	Guesses    []guess    `json:"guesses"`
}
