package games

// One player (the Thinker) picks a secret word; everyone else tries to work it out
// The Thinker starts a round once the room has filled up; the round carries a fixed question budget (20 by default)
// Guessers take turns asking yes/no questions, in the order they joined the room
// Asking does not pass the turn; the Thinker answering the question does
// This keeps at most one question in flight: the next turn is only announced once the previous question is answered
// Anyone may blurt out a guess at any point, turn or no turn; wrong guesses cost nothing
// A correct guess (trimmed, case-insensitive) wins the round immediately
// If the budget runs out with no correct guess, the round ends and the word is revealed

// Implementation details:
// - One websocket endpoint for all rooms; each message carries the room code
// - Rooms are claimed by human-chosen codes, so a shared code is all players need
// - The whole history (questions + guesses) is replayed in the terminal event

// Lifecycle notes:
// - A room only plays one round; gather your group in a fresh room for a rematch
// - If the Thinker disconnects the room is torn down on the spot
// - Other players leaving mid-round stay in the turn rotation on purpose, so
//   the group sees the stall instead of the rotation silently reshuffling
