package models

import "time"

// Message is one persisted question and answer pair (a chat history entry).
type Message struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Question  string    `json:"user_question" db:"question"`
	Answer    string    `json:"bot_reply" db:"answer"`
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}

// QueryRequest is the body of a question.
type QueryRequest struct {
	UserID int64  `json:"user_id"`
	Query  string `json:"query"`
}

// Answer is returned verbatim to the caller after a question.
type Answer struct {
	Query   string `json:"query"`
	Context string `json:"context"`
	Answer  string `json:"answer"`
}
