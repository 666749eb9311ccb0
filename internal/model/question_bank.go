package model

import "time"

// BankQuestion is a pre-authored question stored in the question_bank table.
type BankQuestion struct {
	ID                 int64     `json:"id" yaml:"-"`
	Text               string    `json:"text" yaml:"text"`
	Options            []string  `json:"options" yaml:"options"`
	CorrectAnswerIndex int       `json:"correctAnswerIndex" yaml:"correctAnswerIndex"`
	Topic              string    `json:"topic" yaml:"topic"`
	Explanation        string    `json:"explanation" yaml:"explanation"`
	CreatedAt          time.Time `json:"created_at" yaml:"-"`
}
