package models

import (
	"encoding/json"
	"time"
)

type FormSubmission struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	FormType    string          `json:"formType"`
	Data        json.RawMessage `json:"data"`
	SubmittedAt time.Time       `json:"submittedAt"`
	Submitter   *Submitter      `json:"submitter,omitempty"`
}

// Submitter is the user a form belongs to, joined in for admin listings.
type Submitter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
