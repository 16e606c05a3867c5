package github

import (
	"errors"
	"time"

	"github.com/alan/pwm/internal/activity"
)

// ErrNoPullRequest is returned when a branch has no pull request
var ErrNoPullRequest = errors.New("no pull request found for branch")

// PR represents a pull request from GitHub
type PR struct {
	Number    int
	Title     string
	URL       string
	State     string // "open" or "closed"
	CreatedAt time.Time
}

// Comment represents a comment on an issue or pull request
type Comment struct {
	ID        int64
	Body      string
	User      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Messages converts comments into marker-tracker input
func Messages(comments []Comment) []activity.Message {
	messages := make([]activity.Message, 0, len(comments))
	for _, c := range comments {
		messages = append(messages, activity.Message{
			ID:        c.ID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	return messages
}
