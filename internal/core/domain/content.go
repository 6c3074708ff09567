package domain

import "time"

// Task is a coding exercise. Tasks submitted by non-staff stay hidden until a
// moderator accepts them.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Shown       bool      `json:"shown"`
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Snippet is a piece of code to be typed out for a task.
type Snippet struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Shown        bool      `json:"shown"`
	LanguageName string    `json:"languageName"`
	TaskID       string    `json:"taskId"`
	CreatorID    string    `json:"creatorId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Language is a programming language snippets can be written in.
type Language struct {
	Name string `json:"name"`
}

// Denial records why a pending submission was rejected and by whom.
type Denial struct {
	Reason   string
	StaffID  string
	DeniedAt time.Time
}

// ArchivedTask is a denied task request.
type ArchivedTask struct {
	Task
	Denial
}

// ArchivedSnippet is a denied snippet request.
type ArchivedSnippet struct {
	Snippet
	Denial
}
