package models

import "time"

// Message states
const (
	MessageUnread = "unread"
	MessageRead   = "read"
)

// Message is an inbound contact form submission
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Message   string    `json:"message" validate:"required"`
	Status    string    `json:"status" validate:"oneof=unread read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessagePage is one page of a filtered message listing
type MessagePage struct {
	Items    []Message `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}
