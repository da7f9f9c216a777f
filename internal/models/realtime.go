package models

import "time"

// Push message types sent to viewers.
const (
	MessageUpvoteUpdate          = "upvote_update"
	MessageStatusUpdate          = "status_update"
	MessageConnectionEstablished = "connection_established"
	MessagePong                  = "pong"
)

// Envelope is the frame written to every viewer.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type UpvoteUpdate struct {
	ComplaintID string    `json:"complaintId"`
	UpvoteCount int       `json:"upvoteCount"`
	HasUpvoted  bool      `json:"hasUpvoted"`
	UserID      string    `json:"userId"`
	Timestamp   time.Time `json:"timestamp"`
	ServerTime  time.Time `json:"serverTime"`
}

type StatusUpdate struct {
	ComplaintID     string          `json:"complaintId"`
	Status          ComplaintStatus `json:"status"`
	PreviousStatus  ComplaintStatus `json:"previousStatus"`
	AssignedAgentID *string         `json:"assignedAgentId"`
	Timestamp       time.Time       `json:"timestamp"`
	ServerTime      time.Time       `json:"serverTime"`
}

// ClientMessage is what viewers may send: "ping" or "heartbeat".
type ClientMessage struct {
	Type string `json:"type"`
}
