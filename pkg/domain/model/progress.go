package model

// ProgressEvent is one status update published to UI subscribers. Message is
// a human-readable activity line; Status is the full session snapshot at the
// time of the event. A Done event is the final frame of a stream.
type ProgressEvent struct {
	Message string   `json:"message"`
	Status  Snapshot `json:"status"`
	Done    bool     `json:"done,omitempty"`
}
