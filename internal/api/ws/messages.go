package ws

// Message types sent to websocket clients.
const (
	TypeSnapshot     = "snapshot"
	TypeFirstContent = "first_content"
	TypePong         = "pong"
	TypeError        = "error"
)

// SnapshotMessage carries the whole buffer. Clients replace what they show
// with Content; a Cycle change means the log was cleared.
type SnapshotMessage struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Lines     int    `json:"lines"`
	Cycle     uint64 `json:"cycle"`
	Version   uint64 `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// EventMessage is a payload-free notice (first content, pong, error).
type EventMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ClientMessage is the only thing clients may send.
type ClientMessage struct {
	Type string `json:"type"`
}
