package dto

// Sender identifies who sent a message and where
type Sender struct {
	ConversationID string
	UserID         string
	DisplayName    string
}

// OpenListRequest starts a simple list
type OpenListRequest struct {
	Sender
	Title string
}

// PostScheduleRequest starts a schedule list from a pasted timetable
type PostScheduleRequest struct {
	Sender
	Text string
}

// JoinRequest adds or updates the sender's entry.
// Number selects the slot on schedule lists and is ignored otherwise.
type JoinRequest struct {
	Sender
	Number int
	Name   string
	Item   string
	Note   string
}

// LeaveRequest removes the sender; Slot > 0 limits it to one schedule slot
type LeaveRequest struct {
	Sender
	Slot int
}

// BroadcastMessage is the rendered daily announcement of one list
type BroadcastMessage struct {
	ConversationID string
	Title          string
	Text           string
	Empty          bool
}

// Source types of a LINE event
const (
	SourceUser  = "user"
	SourceGroup = "group"
	SourceRoom  = "room"
)

// Source is where a LINE event came from
type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// ConversationID is the group id, else the room id, else the user id
func (s Source) ConversationID() string {
	switch {
	case s.GroupID != "":
		return s.GroupID
	case s.RoomID != "":
		return s.RoomID
	default:
		return s.UserID
	}
}

// IncomingMessage is one text message addressed to the bot
type IncomingMessage struct {
	Source Source
	Text   string
}
