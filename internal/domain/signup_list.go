package domain

import "time"

// ListStatus represents the lifecycle status of a sign-up list
type ListStatus string

const (
	ListStatusOpen   ListStatus = "OPEN"
	ListStatusClosed ListStatus = "CLOSED"
)

// ListKind distinguishes plain roll-call lists from numbered work schedules
type ListKind string

const (
	ListKindSimple   ListKind = "SIMPLE"
	ListKindSchedule ListKind = "SCHEDULE"
)

// SignupList is one sign-up chain scoped to a single conversation.
// A conversation has at most one OPEN list; closed lists are kept as history.
type SignupList struct {
	BaseModel
	ConversationID string     `gorm:"type:varchar(64);not null;index:idx_signup_lists_conversation_id" json:"conversationId"`
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	OpenerID       string     `gorm:"type:varchar(64);not null" json:"openerId"`
	OpenerName     string     `gorm:"type:varchar(255)" json:"openerName"`
	Status         ListStatus `gorm:"type:varchar(16);not null;default:'OPEN';index:idx_signup_lists_status" json:"status"`
	Kind           ListKind   `gorm:"type:varchar(16);not null;default:'SIMPLE'" json:"kind"`
	NextSeq        int        `gorm:"not null;default:1" json:"-"`
	ClosedAt       *time.Time `json:"closedAt,omitempty"`
}

// TableName specifies the table name for SignupList
func (SignupList) TableName() string {
	return "signup_lists"
}

// IsOpen reports whether the list still accepts changes
func (l *SignupList) IsOpen() bool {
	return l.Status == ListStatusOpen
}
