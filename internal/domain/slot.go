package domain

// Slot is one numbered work item of a schedule list
type Slot struct {
	BaseModel
	ListID        uint   `gorm:"not null;uniqueIndex:uq_signup_slots_list_num" json:"listId"`
	Num           int    `gorm:"not null;uniqueIndex:uq_signup_slots_list_num" json:"num"`
	Date          string `gorm:"type:varchar(16)" json:"date"`
	Weekday       string `gorm:"type:varchar(8)" json:"weekday"`
	Activity      string `gorm:"type:varchar(255)" json:"activity"`
	TimeRange     string `gorm:"type:varchar(64)" json:"timeRange"`
	Session       string `gorm:"type:varchar(16)" json:"session"`
	RequiredCount int    `gorm:"not null;default:1" json:"requiredCount"`
	Note          string `gorm:"type:text" json:"note"`
}

// TableName specifies the table name for Slot
func (Slot) TableName() string {
	return "signup_slots"
}

// SlotSignup records a participant taking a schedule slot.
// A participant may take several slots but each slot only once.
type SlotSignup struct {
	BaseModel
	ListID      uint   `gorm:"not null;index:idx_signup_slot_signups_list_id;uniqueIndex:uq_signup_slot_signups_list_slot_user" json:"listId"`
	SlotNum     int    `gorm:"not null;uniqueIndex:uq_signup_slot_signups_list_slot_user" json:"slotNum"`
	UserID      string `gorm:"type:varchar(64);not null;uniqueIndex:uq_signup_slot_signups_list_slot_user" json:"userId"`
	DisplayName string `gorm:"type:varchar(255);not null" json:"displayName"`
}

// TableName specifies the table name for SlotSignup
func (SlotSignup) TableName() string {
	return "signup_slot_signups"
}
