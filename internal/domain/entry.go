package domain

// Entry is one participant's registration on a simple list.
// Identity is (ListID, UserID); Seq is assigned once on first insert.
type Entry struct {
	BaseModel
	ListID      uint   `gorm:"not null;index:idx_signup_entries_list_id;uniqueIndex:uq_signup_entries_list_user" json:"listId"`
	UserID      string `gorm:"type:varchar(64);not null;uniqueIndex:uq_signup_entries_list_user" json:"userId"`
	DisplayName string `gorm:"type:varchar(255);not null" json:"displayName"`
	Item        string `gorm:"type:varchar(255)" json:"item"`
	Note        string `gorm:"type:text" json:"note"`
	Seq         int    `gorm:"not null" json:"seq"`
}

// TableName specifies the table name for Entry
func (Entry) TableName() string {
	return "signup_entries"
}
