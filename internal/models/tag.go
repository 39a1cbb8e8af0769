package models

// Tag is a shared label attached to posts. Rows are unique by text and are
// reused across posts; matching is exact and case-sensitive.
type Tag struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Tag string `gorm:"unique;not null;size:100" json:"tag"`
}
