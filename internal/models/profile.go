package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Profile is the public face of a User. It mirrors the user's username and
// email so profile queries never need to join the users table, and it owns
// the follow graph: Followers holds everyone following this profile.
//
// The join table row (profile_id=B, follower_id=A) means "A follows B".
type Profile struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	User       User   `gorm:"foreignKey:UserID" json:"-"`
	Username   string `gorm:"unique;not null;size:100" json:"username"`
	Email      string `gorm:"unique;not null;size:100" json:"email"`
	Name       string `gorm:"size:100" json:"name"`
	LastName   string `gorm:"size:100" json:"last_name"`
	Bio        string `gorm:"size:500" json:"bio"`
	// BirthDate is stored as "YYYY-MM-DD"; empty when never set.
	BirthDate  string `gorm:"size:10" json:"birth_date,omitempty"`
	PictureURL string `json:"picture_url"`

	Followers []*Profile `gorm:"many2many:profile_followers;joinForeignKey:ProfileID;joinReferences:FollowerID" json:"-"`

	// FollowersCount and FollowingCount are not persisted; computed at query time
	FollowersCount int64 `gorm:"-" json:"followers_count"`
	FollowingCount int64 `gorm:"-" json:"following_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName joins the optional name parts, dropping surrounding whitespace
// when either side is empty.
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.LastName)
}
