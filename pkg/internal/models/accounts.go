package models

import "time"

// Account is the local mirror of an identity provider user.
// Rows are refreshed every time a verified session token is seen.
type Account struct {
	ID        string    `json:"id" gorm:"primaryKey;size:128"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `json:"name"`
	Nick  string `json:"nick"`
	Email string `json:"email" gorm:"index;size:320"`
}

func (v Account) DisplayName() string {
	if len(v.Nick) > 0 {
		return v.Nick
	}
	return v.Name
}
