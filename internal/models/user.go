package models

// User describes a restaurant owner account. There is no password: identity is
// proven by emailed one-time codes and carried by a signed session token.
type User struct {
	BaseModel

	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	FullName    string `gorm:"not null" json:"full_name"`
	CountryName string `gorm:"not null" json:"country_name"`

	Restaurants []Restaurant `gorm:"foreignKey:UserID" json:"-"`
}

// PublicUser is the profile shape exposed to API consumers.
type PublicUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	CountryName string `json:"country_name"`
}

// Public projects the user onto its API representation.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		CountryName: u.CountryName,
	}
}
