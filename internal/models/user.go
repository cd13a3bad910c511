package models

import "time"

const (
	DefaultPhoto = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultPhone = "+44"
	DefaultBio   = "bio"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Photo        string
	Phone        string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the part of a user that is safe to return to clients.
// Token is set on signup and login, Phone on profile updates.
type PublicProfile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Bio   string `json:"bio"`
	Phone string `json:"phone,omitempty"`
	Token string `json:"token,omitempty"`
}

func (u User) Profile() PublicProfile {
	return PublicProfile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Bio:   u.Bio,
	}
}

// UserPatch carries the optional profile fields of an update. A nil or
// empty value leaves the stored field untouched.
type UserPatch struct {
	Name  *string
	Photo *string
	Bio   *string
	Phone *string
}

// Apply overwrites the fields of u that the patch provides and reports
// whether anything changed.
func (p UserPatch) Apply(u *User) bool {
	changed := false
	set := func(dst *string, v *string) {
		if v == nil || *v == "" || *v == *dst {
			return
		}
		*dst = *v
		changed = true
	}
	set(&u.Name, p.Name)
	set(&u.Photo, p.Photo)
	set(&u.Bio, p.Bio)
	set(&u.Phone, p.Phone)
	return changed
}

type ResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (t ResetToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
