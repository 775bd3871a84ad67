package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kanbanApi/internal/shared/apperr"
)

// User is a registered account. Password holds the bcrypt hash and never
// leaves the process.
type User struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"-" bson:"password"`
	Fullname   string             `json:"fullname" bson:"fullname"`
	ImgURL     string             `json:"imgUrl,omitempty" bson:"imgUrl,omitempty"`
	IsAdmin    bool               `json:"isAdmin" bson:"isAdmin"`
	Score      int                `json:"score" bson:"score"`
	Activities []Activity         `json:"activities,omitempty" bson:"activities,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"-"`
}

// Activity is an entry of a user's own history.
type Activity struct {
	Action      string    `json:"action" bson:"action"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

type Filter struct {
	Txt string
}

// Patch carries the only fields a user update may change.
type Patch struct {
	Fullname *string `json:"fullname"`
	ImgURL   *string `json:"imgUrl"`
	Score    *int    `json:"score"`
}

func (p Patch) Validate() error {
	if p.Fullname != nil && strings.TrimSpace(*p.Fullname) == "" {
		return apperr.Validation("fullname cannot be empty")
	}
	return nil
}

func (p Patch) Apply(u *User) {
	if p.Fullname != nil {
		u.Fullname = strings.TrimSpace(*p.Fullname)
	}
	if p.ImgURL != nil {
		u.ImgURL = *p.ImgURL
	}
	if p.Score != nil {
		u.Score = *p.Score
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) Normalize() {
	if !u.ID.IsZero() {
		u.CreatedAt = u.ID.Timestamp()
	}
}

// Matches reports whether txt occurs in the email or fullname, ignoring case.
func (u *User) Matches(txt string) bool {
	txt = strings.ToLower(strings.TrimSpace(txt))
	if txt == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Email), txt) || strings.Contains(strings.ToLower(u.Fullname), txt)
}
