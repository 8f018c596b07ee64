package profiles

import "time"

// Profile is the per-user row owned by the external auth system's id.
// GenerationsUsed maps to the images_generated column kept for historical
// schema compatibility.
type Profile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullName"`
	AvatarURL       string    `json:"avatarUrl"`
	GenerationsUsed int       `json:"generationsUsed"`
	Paid            bool      `json:"paid"`
	SubscriptionID  string    `json:"subscriptionId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Identity carries the attributes known from the auth token, used for lazy
// profile creation on first access.
type Identity struct {
	UserID    string
	Email     string
	FullName  string
	AvatarURL string
}
