package clerk

import "encoding/json"

// Event types delivered by the identity provider that this service acts on.
// Anything else is acknowledged and ignored.
const (
	EventUserCreated = "user.created"
	EventUserDeleted = "user.deleted"
)

// Event is the webhook envelope. Data stays raw until Type is known.
type Event struct {
	Object string          `json:"object"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// UserData is the user.created payload.
type UserData struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	Username              *string        `json:"username"`
	ProfileImageURL       *string        `json:"profile_image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// PrimaryEmail resolves the address referenced by PrimaryEmailAddressID.
// ok is false when no entry matches; such an event is malformed.
func (u UserData) PrimaryEmail() (string, bool) {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress, true
		}
	}
	return "", false
}

// DeletedData is the user.deleted payload.
type DeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
