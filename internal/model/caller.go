package model

// AccountType is the staff role carried by a session.
type AccountType string

const (
	AccountTypeDoctor AccountType = "Doctor"
	AccountTypeTriage AccountType = "Triage"
	AccountTypeEvac   AccountType = "Evac"
)

// Caller is the authenticated actor behind a request. The transport layer
// builds it from session claims and passes it explicitly into domain
// services so authorization checks stay pure.
type Caller struct {
	UserID      string      `json:"user_id"`
	AccountType AccountType `json:"account_type"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	Admin       bool        `json:"admin"`
	Specialties []Specialty `json:"specialties,omitempty"`
}

// ActorRef is the identity snapshot stored on patient workflow fields.
type ActorRef struct {
	FirstName string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
}

// IsZero reports whether the reference is empty.
func (a ActorRef) IsZero() bool {
	return a.FirstName == "" && a.LastName == "" && a.Email == ""
}

// Ref returns the caller's identity snapshot.
func (c Caller) Ref() ActorRef {
	return ActorRef{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
	}
}

// IsCoordinator reports whether the caller holds a triage-capable role.
func (c Caller) IsCoordinator() bool {
	return c.AccountType == AccountTypeTriage || c.AccountType == AccountTypeEvac
}
