package tokens

import (
	"time"

	"github.com/google/uuid"

	"github.com/raccoonpkg/rack/pkg/users"
)

// WildcardScope authorizes a token for every package owned by its user.
const WildcardScope = "*"

// APIToken grants publish rights for exactly one package name, or for all of
// the owner's packages when the scope is the wildcard. The secret value is
// server-generated and only ever serialized at creation time.
type APIToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Secret     string     `json:"-"`
	Label      string     `json:"label"`
	Scope      string     `json:"scope"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Issued is the creation response: the token record plus the secret value,
// visible this one time only.
type Issued struct {
	APIToken
	Secret string `json:"token"`
}

// Actor is the authenticated entity attempting an operation: either a user
// session or an API token. The interface is sealed so authorization can match
// exhaustively; adding a third actor kind is a compile-visible change.
type Actor interface {
	actor()
}

// UserActor is a session-authenticated user.
type UserActor struct {
	User *users.User
}

// TokenActor is an API-token-authenticated caller.
type TokenActor struct {
	Token *APIToken
}

func (UserActor) actor()  {}
func (TokenActor) actor() {}
