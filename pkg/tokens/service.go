// Package tokens issues and resolves API tokens and decides publish
// authorization for both kinds of authenticated actor.
package tokens

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/raccoonpkg/rack/pkg/errs"
	"github.com/raccoonpkg/rack/pkg/registry"
	"github.com/raccoonpkg/rack/pkg/users"
)

// Service owns the token lifecycle and the publish authorization rules.
type Service struct {
	tokens   *Store
	packages *registry.Store
}

// NewService creates a token service.
func NewService(tokens *Store, packages *registry.Store) *Service {
	return &Service{tokens: tokens, packages: packages}
}

// Issue creates a token for the owner, scoped to one package or to the
// wildcard. A package-scoped token requires the package to exist and to be
// authored by the owner; the wildcard skips both checks so it can cover
// packages created later.
func (s *Service) Issue(ctx context.Context, owner *users.User, label, scope string) (*Issued, error) {
	if scope != WildcardScope {
		pkg, err := s.packages.Get(ctx, scope)
		if err != nil {
			return nil, err
		}
		if pkg.AuthorID != owner.ID {
			return nil, errs.New(errs.KindForbidden, "you are not the owner of this package")
		}
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	token := &APIToken{
		UserID: owner.ID,
		Secret: secret,
		Label:  label,
		Scope:  scope,
	}
	if err := s.tokens.Insert(ctx, token); err != nil {
		return nil, err
	}

	return &Issued{APIToken: *token, Secret: secret}, nil
}

// Resolve authenticates a presented secret and records the use.
func (s *Service) Resolve(ctx context.Context, secret string) (*APIToken, error) {
	return s.tokens.ResolveSecret(ctx, secret)
}

// Get returns one of the caller's tokens by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID, owner *users.User) (*APIToken, error) {
	token, err := s.tokens.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if token.UserID != owner.ID {
		return nil, errs.New(errs.KindForbidden, "you are not the owner of this token")
	}
	return token, nil
}

// List returns all of the caller's tokens.
func (s *Service) List(ctx context.Context, owner *users.User) ([]*APIToken, error) {
	return s.tokens.ListByUser(ctx, owner.ID)
}

// Revoke deletes one of the caller's tokens.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID, owner *users.User) error {
	token, err := s.tokens.Get(ctx, id)
	if err != nil {
		return err
	}
	if token.UserID != owner.ID {
		return errs.New(errs.KindForbidden, "you are not the owner of this token")
	}
	return s.tokens.Delete(ctx, token.ID)
}

// AuthorizePublish decides whether the actor may publish a new version of the
// package. A user must be the live author; a token must belong to the author
// and carry a scope matching the package name or the wildcard.
func (s *Service) AuthorizePublish(actor Actor, pkg *registry.Package) error {
	switch a := actor.(type) {
	case UserActor:
		if a.User.IsRemoved {
			return errs.New(errs.KindNotFound, "user not found")
		}
		if a.User.ID != pkg.AuthorID {
			return errs.New(errs.KindForbidden, "you are not the author of this package")
		}
		return nil
	case TokenActor:
		if a.Token.UserID != pkg.AuthorID {
			return errs.New(errs.KindForbidden, "wrong api token")
		}
		if a.Token.Scope != WildcardScope && a.Token.Scope != pkg.Name {
			return errs.New(errs.KindForbidden, "wrong api token")
		}
		return nil
	default:
		panic(fmt.Sprintf("unknown actor type %T", actor))
	}
}
