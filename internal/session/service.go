// Package session implements account registration, credential verification
// and the current-session lifecycle for the admin side of the site.
//
// Accounts live in the reserved "users" document collection; the current
// session is a single value persisted in the key–value store under its own
// reserved key, so it survives process restarts. There is no package-level
// session state: the Service instance owns the whole lifecycle.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avetrovs/vitrine/internal/catalog"
	"github.com/avetrovs/vitrine/internal/common"
	"github.com/avetrovs/vitrine/internal/cryptox"
	"github.com/avetrovs/vitrine/internal/docstore"
	"github.com/avetrovs/vitrine/internal/kvstore"
)

const (
	// currentSessionKey is reserved in the key–value store, outside the
	// collection namespace.
	currentSessionKey = "session:current"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is the public projection of a user record: every stored field
// except the password hash.
type Account struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FullName  string   `json:"fullName"`
	Roles     []string `json:"roles"`
	IsActive  bool     `json:"isActive"`
	CreatedAt string   `json:"createdAt"`
}

// HasRole reports whether the account holds the given role.
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Service provides authentication over the users collection.
type Service struct {
	engine   *docstore.Engine
	kv       kvstore.Store
	secret   []byte
	validity time.Duration
}

// NewService returns a Service minting tokens signed with secret and valid
// for the given duration.
func NewService(engine *docstore.Engine, kv kvstore.Store, secret []byte, validity time.Duration) *Service {
	return &Service{engine: engine, kv: kv, secret: secret, validity: validity}
}

// Register creates an account and returns its public projection together
// with a fresh session token. Email matching is exact (case-sensitive);
// a second registration with the same email fails with ErrDuplicateAccount.
// The successful registration also becomes the current session.
func (s *Service) Register(ctx context.Context, email string, password []byte, fullName string) (*Account, string, error) {
	_, exists, err := s.engine.FindOne(ctx, catalog.UsersCollection, docstore.Query{"email": email})
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", common.ErrDuplicateAccount
	}

	salt := common.GenerateRandByteArray(cryptox.SaltLen())
	doc, err := s.engine.InsertOne(ctx, catalog.UsersCollection, docstore.Document{
		"email":        email,
		"passwordHash": cryptox.HashPassword(password, salt),
		"fullName":     fullName,
		"roles":        []string{RoleUser},
		"isActive":     true,
	})
	if err != nil {
		return nil, "", err
	}

	account := accountFromDoc(doc)
	token, err := MintToken(account.ID, account.Email, s.secret, s.validity)
	if err != nil {
		return nil, "", fmt.Errorf("mint token: %w", err)
	}
	if err := s.SetCurrentSession(ctx, account); err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// Login verifies credentials and returns the account plus a fresh session
// token. An unknown email and a wrong password are indistinguishable: both
// return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email string, password []byte) (*Account, string, error) {
	doc, ok, err := s.engine.FindOne(ctx, catalog.UsersCollection, docstore.Query{"email": email})
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", common.ErrInvalidCredentials
	}

	hash, _ := doc["passwordHash"].(string)
	if !cryptox.VerifyPassword(password, hash) {
		return nil, "", common.ErrInvalidCredentials
	}

	account := accountFromDoc(doc)
	token, err := MintToken(account.ID, account.Email, s.secret, s.validity)
	if err != nil {
		return nil, "", fmt.Errorf("mint token: %w", err)
	}
	if err := s.SetCurrentSession(ctx, account); err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// CurrentSession returns the persisted current session, if any. Absence is a
// normal result.
func (s *Service) CurrentSession(ctx context.Context) (*Account, bool, error) {
	blob, ok, err := s.kv.Get(ctx, currentSessionKey)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	var account Account
	if err := json.Unmarshal(blob, &account); err != nil {
		return nil, false, fmt.Errorf("%w: decode current session: %v", common.ErrStorageFailure, err)
	}
	return &account, true, nil
}

// SetCurrentSession replaces the current session with the given account.
// Any prior session is silently overwritten.
func (s *Service) SetCurrentSession(ctx context.Context, account *Account) error {
	blob, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("%w: encode current session: %v", common.ErrStorageFailure, err)
	}
	return s.kv.Set(ctx, currentSessionKey, blob)
}

// ClearCurrentSession removes the current session. Clearing an absent
// session is a no-op.
func (s *Service) ClearCurrentSession(ctx context.Context) error {
	return s.kv.Delete(ctx, currentSessionKey)
}

// GrantRole adds a role to the account. Granting an already-held role is a
// no-op. The boolean reports whether the account exists.
func (s *Service) GrantRole(ctx context.Context, userID, role string) (*Account, bool, error) {
	doc, ok, err := s.engine.FindOne(ctx, catalog.UsersCollection, docstore.Query{docstore.FieldID: userID})
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	roles := rolesFromDoc(doc)
	for _, r := range roles {
		if r == role {
			return accountFromDoc(doc), true, nil
		}
	}
	roles = append(roles, role)

	updated, ok, err := s.engine.UpdateOne(ctx, catalog.UsersCollection,
		docstore.Query{docstore.FieldID: userID}, docstore.Document{"roles": roles})
	if err != nil || !ok {
		return nil, ok, err
	}
	return accountFromDoc(updated), true, nil
}

// RevokeRole removes a role from the account. Revoking a role the account
// does not hold is a no-op. Revoking the admin role from the last remaining
// admin fails with ErrLastAdmin and leaves the record unchanged; the check
// scans the whole collection, not just the target record.
func (s *Service) RevokeRole(ctx context.Context, userID, role string) (*Account, bool, error) {
	doc, ok, err := s.engine.FindOne(ctx, catalog.UsersCollection, docstore.Query{docstore.FieldID: userID})
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	roles := rolesFromDoc(doc)
	held := false
	kept := make([]string, 0, len(roles))
	for _, r := range roles {
		if r == role {
			held = true
			continue
		}
		kept = append(kept, r)
	}
	if !held {
		return accountFromDoc(doc), true, nil
	}

	if role == RoleAdmin {
		admins, err := s.countAdmins(ctx)
		if err != nil {
			return nil, false, err
		}
		if admins <= 1 {
			return nil, false, common.ErrLastAdmin
		}
	}

	updated, ok, err := s.engine.UpdateOne(ctx, catalog.UsersCollection,
		docstore.Query{docstore.FieldID: userID}, docstore.Document{"roles": kept})
	if err != nil || !ok {
		return nil, ok, err
	}
	return accountFromDoc(updated), true, nil
}

func (s *Service) countAdmins(ctx context.Context) (int, error) {
	docs, err := s.engine.Find(ctx, catalog.UsersCollection, docstore.Query{})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range docs {
		for _, r := range rolesFromDoc(d) {
			if r == RoleAdmin {
				n++
				break
			}
		}
	}
	return n, nil
}

func rolesFromDoc(doc docstore.Document) []string {
	switch v := doc["roles"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, r := range v {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func accountFromDoc(doc docstore.Document) *Account {
	email, _ := doc["email"].(string)
	fullName, _ := doc["fullName"].(string)
	isActive, _ := doc["isActive"].(bool)
	createdAt, _ := doc[docstore.FieldCreatedAt].(string)
	return &Account{
		ID:        doc.ID(),
		Email:     email,
		FullName:  fullName,
		Roles:     rolesFromDoc(doc),
		IsActive:  isActive,
		CreatedAt: createdAt,
	}
}
