package api

import (
	"net/http"
	"strings"

	"github.com/avetrovs/vitrine/internal/catalog"
	"github.com/avetrovs/vitrine/internal/common"
	"github.com/avetrovs/vitrine/internal/cryptox"
	"github.com/avetrovs/vitrine/internal/session"
	"github.com/google/uuid"
)

// bearerAuth guards mutating routes: requests must carry a valid session
// token in the Authorization header.
func bearerAuth(deps Deps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				httpError(w, http.StatusUnauthorized, "authentication_error", "missing bearer token")
				return
			}
			if _, err := session.ParseToken(auth[len(prefix):], deps.SecretKey); err != nil {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type authResponse struct {
	User  map[string]any `json:"user"`
	Token string         `json:"token"`
}

// publicUser strips the password hash from a stored user document.
func publicUser(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "passwordHash" {
			continue
		}
		out[k] = v
	}
	return out
}

func handleRegister(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "email and password are required")
			return
		}

		// the uniqueness check and the insert run in one transaction, so two
		// concurrent registrations for the same email cannot both succeed
		salt := common.GenerateRandByteArray(cryptox.SaltLen())
		doc, created, err := deps.Store.CreateUnique(r.Context(),
			catalog.UsersCollection, uuid.NewString(), "email", req.Email, map[string]any{
				"email":        req.Email,
				"passwordHash": cryptox.HashPassword([]byte(req.Password), salt),
				"fullName":     req.FullName,
				"roles":        []string{session.RoleUser},
				"isActive":     true,
			})
		if err != nil {
			deps.Logger.Error(r.Context(), "register failed", "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not create account")
			return
		}
		if !created {
			httpError(w, http.StatusConflict, "duplicate_account", "%v", common.ErrDuplicateAccount)
			return
		}

		token, err := session.MintToken(doc["id"].(string), req.Email, deps.SecretKey, deps.TokenValidity)
		if err != nil {
			deps.Logger.Error(r.Context(), "token mint failed", "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not create account")
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{User: publicUser(doc), Token: token})
	}
}

func handleLogin(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if !decodeBody(w, r, &req) {
			return
		}

		doc, ok, err := deps.Store.FindByField(r.Context(), catalog.UsersCollection, "email", req.Email)
		if err != nil {
			deps.Logger.Error(r.Context(), "login lookup failed", "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not log in")
			return
		}

		// unknown email and wrong password produce the same response
		hash := ""
		if ok {
			hash, _ = doc["passwordHash"].(string)
		}
		if !ok || !cryptox.VerifyPassword([]byte(req.Password), hash) {
			httpError(w, http.StatusUnauthorized, "invalid_credentials", "%v", common.ErrInvalidCredentials)
			return
		}

		token, err := session.MintToken(doc["id"].(string), req.Email, deps.SecretKey, deps.TokenValidity)
		if err != nil {
			deps.Logger.Error(r.Context(), "token mint failed", "err", err)
			httpError(w, http.StatusInternalServerError, "api_error", "could not log in")
			return
		}

		writeJSON(w, http.StatusOK, authResponse{User: publicUser(doc), Token: token})
	}
}
