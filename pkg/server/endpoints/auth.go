package endpoints

import (
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/audit"
	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator"
	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn"
	"github.com/Sridhar-Quarlets/model-registry/pkg/authenticator/authn_jwt"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

// Credentials is the JSON form of a registration or token request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by POST /auth/token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterAuthEndpoints registers account and token endpoints
func RegisterAuthEndpoints(s *server.Server) {
	authRouter := s.Router.PathPrefix("/auth").Subrouter()

	// POST /auth/register - Create an account (no auth required)
	authRouter.HandleFunc("/register", handleRegisterUser(s.Passwords, s.Auditor, s.Log)).Methods("POST")

	// POST /auth/token - Exchange email and password for a bearer token (no auth required)
	authRouter.HandleFunc("/token", handleIssueToken(s.Passwords, s.Tokens, s.Auditor, s.Log)).Methods("POST")

	// GET /auth/me - The authenticated account
	meRouter := authRouter.PathPrefix("/me").Subrouter()
	meRouter.Use(s.JWTMiddleware.Middleware)
	meRouter.HandleFunc("", handleMe(s.UsersStore, s.Log)).Methods("GET")
}

func handleRegisterUser(passwords *authn.Authenticator, auditor *audit.Auditor, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		if err := decodeJSON(w, r, &creds); err != nil {
			respondWithServiceError(w, log, err, "")
			return
		}

		event := audit.AccountEvent{Email: creds.Email, ClientIP: r.RemoteAddr}
		user, err := passwords.Register(r.Context(), creds.Email, creds.Password)
		if err != nil {
			event.ErrorMessage = err.Error()
			auditor.Log(event)
			switch {
			case errors.Is(err, authn.ErrInvalidEmail):
				respondWithError(w, http.StatusBadRequest, ErrorBody{Message: "Invalid email address", Field: "email"})
			case errors.Is(err, authn.ErrInvalidPassword):
				respondWithError(w, http.StatusBadRequest, ErrorBody{Message: err.Error(), Field: "password"})
			default:
				respondWithServiceError(w, log, err, "")
			}
			return
		}

		event.Success = true
		auditor.Log(event)
		respondWithJSON(w, http.StatusOK, user)
	}
}

// readCredentials accepts an OAuth2 password form (username, password) or a
// JSON Credentials body.
func readCredentials(w http.ResponseWriter, r *http.Request) (Credentials, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var creds Credentials
		err := decodeJSON(w, r, &creds)
		return creds, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return Credentials{}, err
	}
	return Credentials{Email: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}, nil
}

func handleIssueToken(passwords *authn.Authenticator, tokens *authn_jwt.Authenticator, auditor *audit.Auditor, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds, err := readCredentials(w, r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrorBody{Message: "Malformed credentials"})
			return
		}

		event := audit.AuthenticateEvent{
			User:          creds.Email,
			ClientIP:      r.RemoteAddr,
			Authenticator: passwords.Name(),
		}
		p, err := passwords.Authenticate(r.Context(), authenticator.AuthenticatorInput{
			Login:       creds.Email,
			Credentials: []byte(creds.Password),
			ClientIP:    r.RemoteAddr,
		})
		if err != nil {
			event.ErrorMessage = err.Error()
			auditor.Log(event)
			if errors.Is(err, authenticator.ErrUnauthenticated) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				respondWithMessage(w, http.StatusUnauthorized, "Incorrect email or password")
				return
			}
			respondWithServiceError(w, log, err, "")
			return
		}

		token, _, err := tokens.Issue(p.Identity)
		if err != nil {
			event.ErrorMessage = "token signing failed"
			auditor.Log(event)
			respondWithServiceError(w, log, err, "")
			return
		}

		event.Success = true
		auditor.Log(event)
		respondWithJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

func handleMe(users store.UsersStore, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := users.GetUserByEmail(r.Context(), principal(r))
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				err = authenticator.ErrUnauthenticated
			}
			respondWithServiceError(w, log, err, "")
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}
