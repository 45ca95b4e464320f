/*
Package handler provides the HTTP routing and handlers of the complaint desk:
signup, signin and the current-user lookup under /api/v1/auth, and the
complaint endpoints under /api/v1/complaints.
*/
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"duvidha/internal/app/user"
	"duvidha/internal/pkg/auth/jwt"
	"duvidha/internal/pkg/errs"
	"duvidha/internal/pkg/logx"
	"duvidha/internal/pkg/req"
	"duvidha/internal/pkg/resp"
)

// SignupResponse is the 201 body of a signup. It carries no token: a new
// account must sign in explicitly.
type SignupResponse struct {
	User user.Public `json:"user"`
}

type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninResponse struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

type MeResponse struct {
	User user.Public `json:"user"`
}

// HandleSignup validates the request, hashes the password and stores the account.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input user.SignupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input = input.Normalize()
		if err := user.ValidateSignup(input); err != nil {
			resp.RespondError(w, r, validationError(err))
			return
		}
		role, _ := user.ParseRole(input.Role)

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), deps.bcryptCost())
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		created, err := deps.Users.Create(r.Context(), user.User{
			Username:     input.Username,
			Email:        input.Email,
			PasswordHash: string(hashed),
			Role:         role,
			RoomNumber:   input.RoomNumber,
		})
		if err != nil {
			if errors.Is(err, user.ErrEmailTaken) {
				logx.FromContext(r.Context()).Warn().Str("email", input.Email).Msg("signup conflict: email already registered")
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailAlreadyRegistered))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.FromContext(r.Context()).Info().Str("user_id", created.ID.String()).Str("role", string(created.Role)).Msg("user registered")
		resp.RespondCreated(w, r, SignupResponse{User: created.Public()})
	}
}

// HandleSignin checks the credentials and issues an identity token.
// Unknown email and wrong password produce the same response.
func HandleSignin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SigninInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email := user.NormalizeEmail(input.Email)
		var missing []errs.FieldError
		if email == "" {
			missing = append(missing, errs.FieldError{Field: "email", Message: "Email is required"})
		}
		if input.Password == "" {
			missing = append(missing, errs.FieldError{Field: "password", Message: "Password is required"})
		}
		if len(missing) > 0 {
			resp.RespondError(w, r, errs.NewValidationError(missing))
			return
		}

		log := logx.FromContext(r.Context())

		account, err := deps.Users.GetByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				_ = bcrypt.CompareHashAndPassword(deps.dummyPasswordHash(), []byte(input.Password))
				log.Warn().Str("email", email).Msg("signin: unknown email")
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			log.Warn().Str("user_id", account.ID.String()).Msg("signin: password mismatch")
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := jwt.GenerateTokenAt(&jwt.Payload{
			ID:       account.ID.String(),
			Username: account.Username,
			Email:    account.Email,
			Role:     string(account.Role),
		}, deps.Config.JWTSecret, deps.now(), deps.Config.TokenTTL)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondOK(w, r, SigninResponse{Token: token, User: account.Public()})
	}
}

// HandleMe reloads the account named by the verified token.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _, ok := identity(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondOK(w, r, MeResponse{User: account.Public()})
	}
}

// identity returns the user ID and role of the verified token on r.
func identity(r *http.Request) (uuid.UUID, user.Role, bool) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		return uuid.Nil, "", false
	}

	id, err := uuid.Parse(strings.TrimSpace(payload.ID))
	if err != nil {
		return uuid.Nil, "", false
	}

	return id, user.Role(payload.Role), true
}

// validationError converts a *user.ValidationError into the HTTP error type.
func validationError(err error) *errs.CustomError {
	var vErr *user.ValidationError
	if !errors.As(err, &vErr) {
		return errs.NewError(errs.ErrInvalidParams)
	}

	fields := make([]errs.FieldError, 0, len(vErr.Violations))
	for _, v := range vErr.Violations {
		fields = append(fields, errs.FieldError{Field: v.Field, Message: v.Message})
	}
	return errs.NewValidationError(fields)
}
