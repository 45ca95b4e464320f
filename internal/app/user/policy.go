package user

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// InstitutionalDomain is the only email domain accepted at signup.
	InstitutionalDomain = "iiitdwd.ac.in"

	// MinPasswordLength is the minimum password length in characters.
	MinPasswordLength = 6

	// MaxPasswordLength keeps passwords within bcrypt's 72-byte input limit.
	MaxPasswordLength = 72
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@iiitdwd\.ac\.in$`)

// Violation is one failed field rule.
type Violation struct {
	Field   string
	Message string
}

// ValidationError collects every Violation found in one input.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// SignupInput is the signup request before hashing.
type SignupInput struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	RoomNumber string `json:"roomNumber"`
}

// Normalize trims text fields and lowercases the email. The password is kept verbatim.
func (in SignupInput) Normalize() SignupInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	return in
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseRole maps the wire value to a Role; the empty string means student.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleStudent:
		return RoleStudent, nil
	case RoleMaintainer:
		return RoleMaintainer, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// ValidateEmail checks the institutional domain rule.
func ValidateEmail(email string) *Violation {
	if !emailRegex.MatchString(email) {
		return &Violation{Field: "email", Message: "Email must end with @" + InstitutionalDomain}
	}
	return nil
}

// ValidatePassword checks the complexity policy and returns every rule broken.
func ValidatePassword(password string) []Violation {
	var out []Violation
	add := func(msg string) {
		out = append(out, Violation{Field: "password", Message: msg})
	}

	if utf8.RuneCountInString(password) < MinPasswordLength {
		add(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		add(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordLength))
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsSpace(r) && !unicode.IsLetter(r):
			special = true
		}
	}

	if !upper {
		add("Password must contain an uppercase letter")
	}
	if !lower {
		add("Password must contain a lowercase letter")
	}
	if !digit {
		add("Password must contain a number")
	}
	if !special {
		add("Password must contain a special character")
	}
	return out
}

// ValidateSignup applies every signup rule to a normalized input and returns
// a *ValidationError listing all failures, or nil.
func ValidateSignup(in SignupInput) error {
	var violations []Violation

	if in.Username == "" {
		violations = append(violations, Violation{Field: "username", Message: "Username is required"})
	}
	if v := ValidateEmail(in.Email); v != nil {
		violations = append(violations, *v)
	}
	violations = append(violations, ValidatePassword(in.Password)...)
	if _, err := ParseRole(in.Role); err != nil {
		violations = append(violations, Violation{Field: "role", Message: "Role must be student or maintainer"})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
