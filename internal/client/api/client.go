/*
Package api is the HTTP client of the complaint desk.

Every call goes through BearerTransport, so a signed-in session's token is
attached automatically. Failures of any origin (transport, status code,
response body) come back as *Error.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"duvidha/internal/app/complaint"
	"duvidha/internal/app/user"
)

const (
	signupFallback = "Signup failed. Please try again later."
	signinFallback = "Signin failed. Please check your credentials."

	defaultTimeout = 15 * time.Second
)

type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninResult struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

type CreateComplaintInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	RoomNumber  string `json:"roomNumber,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its Transport is wrapped in
// a BearerTransport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		c.http = &copied
	}
}

// New returns a Client for backendURL (the server origin, without /api/v1).
func New(backendURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(backendURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Transport = &BearerTransport{Source: tokens, Base: c.http.Transport}
	return c
}

// Signup registers an account. It does not sign in.
func (c *Client) Signup(ctx context.Context, in user.SignupInput) (user.Public, error) {
	var out struct {
		User user.Public `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", in, &out, signupFallback); err != nil {
		return user.Public{}, err
	}
	return out.User, nil
}

func (c *Client) Signin(ctx context.Context, in SigninInput) (SigninResult, error) {
	var out SigninResult
	if err := c.do(ctx, http.MethodPost, "/auth/signin", in, &out, signinFallback); err != nil {
		return SigninResult{}, err
	}
	if out.Token == "" {
		return SigninResult{}, &Error{Kind: KindDecode, Status: http.StatusOK, Message: "server returned no token"}
	}
	return out, nil
}

// Me returns the account of the current token, as the server sees it.
func (c *Client) Me(ctx context.Context) (user.Public, error) {
	var out struct {
		User user.Public `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out, "Could not load your profile."); err != nil {
		return user.Public{}, err
	}
	return out.User, nil
}

func (c *Client) CreateComplaint(ctx context.Context, in CreateComplaintInput) (complaint.Complaint, error) {
	var out struct {
		Complaint complaint.Complaint `json:"complaint"`
	}
	if err := c.do(ctx, http.MethodPost, "/complaints", in, &out, "Could not file the complaint."); err != nil {
		return complaint.Complaint{}, err
	}
	return out.Complaint, nil
}

func (c *Client) ListComplaints(ctx context.Context) ([]complaint.Complaint, error) {
	var out struct {
		Complaints []complaint.Complaint `json:"complaints"`
	}
	if err := c.do(ctx, http.MethodGet, "/complaints", nil, &out, "Could not load complaints."); err != nil {
		return nil, err
	}
	return out.Complaints, nil
}

func (c *Client) UpdateComplaintStatus(ctx context.Context, id uuid.UUID, status complaint.Status) (complaint.Complaint, error) {
	var out struct {
		Complaint complaint.Complaint `json:"complaint"`
	}
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/complaints/"+id.String()+"/status", body, &out, "Could not update the complaint."); err != nil {
		return complaint.Complaint{}, err
	}
	return out.Complaint, nil
}

// do sends one JSON request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "Network error. Please check your connection.", Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: res.StatusCode, Message: "Network error. Please check your connection.", Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var eb errorBody
		// Non-JSON error bodies (proxies, panics) still yield the fallback message.
		_ = json.Unmarshal(raw, &eb)
		return &Error{
			Kind:    kindFor(res.StatusCode, eb.Code),
			Status:  res.StatusCode,
			Message: eb.message(fallback),
			Fields:  eb.Errors,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Status: res.StatusCode, Message: "Unexpected response from server.", Err: err}
	}
	return nil
}
