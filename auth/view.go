// client/auth/view.go
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/vinizap/lumi/client/domain"
	httpclient "github.com/vinizap/lumi/client/http"
)

const (
	MsgAccountCreated = "Account created. Sign in now!"
	MsgAuthFailed     = "Authentication failed"
	MsgNetworkError   = "Network error"
)

type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// SubmitLabel is the caption of the submit action in this mode.
func (m Mode) SubmitLabel() string {
	if m == ModeRegister {
		return "Create Account"
	}
	return "Sign In"
}

// Authenticator is the part of the API the sign-in form talks to.
type Authenticator interface {
	Register(ctx context.Context, creds domain.Credentials) error
	Login(ctx context.Context, creds domain.Credentials) (string, error)
}

// View is the sign-in / register form. Message is informational, Err is
// shown as an error; at most one of them is set.
type View struct {
	api     Authenticator
	session *Session

	Mode     Mode
	Email    string
	Password string
	Message  string
	Err      string
}

func NewView(api Authenticator, session *Session) *View {
	return &View{api: api, session: session, Mode: ModeLogin}
}

func (v *View) Toggle() {
	if v.Mode == ModeLogin {
		v.SetMode(ModeRegister)
	} else {
		v.SetMode(ModeLogin)
	}
}

func (v *View) SetMode(m Mode) {
	v.Mode = m
	v.Message = ""
	v.Err = ""
}

// Submit posts the form for the current mode. A successful registration
// flips the form to sign-in; a successful sign-in activates the session.
func (v *View) Submit(ctx context.Context) error {
	v.Message = ""
	v.Err = ""

	creds := domain.Credentials{Email: strings.TrimSpace(v.Email), Password: v.Password}
	if err := creds.Validate(); err != nil {
		v.Err = err.Error()
		return err
	}

	if v.Mode == ModeRegister {
		if err := v.api.Register(ctx, creds); err != nil {
			v.Err = failureText(err)
			return err
		}
		v.Mode = ModeLogin
		v.Password = ""
		v.Message = MsgAccountCreated
		return nil
	}

	token, err := v.api.Login(ctx, creds)
	if err != nil {
		v.Err = failureText(err)
		return err
	}
	if err := v.session.Activate(ctx, token); err != nil {
		v.Err = failureText(err)
		return err
	}
	v.Password = ""
	return nil
}

func failureText(err error) string {
	if errors.Is(err, httpclient.ErrNetwork) {
		return MsgNetworkError
	}
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return apiErr.Body
	}
	return MsgAuthFailed
}
