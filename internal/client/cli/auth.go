package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/forms"
)

var errAlreadyLoggedIn = errors.New("already logged in, use 'logout' first")

func (a *App) readPassword(prompt string) (string, error) {
	return GetPassword(a.reader, prompt, a.out, a.ttyFd)
}

// Register prompts for name, email and a confirmed password and submits the
// registration form. It does not sign in.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		return errAlreadyLoggedIn
	}

	var f forms.RegistrationForm
	var err error

	if f.Name, err = GetSimpleText(a.reader, "Enter name", a.out); err != nil {
		return err
	}
	if f.Email, err = GetSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if f.Password, err = a.readPassword("Enter password"); err != nil {
		return err
	}
	if f.ConfirmPassword, err = a.readPassword("Confirm password"); err != nil {
		return err
	}

	a.newController("Create Account").SubmitRegistration(ctx, a.auth, f)
	return a.follow(ctx)
}

// Login prompts for credentials and submits the login form. On success the
// invoice sync starts and the dashboard is listed.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		return errAlreadyLoggedIn
	}

	var f forms.LoginForm
	var err error

	if f.Email, err = GetSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if f.Password, err = a.readPassword("Enter password"); err != nil {
		return err
	}

	a.newController("Login").SubmitLogin(ctx, a.auth, f)
	return a.follow(ctx)
}

// Logout tells the backend (failures ignored), clears the stored session and
// stops syncing.
func (a *App) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	a.signedOut()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Whoami asks the backend who the stored token belongs to.
func (a *App) Whoami(ctx context.Context) error {
	u := a.auth.ResolveCurrentUser(ctx)
	if u == nil {
		if a.isLoggedIn() {
			sess, err := a.sessions.Get(ctx)
			if err != nil {
				return err
			}
			if !sess.Authenticated() {
				a.signedOut()
				fmt.Fprintln(a.out, "Your session has ended. Please login again.")
				return nil
			}
			fmt.Fprintf(a.out, "%s (not confirmed, backend unreachable)\n", a.user.DisplayName())
			return nil
		}
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	a.user = u
	fmt.Fprintf(a.out, "%s <%s>", u.DisplayName(), u.Email)
	if u.Role != "" {
		fmt.Fprintf(a.out, " role=%s", u.Role)
	}
	fmt.Fprintln(a.out)
	return nil
}
