package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/avetrovs/vitrine/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email, full name and password and
// attempts to create a new account.
//
// On success the new account becomes the active session and the method
// prints "Success!". The password byte slice is securely wiped before
// returning. A duplicate email is reported to the user; other errors are
// returned unchanged.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	account, token, err := a.sessions.Register(ctx, email, password, fullName)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateAccount) {
			log.Printf("An account with this email already exists")
			return err
		}
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	a.account = account
	a.remote.SetToken(token)

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and authenticates against the
// local users collection. On success the account becomes the active session
// and the minted token is handed to the remote client for authenticated
// API calls. The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	account, token, err := a.sessions.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			log.Printf("Login unsuccessful: invalid email or password")
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	a.account = account
	a.remote.SetToken(token)

	log.Printf("Login successful")
	return nil
}

// Logout clears the persisted session and forgets the in-memory account
// and remote token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.ClearCurrentSession(ctx); err != nil {
		return err
	}
	a.account = nil
	a.remote.SetToken("")
	return nil
}

// WhoAmI prints the active account, or a hint when nobody is logged in.
func (a *App) WhoAmI(ctx context.Context) error {
	if a.account == nil {
		printlnFn("Not logged in (try 'login' or 'register')")
		return nil
	}
	printlnFn(fmt.Sprintf("%s (%s), roles: %s",
		a.account.Email, a.account.ID, strings.Join(a.account.Roles, ", ")))
	return nil
}
