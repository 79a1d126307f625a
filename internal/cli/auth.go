package cli

import (
	"context"
	"log"
	"os"
)

// Login signs in with a pasted access token, adopts data recorded as a
// guest and, when a remote is configured, runs a first sync right away.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already signed in; logout first to switch accounts")
		return nil
	}

	token, err := GetSecret(os.Stdout, "Paste access token")
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	owner, err := a.tokens.SignIn(string(token))
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Signed in as " + owner)

	if err := a.migrator.Run(ctx, owner); err != nil {
		// guest data is intact, the next sign-in retries
		log.Printf("error migrating guest data: %v", err)
		return err
	}

	if a.online {
		a.engine.Sync(ctx)
		a.printOutcome()
	}
	return nil
}

// Logout drops the session. Local data stays on the device.
func (a *App) Logout(ctx context.Context) error {
	if err := a.tokens.SignOut(); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Signed out")
	return nil
}
