package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Add(ctx context.Context) error
	Goal(ctx context.Context) error
	Totals(ctx context.Context) error
	Sync(ctx context.Context) error
	StartScheduler(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands work both before and after sign-in; entries recorded as a guest
// are adopted by the account on the first sign-in.
//
//	- help           — show available commands
//	- login          — sign in with an access token
//	- logout         — sign out (local data stays)
//	- add            — record an entry
//	- goal           — set or clear a per-category target
//	- totals         — show per-day totals for a category
//	- sync           — run one sync cycle now
//	- run            — keep syncing in the background
//	- exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tl> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add, goal, totals, sync, run, logout, exit")
			} else {
				printlnFn("Available commands: add, goal, totals, login, exit")
			}
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "add":
			_ = a.Add(ctx)
		case "goal":
			_ = a.Goal(ctx)
		case "totals":
			_ = a.Totals(ctx)
		case "sync":
			_ = a.Sync(ctx)
		case "run":
			_ = a.StartScheduler(ctx)
		case "exit", "quit":
			return
		default:
			printlnFn(fmt.Sprintf("Unknown command: %s", cmd))
		}
	}
}
