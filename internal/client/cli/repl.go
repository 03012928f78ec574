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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ShowStatus(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Seed(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Vitrine admin CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//	Not logged in:
//	  - help                    — show available commands
//	  - register                — create an account
//	  - login                   — authenticate
//	  - status                  — connectivity report
//	  - exit | quit             — leave the program
//
//	Logged in, additionally:
//	  - whoami                  — show the current account
//	  - list <collection>       — list documents
//	  - show <collection> <id>  — show a single document
//	  - add <collection>        — add a document (interactive field prompt)
//	  - edit <collection> <id>  — patch a document
//	  - delete <collection> <id>— remove a document
//	  - seed                    — load catalog defaults into empty collections
//	  - logout                  — log out
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vitrine %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, status, (l)ist, show, add, edit, delete, seed, logout, exit")
			} else {
				printlnFn("Available commands: register, login, status, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "status":
			_ = a.ShowStatus(ctx)

		case "l", "list":
			if len(args) == 0 {
				printlnFn("Usage: list <collection>")
				continue
			}
			_ = a.List(ctx, args)

		case "show":
			if len(args) < 2 {
				printlnFn("Usage: show <collection> <id>")
				continue
			}
			_ = a.Show(ctx, args)

		case "add":
			if len(args) == 0 {
				printlnFn("Usage: add <collection>")
				continue
			}
			_ = a.Add(ctx, args)

		case "edit":
			if len(args) < 2 {
				printlnFn("Usage: edit <collection> <id>")
				continue
			}
			_ = a.Edit(ctx, args)

		case "delete":
			if len(args) < 2 {
				printlnFn("Usage: delete <collection> <id>")
				continue
			}
			_ = a.Delete(ctx, args)

		case "seed":
			_ = a.Seed(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
