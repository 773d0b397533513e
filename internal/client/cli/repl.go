package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = func(a ...any) { fmt.Println(a...) }

// execIface is the minimal command surface the REPL needs. *App satisfies
// it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Chat(ctx context.Context) error
	Whoami(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads a line, takes the first token as the command, and
// dispatches. Unknown commands are reported back. The loop exits on scanner
// EOF or "exit"/"quit". Handler errors are already reported by the handlers
// themselves; the loop stays resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	printlnFn("chatterm - type 'help' for commands")

	for {
		printlnFn(fmt.Sprintf("chatterm (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: chat, whoami, profile, password, logout, exit")
			} else {
				printlnFn("Available commands: login, signup, chat, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "signup", "register":
			_ = a.Signup(ctx)

		case "chat":
			_ = a.Chat(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "profile":
			_ = a.EditProfile(ctx)

		case "password":
			_ = a.ChangePassword(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", parts[0])
		}
	}
}
