package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Fprintln

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context) error
	Search(ctx context.Context) error
	Add(ctx context.Context) error
	Attach(ctx context.Context, path string) error
	Detach(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) error
	Sync(ctx context.Context) error
	Metrics(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the invoicekeeper CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'; the rest of the line is the argument. The
// loop exits on EOF, on context cancellation or when the user types "exit"
// or "quit".
//
//	Not logged in:
//	  - help             show available commands
//	  - register         create an account
//	  - login            authenticate
//	  - list | search    browse demonstration data
//	  - attach <path>    stage a file (detach drops it)
//	  - metrics          show sync counters
//	  - exit | quit      leave the program
//
//	Logged in:
//	  - list | search    browse cached invoices
//	  - add              create an invoice with the staged file
//	  - show <id>        fetch one invoice
//	  - delete <id>      delete an invoice
//	  - stats            per-user summary
//	  - sync             refresh the cache now
//	  - whoami | logout
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(out, "ik %s > ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn(out)
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		var cmdErr error
		switch strings.ToLower(cmd) {
		case "help", "?":
			if a.isLoggedIn() {
				printlnFn(out, "Available commands: (l)ist, search, add, attach <path>, detach, show <id>, delete <id>, stats, sync, metrics, whoami, logout, exit")
			} else {
				printlnFn(out, "Available commands: register, login, (l)ist, search, attach <path>, detach, metrics, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "search":
			cmdErr = a.Search(ctx)

		case "add":
			cmdErr = a.Add(ctx)

		case "attach":
			cmdErr = a.Attach(ctx, arg)

		case "detach":
			cmdErr = a.Detach(ctx)

		case "show":
			cmdErr = a.Show(ctx, arg)

		case "delete", "rm":
			cmdErr = a.Delete(ctx, arg)

		case "stats":
			cmdErr = a.Stats(ctx)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "metrics":
			cmdErr = a.Metrics(ctx)

		case "exit", "quit":
			printlnFn(out, "Bye!")
			return

		default:
			printlnFn(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(out, "Error:", cmdErr)
		}
	}
}
