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
	List(ctx context.Context, typeName string) error
	Show(ctx context.Context) error
	Create(ctx context.Context, typeName string) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Refresh(ctx context.Context) error
	Version(ctx context.Context) error
	Types(ctx context.Context) error
	Token(ctx context.Context) error
	ClearCache(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the FreightDeck console.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current cache status (from statusFn) and accepts:
//
//   - help             show available commands
//   - list [TYPE]      list cached entities, optionally for one type
//   - show             show a single entity (interactive ID prompt)
//   - create [TYPE]    open the creation drawer for a type
//   - edit             update an entity's attributes
//   - delete           delete an entity (with confirmation)
//   - refresh          force reconciliation with the server
//   - version          print local and server data versions
//   - types            print the entity types the server supports
//   - token            enter a new bearer token
//   - clearcache       drop the persisted local snapshot
//   - exit | quit      leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fd> %s > ", statusFn()))
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
			printlnFn("Available commands: (l)ist [TYPE], show, create [TYPE], edit, delete, refresh, version, types, token, clearcache, exit")

		case "l", "list":
			typeName := ""
			if len(args) > 0 {
				typeName = args[0]
			}
			_ = a.List(ctx, typeName)

		case "show":
			_ = a.Show(ctx)

		case "create":
			typeName := ""
			if len(args) > 0 {
				typeName = args[0]
			}
			_ = a.Create(ctx, typeName)

		case "edit":
			_ = a.Edit(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "version":
			_ = a.Version(ctx)

		case "types":
			_ = a.Types(ctx)

		case "token":
			_ = a.Token(ctx)

		case "clearcache":
			_ = a.ClearCache(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
