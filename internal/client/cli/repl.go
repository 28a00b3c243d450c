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
	WhoAmI(ctx context.Context) error
	Setup(ctx context.Context, args []string) error
	Peers(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Lookup(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Probe(ctx context.Context) error
}

const helpText = "Available commands: whoami, setup <name> [ip], peers [query], select <n>, add <name>, " +
	"refresh, lookup [name], status, connect, disconnect, probe, help, exit"

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". promptFn returns the prompt to show before each line, or
// "" for none. Handler errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, promptFn func() string, scanner *bufio.Scanner) {
	for {
		if p := promptFn(); p != "" {
			printlnFn(p)
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "setup":
			err = a.Setup(ctx, args)
		case "peers", "list", "l":
			err = a.Peers(ctx, args)
		case "select":
			err = a.Select(ctx, args)
		case "add":
			err = a.Add(ctx, args)
		case "refresh":
			err = a.Refresh(ctx)
		case "lookup":
			err = a.Lookup(ctx, args)
		case "status":
			err = a.Status(ctx)
		case "connect":
			err = a.Connect(ctx)
		case "disconnect":
			err = a.Disconnect(ctx)
		case "probe":
			err = a.Probe(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
