package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a recording stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Timelines(ctx context.Context) error
	NewTimeline(ctx context.Context, name string) error
	OpenTimeline(ctx context.Context, ref string) error
	RemoveTimeline(ctx context.Context, ref string) error
	Info(ctx context.Context) error

	Events(ctx context.Context) error
	AddEvent(ctx context.Context) error
	EditEvent(ctx context.Context, ref string) error
	RemoveEvent(ctx context.Context, ref string) error
	Upload(ctx context.Context, ref, path string) error

	Highlights(ctx context.Context) error
	AddHighlight(ctx context.Context) error
	RemoveHighlight(ctx context.Context, ref string) error

	Export(ctx context.Context, path string) error
	Import(ctx context.Context, path string) error
	ExportCSV(ctx context.Context, path string) error
	Search(ctx context.Context, text string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: whoami, timelines, new <name>, open <n|id>, rm-timeline <n|id>, info,\n" +
		"  events, add-event, edit-event <n|id>, rm-event <n|id>, upload <n|id> <file>,\n" +
		"  highlights, add-highlight, rm-highlight <n|id>,\n" +
		"  export [file], import <file>, csv [file], search <text>, logout, exit"
)

// runREPL reads commands from scanner until EOF or "exit"/"quit". The first
// word selects the command and the rest are its arguments. Command errors
// are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tl %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		arg := func(i int) string {
			if i < len(args) {
				return args[i]
			}
			return ""
		}
		need := func(n int, usage string) bool {
			if len(args) < n {
				printlnFn("Usage:", usage)
				return false
			}
			return true
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)

		case "timelines", "ls":
			err = a.Timelines(ctx)
		case "new":
			if need(1, "new <name>") {
				err = a.NewTimeline(ctx, strings.Join(args, " "))
			}
		case "open":
			if need(1, "open <n|id>") {
				err = a.OpenTimeline(ctx, arg(0))
			}
		case "rm-timeline":
			if need(1, "rm-timeline <n|id>") {
				err = a.RemoveTimeline(ctx, arg(0))
			}
		case "info":
			err = a.Info(ctx)

		case "events":
			err = a.Events(ctx)
		case "add-event":
			err = a.AddEvent(ctx)
		case "edit-event":
			if need(1, "edit-event <n|id>") {
				err = a.EditEvent(ctx, arg(0))
			}
		case "rm-event":
			if need(1, "rm-event <n|id>") {
				err = a.RemoveEvent(ctx, arg(0))
			}
		case "upload":
			if need(2, "upload <n|id> <file>") {
				err = a.Upload(ctx, arg(0), arg(1))
			}

		case "highlights":
			err = a.Highlights(ctx)
		case "add-highlight":
			err = a.AddHighlight(ctx)
		case "rm-highlight":
			if need(1, "rm-highlight <n|id>") {
				err = a.RemoveHighlight(ctx, arg(0))
			}

		case "export":
			err = a.Export(ctx, arg(0))
		case "import":
			if need(1, "import <file>") {
				err = a.Import(ctx, arg(0))
			}
		case "csv":
			err = a.ExportCSV(ctx, arg(0))
		case "search":
			if need(1, "search <text>") {
				err = a.Search(ctx, strings.Join(args, " "))
			}

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
