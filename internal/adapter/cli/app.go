// Package cli is the terminal front end of the storefront. Every command
// declares the route class it needs and is refused before it runs when the
// current session does not satisfy it.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const msgSessionEnded = "You have been logged out."

var errUsage = errors.New("usage")

type Services struct {
	Sessions *service.SessionHolder
	Cart     *service.CartStore
	Orders   *service.OrderService
	Catalog  *service.CatalogService
	Accounts *service.AccountService
}

type Options struct {
	Out   io.Writer
	In    io.Reader
	Lang  language.Tag
	Color bool
}

type command struct {
	class   domain.RouteClass
	usage   string
	summary string
	run     func(ctx context.Context, args []string) error
}

type App struct {
	svc      Services
	gate     *service.AccessGate
	out      io.Writer
	in       *bufio.Reader
	printer  *message.Printer
	color    bool
	commands map[string]command
	stopSub  func()
}

func New(svc Services, opts Options) *App {
	if opts.In == nil {
		opts.In = strings.NewReader("")
	}
	if opts.Lang == language.Und {
		opts.Lang = language.AmericanEnglish
	}

	a := &App{
		svc:     svc,
		gate:    service.NewAccessGate(svc.Sessions),
		out:     opts.Out,
		in:      bufio.NewReader(opts.In),
		printer: message.NewPrinter(opts.Lang),
		color:   opts.Color,
	}
	a.commands = a.commandTable()
	a.stopSub = svc.Sessions.OnInvalidated(func() {
		fmt.Fprintln(a.out, msgSessionEnded)
	})
	return a
}

// Close drops the session-invalidated subscription.
func (a *App) Close() {
	a.stopSub()
}

// Run executes one command line and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		a.help()
		return ExitUsage
	}

	name, rest := args[0], args[1:]
	if name == "cart" || name == "admin" {
		sub := "show"
		if name == "admin" {
			sub = ""
		}
		if len(rest) > 0 {
			sub, rest = rest[0], rest[1:]
		}
		name = name + " " + sub
	}

	cmd, ok := a.commands[name]
	if !ok {
		fmt.Fprintf(a.out, "unknown command %q\n", strings.Join(args, " "))
		a.help()
		return ExitUsage
	}

	if _, err := a.gate.Require(cmd.class); err != nil {
		fmt.Fprintln(a.out, domain.UserMessage(err))
		return ExitError
	}

	if err := cmd.run(ctx, rest); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(a.out, "usage: storefront %s\n", cmd.usage)
			return ExitUsage
		}
		fmt.Fprintln(a.out, domain.UserMessage(err))
		return ExitError
	}
	return ExitOK
}

func (a *App) help() {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "usage: storefront <command> [arguments]")
	fmt.Fprintln(a.out)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-22s %s\n", name, a.commands[name].summary)
	}
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// prompt reads one line from the input when a value was not given as a
// flag.
func (a *App) prompt(label, value string) string {
	if value != "" {
		return value
	}
	fmt.Fprintf(a.out, "%s: ", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}
