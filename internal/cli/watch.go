package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/couplefine/internal/app"
	"github.com/heartmarshall/couplefine/internal/config"
	clientapp "github.com/heartmarshall/couplefine/pkg/client/app"
	"github.com/heartmarshall/couplefine/pkg/client/cache"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type watchOptions struct {
	server   string
	email    string
	password string
	state    string
	lang     string
}

// NewWatchCommand creates the watch command, a terminal client that signs in
// and prints the couple's data as it changes.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sign in and print the couple's data as it changes",
		Long: `Sign in to a couplefine server, print a summary of the couple's rules,
violations and rewards, and keep printing it whenever a realtime change arrives.

The password is read from $COUPLEFINE_PASSWORD when --password is empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.password == "" {
				opts.password = os.Getenv("COUPLEFINE_PASSWORD")
			}
			if opts.email == "" || opts.password == "" {
				return NewExitError(ExitCommandError, "--email and a password are required")
			}

			level := rootOpts.LogLevel
			if level == "" {
				level = "warn"
			}
			logger := app.NewLogger(config.LogConfig{Level: level, Format: "text"})
			return runWatch(cmd, opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "http://localhost:8080", "API base URL")
	f.StringVar(&opts.email, "email", "", "account email")
	f.StringVar(&opts.password, "password", "", "account password")
	f.StringVar(&opts.state, "state", "", "local state file (default ./couplefine.db)")
	f.StringVar(&opts.lang, "lang", "ko", "message language (ko|en)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions, logger *slog.Logger) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := clientapp.New(ctx, clientapp.Options{
		ServerURL: opts.server,
		StatePath: opts.state,
		Version:   app.BuildVersion(),
		Lang:      opts.lang,
		Logger:    logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "open client", err)
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "start client", err)
	}
	if err := a.SignIn(ctx, opts.email, opts.password); err != nil {
		return NewExitError(ExitFailure, a.Message(err))
	}

	var (
		mu   sync.Mutex
		last string
	)
	show := func(st cache.State) {
		s := renderSummary(st)
		mu.Lock()
		defer mu.Unlock()
		if s == last {
			return
		}
		last = s
		fmt.Fprint(out, s)
	}
	unsub := a.Store().Subscribe(show)
	defer unsub()
	show(a.Store().State())

	<-ctx.Done()
	return nil
}

// renderSummary formats the cached state for the terminal.
func renderSummary(st cache.State) string {
	var b strings.Builder
	writeSummary(&b, st)
	return b.String()
}

func writeSummary(w io.Writer, st cache.State) {
	if st.User == nil {
		fmt.Fprintln(w, "signed out")
		return
	}
	if st.Couple == nil {
		fmt.Fprintf(w, "%s: not in a couple\n", st.User.DisplayName)
		return
	}

	c := st.Couple
	name := c.CoupleName
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "== %s [%s] balance %d ==\n", name, c.CoupleCode, c.TotalBalance)
	fmt.Fprintf(w, "  partner 1: %s fines %d\n", partnerName(c.Partner1, c.Partner1ID), cache.UserTotalFines(st, c.Partner1ID))
	if c.Partner2ID == nil {
		fmt.Fprintln(w, "  partner 2: waiting to join")
	} else {
		fmt.Fprintf(w, "  partner 2: %s fines %d\n", partnerName(c.Partner2, *c.Partner2ID), cache.UserTotalFines(st, *c.Partner2ID))
	}

	active := 0
	for _, r := range st.Rules {
		if r.IsActive {
			active++
		}
	}
	fmt.Fprintf(w, "  rules: %d active\n", active)
	fmt.Fprintf(w, "  violations: %d\n", len(st.Violations))
	for i, v := range st.Violations {
		if i == 5 {
			fmt.Fprintf(w, "    ... %d more\n", len(st.Violations)-i)
			break
		}
		who := v.ViolatorUserID.String()
		if v.Violator != nil {
			who = v.Violator.DisplayName
		}
		fmt.Fprintf(w, "    %s %s %d\n", v.ViolationDate, who, v.Amount)
	}
	fmt.Fprintf(w, "  rewards: %d\n", len(st.Rewards))
	for _, r := range st.Rewards {
		mark := " "
		if r.IsAchieved {
			mark = "x"
		}
		fmt.Fprintf(w, "    [%s] %s %d\n", mark, r.Title, r.TargetAmount)
	}
}

func partnerName(p *wire.Profile, id uuid.UUID) string {
	if p != nil && p.ID == id {
		return p.DisplayName
	}
	return id.String()
}
