package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/phish-triage/internal/adapters/httpapi"
	"github.com/mikey/phish-triage/internal/config"
	"github.com/mikey/phish-triage/internal/core"
	"github.com/mikey/phish-triage/internal/di"
	"github.com/mikey/phish-triage/internal/ports"
	"github.com/mikey/phish-triage/internal/session"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseAppFlags()

	// Build the dependency injection container
	container, err := di.BuildContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err unless the presenter has already shown it. Backend failures
// reach the analyst through the failure notifier or RenderFailure.
func reportError(w io.Writer, err error) {
	if err == nil || errors.Is(err, core.ErrRequestFailed) {
		return
	}
	fmt.Fprintf(w, "Application error: %v\n", err)
}

type deps struct {
	dig.In

	Flags     *di.AppFlags
	Config    *config.Config
	Logger    *zap.Logger
	Session   *session.Session
	Client    *httpapi.Client
	Store     *core.TriageStore
	Detail    *core.DetailCache
	Presenter ports.Presenter
}

// run is the main application function that gets all dependencies injected
func run(d deps) error {
	defer d.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if user, ok := d.Session.CurrentUser(); ok {
		d.Logger.Debug("Signed in", zap.String("email", user.Email))
	}

	switch d.Flags.View {
	case "list":
		filter, err := core.ParseFilter(d.Flags.Filter)
		if err != nil {
			return err
		}
		if err := refresh(ctx, d.Store, d.Flags.MaxResults); err != nil {
			return err
		}
		return d.Presenter.RenderList(d.Store.FilteredList(filter), filter, d.Store.State())

	case "stats":
		limit := d.Flags.MaxResults
		if limit <= 0 {
			limit = d.Config.GetTriage().AnalyticsMaxResults
		}
		if err := refresh(ctx, d.Store, limit); err != nil {
			return err
		}
		return d.Presenter.RenderStats(d.Store.Stats())

	case "show":
		if err := d.Detail.Open(ctx, d.Flags.MessageID); err != nil {
			if errors.Is(err, core.ErrEmptyMessageID) {
				return fmt.Errorf("-id is required for the show view")
			}
			return err
		}
		defer d.Detail.Close()
		return d.Presenter.RenderDetail(d.Detail.Current())

	case "login":
		url, err := d.Client.AuthURL(ctx)
		if err != nil {
			d.Presenter.RenderFailure(core.OpLogin, err)
			return err
		}
		return d.Presenter.RenderAuthURL(url)

	case "health":
		if err := d.Client.Health(ctx); err != nil {
			d.Presenter.RenderFailure(core.OpHealth, err)
			return err
		}
		return d.Presenter.RenderHealth()

	default:
		return fmt.Errorf("unknown view: %s", d.Flags.View)
	}
}

// refresh loads the triage list; failures have already been reported through the notifier
func refresh(ctx context.Context, store *core.TriageStore, limit int) error {
	err := store.Refresh(ctx, limit)
	if errors.Is(err, core.ErrNotAuthenticated) {
		return fmt.Errorf("%w: run with -view login and pass the issued token with -token", err)
	}
	return err
}
