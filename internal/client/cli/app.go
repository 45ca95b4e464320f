/*
Package cli implements the duvidha command line client: signup, signin,
logout, whoami and complaint management on top of the session manager.
*/
package cli

import (
	"context"
	"fmt"

	"duvidha/internal/client/api"
	"duvidha/internal/client/session"
	"duvidha/internal/client/storage"
	"duvidha/internal/configs"
)

// App is the wired client: durable store, HTTP client and session manager.
type App struct {
	Store   *storage.Store
	API     *api.Client
	Session *session.Manager
}

// Open opens the session database, reconciles any persisted session and
// builds an API client that sends the session's token.
func Open(ctx context.Context, cfg *configs.ClientConfig) (*App, error) {
	store, err := storage.Open(ctx, cfg.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	app := &App{Store: store}
	app.API = api.New(cfg.BackendURL, api.TokenFunc(func() string {
		if app.Session == nil {
			return ""
		}
		return app.Session.Token()
	}))
	app.Session = session.NewManager(ctx, store, app.API)

	return app, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
