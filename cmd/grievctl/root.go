package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/grievease/petition-client-go/internal/api"
	"github.com/grievease/petition-client-go/internal/auth"
	"github.com/grievease/petition-client-go/internal/config"
	"github.com/grievease/petition-client-go/internal/store"
)

// app wires the shared client pieces once per invocation. The session,
// when one is persisted, is restored before any command runs so bearer
// calls just work.
type app struct {
	cfg      *config.Config
	client   *api.Client
	db       *store.DB
	sessions store.SessionStore
	cache    store.PetitionCache
	auth     *auth.Manager
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	setLogLevel(cfg.LogLevel)
	a.cfg = cfg

	a.client = api.NewClient(cfg.APIBaseURL,
		api.WithOTPBaseURL(cfg.OTPURL()),
		api.WithTimeout(cfg.HTTPTimeout()),
	)

	statePath, err := cfg.StateDBPath()
	if err != nil {
		return err
	}
	a.db, err = store.Open(statePath)
	if err != nil {
		return err
	}
	a.sessions = store.NewSessionStore(a.db)
	a.cache = store.NewPetitionCache(a.db)

	a.auth = auth.NewManager(a.client, a.sessions)
	a.auth.RestoreSession(ctx)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "grievctl",
		Short:         "Command-line client for the Griev-Ease petition platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(
		newLoginCmd(a),
		newOTPCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRegisterCmd(a),
		newPetitionsCmd(a),
		newAdminCmd(a),
		newFilesCmd(a),
	)

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	return root
}
