package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/preview"
)

func newFilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Download and preview evidence files",
	}
	cmd.AddCommand(newFilesGetCmd(a), newFilesServeCmd(a))
	return cmd
}

func newFilesGetCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Download one evidence file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if out == "" {
				out = filepath.Base(name)
			}

			f, err := os.Create(out)
			if err != nil {
				return apperrors.Storage(err)
			}
			defer f.Close()

			if err := a.client.DownloadFile(cmd.Context(), name, f); err != nil {
				os.Remove(out)
				return err
			}
			cmd.Printf("Saved %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path")
	return cmd
}

// newFilesServeCmd downloads the named evidence files and serves them
// from a loopback preview server until interrupted.
func newFilesServeCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "serve [name...]",
		Short: "Serve downloaded evidence over a local preview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if dir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return apperrors.Storage(err)
				}
				dir = filepath.Join(home, ".grievease", "preview")
			}

			server := preview.NewServer(a.cfg.PreviewAddr(), dir)
			for _, name := range args {
				stored, err := stageRemoteFile(cmd, a, server, name)
				if err != nil {
					return err
				}
				cmd.Printf("Staged %s as %s\n", name, stored)
			}

			cmd.Printf("Serving evidence at http://%s/files\n", a.cfg.PreviewAddr())
			cmd.Println("Press Ctrl-C to stop.")
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "preview directory")
	return cmd
}

func stageRemoteFile(cmd *cobra.Command, a *app, server *preview.Server, name string) (string, error) {
	tmp, err := os.CreateTemp("", "grievease-*")
	if err != nil {
		return "", apperrors.Storage(err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := a.client.DownloadFile(cmd.Context(), name, tmp); err != nil {
		return "", err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return "", apperrors.Storage(err)
	}
	return server.Stage(name, tmp)
}
