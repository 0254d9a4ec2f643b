package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/grievease/petition-client-go/internal/api"
	"github.com/grievease/petition-client-go/internal/config"
	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/jobs"
	"github.com/grievease/petition-client-go/internal/model"
	"github.com/grievease/petition-client-go/internal/sync"
)

func newPetitionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "petitions",
		Short: "Browse, watch, and manage petitions",
	}
	cmd.AddCommand(
		newPetitionsListCmd(a),
		newPetitionsShowCmd(a),
		newPetitionsWatchCmd(a),
		newPetitionsSubmitCmd(a),
		newPetitionsEditCmd(a),
	)
	return cmd
}

func newPetitionsListCmd(a *app) *cobra.Command {
	var (
		mine   bool
		cached bool
		params api.ListParams
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List petitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if cached {
				petitions, err := a.cache.All(ctx)
				if err != nil {
					return apperrors.Storage(err)
				}
				printPetitionTable(cmd, petitions)
				return nil
			}

			var (
				petitions []model.Petition
				err       error
			)
			if mine {
				petitions, err = a.client.MyPetitions(ctx)
			} else {
				petitions, err = a.client.PublicPetitions(ctx, params)
			}
			if err != nil {
				return err
			}

			if err := a.cache.ReplaceAll(ctx, petitions); err != nil {
				log.Warn().Err(err).Msg("failed to refresh petition cache")
			}
			printPetitionTable(cmd, petitions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "only my petitions (requires sign-in)")
	cmd.Flags().BoolVar(&cached, "cached", false, "read the local cache instead of the server")
	cmd.Flags().StringVar(&params.Search, "search", "", "search term")
	cmd.Flags().StringVar(&params.SortBy, "sort", "", "sort order")
	cmd.Flags().IntVar(&params.Skip, "skip", 0, "entries to skip")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "maximum entries")
	return cmd
}

func newPetitionsShowCmd(a *app) *cobra.Command {
	var withUpdates bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one petition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parsePetitionID(args[0])
			if err != nil {
				return err
			}

			petition, err := a.client.Petition(ctx, id)
			if err != nil {
				return err
			}
			if err := a.cache.Upsert(ctx, *petition); err != nil {
				log.Warn().Err(err).Msg("failed to cache petition")
			}
			printPetition(cmd, petition)

			if withUpdates {
				updates, err := a.client.PetitionUpdates(ctx, id)
				if err != nil {
					return err
				}
				cmd.Println("\nUpdates:")
				for _, u := range updates {
					cmd.Printf("  [%s] %s: %s\n", u.CreatedAt, u.Status, u.UpdateText)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withUpdates, "updates", false, "include the status history")
	return cmd
}

// newPetitionsWatchCmd follows the push feeds and re-prints the view on
// every change until interrupted.
func newPetitionsWatchCmd(a *app) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live petition updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			fetch := func(ctx context.Context) ([]model.Petition, error) {
				if mine {
					return a.client.MyPetitions(ctx)
				}
				return a.client.PublicPetitions(ctx, api.ListParams{})
			}

			sources := []sync.UpdateSource{sync.NewBroadcastFeed(a.cfg.WSURL())}
			if mine {
				session := a.auth.Session()
				if session == nil || session.IsAdmin() {
					return apperrors.SessionMissing()
				}
				sources = append(sources, sync.NewUserFeed(a.cfg.WSURL(), session.UserID))
			}

			w := sync.NewWatcher(fetch, sync.ModeList, sources...)
			w.Subscribe(func(view []model.Petition) {
				printPetitionTable(cmd, view)
				cmd.Println("---")
				if err := a.cache.ReplaceAll(ctx, view); err != nil {
					log.Warn().Err(err).Msg("failed to refresh petition cache")
				}
			})

			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			maintenance := jobs.NewMaintenanceJob(a.cache, a.sessions, config.CacheTTL, config.MaintenanceInterval)
			maintenance.Start()
			defer maintenance.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "watch my petitions (requires sign-in)")
	return cmd
}

func newPetitionsSubmitCmd(a *app) *cobra.Command {
	var (
		params api.SubmitParams
		proofs []string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "File a new petition",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.auth.Session() == nil {
				return apperrors.SessionMissing()
			}
			files, err := loadProofFiles(proofs)
			if err != nil {
				return err
			}
			params.Proofs = files

			id, err := a.client.SubmitPetition(cmd.Context(), params)
			if err != nil {
				return err
			}
			cmd.Printf("Petition %d submitted.\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Title, "title", "", "petition title")
	cmd.Flags().StringVar(&params.ShortDescription, "short", "", "one-line summary")
	cmd.Flags().StringVar(&params.Description, "description", "", "full description")
	cmd.Flags().StringVar(&params.Location, "location", "", "location of the grievance")
	cmd.Flags().StringSliceVar(&proofs, "proof", nil, "evidence file (repeatable)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("short")
	cmd.MarkFlagRequired("description")
	return cmd
}

func newPetitionsEditCmd(a *app) *cobra.Command {
	var (
		params api.EditParams
		proofs []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an owned petition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.auth.Session() == nil {
				return apperrors.SessionMissing()
			}
			id, err := parsePetitionID(args[0])
			if err != nil {
				return err
			}
			files, err := loadProofFiles(proofs)
			if err != nil {
				return err
			}
			params.Proofs = files

			if err := a.client.EditPetition(cmd.Context(), id, params); err != nil {
				return err
			}
			cmd.Printf("Petition %d updated.\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Title, "title", "", "petition title")
	cmd.Flags().StringVar(&params.ShortDescription, "short", "", "one-line summary")
	cmd.Flags().StringVar(&params.Description, "description", "", "full description")
	cmd.Flags().StringVar(&params.Location, "location", "", "location of the grievance")
	cmd.Flags().StringSliceVar(&params.ExistingFiles, "keep", nil, "attachment to keep (repeatable)")
	cmd.Flags().StringSliceVar(&params.RemovedFiles, "remove", nil, "attachment to remove (repeatable)")
	cmd.Flags().StringSliceVar(&proofs, "proof", nil, "new evidence file (repeatable)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("short")
	cmd.MarkFlagRequired("description")
	return cmd
}

func parsePetitionID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("petition id", "must be a positive number")
	}
	return id, nil
}

func loadProofFiles(paths []string) ([]api.ProofFile, error) {
	files := make([]api.ProofFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.InvalidInput("proof", fmt.Sprintf("cannot read %s: %v", path, err))
		}
		files = append(files, api.ProofFile{Name: filepath.Base(path), Content: content})
	}
	return files, nil
}

func printPetitionTable(cmd *cobra.Command, petitions []model.Petition) {
	if len(petitions) == 0 {
		cmd.Println("No petitions.")
		return
	}
	cmd.Printf("%-6s %-12s %-10s %-30s %s\n", "ID", "STATUS", "URGENCY", "TITLE", "DEPARTMENT")
	for _, p := range petitions {
		title := p.Title
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		cmd.Printf("%-6d %-12s %-10s %-30s %s\n", p.PetitionID, p.Status, p.UrgencyLevel, title, p.Department)
	}
}

func printPetition(cmd *cobra.Command, p *model.Petition) {
	cmd.Printf("Petition #%d: %s\n", p.PetitionID, p.Title)
	cmd.Printf("Status:     %s\n", p.Status)
	cmd.Printf("Urgency:    %s\n", p.UrgencyLevel)
	cmd.Printf("Category:   %s\n", p.Category)
	cmd.Printf("Department: %s\n", p.Department)
	if p.Location != "" {
		cmd.Printf("Location:   %s\n", p.Location)
	}
	cmd.Printf("Submitted:  %s\n", p.SubmittedAt)
	if p.DueDate != "" {
		cmd.Printf("Due:        %s\n", p.DueDate)
	}
	if p.SignatureCount > 0 {
		cmd.Printf("Signatures: %d\n", p.SignatureCount)
	}
	cmd.Printf("\n%s\n", p.Description)
	if len(p.ProofFiles) > 0 {
		cmd.Println("\nEvidence:")
		for _, f := range p.ProofFiles {
			cmd.Printf("  %s\n", f)
		}
	}
}
