package main

import (
	"sort"

	"github.com/spf13/cobra"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/model"
	"github.com/grievease/petition-client-go/internal/service"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Officer operations",
		// Defining PersistentPreRunE here suppresses the root one, so
		// app setup has to be repeated before the role check.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd.Context()); err != nil {
				return err
			}
			session := a.auth.Session()
			if session == nil || !session.IsAdmin() {
				return apperrors.SessionMissing()
			}
			return nil
		},
	}
	cmd.AddCommand(
		newAdminPetitionsCmd(a),
		newAdminSetStatusCmd(a),
		newAdminStatsCmd(a),
	)
	return cmd
}

func newAdminPetitionsCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "petitions",
		Short: "List petitions on the officer surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.PetitionStatus(status)
			if status != "" && !filter.Valid() {
				return apperrors.InvalidInput("status", "unknown status "+status)
			}

			petitions, err := a.client.AdminPetitions(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printPetitionTable(cmd, petitions)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}

// newAdminSetStatusCmd goes through the verification gate: the change
// is committed only when the plausibility check accepts the comment and
// evidence.
func newAdminSetStatusCmd(a *app) *cobra.Command {
	var (
		status  string
		comment string
		proofs  []string
	)

	cmd := &cobra.Command{
		Use:   "set-status <id>",
		Short: "Change a petition's status with a verified comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePetitionID(args[0])
			if err != nil {
				return err
			}
			files, err := loadProofFiles(proofs)
			if err != nil {
				return err
			}

			gate := service.NewStatusUpdateService(a.client)
			verdict, err := gate.VerifyAndCommit(cmd.Context(), id, model.PetitionStatus(status), comment, files)
			if err != nil {
				return err
			}
			cmd.Printf("Petition %d set to %s (confidence %.2f).\n", id, status, verdict.Confidence)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "target status")
	cmd.Flags().StringVar(&comment, "comment", "", "mandatory update comment")
	cmd.Flags().StringSliceVar(&proofs, "proof", nil, "evidence file (repeatable)")
	cmd.MarkFlagRequired("status")
	cmd.MarkFlagRequired("comment")
	return cmd
}

func newAdminStatsCmd(a *app) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard summary counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.client.AdminStatistics(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Println("Petitions:")
			cmd.Printf("  pending:     %d\n", stats.PetitionCounts.Pending)
			cmd.Printf("  in progress: %d\n", stats.PetitionCounts.InProgress)
			cmd.Printf("  resolved:    %d\n", stats.PetitionCounts.Resolved)
			cmd.Printf("  rejected:    %d\n", stats.PetitionCounts.Rejected)
			cmd.Printf("  total:       %d\n", stats.PetitionCounts.Total)
			cmd.Println("Users:")
			cmd.Printf("  citizens: %d\n", stats.UserCounts.TotalUsers)
			cmd.Printf("  officers: %d\n", stats.UserCounts.TotalOfficers)
			cmd.Printf("Recent petitions (7 days): %d\n", stats.RecentActivity.RecentPetitions)

			if !detailed {
				return nil
			}
			analytics, err := a.client.AdminAnalytics(cmd.Context())
			if err != nil {
				return err
			}
			printDistribution(cmd, "By category", analytics.CategoryDistribution)
			printDistribution(cmd, "By department", analytics.DepartmentDistribution)
			printDistribution(cmd, "By status", analytics.StatusDistribution)
			return nil
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "include category/department/status breakdowns")
	return cmd
}

func printDistribution(cmd *cobra.Command, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Println(title + ":")
	for _, k := range keys {
		cmd.Printf("  %-20s %d\n", k, counts[k])
	}
}
