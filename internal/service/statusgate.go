package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/grievease/petition-client-go/internal/api"
	"github.com/grievease/petition-client-go/internal/audit"
	apperrors "github.com/grievease/petition-client-go/internal/errors"
	"github.com/grievease/petition-client-go/internal/model"
)

// AdminAPI is the slice of the REST client the gate drives.
type AdminAPI interface {
	VerifyUpdate(ctx context.Context, id int64, comment string, proofs []api.ProofFile) (*model.Verdict, error)
	UpdateStatus(ctx context.Context, id int64, status model.PetitionStatus, comment string, proofs []api.ProofFile) error
}

// StatusUpdateService gates every admin status change behind the
// server-side plausibility check. The commit endpoint is reached only
// through VerifyAndCommit, so an update the check rejects can never
// land.
type StatusUpdateService struct {
	api AdminAPI
}

func NewStatusUpdateService(a AdminAPI) *StatusUpdateService {
	return &StatusUpdateService{api: a}
}

// VerifyAndCommit runs the plausibility check on the proposed update
// and, when the verdict allows it, immediately commits the same status,
// comment, and evidence. A rejected verdict abandons the update with
// the verdict's reason and suggestions; there is no retry or override.
// Either call failing leaves the petition unchanged.
func (s *StatusUpdateService) VerifyAndCommit(ctx context.Context, id int64, status model.PetitionStatus, comment string, proofs []api.ProofFile) (*model.Verdict, error) {
	if comment == "" {
		return nil, apperrors.MissingRequired("admin comment")
	}
	if !status.Valid() {
		return nil, apperrors.InvalidInput("status", "must be one of "+strings.Join(model.ValidStatuses(), ", "))
	}

	verdict, err := s.api.VerifyUpdate(ctx, id, comment, proofs)
	if err != nil {
		return nil, err
	}

	if !verdict.IsValid {
		log.Info().
			Int64("petitionId", id).
			Float64("confidence", verdict.Confidence).
			Msg("status update rejected by verification")
		audit.Log(audit.Event{
			Type:       audit.EventStatusRejected,
			PetitionID: id,
			Details: map[string]interface{}{
				"status":     string(status),
				"confidence": verdict.Confidence,
			},
		})
		return verdict, apperrors.VerificationRejected(verdict.Reason, verdict.Suggestions)
	}

	if err := s.api.UpdateStatus(ctx, id, status, comment, proofs); err != nil {
		return verdict, err
	}

	log.Info().
		Int64("petitionId", id).
		Str("status", string(status)).
		Float64("confidence", verdict.Confidence).
		Msg("status update committed")
	audit.Log(audit.Event{
		Type:       audit.EventStatusCommit,
		PetitionID: id,
		Details: map[string]interface{}{
			"status":     string(status),
			"confidence": verdict.Confidence,
		},
	})
	return verdict, nil
}
