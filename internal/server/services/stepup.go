package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/server/config"
	"github.com/dmitrijs2005/owncent-admin/internal/server/models"
	"github.com/dmitrijs2005/owncent-admin/internal/server/repositories/repomanager"
)

// StepUpService verifies step-up codes and answers freshness checks for
// gated mutations. Freshness is evaluated at decision time against the
// stored verification, inclusive at the window boundary.
type StepUpService struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	cfg *config.Config
	now func() time.Time
}

func NewStepUpService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config) *StepUpService {
	return &StepUpService{db: db, rm: rm, cfg: cfg, now: time.Now}
}

// Verify checks the code and, on success, records the verification. A wrong
// code is a negative result, not an error, and leaves any previous
// verification untouched.
func (s *StepUpService) Verify(ctx context.Context, userID string, action common.StepUpAction, code string) (*api.StepUpResponse, error) {
	if code != s.cfg.StepUpCode {
		return &api.StepUpResponse{Success: false}, nil
	}

	at := s.now().UTC()
	v := &models.StepUpVerification{UserID: userID, Action: action, VerifiedAt: at}
	if err := s.rm.StepUps(s.db).Upsert(ctx, v); err != nil {
		return nil, common.ErrorInternal
	}
	return &api.StepUpResponse{Success: true, VerifiedAt: at}, nil
}

// Fresh reports whether the principal's latest verification is within the
// validity window.
func (s *StepUpService) Fresh(ctx context.Context, userID string) (bool, error) {
	v, err := s.rm.StepUps(s.db).Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.now().Sub(v.VerifiedAt) <= common.StepUpValidityWindow, nil
}

// RequireFresh is Fresh collapsed to the sentinel gated mutations return.
func (s *StepUpService) RequireFresh(ctx context.Context, userID string) error {
	fresh, err := s.Fresh(ctx, userID)
	if err != nil {
		return common.ErrorInternal
	}
	if !fresh {
		return common.ErrStepUpStale
	}
	return nil
}
