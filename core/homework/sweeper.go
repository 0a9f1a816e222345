package homework

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
)

// Sweeper moves unsubmitted homeworks whose due timestamp has passed to StatusLate.
// It is the only writer of StatusLate.
type Sweeper struct {
	repo   Repository
	logger core.Logger
	loc    *time.Location

	// Strict stops a sweep at the first malformed due timestamp
	// instead of skipping the row and sweeping the rest.
	Strict bool

	nowFunc func() time.Time // mockable
}

// SweepResult tallies one sweep tick.
type SweepResult struct {
	Checked    int
	MarkedLate int
	Malformed  int
}

func NewSweeper(repo Repository, logger core.Logger, loc *time.Location) *Sweeper {
	return &Sweeper{
		repo:    repo,
		logger:  logger,
		loc:     loc,
		nowFunc: time.Now,
	}
}

// Sweep runs one tick.
// Every row is checked and swapped on its own, so a malformed row or a concurrent
// status change does not affect the others.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.nowFunc().In(s.loc)

	unsubmitted := StatusUnsubmitted
	homeworks, err := s.repo.QueryHomeworks(ctx, QueryFilter{Status: &unsubmitted}, nil)
	if err != nil {
		return res, errors.Wrap(err, "querying unsubmitted homeworks")
	}

	for _, hw := range homeworks {
		res.Checked++
		passed, err := hw.Due.PassedAt(now)
		if err != nil {
			res.Malformed++
			if s.Strict {
				return res, errors.Wrapf(err, "homework %d", hw.ID)
			}
			s.logger.Warn("skipping homework with malformed due timestamp", err, map[string]interface{}{"homework_id": hw.ID})
			continue
		}
		if !passed {
			continue
		}
		swapped, err := s.repo.SwapStatus(ctx, hw.ID, StatusUnsubmitted, StatusLate)
		if err != nil {
			return res, errors.Wrapf(err, "marking homework %d late", hw.ID)
		}
		if swapped {
			res.MarkedLate++
		}
	}
	return res, nil
}
