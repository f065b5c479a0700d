package app

import (
	"context"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/core/war"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/ports/secondary"
)

// WarServiceImpl implements the WarService interface.
type WarServiceImpl struct {
	warRepo secondary.WarRepository
	run     storeRunner
}

// NewWarService creates a new WarService with injected dependencies.
func NewWarService(stores Stores, opts Options) *WarServiceImpl {
	return &WarServiceImpl{
		warRepo: stores.Wars,
		run:     newStoreRunner(stores.Tx, opts),
	}
}

// CreateWar creates a war with the given global id.
func (s *WarServiceImpl) CreateWar(ctx context.Context, warID int64) (*primary.War, error) {
	if err := requireSystem(ctx, "create wars"); err != nil {
		return nil, err
	}

	var created *secondary.WarRecord
	_, err := s.run.write(ctx, "war.create", func(ctx context.Context) error {
		exists, err := s.exists(ctx, warID)
		if err != nil {
			return err
		}
		if err := war.CanCreateWar(war.CreateWarContext{WarID: warID, Exists: exists}).Error(); err != nil {
			return err
		}
		created = &secondary.WarRecord{ID: warID, StartedAt: s.run.micros()}
		return s.warRepo.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	return recordToWar(created), nil
}

// EnsureWar creates the war if it does not exist yet.
func (s *WarServiceImpl) EnsureWar(ctx context.Context, warID int64) (*primary.EnsureWarResponse, error) {
	var resp primary.EnsureWarResponse
	_, err := s.run.write(ctx, "war.ensure", func(ctx context.Context) error {
		existing, err := s.warRepo.GetByID(ctx, warID)
		if err == nil {
			resp.War = recordToWar(existing)
			return nil
		}
		if !apperr.IsCode(err, apperr.NotFound) {
			return err
		}
		if err := war.CanCreateWar(war.CreateWarContext{WarID: warID}).Error(); err != nil {
			return err
		}
		record := &secondary.WarRecord{ID: warID, StartedAt: s.run.micros()}
		if err := s.warRepo.Create(ctx, record); err != nil {
			return err
		}
		resp.War = recordToWar(record)
		resp.Created = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// EndWar closes a war. A war ends exactly once.
func (s *WarServiceImpl) EndWar(ctx context.Context, warID int64) (*primary.War, error) {
	if err := requireSystem(ctx, "end wars"); err != nil {
		return nil, err
	}

	var ended *secondary.WarRecord
	_, err := s.run.write(ctx, "war.end", func(ctx context.Context) error {
		record, err := s.warRepo.GetByID(ctx, warID)
		if err != nil && !apperr.IsCode(err, apperr.NotFound) {
			return err
		}
		guard := war.EndWarContext{WarID: warID, Exists: record != nil}
		if record != nil {
			guard.Ended = record.EndedAt != 0
		}
		if err := war.CanEndWar(guard).Error(); err != nil {
			return err
		}

		at := s.run.micros()
		if err := s.warRepo.End(ctx, warID, at); err != nil {
			return err
		}
		record.EndedAt = at
		ended = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordToWar(ended), nil
}

// GetWar retrieves a war by id.
func (s *WarServiceImpl) GetWar(ctx context.Context, warID int64) (*primary.War, error) {
	var record *secondary.WarRecord
	err := s.run.read(ctx, "war.get", func(ctx context.Context) error {
		var err error
		record, err = s.warRepo.GetByID(ctx, warID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recordToWar(record), nil
}

// ListWars retrieves all wars, newest first.
func (s *WarServiceImpl) ListWars(ctx context.Context) ([]*primary.War, error) {
	var records []*secondary.WarRecord
	err := s.run.read(ctx, "war.list", func(ctx context.Context) error {
		var err error
		records, err = s.warRepo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	wars := make([]*primary.War, len(records))
	for i, r := range records {
		wars[i] = recordToWar(r)
	}
	return wars, nil
}

// DeleteWar always fails: wars are archive-only.
func (s *WarServiceImpl) DeleteWar(ctx context.Context, warID int64) error {
	return war.CanDeleteWar(warID).Error()
}

// Helper methods

func (s *WarServiceImpl) exists(ctx context.Context, warID int64) (bool, error) {
	_, err := s.warRepo.GetByID(ctx, warID)
	if err == nil {
		return true, nil
	}
	if apperr.IsCode(err, apperr.NotFound) {
		return false, nil
	}
	return false, err
}

func recordToWar(r *secondary.WarRecord) *primary.War {
	w := &primary.War{
		ID:        r.ID,
		StartedAt: microsToTime(r.StartedAt),
	}
	if r.EndedAt != 0 {
		ended := microsToTime(r.EndedAt)
		w.EndedAt = &ended
	}
	return w
}

// Ensure WarServiceImpl implements the interface.
var _ primary.WarService = (*WarServiceImpl)(nil)
