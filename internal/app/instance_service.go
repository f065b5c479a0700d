package app

import (
	"context"

	"github.com/example/shiptracker/internal/core/instance"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/ports/secondary"
)

// InstanceServiceImpl implements the InstanceService interface.
type InstanceServiceImpl struct {
	shipRepo     secondary.ShipRepository
	instanceRepo secondary.InstanceRepository
	auth         authorizer
	run          storeRunner
}

// NewInstanceService creates a new InstanceService with injected dependencies.
func NewInstanceService(stores Stores, auth authorizer, opts Options) *InstanceServiceImpl {
	return &InstanceServiceImpl{
		shipRepo:     stores.Ships,
		instanceRepo: stores.Instances,
		auth:         auth,
		run:          newStoreRunner(stores.Tx, opts),
	}
}

// RegisterInstance binds a (guild, channel, message) to a ship.
// Registering requires rights on the ship itself; a guild gains a view of a
// foreign ship only by redeeming its share code.
func (s *InstanceServiceImpl) RegisterInstance(ctx context.Context, req primary.RegisterInstanceRequest) (*primary.RegisterInstanceResponse, error) {
	if _, err := authorizeShip(ctx, s.run, s.shipRepo, s.auth, req.ShipID); err != nil {
		return nil, err
	}

	var record *secondary.InstanceRecord
	var created bool
	_, err := s.run.write(ctx, "instance.register", func(ctx context.Context) error {
		var err error
		record, created, err = registerInstance(ctx, s.shipRepo, s.instanceRepo, req, s.run.micros())
		return err
	})
	if err != nil {
		return nil, err
	}
	if created && s.auth != nil {
		s.auth.InvalidateShip(req.ShipID)
	}

	return &primary.RegisterInstanceResponse{
		Instance: recordToInstance(record),
		Created:  created,
	}, nil
}

// ListInstances retrieves the views of one ship.
func (s *InstanceServiceImpl) ListInstances(ctx context.Context, shipID int64) ([]*primary.Instance, error) {
	var records []*secondary.InstanceRecord
	err := s.run.read(ctx, "instance.list", func(ctx context.Context) error {
		if _, err := s.shipRepo.GetByID(ctx, shipID); err != nil {
			return err
		}
		var err error
		records, err = s.instanceRepo.ListByShips(ctx, []int64{shipID})
		return err
	})
	if err != nil {
		return nil, err
	}
	return recordsToInstances(records), nil
}

// ListFanout retrieves the views of every ship in the ship's link group.
func (s *InstanceServiceImpl) ListFanout(ctx context.Context, shipID int64) ([]*primary.Instance, error) {
	var records []*secondary.InstanceRecord
	err := s.run.read(ctx, "instance.fanout", func(ctx context.Context) error {
		ship, err := s.shipRepo.GetByID(ctx, shipID)
		if err != nil {
			return err
		}
		records, err = fanout(ctx, s.shipRepo, s.instanceRepo, ship)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recordsToInstances(records), nil
}

// registerInstance applies the registration rules inside the caller's
// transaction. created is false when the triple was already bound to the
// same ship.
func registerInstance(ctx context.Context, ships secondary.ShipRepository, instances secondary.InstanceRepository,
	req primary.RegisterInstanceRequest, at int64) (record *secondary.InstanceRecord, created bool, err error) {

	guard := instance.RegisterContext{
		ShipID:     req.ShipID,
		GuildID:    req.GuildID,
		ChannelID:  req.ChannelID,
		MessageID:  req.MessageID,
		IsOriginal: req.IsOriginal,
	}

	if _, err := ships.GetByID(ctx, req.ShipID); err == nil {
		guard.ShipExists = true
	} else if !isNotFound(err) {
		return nil, false, err
	}

	bound, err := instances.GetByTriple(ctx, req.GuildID, req.ChannelID, req.MessageID)
	if err != nil {
		return nil, false, err
	}
	if bound != nil {
		guard.BoundShipID = bound.ShipID
		guard.BoundIsOriginal = bound.IsOriginal
	}
	if req.IsOriginal {
		if guard.HasOriginal, err = instances.HasOriginal(ctx, req.ShipID); err != nil {
			return nil, false, err
		}
	}

	action, res := instance.CanRegister(guard)
	if err := res.Error(); err != nil {
		return nil, false, err
	}
	if action == instance.ActionReuse {
		return bound, false, nil
	}

	record = &secondary.InstanceRecord{
		ShipID:     req.ShipID,
		GuildID:    req.GuildID,
		ChannelID:  req.ChannelID,
		MessageID:  req.MessageID,
		IsOriginal: req.IsOriginal,
		CreatedAt:  at,
	}
	if err := instances.Create(ctx, record); err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// fanout lists the views of every ship in ship's link group.
func fanout(ctx context.Context, ships secondary.ShipRepository, instances secondary.InstanceRepository,
	ship *secondary.ShipRecord) ([]*secondary.InstanceRecord, error) {

	group, err := ships.LinkGroup(ctx, rootOf(ship))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(group))
	for i, g := range group {
		ids[i] = g.ID
	}
	return instances.ListByShips(ctx, ids)
}

func rootOf(ship *secondary.ShipRecord) int64 {
	if ship.LinkRootID != 0 {
		return ship.LinkRootID
	}
	return ship.ID
}

func recordToInstance(r *secondary.InstanceRecord) *primary.Instance {
	return &primary.Instance{
		ID:         r.ID,
		ShipID:     r.ShipID,
		GuildID:    r.GuildID,
		ChannelID:  r.ChannelID,
		MessageID:  r.MessageID,
		IsOriginal: r.IsOriginal,
		CreatedAt:  microsToTime(r.CreatedAt),
	}
}

func recordsToInstances(records []*secondary.InstanceRecord) []*primary.Instance {
	out := make([]*primary.Instance, len(records))
	for i, r := range records {
		out[i] = recordToInstance(r)
	}
	return out
}

// Ensure InstanceServiceImpl implements the interface.
var _ primary.InstanceService = (*InstanceServiceImpl)(nil)
