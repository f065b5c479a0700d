package app

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/core/lock"
	"github.com/example/shiptracker/internal/core/ship"
	"github.com/example/shiptracker/internal/ctxutil"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/ports/secondary"
)

// ShipServiceImpl implements the ShipService interface.
type ShipServiceImpl struct {
	shipRepo     secondary.ShipRepository
	warRepo      secondary.WarRepository
	supplyRepo   secondary.SupplyRepository
	historyRepo  secondary.HistoryRepository
	instanceRepo secondary.InstanceRepository
	auth         authorizer
	run          storeRunner
	newCode      func() string
}

// NewShipService creates a new ShipService with injected dependencies.
func NewShipService(stores Stores, auth authorizer, opts Options) *ShipServiceImpl {
	return &ShipServiceImpl{
		shipRepo:     stores.Ships,
		warRepo:      stores.Wars,
		supplyRepo:   stores.Supplies,
		historyRepo:  stores.History,
		instanceRepo: stores.Instances,
		auth:         auth,
		run:          newStoreRunner(stores.Tx, opts),
		newCode:      newShareCode,
	}
}

// CreateShip creates a ship in (guild, war).
func (s *ShipServiceImpl) CreateShip(ctx context.Context, req primary.CreateShipRequest) (*primary.ShipResult, error) {
	if err := requireAuthorized(ctx, s.auth, req.GuildID, nil); err != nil {
		return nil, err
	}
	name, res := ship.NormalizeName(req.Name)
	if err := res.Error(); err != nil {
		return nil, err
	}
	defaults, err := normalizeDefaults(req.Defaults)
	if err != nil {
		return nil, err
	}

	var created *secondary.ShipRecord
	opID, err := s.run.write(ctx, "ship.create", func(ctx context.Context) error {
		guard := ship.CreateShipContext{GuildID: req.GuildID, WarID: req.WarID, Name: name}
		w, err := s.warRepo.GetByID(ctx, req.WarID)
		switch {
		case err == nil:
			guard.WarExists = true
			guard.WarEnded = w.EndedAt != 0
		case !isNotFound(err):
			return err
		}
		if guard.WarExists {
			if guard.NameTaken, err = s.shipRepo.NameExists(ctx, req.GuildID, req.WarID, name); err != nil {
				return err
			}
		}
		if err := ship.CanCreateShip(guard).Error(); err != nil {
			return err
		}

		now := s.run.micros()
		created = &secondary.ShipRecord{
			GuildID:   req.GuildID,
			WarID:     req.WarID,
			Name:      name,
			Status:    string(ship.StatusParked),
			CreatedAt: now,
			UpdatedAt: now,
		}
		for _, v := range defaults {
			setFieldValue(created, v)
		}
		return s.shipRepo.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	out := s.recordToShip(created)
	return &primary.ShipResult{
		Ship:    out,
		Changed: []*primary.Ship{out},
		Fanout:  []*primary.Instance{},
		OpID:    opID,
	}, nil
}

// GetShip retrieves a ship by id.
func (s *ShipServiceImpl) GetShip(ctx context.Context, shipID int64) (*primary.Ship, error) {
	var record *secondary.ShipRecord
	err := s.run.read(ctx, "ship.get", func(ctx context.Context) error {
		var err error
		record, err = s.shipRepo.GetByID(ctx, shipID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.recordToShip(record), nil
}

// GetShipByName retrieves a ship by its scoped name.
func (s *ShipServiceImpl) GetShipByName(ctx context.Context, guildID, warID int64, name string) (*primary.Ship, error) {
	var record *secondary.ShipRecord
	err := s.run.read(ctx, "ship.get_by_name", func(ctx context.Context) error {
		var err error
		record, err = s.shipRepo.GetByName(ctx, guildID, warID, strings.TrimSpace(name))
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.recordToShip(record), nil
}

// ListShips retrieves ships matching the given filters.
func (s *ShipServiceImpl) ListShips(ctx context.Context, filters primary.ShipFilters) ([]*primary.Ship, error) {
	if filters.Status != "" {
		st, ok := ship.ParseStatus(filters.Status)
		if !ok {
			return nil, apperr.New(apperr.Validation, "invalid status filter %q", filters.Status)
		}
		filters.Status = string(st)
	}

	var records []*secondary.ShipRecord
	err := s.run.read(ctx, "ship.list", func(ctx context.Context) error {
		var err error
		records, err = s.shipRepo.List(ctx, secondary.ShipFilters{
			GuildID:      filters.GuildID,
			WarID:        filters.WarID,
			Status:       filters.Status,
			NameContains: strings.TrimSpace(filters.NameContains),
			ExcludeDead:  filters.ExcludeDead,
			Limit:        filters.Limit,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ships := make([]*primary.Ship, len(records))
	for i, r := range records {
		ships[i] = s.recordToShip(r)
	}
	return ships, nil
}

// UpdateShipField sets one field across the ship's link group.
func (s *ShipServiceImpl) UpdateShipField(ctx context.Context, req primary.UpdateShipFieldRequest) (*primary.ShipResult, error) {
	v, err := normalizeChange(req.Field, req.Value)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, "ship.update", req.ShipID, func(context.Context, *secondary.ShipRecord) ([]ship.Value, error) {
		return []ship.Value{v}, nil
	})
}

// EditShipFields sets several fields in one transaction.
func (s *ShipServiceImpl) EditShipFields(ctx context.Context, req primary.EditShipFieldsRequest) (*primary.ShipResult, error) {
	if len(req.Changes) == 0 {
		return nil, apperr.New(apperr.Validation, "no field changes given")
	}
	values := make([]ship.Value, 0, len(req.Changes))
	for _, c := range req.Changes {
		v, err := normalizeChange(c.Field, c.Value)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return s.mutate(ctx, "ship.edit", req.ShipID, func(context.Context, *secondary.ShipRecord) ([]ship.Value, error) {
		return values, nil
	})
}

// StartRepairs moves a ship into drydock.
func (s *ShipServiceImpl) StartRepairs(ctx context.Context, shipID int64, drydock string) (*primary.ShipResult, error) {
	return s.applyLifecycle(ctx, "ship.start_repairs", shipID, ship.StartRepairs(drydock))
}

// FinishRepairs parks a repaired ship with its damage reset.
func (s *ShipServiceImpl) FinishRepairs(ctx context.Context, shipID int64, parkedAt, notes string) (*primary.ShipResult, error) {
	return s.applyLifecycle(ctx, "ship.finish_repairs", shipID, ship.FinishRepairs(parkedAt, notes))
}

// Depart deploys a ship.
func (s *ShipServiceImpl) Depart(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	return s.applyLifecycle(ctx, "ship.depart", shipID, ship.Depart())
}

// ReturnToPort parks a ship, recording where it is and its damage.
func (s *ShipServiceImpl) ReturnToPort(ctx context.Context, req primary.ReturnToPortRequest) (*primary.ShipResult, error) {
	return s.applyLifecycle(ctx, "ship.return", req.ShipID, ship.ReturnToPort(req.Where, req.Damage, req.Notes))
}

// MarkDead records the loss of a ship.
func (s *ShipServiceImpl) MarkDead(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	return s.applyLifecycle(ctx, "ship.mark_dead", shipID, ship.MarkDead())
}

// LockSquad locks the squad for d (0 = default duration).
func (s *ShipServiceImpl) LockSquad(ctx context.Context, shipID int64, d time.Duration) (*primary.ShipResult, error) {
	expiry, err := lock.Acquire(s.run.now(), d)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, err, "invalid squad lock")
	}
	return s.mutate(ctx, "ship.lock_squad", shipID, func(context.Context, *secondary.ShipRecord) ([]ship.Value, error) {
		return []ship.Value{{Field: ship.FieldSquadLockUntil, Stored: expiry}}, nil
	})
}

// ClearSquadLock releases the squad lock.
func (s *ShipServiceImpl) ClearSquadLock(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	return s.mutate(ctx, "ship.clear_squad_lock", shipID, func(context.Context, *secondary.ShipRecord) ([]ship.Value, error) {
		return []ship.Value{{Field: ship.FieldSquadLockUntil, Stored: lock.Release()}}, nil
	})
}

// LinkShip makes shipID a copy in rootID's link group. The principal needs
// rights on both ships, since later edits propagate across the group.
func (s *ShipServiceImpl) LinkShip(ctx context.Context, shipID, rootID int64) (*primary.ShipResult, error) {
	if shipID != rootID {
		if _, err := authorizeShip(ctx, s.run, s.shipRepo, s.auth, rootID); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, "ship.link", shipID, func(ctx context.Context, target *secondary.ShipRecord) ([]ship.Value, error) {
		guard := ship.LinkShipContext{
			ShipID:        shipID,
			RootID:        rootID,
			AlreadyLinked: target.LinkRootID != 0,
		}
		root, err := s.shipRepo.GetByID(ctx, rootID)
		switch {
		case err == nil:
			guard.RootExists = true
			guard.RootID = rootOf(root)
		case !isNotFound(err):
			return nil, err
		}
		if guard.RootExists {
			group, err := s.shipRepo.LinkGroup(ctx, shipID)
			if err != nil {
				return nil, err
			}
			guard.HasCopies = len(group) > 1
		}
		if err := ship.CanLinkShip(guard).Error(); err != nil {
			return nil, err
		}
		return []ship.Value{{Field: ship.FieldLinkRootID, Stored: guard.RootID}}, nil
	})
}

// DeleteShip always fails: ships are archive-only.
func (s *ShipServiceImpl) DeleteShip(ctx context.Context, shipID int64) error {
	return ship.CanDeleteShip(shipID).Error()
}

// AdjustSupply applies a signed delta to a resource quantity.
func (s *ShipServiceImpl) AdjustSupply(ctx context.Context, req primary.AdjustSupplyRequest) (*primary.SupplyResult, error) {
	return s.changeSupply(ctx, "supply.adjust", req.ShipID, req.Resource, func(int64) int64 {
		return req.Delta
	})
}

// SetSupply sets an absolute resource quantity.
func (s *ShipServiceImpl) SetSupply(ctx context.Context, req primary.SetSupplyRequest) (*primary.SupplyResult, error) {
	if req.Quantity < 0 {
		return nil, apperr.New(apperr.Validation, "supply quantity cannot be negative, got %d", req.Quantity)
	}
	return s.changeSupply(ctx, "supply.set", req.ShipID, req.Resource, func(current int64) int64 {
		return req.Quantity - current
	})
}

// ListSupplies retrieves a ship's supplies.
func (s *ShipServiceImpl) ListSupplies(ctx context.Context, shipID int64) ([]*primary.Supply, error) {
	var records []*secondary.SupplyRecord
	err := s.run.read(ctx, "supply.list", func(ctx context.Context) error {
		if _, err := s.shipRepo.GetByID(ctx, shipID); err != nil {
			return err
		}
		var err error
		records, err = s.supplyRepo.List(ctx, shipID)
		return err
	})
	if err != nil {
		return nil, err
	}

	supplies := make([]*primary.Supply, len(records))
	for i, r := range records {
		supplies[i] = recordToSupply(r)
	}
	return supplies, nil
}

// GenerateShareCode stores a fresh one-time share code on the ship.
func (s *ShipServiceImpl) GenerateShareCode(ctx context.Context, shipID int64) (*primary.ShareCodeResult, error) {
	var code string
	result, err := s.mutate(ctx, "share.generate", shipID, func(ctx context.Context, _ *secondary.ShipRecord) ([]ship.Value, error) {
		var err error
		code, err = s.freeShareCode(ctx)
		if err != nil {
			return nil, err
		}
		return []ship.Value{{Field: ship.FieldShareCode, Stored: code}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &primary.ShareCodeResult{Code: code, Ship: result.Ship}, nil
}

// RedeemShareCode consumes a share code and registers a view of the shared
// ship in the redeeming guild. The code is cleared and the view registered
// in the same transaction.
func (s *ShipServiceImpl) RedeemShareCode(ctx context.Context, req primary.RedeemShareCodeRequest) (*primary.RedeemShareCodeResult, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !ship.ShareCodePattern.MatchString(code) {
		return nil, apperr.New(apperr.Validation, "invalid share code %q", req.Code)
	}
	if err := requireAuthorized(ctx, s.auth, req.GuildID, nil); err != nil {
		return nil, err
	}

	var result primary.RedeemShareCodeResult
	var originID int64
	_, err := s.run.write(ctx, "share.redeem", func(ctx context.Context) error {
		origin, err := s.shipRepo.GetByShareCode(ctx, code)
		if isNotFound(err) {
			return apperr.New(apperr.NotFound, "share code %s is invalid or already used", code)
		}
		if err != nil {
			return err
		}
		originID = origin.ID

		consumed, err := s.apply(ctx, origin, []ship.Value{{Field: ship.FieldShareCode}})
		if err != nil {
			return err
		}
		view, _, err := registerInstance(ctx, s.shipRepo, s.instanceRepo, primary.RegisterInstanceRequest{
			ShipID:    origin.ID,
			GuildID:   req.GuildID,
			ChannelID: req.ChannelID,
			MessageID: req.MessageID,
		}, s.run.micros())
		if err != nil {
			return err
		}
		views, err := fanout(ctx, s.shipRepo, s.instanceRepo, origin)
		if err != nil {
			return err
		}

		result.Ship = consumed.Ship
		result.Instance = recordToInstance(view)
		result.Fanout = recordsToInstances(views)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.auth != nil {
		s.auth.InvalidateShip(originID)
	}
	return &result, nil
}

// Helper methods

// mutate authorizes the principal on shipID, then in one transaction builds
// the values to store from the current row and applies them.
func (s *ShipServiceImpl) mutate(ctx context.Context, op string, shipID int64,
	build func(ctx context.Context, target *secondary.ShipRecord) ([]ship.Value, error)) (*primary.ShipResult, error) {

	if _, err := authorizeShip(ctx, s.run, s.shipRepo, s.auth, shipID); err != nil {
		return nil, err
	}

	var result *primary.ShipResult
	opID, err := s.run.write(ctx, op, func(ctx context.Context) error {
		target, err := s.shipRepo.GetByID(ctx, shipID)
		if err != nil {
			return err
		}
		values, err := build(ctx, target)
		if err != nil {
			return err
		}
		result, err = s.apply(ctx, target, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.OpID = opID
	return result, nil
}

// apply stores values on target's link group inside the current transaction.
// Per-copy fields only touch target. Every stored value gets its own audit
// row carrying the transaction's op id.
func (s *ShipServiceImpl) apply(ctx context.Context, target *secondary.ShipRecord, values []ship.Value) (*primary.ShipResult, error) {
	group, err := s.shipRepo.LinkGroup(ctx, rootOf(target))
	if err != nil {
		return nil, err
	}
	self := target
	for _, g := range group {
		if g.ID == target.ID {
			self = g
		}
	}

	now := s.run.micros()
	actor := ctxutil.ActorFromContext(ctx)
	opID := ctxutil.OpIDFromContext(ctx)
	changed := make(map[int64]bool)

	for _, v := range values {
		targets := group
		if v.Field.PerCopy() {
			targets = []*secondary.ShipRecord{self}
		}
		for _, rec := range targets {
			old := fieldValue(rec, v.Field)
			updatedAt, err := s.shipRepo.SetField(ctx, rec.ID, string(v.Field), v.Stored, now)
			if err != nil {
				return nil, err
			}
			setFieldValue(rec, v)
			rec.UpdatedAt = updatedAt

			if err := s.historyRepo.AppendUpdate(ctx, &secondary.HistoryRecord{
				ShipID:    rec.ID,
				UserID:    actor,
				Field:     string(v.Field),
				OldValue:  old,
				NewValue:  v.Display(),
				OpID:      opID,
				CreatedAt: now,
			}); err != nil {
				return nil, err
			}
			changed[rec.ID] = true
		}
	}

	views, err := fanout(ctx, s.shipRepo, s.instanceRepo, self)
	if err != nil {
		return nil, err
	}

	result := &primary.ShipResult{
		Ship:   s.recordToShip(self),
		Fanout: recordsToInstances(views),
	}
	for _, g := range group {
		if changed[g.ID] {
			result.Changed = append(result.Changed, s.recordToShip(g))
		}
	}
	return result, nil
}

func (s *ShipServiceImpl) applyLifecycle(ctx context.Context, op string, shipID int64, changes []ship.Change) (*primary.ShipResult, error) {
	values := make([]ship.Value, 0, len(changes))
	for _, c := range changes {
		v, res := ship.Normalize(c.Field, c.Raw)
		if err := res.Error(); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return s.mutate(ctx, op, shipID, func(context.Context, *secondary.ShipRecord) ([]ship.Value, error) {
		return values, nil
	})
}

// changeSupply applies delta(current) to one resource and audits it.
func (s *ShipServiceImpl) changeSupply(ctx context.Context, op string, shipID int64, resource string,
	delta func(current int64) int64) (*primary.SupplyResult, error) {

	resource = strings.TrimSpace(resource)
	if err := ship.CheckLength("resource name", resource, ship.MaxNameLength).Error(); err != nil {
		return nil, err
	}
	if _, err := authorizeShip(ctx, s.run, s.shipRepo, s.auth, shipID); err != nil {
		return nil, err
	}

	var result primary.SupplyResult
	_, err := s.run.write(ctx, op, func(ctx context.Context) error {
		var current int64
		row, err := s.supplyRepo.Get(ctx, shipID, resource)
		if err != nil {
			return err
		}
		if row != nil {
			current = row.Quantity
		}

		d := delta(current)
		next, res := ship.CanAdjustSupply(ship.SupplyContext{ShipID: shipID, Resource: resource, Current: current, Delta: d})
		if err := res.Error(); err != nil {
			return err
		}

		now := s.run.micros()
		record := &secondary.SupplyRecord{ShipID: shipID, Resource: resource, Quantity: next, UpdatedAt: now}
		if err := s.supplyRepo.Upsert(ctx, record); err != nil {
			return err
		}
		if err := s.historyRepo.AppendSupplyChange(ctx, &secondary.HistoryRecord{
			ShipID:        shipID,
			UserID:        ctxutil.ActorFromContext(ctx),
			Resource:      resource,
			Delta:         d,
			QuantityAfter: next,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		views, err := s.instanceRepo.ListByShips(ctx, []int64{shipID})
		if err != nil {
			return err
		}
		result.Supply = recordToSupply(record)
		result.Fanout = recordsToInstances(views)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// freeShareCode draws codes until one is not held by any ship.
func (s *ShipServiceImpl) freeShareCode(ctx context.Context) (string, error) {
	for range shareCodeAttempts {
		code := s.newCode()
		_, err := s.shipRepo.GetByShareCode(ctx, code)
		if isNotFound(err) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", apperr.New(apperr.StoreUnavailable, "no free share code after %d attempts", shareCodeAttempts)
}

func (s *ShipServiceImpl) recordToShip(r *secondary.ShipRecord) *primary.Ship {
	return &primary.Ship{
		ID:             r.ID,
		GuildID:        r.GuildID,
		WarID:          r.WarID,
		Type:           r.Type,
		Name:           r.Name,
		Status:         r.Status,
		Damage:         r.Damage,
		Location:       r.Location,
		HomePort:       r.HomePort,
		Notes:          r.Notes,
		Keys:           r.Keys,
		ImageURL:       r.ImageURL,
		Regiment:       r.Regiment,
		ShareCode:      r.ShareCode,
		LinkRootID:     r.LinkRootID,
		SquadLockUntil: r.SquadLockUntil,
		SquadLocked:    lock.StateAt(r.SquadLockUntil, s.run.now()) == lock.Locked,
		CreatedAt:      microsToTime(r.CreatedAt),
		UpdatedAt:      microsToTime(r.UpdatedAt),
	}
}

func recordToSupply(r *secondary.SupplyRecord) *primary.Supply {
	return &primary.Supply{
		ShipID:    r.ShipID,
		Resource:  r.Resource,
		Quantity:  r.Quantity,
		UpdatedAt: microsToTime(r.UpdatedAt),
	}
}

func normalizeChange(field, raw string) (ship.Value, error) {
	f, res := ship.LookupField(field)
	if err := res.Error(); err != nil {
		return ship.Value{}, err
	}
	v, res := ship.Normalize(f, raw)
	if err := res.Error(); err != nil {
		return ship.Value{}, err
	}
	return v, nil
}

// normalizeDefaults normalizes creation defaults in field-name order.
func normalizeDefaults(defaults map[string]string) ([]ship.Value, error) {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]ship.Value, 0, len(names))
	for _, name := range names {
		v, err := normalizeChange(name, defaults[name])
		if err != nil {
			return nil, err
		}
		if v.Field == ship.FieldName {
			return nil, apperr.New(apperr.Validation, "name cannot be given as a default")
		}
		values = append(values, v)
	}
	return values, nil
}

// fieldValue renders a record's current value the way audit rows store it.
func fieldValue(r *secondary.ShipRecord, f ship.Field) string {
	switch f {
	case ship.FieldType:
		return r.Type
	case ship.FieldName:
		return r.Name
	case ship.FieldStatus:
		return r.Status
	case ship.FieldDamage:
		return strconv.FormatInt(r.Damage, 10)
	case ship.FieldLocation:
		return r.Location
	case ship.FieldHomePort:
		return r.HomePort
	case ship.FieldNotes:
		return r.Notes
	case ship.FieldKeys:
		return r.Keys
	case ship.FieldImageURL:
		return r.ImageURL
	case ship.FieldRegiment:
		return r.Regiment
	case ship.FieldShareCode:
		return r.ShareCode
	case ship.FieldSquadLockUntil:
		return strconv.FormatInt(r.SquadLockUntil, 10)
	case ship.FieldLinkRootID:
		if r.LinkRootID == 0 {
			return ""
		}
		return strconv.FormatInt(r.LinkRootID, 10)
	}
	return ""
}

// setFieldValue mirrors a stored value onto the in-memory record.
func setFieldValue(r *secondary.ShipRecord, v ship.Value) {
	str, _ := v.Stored.(string)
	num, _ := v.Stored.(int64)
	switch v.Field {
	case ship.FieldType:
		r.Type = str
	case ship.FieldName:
		r.Name = str
	case ship.FieldStatus:
		r.Status = str
	case ship.FieldDamage:
		r.Damage = num
	case ship.FieldLocation:
		r.Location = str
	case ship.FieldHomePort:
		r.HomePort = str
	case ship.FieldNotes:
		r.Notes = str
	case ship.FieldKeys:
		r.Keys = str
	case ship.FieldImageURL:
		r.ImageURL = str
	case ship.FieldRegiment:
		r.Regiment = str
	case ship.FieldShareCode:
		r.ShareCode = str
	case ship.FieldSquadLockUntil:
		r.SquadLockUntil = num
	case ship.FieldLinkRootID:
		r.LinkRootID = num
	}
}

// Ensure ShipServiceImpl implements the interface.
var _ primary.ShipService = (*ShipServiceImpl)(nil)
