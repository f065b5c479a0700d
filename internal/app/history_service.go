package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/core/ship"
	"github.com/example/shiptracker/internal/ctxutil"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/ports/secondary"
)

const (
	// DefaultHistoryLimit is the page size when a query gives none.
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps the page size.
	MaxHistoryLimit = 100
)

// HistoryServiceImpl implements the HistoryService interface.
type HistoryServiceImpl struct {
	shipRepo    secondary.ShipRepository
	historyRepo secondary.HistoryRepository
	auth        authorizer
	run         storeRunner
}

// NewHistoryService creates a new HistoryService with injected dependencies.
func NewHistoryService(stores Stores, auth authorizer, opts Options) *HistoryServiceImpl {
	return &HistoryServiceImpl{
		shipRepo:    stores.Ships,
		historyRepo: stores.History,
		auth:        auth,
		run:         newStoreRunner(stores.Tx, opts),
	}
}

// RecordKill appends a kill report.
func (s *HistoryServiceImpl) RecordKill(ctx context.Context, shipID int64, text string) (*primary.HistoryEntry, error) {
	result, err := s.LogAction(ctx, primary.LogActionRequest{ShipID: shipID, Kills: text})
	if err != nil {
		return nil, err
	}
	return result.Kill, nil
}

// RecordOp appends an op debrief.
func (s *HistoryServiceImpl) RecordOp(ctx context.Context, shipID int64, text string) (*primary.HistoryEntry, error) {
	result, err := s.LogAction(ctx, primary.LogActionRequest{ShipID: shipID, Debrief: text})
	if err != nil {
		return nil, err
	}
	return result.Op, nil
}

// LogAction appends a kill report and/or a debrief; blank parts are skipped.
func (s *HistoryServiceImpl) LogAction(ctx context.Context, req primary.LogActionRequest) (*primary.LogActionResult, error) {
	kills, err := normalizeReport("kill report", req.Kills)
	if err != nil {
		return nil, err
	}
	debrief, err := normalizeReport("debrief", req.Debrief)
	if err != nil {
		return nil, err
	}
	if kills == "" && debrief == "" {
		return nil, apperr.New(apperr.Validation, "nothing to log: kill report and debrief are both empty")
	}
	if _, err := authorizeShip(ctx, s.run, s.shipRepo, s.auth, req.ShipID); err != nil {
		return nil, err
	}

	var result primary.LogActionResult
	_, err = s.run.write(ctx, "history.log_action", func(ctx context.Context) error {
		if _, err := s.shipRepo.GetByID(ctx, req.ShipID); err != nil {
			return err
		}
		now := s.run.micros()
		actor := ctxutil.ActorFromContext(ctx)

		if kills != "" {
			entry := &secondary.HistoryRecord{Kind: secondary.HistoryKill, ShipID: req.ShipID, UserID: actor, Text: kills, CreatedAt: now}
			if err := s.historyRepo.AppendKill(ctx, entry); err != nil {
				return err
			}
			result.Kill = recordToEntry(entry)
		}
		if debrief != "" {
			entry := &secondary.HistoryRecord{Kind: secondary.HistoryOp, ShipID: req.ShipID, UserID: actor, Text: debrief, CreatedAt: now}
			if err := s.historyRepo.AppendOp(ctx, entry); err != nil {
				return err
			}
			result.Op = recordToEntry(entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListHistory retrieves a page of one kind of history, newest first.
func (s *HistoryServiceImpl) ListHistory(ctx context.Context, q primary.HistoryQuery) (*primary.HistoryPage, error) {
	kind, err := parseHistoryKind(q.Kind)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	filters := secondary.HistoryFilters{ShipID: q.ShipID, Kind: kind, Limit: limit + 1}
	if q.Cursor != "" {
		if filters.BeforeCreatedAt, filters.BeforeID, err = decodeCursor(q.Cursor); err != nil {
			return nil, err
		}
	}

	var records []*secondary.HistoryRecord
	err = s.run.read(ctx, "history.list", func(ctx context.Context) error {
		if _, err := s.shipRepo.GetByID(ctx, q.ShipID); err != nil {
			return err
		}
		var err error
		records, err = s.historyRepo.List(ctx, filters)
		return err
	})
	if err != nil {
		return nil, err
	}

	page := &primary.HistoryPage{}
	if len(records) > limit {
		records = records[:limit]
		last := records[limit-1]
		page.Next = encodeCursor(last.CreatedAt, last.ID)
	}
	page.Entries = make([]*primary.HistoryEntry, len(records))
	for i, r := range records {
		page.Entries[i] = recordToEntry(r)
	}
	return page, nil
}

// Helper methods

func parseHistoryKind(kind string) (secondary.HistoryKind, error) {
	switch k := secondary.HistoryKind(strings.ToLower(strings.TrimSpace(kind))); k {
	case "":
		return secondary.HistoryUpdate, nil
	case secondary.HistoryUpdate, secondary.HistoryKill, secondary.HistoryOp, secondary.HistorySupply:
		return k, nil
	}
	return "", apperr.New(apperr.Validation, "unknown history kind %q (expected update, kill, op or supply)", kind)
}

func normalizeReport(what, text string) (string, error) {
	text = strings.TrimSpace(text)
	if err := ship.CheckLength(what, text, ship.MaxTextLength).Error(); err != nil {
		return "", err
	}
	return text, nil
}

// Cursors are "<created_at>-<id>" of the last row of the previous page.
func encodeCursor(createdAt, id int64) string {
	return fmt.Sprintf("%d-%d", createdAt, id)
}

func decodeCursor(cursor string) (createdAt, id int64, err error) {
	at, rowID, ok := strings.Cut(cursor, "-")
	if ok {
		createdAt, err = strconv.ParseInt(at, 10, 64)
		if err == nil {
			id, err = strconv.ParseInt(rowID, 10, 64)
		}
	}
	if !ok || err != nil || id <= 0 {
		return 0, 0, apperr.New(apperr.Validation, "invalid history cursor %q", cursor)
	}
	return createdAt, id, nil
}

func recordToEntry(r *secondary.HistoryRecord) *primary.HistoryEntry {
	return &primary.HistoryEntry{
		ID:            r.ID,
		Kind:          string(r.Kind),
		ShipID:        r.ShipID,
		UserID:        r.UserID,
		Field:         r.Field,
		OldValue:      r.OldValue,
		NewValue:      r.NewValue,
		OpID:          r.OpID,
		Text:          r.Text,
		Resource:      r.Resource,
		Delta:         r.Delta,
		QuantityAfter: r.QuantityAfter,
		CreatedAt:     microsToTime(r.CreatedAt),
	}
}

// Ensure HistoryServiceImpl implements the interface.
var _ primary.HistoryService = (*HistoryServiceImpl)(nil)
