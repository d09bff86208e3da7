package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/metrics"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/search"
	"github.com/Skotchmaster/inventory/internal/util"
	"github.com/Skotchmaster/inventory/pkg/events"
	"github.com/Skotchmaster/inventory/pkg/logging"
)

type EquipmentStore interface {
	ListEquipment(ctx context.Context, f models.EquipmentFilter, offset, limit int) (int64, []models.Equipment, error)
	ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]models.Equipment, error)
	GetEquipment(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	GetEquipmentByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Equipment, error)
	CreateEquipment(ctx context.Context, eq *models.Equipment) (*models.Equipment, error)
	UpdateEquipment(ctx context.Context, id uuid.UUID, apply func(*models.Equipment) error) (*models.Equipment, error)
	DeleteEquipment(ctx context.Context, id uuid.UUID) error
	SearchEquipment(ctx context.Context, q string, offset, limit int) (int64, []models.Equipment, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type EquipmentService struct {
	Repo    EquipmentStore
	Index   search.Index
	Events  events.Publisher
	Metrics metrics.Recorder
}

type EquipmentPage struct {
	Equipment  []models.Equipment
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type CreateEquipmentInput struct {
	Name           string
	Type           string
	Brand          string
	Model          string
	SerialNumber   string
	Status         string
	AssignedTo     string
	Specifications map[string]any
}

// UpdateEquipmentInput carries only the fields to change. An empty AssignedTo unassigns.
type UpdateEquipmentInput struct {
	Name           *string
	Type           *string
	Brand          *string
	Model          *string
	SerialNumber   *string
	Status         *string
	AssignedTo     *string
	Specifications map[string]any
}

func (s *EquipmentService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}

func (s *EquipmentService) index() search.Index {
	if s.Index == nil {
		return search.Nop{}
	}
	return s.Index
}

func (s *EquipmentService) List(ctx context.Context, f models.EquipmentFilter, page, limit int) (*EquipmentPage, error) {
	page, limit = util.Normalize(page, limit)
	offset, limit := util.Calculate(page, limit)

	total, items, err := s.Repo.ListEquipment(ctx, f, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list_equipment_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("list equipment: %w", err)
	}

	return &EquipmentPage{
		Equipment:  items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: util.TotalPages(total, limit),
	}, nil
}

func (s *EquipmentService) ListAssignedTo(ctx context.Context, userID string) ([]models.Equipment, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return []models.Equipment{}, nil
	}
	items, err := s.Repo.ListAssignedTo(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Error("list_my_equipment_failed", "status", 500, "user_id", userID, "error", err)
		return nil, fmt.Errorf("list assigned equipment: %w", err)
	}
	return items, nil
}

func (s *EquipmentService) Get(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	eq, err := s.Repo.GetEquipment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return eq, nil
}

func (s *EquipmentService) checkAssignee(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	ok, err := s.Repo.UserExists(ctx, *id)
	if err != nil {
		return fmt.Errorf("check assignee: %w", err)
	}
	if !ok {
		return ErrAssigneeNotFound
	}
	return nil
}

func validateCreate(in *CreateEquipmentInput) (*models.Equipment, error) {
	var fe fieldErrors

	eq := &models.Equipment{
		Name:           strings.TrimSpace(in.Name),
		Type:           models.EquipmentType(strings.TrimSpace(in.Type)),
		Brand:          strings.TrimSpace(in.Brand),
		Model:          strings.TrimSpace(in.Model),
		SerialNumber:   strings.TrimSpace(in.SerialNumber),
		Status:         models.EquipmentStatus(strings.TrimSpace(in.Status)),
		Specifications: in.Specifications,
	}

	checkLength(&fe, "name", eq.Name, 2, 100)
	checkType(&fe, string(eq.Type))
	checkLength(&fe, "brand", eq.Brand, 1, 50)
	checkLength(&fe, "model", eq.Model, 1, 50)
	checkLength(&fe, "serialNumber", eq.SerialNumber, 1, 100)
	checkStatus(&fe, string(eq.Status))
	eq.AssignedTo = parseAssignee(&fe, in.AssignedTo)

	if err := fe.err(); err != nil {
		return nil, err
	}
	return eq, nil
}

func (s *EquipmentService) Create(ctx context.Context, actorID string, in CreateEquipmentInput) (*models.Equipment, error) {
	l := logging.FromContext(ctx).With("svc", "equipment.create")

	eq, err := validateCreate(&in)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, eq.AssignedTo); err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateEquipment(ctx, eq)
	if err != nil {
		if errors.Is(err, repo.ErrSerialExists) {
			l.Warn("create_equipment_failed", "status", 409, "reason", "serial number taken", "serial_number", eq.SerialNumber)
			return nil, ErrSerialTaken
		}
		l.Error("create_equipment_failed", "status", 500, "reason", "cannot add equipment to db", "error", err)
		return nil, fmt.Errorf("create equipment: %w", err)
	}

	s.afterWrite(ctx, "equipment_created", actorID, created)
	s.recorder().RecordEquipmentMutation("create")
	l.Info("create_equipment_success", "equipment_id", created.ID.String())
	return created, nil
}

type equipmentPatch struct {
	name, brand, model, serial *string
	typ                        *models.EquipmentType
	status                     *models.EquipmentStatus
	assign                     bool
	assignedTo                 *uuid.UUID
	specifications             map[string]any
}

func validateUpdate(in *UpdateEquipmentInput) (*equipmentPatch, error) {
	var fe fieldErrors
	p := &equipmentPatch{specifications: in.Specifications}

	trimmed := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}

	if p.name = trimmed(in.Name); p.name != nil {
		checkLength(&fe, "name", *p.name, 2, 100)
	}
	if v := trimmed(in.Type); v != nil {
		checkType(&fe, *v)
		t := models.EquipmentType(*v)
		p.typ = &t
	}
	if p.brand = trimmed(in.Brand); p.brand != nil {
		checkLength(&fe, "brand", *p.brand, 1, 50)
	}
	if p.model = trimmed(in.Model); p.model != nil {
		checkLength(&fe, "model", *p.model, 1, 50)
	}
	if p.serial = trimmed(in.SerialNumber); p.serial != nil {
		checkLength(&fe, "serialNumber", *p.serial, 1, 100)
	}
	if v := trimmed(in.Status); v != nil {
		checkStatus(&fe, *v)
		st := models.EquipmentStatus(*v)
		p.status = &st
	}
	if in.AssignedTo != nil {
		p.assign = true
		p.assignedTo = parseAssignee(&fe, *in.AssignedTo)
	}

	if err := fe.err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *equipmentPatch) apply(eq *models.Equipment) error {
	if p.name != nil {
		eq.Name = *p.name
	}
	if p.typ != nil {
		eq.Type = *p.typ
	}
	if p.brand != nil {
		eq.Brand = *p.brand
	}
	if p.model != nil {
		eq.Model = *p.model
	}
	if p.serial != nil {
		eq.SerialNumber = *p.serial
	}
	if p.status != nil {
		eq.Status = *p.status
	}
	if p.assign {
		eq.AssignedTo = p.assignedTo
	}
	if p.specifications != nil {
		eq.Specifications = p.specifications
	}
	return nil
}

func (s *EquipmentService) Update(ctx context.Context, actorID string, id uuid.UUID, in UpdateEquipmentInput) (*models.Equipment, error) {
	l := logging.FromContext(ctx).With("svc", "equipment.update", "equipment_id", id.String())

	patch, err := validateUpdate(&in)
	if err != nil {
		return nil, err
	}
	if patch.assign {
		if err := s.checkAssignee(ctx, patch.assignedTo); err != nil {
			return nil, err
		}
	}

	updated, err := s.Repo.UpdateEquipment(ctx, id, patch.apply)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrEquipmentNotFound
		case errors.Is(err, repo.ErrSerialExists):
			l.Warn("update_equipment_failed", "status", 409, "reason", "serial number taken")
			return nil, ErrSerialTaken
		}
		l.Error("update_equipment_failed", "status", 500, "reason", "cannot update equipment", "error", err)
		return nil, fmt.Errorf("update equipment: %w", err)
	}

	s.afterWrite(ctx, "equipment_updated", actorID, updated)
	s.recorder().RecordEquipmentMutation("update")
	l.Info("update_equipment_success")
	return updated, nil
}

func (s *EquipmentService) Delete(ctx context.Context, actorID string, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "equipment.delete", "equipment_id", id.String())

	if err := s.Repo.DeleteEquipment(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipmentNotFound
		}
		l.Error("delete_equipment_failed", "status", 500, "reason", "cannot delete equipment from db", "error", err)
		return fmt.Errorf("delete equipment: %w", err)
	}

	if err := s.index().DeleteEquipment(ctx, id); err != nil {
		l.Warn("search_index_failed", "op", "delete", "error", err)
	}
	publish(ctx, s.Events, s.Metrics, events.TopicEquipment, id.String(), EquipmentEvent{
		Type:        "equipment_deleted",
		EquipmentID: id.String(),
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	})
	s.recorder().RecordEquipmentMutation("delete")
	l.Info("delete_equipment_success")
	return nil
}

// Search uses the search index when one is configured and falls back to the
// store when it is not or when the index fails.
func (s *EquipmentService) Search(ctx context.Context, q string, page, limit int) (*EquipmentPage, error) {
	l := logging.FromContext(ctx).With("svc", "equipment.search")

	q = strings.TrimSpace(q)
	if q == "" {
		var fe fieldErrors
		fe.add("q", "q is required")
		return nil, fe.err()
	}

	page, limit = util.Normalize(page, limit)
	offset, limit := util.Calculate(page, limit)

	result := &EquipmentPage{Page: page, Limit: limit}

	if idx := s.index(); idx.Enabled() {
		total, ids, err := idx.SearchEquipment(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.GetEquipmentByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("load search hits: %w", err)
			}
			result.Equipment, result.Total = items, total
			result.TotalPages = util.TotalPages(total, limit)
			return result, nil
		}
		l.Warn("search_index_failed", "op", "search", "reason", "falling back to store", "error", err)
	}

	total, items, err := s.Repo.SearchEquipment(ctx, q, offset, limit)
	if err != nil {
		l.Error("search_equipment_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("search equipment: %w", err)
	}
	result.Equipment, result.Total = items, total
	result.TotalPages = util.TotalPages(total, limit)
	return result, nil
}

func (s *EquipmentService) afterWrite(ctx context.Context, eventType, actorID string, eq *models.Equipment) {
	if err := s.index().IndexEquipment(ctx, eq); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "op", "index", "equipment_id", eq.ID.String(), "error", err)
	}

	ev := EquipmentEvent{
		Type:         eventType,
		EquipmentID:  eq.ID.String(),
		Name:         eq.Name,
		SerialNumber: eq.SerialNumber,
		Status:       string(eq.Status),
		ActorID:      actorID,
		OccurredAt:   time.Now().UTC(),
	}
	if eq.AssignedTo != nil {
		ev.AssignedTo = eq.AssignedTo.String()
	}
	publish(ctx, s.Events, s.Metrics, events.TopicEquipment, eq.ID.String(), ev)
}
