package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/service"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r RegisterRequest) Input() service.RegisterInput {
	return service.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password, Role: r.Role}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateEquipmentRequest struct {
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Brand          string         `json:"brand"`
	Model          string         `json:"model"`
	SerialNumber   string         `json:"serialNumber"`
	Status         string         `json:"status"`
	AssignedTo     string         `json:"assignedTo"`
	Specifications map[string]any `json:"specifications"`
}

func (r CreateEquipmentRequest) Input() service.CreateEquipmentInput {
	return service.CreateEquipmentInput{
		Name:           r.Name,
		Type:           r.Type,
		Brand:          r.Brand,
		Model:          r.Model,
		SerialNumber:   r.SerialNumber,
		Status:         r.Status,
		AssignedTo:     r.AssignedTo,
		Specifications: r.Specifications,
	}
}

type UpdateEquipmentRequest struct {
	Name           *string        `json:"name"`
	Type           *string        `json:"type"`
	Brand          *string        `json:"brand"`
	Model          *string        `json:"model"`
	SerialNumber   *string        `json:"serialNumber"`
	Status         *string        `json:"status"`
	AssignedTo     *string        `json:"assignedTo"`
	Specifications map[string]any `json:"specifications"`
}

func (r UpdateEquipmentRequest) Input() service.UpdateEquipmentInput {
	return service.UpdateEquipmentInput{
		Name:           r.Name,
		Type:           r.Type,
		Brand:          r.Brand,
		Model:          r.Model,
		SerialNumber:   r.SerialNumber,
		Status:         r.Status,
		AssignedTo:     r.AssignedTo,
		Specifications: r.Specifications,
	}
}

type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type EquipmentResponse struct {
	models.Equipment
	Assignee *UserRef `json:"assignee,omitempty"`
}

func NewEquipmentResponse(eq models.Equipment) EquipmentResponse {
	if eq.Specifications == nil {
		eq.Specifications = map[string]any{}
	}
	resp := EquipmentResponse{Equipment: eq}
	if eq.Assignee != nil {
		resp.Assignee = &UserRef{ID: eq.Assignee.ID, Name: eq.Assignee.Name, Email: eq.Assignee.Email}
	}
	return resp
}

func NewEquipmentList(items []models.Equipment) []EquipmentResponse {
	out := make([]EquipmentResponse, 0, len(items))
	for _, eq := range items {
		out = append(out, NewEquipmentResponse(eq))
	}
	return out
}

type EquipmentListResponse struct {
	Equipment  []EquipmentResponse `json:"equipment"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

func NewEquipmentListResponse(p *service.EquipmentPage) EquipmentListResponse {
	return EquipmentListResponse{
		Equipment:  NewEquipmentList(p.Equipment),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Errors  []service.FieldError `json:"errors,omitempty"`
}

type HealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}
