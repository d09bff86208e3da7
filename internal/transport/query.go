package transport

import (
	"net/url"
	"strings"

	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/util"
)

// ParseEquipmentFilter reads type, status and brand from the query string.
// Unknown enum values are rejected.
func ParseEquipmentFilter(q url.Values) (models.EquipmentFilter, error) {
	var f models.EquipmentFilter
	var fields []service.FieldError

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t := models.EquipmentType(v)
		if !t.Valid() {
			fields = append(fields, service.FieldError{Field: "type", Message: "unknown equipment type"})
		} else {
			f.Type = &t
		}
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		s := models.EquipmentStatus(v)
		if !s.Valid() {
			fields = append(fields, service.FieldError{Field: "status", Message: "unknown equipment status"})
		} else {
			f.Status = &s
		}
	}
	f.Brand = strings.TrimSpace(q.Get("brand"))

	if len(fields) > 0 {
		return models.EquipmentFilter{}, &service.ValidationError{Fields: fields}
	}
	return f, nil
}

// ParsePage reads page and limit. Missing or malformed values fall back to the defaults.
func ParsePage(q url.Values) (page, limit int) {
	page = util.ParseIntDefault(q.Get("page"), 1)
	limit = util.ParseIntDefault(q.Get("limit"), util.DefaultPageSize)
	return util.Normalize(page, limit)
}
