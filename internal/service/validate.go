package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/models"
)

const (
	minPasswordLen = 6
	// bcrypt rejects inputs longer than 72 bytes.
	maxPasswordBytes = 72
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

func checkLength(fe *fieldErrors, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0 && min > 0:
		fe.add(field, field+" is required")
	case n < min || (max > 0 && n > max):
		if max > 0 {
			fe.add(field, fmt.Sprintf("%s must be between %d and %d characters", field, min, max))
		} else {
			fe.add(field, fmt.Sprintf("%s must be at least %d characters", field, min))
		}
	}
}

func checkPassword(fe *fieldErrors, password string) {
	switch {
	case password == "":
		fe.add("password", "password is required")
	case utf8.RuneCountInString(password) < minPasswordLen:
		fe.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	case len(password) > maxPasswordBytes:
		fe.add("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
}

func checkType(fe *fieldErrors, value string) {
	if !models.EquipmentType(value).Valid() {
		fe.add("type", "type must be one of laptop, desktop, monitor, printer, server, other")
	}
}

func checkStatus(fe *fieldErrors, value string) {
	if !models.EquipmentStatus(value).Valid() {
		fe.add("status", "status must be one of available, in_use, maintenance, retired")
	}
}

// parseAssignee returns nil for an empty value.
func parseAssignee(fe *fieldErrors, value string) *uuid.UUID {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		fe.add("assignedTo", "assignedTo must be a valid user id")
		return nil
	}
	return &id
}
