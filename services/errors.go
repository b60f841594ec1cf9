package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах, в роутере взаимодействий и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed = errors.New("validation failed")
	ErrEventCompleted   = errors.New("event already has results")
	ErrResultsFormat    = errors.New("results are not in the expected format")
	ErrExportsDisabled  = errors.New("result exports are not configured")

	// Ошибки конфликтов
	ErrAlreadyRegistered    = errors.New("you are already registered for this event")
	ErrNotRegistered        = errors.New("you are not registered for this event")
	ErrOrganizationConflict = errors.New("organization already registered for this guild")
	ErrTicketAlreadyClosed  = errors.New("ticket is already closed")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrEventNotFound        = errors.New("event not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrRaceNotFound         = errors.New("race not found")
	ErrOrganizationNotFound = errors.New("organization not found")

	// Ошибки внешних сервисов
	ErrDiscordUnavailable = errors.New("discord request failed")
)

// ValidationError carries per-field messages; it matches ErrValidationFailed with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ResultsFormatError names the first line of the results text that did not parse.
type ResultsFormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ResultsFormatError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *ResultsFormatError) Is(target error) bool {
	return target == ErrResultsFormat
}
