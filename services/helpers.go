package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/repositories"
	"github.com/go-playground/validator/v10"
)

// Notifier pushes changes to Activity clients of a guild.
type Notifier interface {
	NotifyGuild(guildID, messageType string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) NotifyGuild(string, string, any) {}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrAlreadyRegistered):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrNotRegistered):
		return ErrNotRegistered
	case errors.Is(err, repositories.ErrInvalidEvent):
		return &ValidationError{Fields: map[string]string{"event": strings.TrimPrefix(err.Error(), repositories.ErrInvalidEvent.Error()+": ")}}
	case errors.Is(err, repositories.ErrTicketNotFound):
		return ErrTicketNotFound
	case errors.Is(err, repositories.ErrTicketClosed):
		return ErrTicketAlreadyClosed
	case errors.Is(err, repositories.ErrRaceNotFound):
		return ErrRaceNotFound
	case errors.Is(err, repositories.ErrOrganizationNotFound):
		return ErrOrganizationNotFound
	case errors.Is(err, repositories.ErrOrganizationExists):
		return ErrOrganizationConflict
	}
	var ue *discord.UpstreamError
	if errors.As(err, &ue) {
		return fmt.Errorf("%w: %w", ErrDiscordUnavailable, err)
	}
	return err
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags and returns a *ValidationError keyed by JSON field path.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = validationMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the struct name: "Race.practiceAndQualifying.practiceDuration" -> "practiceAndQualifying.practiceDuration".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must be a Discord id"
	}
	return "is invalid (" + fe.Tag() + ")"
}
