package transport

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"content_fetcher/internal/domain"
	"content_fetcher/internal/service"
)

// Jobs is the orchestrator surface exposed to remote callers.
type Jobs interface {
	Run(ctx context.Context, spec domain.JobSpec) (*domain.JobResult, error)
	ListJobs(ctx context.Context, platform *domain.Platform) ([]domain.FetchJob, error)
	Platforms(ctx context.Context) []service.PlatformStatus
}

// FetchRequest is the body accepted by every job intake.
type FetchRequest struct {
	Platform    string `json:"platform" validate:"required"`
	SourceID    string `json:"sourceId" validate:"required_without=SearchQuery"`
	SearchQuery string `json:"searchQuery"`
	SourceType  string `json:"sourceType" validate:"omitempty,oneof=channel hashtag user search"`
	MaxItems    int    `json:"maxItems" validate:"gte=0"`
}

func (r FetchRequest) Spec() domain.JobSpec {
	return domain.JobSpec{
		Platform:    domain.Platform(r.Platform),
		SourceID:    r.SourceID,
		SearchQuery: r.SearchQuery,
		SourceType:  domain.SourceType(r.SourceType),
		MaxItems:    r.MaxItems,
	}
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Success: false, Error: err.Error()}
}

type JobsResponse struct {
	Success bool              `json:"success"`
	Jobs    []domain.FetchJob `json:"jobs"`
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate checks req and reports the first failing field as a *domain.ValidationError.
func (v *Validator) Validate(req FetchRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{Field: fe.Field(), Reason: reasonFor(fe)}
	}
	return &domain.ValidationError{Field: "body", Reason: err.Error()}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "sourceId or searchQuery is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	var validationErr *domain.ValidationError
	var configErr *domain.ConfigurationError
	return errors.As(err, &validationErr) || errors.As(err, &configErr)
}
