package batcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

var validate = validator.New()

// ValidateLog parses raw JSON and validates it as a log entry.
// Required: service, message. Level defaults to info, timestamp to now.
func ValidateLog(raw []byte, now time.Time) (*model.LogEntry, error) {
	var p model.IngestPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Tag() == "required" {
				return nil, fmt.Errorf("missing required field: %s", strings.ToLower(fe.Field()))
			}
			return nil, fmt.Errorf("invalid field %s: %q", strings.ToLower(fe.Field()), fe.Value())
		}
		return nil, err
	}

	var e model.LogEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if e.Level == "" {
		e.Level = "info"
	}
	if e.Timestamp == "" {
		e.Timestamp = now.UTC().Format(time.RFC3339)
	}
	if e.Tags == nil {
		e.Tags = make(map[string]string)
	}
	return &e, nil
}
