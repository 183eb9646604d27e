package services

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/timex"
)

// titleMaxTag counts runes like the create path's struct tag.
var titleMaxTag = "max=" + strconv.Itoa(maxTitleLength)

// Update payloads arrive as JSON objects in which an absent key leaves the
// column alone and an explicit null clears it. Unknown keys are ignored.

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func optString(raw json.RawMessage, field string) (models.Optional[string], error) {
	if isNull(raw) {
		return models.Null[string](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Optional[string]{}, validationError(field + " must be a string")
	}
	return models.Some(s), nil
}

func optDate(raw json.RawMessage, field string) (models.Optional[time.Time], error) {
	if isNull(raw) {
		return models.Null[time.Time](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Optional[time.Time]{}, validationError(field + " must be a date string")
	}
	if s == "" {
		return models.Null[time.Time](), nil
	}
	t, err := timex.ParseDate(s)
	if err != nil {
		return models.Optional[time.Time]{}, validationError(field + " is not a valid date")
	}
	return models.Some(t), nil
}

func requiredString(raw json.RawMessage, field string) (models.Optional[string], error) {
	o, err := optString(raw, field)
	if err != nil {
		return o, err
	}
	if o.Null || o.Value == "" {
		return o, validationError(field + " cannot be empty")
	}
	return o, nil
}

func requiredDate(raw json.RawMessage, field string) (models.Optional[time.Time], error) {
	o, err := optDate(raw, field)
	if err != nil {
		return o, err
	}
	if o.Null {
		return o, validationError(field + " cannot be empty")
	}
	return o, nil
}

func ParseTimelinePatch(raw map[string]json.RawMessage) (models.TimelinePatch, error) {
	var p models.TimelinePatch
	var err error

	if v, ok := raw["name"]; ok {
		if p.Name, err = requiredString(v, "name"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["settings"]; ok {
		if isNull(v) {
			p.Settings = models.Null[json.RawMessage]()
		} else {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(v, &obj); err != nil {
				return p, validationError("settings must be an object")
			}
			p.Settings = models.Some(json.RawMessage(bytes.TrimSpace(v)))
		}
	}
	return p, nil
}

func ParseEventPatch(raw map[string]json.RawMessage) (models.EventPatch, error) {
	var p models.EventPatch
	var err error

	if v, ok := raw["title"]; ok {
		if p.Title, err = requiredString(v, "title"); err != nil {
			return p, err
		}
		if err := validatorInstance().Var(p.Title.Value, titleMaxTag); err != nil {
			return p, validationError(fmt.Sprintf("Title must be at most %d characters long", maxTitleLength))
		}
	}
	if v, ok := raw["description"]; ok {
		if p.Description, err = optString(v, "description"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["startDate"]; ok {
		if p.StartDate, err = requiredDate(v, "startDate"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["endDate"]; ok {
		if p.EndDate, err = optDate(v, "endDate"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["color"]; ok {
		if p.Color, err = optString(v, "color"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["image"]; ok {
		if p.Image, err = optString(v, "image"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["link"]; ok {
		if p.Link, err = optString(v, "link"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["track"]; ok {
		track := 0
		if !isNull(v) {
			if err := json.Unmarshal(v, &track); err != nil {
				return p, validationError("track must be an integer")
			}
		}
		p.Track = models.Some(track)
	}
	return p, nil
}

func ParseHighlightPatch(raw map[string]json.RawMessage) (models.HighlightPatch, error) {
	var p models.HighlightPatch
	var err error

	if v, ok := raw["startDate"]; ok {
		if p.StartDate, err = requiredDate(v, "startDate"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["endDate"]; ok {
		if p.EndDate, err = requiredDate(v, "endDate"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["startLabel"]; ok {
		if p.StartLabel, err = optString(v, "startLabel"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["endLabel"]; ok {
		if p.EndLabel, err = optString(v, "endLabel"); err != nil {
			return p, err
		}
	}
	if v, ok := raw["color"]; ok {
		if p.Color, err = optString(v, "color"); err != nil {
			return p, err
		}
	}
	return p, nil
}
