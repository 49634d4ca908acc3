package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Action is a command as it arrives over the wire.
type Action struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Dispatch decodes a and applies it. Unknown action types leave the state
// untouched and are not an error.
func (s *Store) Dispatch(a Action) (State, error) {
	cmd, known, err := Decode(a)
	if err != nil {
		s.log.Warn("undecodable action", zap.String("type", string(a.Type)), zap.Error(err))
		return s.Snapshot(), err
	}
	if !known {
		s.log.Debug("ignoring unknown action", zap.String("type", string(a.Type)))
		return s.Snapshot(), nil
	}
	return s.Apply(cmd)
}

// Decode turns a wire action into a Command. known is false for action
// types the store does not handle.
func Decode(a Action) (cmd Command, known bool, err error) {
	switch a.Type {
	case LoginType:
		var u UserRef
		if err := decodeOptional(a.Payload, &u); err != nil {
			return nil, true, err
		}
		return Authenticate{User: u}, true, nil

	case LogoutType:
		return Deauthenticate{}, true, nil

	case TogglePreviewModeType:
		return TogglePreviewMode{}, true, nil

	case SetCurrentResumeType:
		if isNull(a.Payload) {
			return SetCurrentDocument{}, true, nil
		}
		id, err := decodeID(a.Payload)
		if err != nil {
			return nil, true, err
		}
		return SetCurrentDocument{ID: id}, true, nil

	case AddResumeType:
		var p struct {
			Title string `json:"title"`
		}
		if err := decodeRequired(a.Payload, &p); err != nil {
			return nil, true, err
		}
		return CreateDocument{Title: p.Title}, true, nil

	case UpdateResumeType:
		var p struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		}
		if err := decodeRequired(a.Payload, &p); err != nil {
			return nil, true, err
		}
		if p.ID == "" {
			return nil, true, fmt.Errorf("%w: resume id is required", ErrInvalidPayload)
		}
		return UpdateDocument{ID: p.ID, Title: p.Title}, true, nil

	case DeleteResumeType:
		id, err := decodeID(a.Payload)
		if err != nil {
			return nil, true, err
		}
		return DeleteDocument{ID: id}, true, nil

	case AddSectionType:
		var sec Section
		if err := decodeRequired(a.Payload, &sec); err != nil {
			return nil, true, err
		}
		kind, err := ParseSectionKind(string(sec.Type))
		if err != nil {
			return nil, true, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		// Identity and position belong to the store.
		sec.ID = ""
		sec.Order = 0
		return AddSection{Section: fillDefaults(sec, kind)}, true, nil

	case UpdateSectionType:
		var sec Section
		if err := decodeRequired(a.Payload, &sec); err != nil {
			return nil, true, err
		}
		if sec.ID == "" {
			return nil, true, fmt.Errorf("%w: section id is required", ErrInvalidPayload)
		}
		if sec.Type != "" {
			if _, err := ParseSectionKind(string(sec.Type)); err != nil {
				return nil, true, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
		}
		return UpdateSection{Section: sec}, true, nil

	case DeleteSectionType:
		id, err := decodeID(a.Payload)
		if err != nil {
			return nil, true, err
		}
		return DeleteSection{ID: id}, true, nil

	case ReorderSectionsType:
		ids, err := decodeIDList(a.Payload)
		if err != nil {
			return nil, true, err
		}
		return ReorderSections{IDs: ids}, true, nil

	default:
		return nil, false, nil
	}
}

// fillDefaults completes blank user-facing fields from the kind's template.
func fillDefaults(sec Section, kind SectionKind) Section {
	d := Defaults(kind)
	sec.Type = kind
	if sec.Title == "" {
		sec.Title = d.Title
	}
	if sec.Subtitle == "" {
		sec.Subtitle = d.Subtitle
	}
	if sec.Content == "" {
		sec.Content = d.Content
	}
	if sec.Date == "" {
		sec.Date = d.Date
	}
	return sec
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeRequired(raw json.RawMessage, v any) error {
	if isNull(raw) {
		return fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func decodeOptional(raw json.RawMessage, v any) error {
	if isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// decodeID accepts either "id" or {"id": "id"}.
func decodeID(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", fmt.Errorf("%w: id is required", ErrInvalidPayload)
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("%w: expected id string or object", ErrInvalidPayload)
	}
	if obj.ID == "" {
		return "", fmt.Errorf("%w: id is required", ErrInvalidPayload)
	}
	return obj.ID, nil
}

// decodeIDList accepts ["a","b"] or the full section objects [{"id":"a"},...].
func decodeIDList(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, fmt.Errorf("%w: section list is required", ErrInvalidPayload)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids, nil
	}
	var objs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, fmt.Errorf("%w: expected a list of ids or sections", ErrInvalidPayload)
	}
	ids = make([]string, len(objs))
	for i, o := range objs {
		ids[i] = o.ID
	}
	return ids, nil
}
