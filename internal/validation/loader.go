package validation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/octobees/cardshare/internal/entity"
)

// Reasons a stored record was replaced by the default.
var (
	ErrNoStoredState = errors.New("no stored state")
	ErrUndecodable   = errors.New("stored state is not a JSON object")
)

// LoadResult carries either the stored record or the default together with the
// reason the stored state was not used.
type LoadResult struct {
	Record      entity.ContactRecord
	UsedDefault bool
	Reason      error
}

// LoadOrDefault decodes persisted state through the schema guard. Any decode
// failure or rejection yields def unchanged; it never returns a partially
// valid record.
func LoadOrDefault(raw []byte, def entity.ContactRecord) LoadResult {
	if len(raw) == 0 {
		return LoadResult{Record: def, UsedDefault: true, Reason: ErrNoStoredState}
	}

	var candidate map[string]any
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return LoadResult{Record: def, UsedDefault: true, Reason: fmt.Errorf("%w: %v", ErrUndecodable, err)}
	}
	if candidate == nil {
		return LoadResult{Record: def, UsedDefault: true, Reason: ErrUndecodable}
	}

	rec, err := Guard(candidate)
	if err != nil {
		return LoadResult{Record: def, UsedDefault: true, Reason: err}
	}
	return LoadResult{Record: rec}
}
