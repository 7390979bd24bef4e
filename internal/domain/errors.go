package domain

import "github.com/pkg/errors"

var (
	// ErrDataUnavailable is returned when a season document can't be fetched or parsed
	ErrDataUnavailable = errors.New("season data unavailable")
	// ErrDuplicateEntry is returned when a share list already holds an entry with the same name
	ErrDuplicateEntry = errors.New("entry already in share list")
	// ErrPreferenceInvalid marks a persisted selection that no longer exists in the index
	ErrPreferenceInvalid = errors.New("persisted preference no longer available")
	// ErrExportFailure is returned when the image export pipeline fails
	ErrExportFailure = errors.New("export failed")
)
