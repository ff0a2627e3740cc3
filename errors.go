package sectio

import "errors"

// Error taxonomy, §7. Only ErrInvalidInput, ErrParseFailed, and
// ErrCancelled ever escape Run. Any other failure of a strategy is logged
// and Run goes on to the next strategy; such failures are not recorded in
// the Result.
var (
	ErrInvalidInput = errors.New("sectio: invalid input")
	ErrParseFailed  = errors.New("sectio: parse failed")
	ErrCancelled    = errors.New("sectio: parse cancelled")

	errNoExtractableText = errors.New("sectio: no extractable text")
	errOCRUnavailable     = errors.New("sectio: OCR unavailable")
	errLayoutAmbiguous    = errors.New("sectio: layout ambiguous")
	errNoSections         = errors.New("sectio: no sections")
	errDatabaseWriteFailed = errors.New("sectio: section database write failed")
	errStageTimeout        = errors.New("sectio: stage timeout")
)
