package extract

import "errors"

var (
	// ErrInvalidFormat means the payload is not a syntactically valid CAS JSON document
	ErrInvalidFormat = errors.New("invalid format")

	// ErrMissingSofa means the document carries no sofa text
	ErrMissingSofa = errors.New("missing sofa")

	// ErrMalformedSpan means a pair of offsets does not fit the text
	ErrMalformedSpan = errors.New("malformed span")
)
