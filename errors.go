package dynrec

import (
	"errors"
	"strings"

	"github.com/dynrec/dynrec/logger"
)

var (
	// ErrRecordNotFound no table row matched a record's identity
	ErrRecordNotFound = logger.ErrRecordNotFound
	// ErrDuplicateIdentity more than one table row matched a record's identity
	ErrDuplicateIdentity = errors.New("duplicate identity")
	// ErrInvalidArgument an empty or otherwise unusable argument
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFieldNotFound the record has no field of that name
	ErrFieldNotFound = errors.New("field not found")
	// ErrTypeMismatch the field holds a value of a different kind
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrSchemaMismatch a field kind or name disagrees with the table column
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnsupportedColumnType the column type has no kind mapping
	ErrUnsupportedColumnType = errors.New("unsupported column type")
	// ErrUnsupportedDialect the dialect name is not registered
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	// ErrClosed the session has been closed
	ErrClosed = errors.New("session is closed")
)

// Errors contains all happened errors
type Errors []error

// GetErrors gets all happened errors
func (errs Errors) GetErrors() []error {
	return errs
}

// Add adds an error
func (errs Errors) Add(newErrors ...error) Errors {
	for _, err := range newErrors {
		if err == nil {
			continue
		}

		if es, ok := err.(Errors); ok {
			errs = errs.Add(es...)
		} else {
			ok = true
			for _, e := range errs {
				if err == e {
					ok = false
				}
			}
			if ok {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

// Error format happened errors
func (errs Errors) Error() string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (errs Errors) Unwrap() []error {
	return errs
}
