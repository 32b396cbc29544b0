package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is raised when an insert loses the race on the
// booked-slot unique index.
const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
