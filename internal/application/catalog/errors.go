package catalog

import (
	"errors"

	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
