package services

import (
	"fmt"

	"github.com/dev-c-webd/tube-v/internal/common"
)

// internalError hides the cause from clients but keeps it for logs.
func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}
