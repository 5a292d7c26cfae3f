package cli

import "github.com/mesh-intelligence/rowkeeper/internal/behavior"

func behaviorColumns(created, createdBy, updated, updatedBy string) behavior.AuthoredColumns {
	return behavior.AuthoredColumns{Created: created, CreatedBy: createdBy, Updated: updated, UpdatedBy: updatedBy}
}
