package productbus

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID       *uuid.UUID
	Name     *string
	Category *string
	Featured *bool
	Active   *bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}
