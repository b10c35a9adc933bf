package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/angelmondragon/haani-backend/pkg/db/types"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

// User is a marketplace participant. Advertisers list the properties they
// manage in PropertyIDs, which the payee resolver scans as a last resort.
type User struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Role        enums.UserRole    `gorm:"column:role;not null"`
	Name        string            `gorm:"column:name;not null"`
	Email       string            `gorm:"column:email;not null"`
	PropertyIDs dbtypes.UUIDArray `gorm:"type:uuid[];column:property_ids;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
