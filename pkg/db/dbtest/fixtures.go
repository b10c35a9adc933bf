package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/haani-backend/pkg/db/types"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

// Insert creates each row or fails the test.
func Insert(t testing.TB, conn *gorm.DB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		if err := conn.Create(row).Error; err != nil {
			t.Fatalf("insert %T: %v", row, err)
		}
	}
}

// User inserts a user with the given role.
func User(t testing.TB, conn *gorm.DB, role enums.UserRole, propertyIDs ...uuid.UUID) *models.User {
	t.Helper()
	user := &models.User{
		ID:          uuid.New(),
		Role:        role,
		Name:        string(role) + "-" + uuid.NewString()[:8],
		Email:       uuid.NewString()[:8] + "@haani.test",
		PropertyIDs: dbtypes.UUIDArray(propertyIDs),
	}
	Insert(t, conn, user)
	return user
}

// PayoutMethod inserts a bank account for userID.
func PayoutMethod(t testing.TB, conn *gorm.DB, userID uuid.UUID) *models.PayoutMethod {
	t.Helper()
	method := &models.PayoutMethod{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          enums.PayoutMethodBankAccount,
		AccountHolder: "Account Holder",
		Institution:   "CIB",
		AccountNumber: "EG380019000500000000263180002",
	}
	Insert(t, conn, method)
	return method
}

// Property inserts a property, optionally owned.
func Property(t testing.TB, conn *gorm.DB, ownerID *uuid.UUID, name string) *models.Property {
	t.Helper()
	property := &models.Property{ID: uuid.New(), OwnerID: ownerID, Name: name}
	Insert(t, conn, property)
	return property
}

// BookingOptions describes a booking fixture.
type BookingOptions struct {
	Status       enums.BookingStatus
	AdvertiserID *uuid.UUID
	PropertyID   uuid.UUID
	TotalPrice   decimal.Decimal
	PremiumFee   decimal.Decimal
	MovedInAt    *time.Time
	MoveInDate   types.RawTimestamp
}

// Booking inserts a booking. Zero options produce a paid booking with no
// anchor.
func Booking(t testing.TB, conn *gorm.DB, opts BookingOptions) *models.Booking {
	t.Helper()
	if opts.Status == "" {
		opts.Status = enums.BookingStatusPaid
	}
	if opts.PropertyID == uuid.Nil {
		opts.PropertyID = uuid.New()
	}
	booking := &models.Booking{
		ID:           uuid.New(),
		Status:       opts.Status,
		TenantID:     uuid.New(),
		PropertyID:   opts.PropertyID,
		AdvertiserID: opts.AdvertiserID,
		TotalPrice:   opts.TotalPrice,
		PremiumFee:   opts.PremiumFee,
		Currency:     "EGP",
		MoveInDate:   opts.MoveInDate,
	}
	if opts.MovedInAt != nil {
		booking.MovedInAt = types.RawTimestampFromTime(*opts.MovedInAt)
	}
	Insert(t, conn, booking)
	return booking
}

// ReloadBooking reads the booking back.
func ReloadBooking(t testing.TB, conn *gorm.DB, id uuid.UUID) *models.Booking {
	t.Helper()
	var booking models.Booking
	if err := conn.Where("id = ?", id).First(&booking).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	return &booking
}

// Count returns the number of rows in model matching the optional condition.
func Count(t testing.TB, conn *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	q := conn.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
