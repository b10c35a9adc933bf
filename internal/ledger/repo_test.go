package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/haani-backend/pkg/auth"
	"github.com/angelmondragon/haani-backend/pkg/db/dbtest"
	"github.com/angelmondragon/haani-backend/pkg/enums"
)

func TestRepositoryAuditTrail(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	bookingID := uuid.New()

	for _, eventType := range []enums.LedgerEventType{enums.LedgerEventPayoutCreated, enums.LedgerEventPayoutPaid} {
		_, err := svc.RecordEvent(ctx, RecordLedgerEventInput{
			Type:       eventType,
			SourceType: enums.PayoutSourceRent,
			SourceID:   bookingID,
			Actor:      auth.SystemActor(),
			Currency:   "EGP",
		})
		require.NoError(t, err)
	}

	paid, found, err := svc.LatestEvent(ctx, enums.PayoutSourceRent, bookingID, enums.LedgerEventPayoutPaid)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, enums.LedgerEventPayoutPaid, paid.Type)

	_, found, err = svc.LatestEvent(ctx, enums.PayoutSourceRefund, bookingID, enums.LedgerEventPayoutPaid)
	require.NoError(t, err)
	require.False(t, found, "source type is part of the identity")

	events, err := svc.ListBySource(ctx, enums.PayoutSourceRent, bookingID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, event := range events {
		require.Equal(t, bookingID, event.SourceID)
		require.Equal(t, enums.UserRoleSystem, event.ActorRole)
	}
}
