// Package dbtest opens isolated in-memory sqlite databases carrying the same
// tables and uniqueness constraints as the Postgres migrations.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/haani-backend/pkg/db"
)

var schema = []string{
	`CREATE TABLE bookings (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		advertiser_id TEXT,
		total_price TEXT NOT NULL DEFAULT '0',
		premium_fee TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'EGP',
		move_in_date TEXT,
		moved_in_at TEXT,
		safety_window_closed BOOLEAN NOT NULL DEFAULT 0,
		safety_window_closed_at datetime,
		payout_created BOOLEAN NOT NULL DEFAULT 0,
		payout_created_at datetime,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE properties (
		id TEXT PRIMARY KEY,
		owner_id TEXT,
		name TEXT NOT NULL DEFAULT '',
		created_at datetime
	)`,
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		property_ids TEXT NOT NULL DEFAULT '{}',
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE payout_methods (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		account_holder TEXT NOT NULL,
		institution TEXT,
		account_number TEXT NOT NULL,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE refund_requests (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		property_name TEXT,
		amount TEXT NOT NULL DEFAULT '0',
		created_at datetime
	)`,
	`CREATE TABLE referral_discounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		tenant_name TEXT,
		advertiser_id TEXT NOT NULL,
		booking_id TEXT,
		is_used BOOLEAN NOT NULL DEFAULT 0,
		used_at datetime,
		booking_amount TEXT NOT NULL DEFAULT '0',
		booking_property_id TEXT,
		booking_property_name TEXT,
		created_at datetime
	)`,
	`CREATE TABLE referrals (
		advertiser_id TEXT PRIMARY KEY,
		bonus_rate TEXT NOT NULL DEFAULT '0%',
		successful_bookings INTEGER NOT NULL DEFAULT 0,
		monthly_earnings TEXT NOT NULL DEFAULT '0',
		annual_earnings TEXT NOT NULL DEFAULT '0',
		referral_history TEXT NOT NULL DEFAULT '[]',
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE payout_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_id TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		notes TEXT,
		approved_by TEXT,
		approved_at datetime,
		rejected_by TEXT,
		rejected_at datetime,
		rejection_reason TEXT,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX payout_requests_active_source_key
		ON payout_requests (source_type, source_id)
		WHERE status IN ('pending', 'approved')`,
	`CREATE TABLE payouts (
		id TEXT PRIMARY KEY,
		payee_id TEXT NOT NULL,
		payee_type TEXT NOT NULL,
		reason TEXT NOT NULL,
		gross_amount TEXT NOT NULL,
		fee_amount TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_id TEXT NOT NULL,
		payout_request_id TEXT,
		payment_method TEXT NOT NULL,
		created_by TEXT,
		paid_by TEXT,
		paid_at datetime,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX payouts_source_key ON payouts (source_type, source_id)`,
	`CREATE TABLE ledger_events (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_id TEXT NOT NULL,
		record_id TEXT,
		actor_id TEXT,
		actor_role TEXT NOT NULL,
		amount TEXT,
		currency TEXT,
		metadata TEXT,
		created_at datetime
	)`,
	`CREATE TABLE ledger_claims (
		scope TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_id TEXT NOT NULL,
		claimed_by TEXT NOT NULL,
		created_at datetime,
		PRIMARY KEY (scope, source_type, source_id)
	)`,
	`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		payload TEXT,
		read_at datetime,
		created_at datetime
	)`,
}

// Open returns a fresh database with the finance schema applied. A single
// pooled connection serializes transactions the way row locks would.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// Client wraps Open in a db.Client.
func Client(t testing.TB) *db.Client {
	t.Helper()
	return db.NewFromConn(Open(t))
}
