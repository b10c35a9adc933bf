package enums

import "fmt"

// BookingStatus is the lifecycle state of a tenancy booking.
type BookingStatus string

const (
	BookingStatusPending                 BookingStatus = "pending"
	BookingStatusAccepted                BookingStatus = "accepted"
	BookingStatusRejected                BookingStatus = "rejected"
	BookingStatusPaid                    BookingStatus = "paid"
	BookingStatusMovedIn                 BookingStatus = "movedIn"
	BookingStatusCancelled               BookingStatus = "cancelled"
	BookingStatusRefundProcessing        BookingStatus = "refundProcessing"
	BookingStatusRefundCompleted         BookingStatus = "refundCompleted"
	BookingStatusRefundFailed            BookingStatus = "refundFailed"
	BookingStatusCancellationUnderReview BookingStatus = "cancellationUnderReview"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusAccepted,
	BookingStatusRejected,
	BookingStatusPaid,
	BookingStatusMovedIn,
	BookingStatusCancelled,
	BookingStatusRefundProcessing,
	BookingStatusRefundCompleted,
	BookingStatusRefundFailed,
	BookingStatusCancellationUnderReview,
}

// RentPayoutStatuses are the booking states whose rent may be released once the
// safety window closes.
var RentPayoutStatuses = []BookingStatus{BookingStatusPaid, BookingStatusMovedIn}

// IsValid reports whether the value is known.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// EligibleForRentPayout reports whether the status is one of RentPayoutStatuses.
func (s BookingStatus) EligibleForRentPayout() bool {
	for _, candidate := range RentPayoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
