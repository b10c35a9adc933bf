package enums

// ReferralHistoryStatus is the state of one referred tenant in a referrer's history.
type ReferralHistoryStatus string

const (
	ReferralHistoryPending ReferralHistoryStatus = "pending"
	ReferralHistorySuccess ReferralHistoryStatus = "success"
)
