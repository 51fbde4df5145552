package domain

// Input limits shared by services and clients.
const (
	MaxTitleLen       = 100
	MaxDisplayNameLen = 50
	MaxCoupleNameLen  = 30
	MaxMemoLen        = 500

	MaxFineAmount      int64 = 1_000_000
	MaxViolationAmount int64 = 1_000_000
	MaxRewardTarget    int64 = 100_000_000

	MinPasswordLen = 8
	MaxPasswordLen = 128

	DefaultViolationLimit = 50
	MaxViolationLimit     = 200
)
