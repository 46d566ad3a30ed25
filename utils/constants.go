package utils

// ScheduleLockPrefix prefixes Redis provider-day lock keys.
const ScheduleLockPrefix = "lock:schedule:"

// RevokedTokenPrefix prefixes Redis keys of revoked token hashes.
const RevokedTokenPrefix = "revoked:"

// Context keys set by the auth and logging middleware.
const (
	ContextClinicID  = "clinicID"
	ContextSubject   = "subject"
	ContextLogger    = "logger"
	ContextRequestID = "requestID"
	ContextToken     = "token"
	ContextTokenExp  = "tokenExpiry"
)
