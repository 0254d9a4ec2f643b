package config

import "time"

// Persisted session lifetime
const SessionTTL = 7 * 24 * time.Hour

// One-time code length expected by the sign-in and registration flows
const OTPLength = 6

// Minimum password length accepted at registration
const MinPasswordLength = 8

// Websocket feed settings
const (
	WSHandshakeTimeout = 10 * time.Second
	WSWriteTimeout     = 5 * time.Second
	WSPingInterval     = 30 * time.Second
)

// Local state database ping timeout
const DBPingTimeout = 5 * time.Second

// Local state maintenance
const (
	CacheTTL            = 7 * 24 * time.Hour
	MaintenanceInterval = 10 * time.Minute
)

// Preview server timeouts
const (
	PreviewReadTimeout     = 15 * time.Second
	PreviewIdleTimeout     = 120 * time.Second
	PreviewShutdownTimeout = 10 * time.Second
)
