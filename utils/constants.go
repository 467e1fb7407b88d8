package utils

import (
	"time"
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Request context keys
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Tournament identifier constants
const (
	// TeamIDPrefix is the prefix for issued team identifiers (ICCT-001, ICCT-002, ...)
	TeamIDPrefix = "ICCT"

	// TeamIDPadWidth is the minimum digit width of the numeric suffix
	TeamIDPadWidth = 3
)

// Registration constants
const (
	// RosterMinPlayers is the smallest roster accepted at registration
	RosterMinPlayers = 11

	// RosterMaxPlayers is the largest roster accepted at registration
	RosterMaxPlayers = 15

	// MaxDocumentSizeBytes caps a single uploaded document (8 MiB)
	MaxDocumentSizeBytes = 8 << 20
)

// Allocation retry constants
const (
	// AllocationMaxRetries bounds transient-failure retries per allocation
	AllocationMaxRetries = 3

	// AllocationRetryBackoff is the base backoff between allocation retries
	AllocationRetryBackoff = 50 * time.Millisecond

	// AllocationLockTimeout bounds the row-lock wait inside one increment
	AllocationLockTimeout = 3 * time.Second
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Cache constants
const (
	// IdempotencyTTL is how long replayed registration responses are kept
	IdempotencyTTL = 24 * time.Hour
)
