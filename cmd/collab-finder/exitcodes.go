// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

// Exit codes.
const (
	ExitSuccess            = 0 // Success
	ExitError              = 1 // General runtime failure
	ExitUsageError         = 2 // Missing or invalid arguments
	ExitConfigError        = 3 // Invalid configuration (unknown backend, unreadable corpus or snapshot)
	ExitProfileUnavailable = 4 // Subject author could not be resolved by any source
)
