package model

import "time"

// Shared defaults used by both the client and the dev backend binaries.
const (
	DefaultServerURL         = "http://127.0.0.1:5000"
	DefaultAlertTimeout      = 5 // seconds added to a message box per batch
	DefaultRowsPerPage       = 10
	DefaultAnimationDuration = 250 * time.Millisecond
	DefaultAnimationFrame    = 5 * time.Millisecond
	DefaultAnchorMargin      = 1 // terminal rows between the alert stack and the status line
	DefaultRequestTimeout    = 10 * time.Second
)
