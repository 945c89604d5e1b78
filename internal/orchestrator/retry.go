// Stellarview - Space Mission Telemetry Dashboard
// Copyright 2026 Stellarview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stellarview/stellarview

package orchestrator

import "time"

// RetryPolicy centralizes the retry and delay decisions used by the
// orchestrator's failure paths, instead of scattering magic numbers at the
// call sites. One policy instance is shared by all streams; per-stream
// retry budgets come from each StreamDefinition.
type RetryPolicy struct {
	// StartupRetryDelay is how long to wait before the single retry that
	// follows a failed stream start.
	StartupRetryDelay time.Duration
}

// DefaultRetryPolicy matches the production defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		StartupRetryDelay: 30 * time.Second,
	}
}

// Retryable reports whether a stream that has failed errorCount consecutive
// times is still within its per-stream retry budget.
func (p RetryPolicy) Retryable(errorCount, maxRetries int) bool {
	return errorCount < maxRetries
}
