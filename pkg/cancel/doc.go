// Package cancel provides Signal, a race-free one-shot broadcast used to tell
// every interested goroutine that the application is stopping.
//
// Checking the fired flag and registering a waiter happen under the same
// lock that Fire uses to flip the flag and release waiters, so a waiter can
// never register in between and miss the wakeup.
package cancel
