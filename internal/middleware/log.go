package middleware

import "log"

// logf is swapped out by tests.
var logf = log.Printf
