//go:build vectordebug

package vector

// debugChecks enables per-slot lifetime assertions.
const debugChecks = true
