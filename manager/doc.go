// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package manager supervises the bot process.

The supervisor launches the bot as a subprocess, tees its output to
the console, and scans stderr for the webhook-conflict marker that
means two pollers are fighting over the same bot identity. On
conflict it terminates the child (gracefully, then forcefully after a
grace period), cleans up the stale webhook, and restarts.

Restart accounting runs two independent budgets: a hard ceiling of
total restarts, and a consecutive-error counter that trips a cooldown
when the child keeps dying within seconds of starting. Fast failures
(under ten seconds of runtime) count as consecutive errors; a crash
after a long healthy run resets the counter. Runtime is the only
signal; the non-zero exit code itself is not inspected further.

A child that exits with code 0 is never restarted.
*/
package manager
