// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package telegram is a minimal Telegram Bot API client.

It covers exactly the surface this bot uses: sending messages and
polls, long-polling for updates, registering commands, and the
webhook status/cleanup calls the supervisor needs. API-level 409
responses map to ErrConflict, the signal that a second process is
consuming updates for the same bot identity.
*/
package telegram
