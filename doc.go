// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main is the entry point for the prediction bot process.

The bot runs scheduled prediction polls for a tournament, records
votes into a spreadsheet-backed store, scores matches on an admin
command, and reports a leaderboard.

# Starting the bot

The bot is normally launched and supervised by cmd/botmanager, but
runs standalone too:

	BOT_TOKEN=... GROUP_CHAT_ID=... PREDICTIONS_SHEET_ID=... \
	POLL_MAP_SHEET_ID=... GOOGLE_CREDENTIALS_JSON=... ./predictbot

For local development without Google Sheets:

	BOT_TOKEN=... GROUP_CHAT_ID=... ./predictbot -store sqlite

# Architecture

  - cliparse: configuration parsing for bot and supervisor
  - schedule: immutable CSV-loaded match registry
  - store: three-op tabular store boundary (Sheets, SQLite, memory)
  - pollmap: append-only poll-to-match mapping
  - predictions: vote reconciliation, scoring, leaderboard
  - telegram: minimal Bot API client
  - scheduler: one-shot poll timers
  - bot: single-threaded event loop and command handlers
  - manager: process supervision (used by cmd/botmanager)

See package documentation for each component.
*/
package main
