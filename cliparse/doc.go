// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration parsing for both the bot process
and the supervisor.

Configuration comes from CLI flags with environment-variable fallback.
Secrets should be provided through the environment (or a local .env
file, which is loaded automatically when present).

# Bot configuration

Required:

  - BOT_TOKEN (-token): Bot API token
  - GROUP_CHAT_ID (-chat): destination chat for scheduled polls
  - PREDICTIONS_SHEET_ID: predictions spreadsheet (sheets backend)
  - POLL_MAP_SHEET_ID: poll map spreadsheet (sheets backend)
  - GOOGLE_CREDENTIALS_JSON: service account JSON (sheets backend)

Optional:

  - SCHEDULE_CSV (-schedule): schedule file (default: ipl_schedule.csv)
  - ADMIN_USER_IDS (-admins): comma-separated admin user IDs
  - STORE_BACKEND (-store): "sheets" (default) or "sqlite"
  - SQLITE_PATH (-sqlite-path): local database path (sqlite backend)

# Supervisor configuration

The supervisor takes no flags. It reads BOT_TOKEN (for webhook cleanup)
and BOT_COMMAND (path to the bot binary, default ./predictbot).
*/
package cliparse
