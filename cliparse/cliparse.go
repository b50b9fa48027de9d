// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backend constants
const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
)

type Config struct {
	BotToken           string
	GroupChatID        int64
	PredictionsSheetID string
	PollMapSheetID     string
	ScheduleCSV        string
	AdminUserIDs       []int64
	StoreBackend       string
	SQLitePath         string
	GoogleCredentials  string
}

// ManagerConfig holds the supervisor's configuration. The supervisor
// takes no flags; everything comes from the environment.
type ManagerConfig struct {
	BotToken   string
	BotCommand string
}

// ParseFlags validates flags and environment variables for the bot process
func ParseFlags(args []string) (Config, error) {
	// Best-effort .env loading; a missing file is not an error
	_ = godotenv.Load()

	var cfg Config
	var chatID string
	var adminIDs string

	fs := flag.NewFlagSet("predictbot", flag.ContinueOnError)

	// Operational config (can be CLI args or env)
	fs.StringVar(&cfg.ScheduleCSV, "schedule", "", "Path to the match schedule CSV")
	fs.StringVar(&cfg.StoreBackend, "store", "", "Store backend (sheets or sqlite)")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", "", "SQLite database path (sqlite backend only)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.BotToken, "token", "", "Bot API token (prefer env)")
	fs.StringVar(&chatID, "chat", "", "Group chat ID for scheduled polls (prefer env)")
	fs.StringVar(&adminIDs, "admins", "", "Comma-separated admin user IDs (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.BotToken == "" {
		cfg.BotToken = os.Getenv("BOT_TOKEN")
	}
	if cfg.BotToken == "" {
		return Config{}, errors.New("bot token required (use -token or BOT_TOKEN env)")
	}

	if chatID == "" {
		chatID = os.Getenv("GROUP_CHAT_ID")
	}
	if chatID == "" {
		return Config{}, errors.New("group chat ID required (use -chat or GROUP_CHAT_ID env)")
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return Config{}, errors.New("invalid group chat ID: must be an integer")
	}
	cfg.GroupChatID = id

	cfg.PredictionsSheetID = os.Getenv("PREDICTIONS_SHEET_ID")
	cfg.PollMapSheetID = os.Getenv("POLL_MAP_SHEET_ID")

	if cfg.ScheduleCSV == "" {
		cfg.ScheduleCSV = os.Getenv("SCHEDULE_CSV")
		if cfg.ScheduleCSV == "" {
			cfg.ScheduleCSV = "ipl_schedule.csv" // default
		}
	}

	if cfg.StoreBackend == "" {
		cfg.StoreBackend = os.Getenv("STORE_BACKEND")
		if cfg.StoreBackend == "" {
			cfg.StoreBackend = BackendSheets
		}
	}
	if cfg.StoreBackend != BackendSheets && cfg.StoreBackend != BackendSQLite {
		return Config{}, errors.New("invalid store backend: must be sheets or sqlite")
	}

	switch cfg.StoreBackend {
	case BackendSheets:
		if cfg.PredictionsSheetID == "" {
			return Config{}, errors.New("PREDICTIONS_SHEET_ID required")
		}
		if cfg.PollMapSheetID == "" {
			return Config{}, errors.New("POLL_MAP_SHEET_ID required")
		}
		cfg.GoogleCredentials = os.Getenv("GOOGLE_CREDENTIALS_JSON")
		if cfg.GoogleCredentials == "" {
			return Config{}, errors.New("GOOGLE_CREDENTIALS_JSON required")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = os.Getenv("SQLITE_PATH")
			if cfg.SQLitePath == "" {
				cfg.SQLitePath = "predictbot.db"
			}
		}
		// Sheet IDs double as table names for the local backend
		if cfg.PredictionsSheetID == "" {
			cfg.PredictionsSheetID = "predictions"
		}
		if cfg.PollMapSheetID == "" {
			cfg.PollMapSheetID = "poll_map"
		}
	}

	if adminIDs == "" {
		adminIDs = os.Getenv("ADMIN_USER_IDS")
	}
	admins, err := parseAdminIDs(adminIDs)
	if err != nil {
		return Config{}, err
	}
	cfg.AdminUserIDs = admins

	return cfg, nil
}

// ParseManagerEnv validates the environment for the supervisor process
func ParseManagerEnv() (ManagerConfig, error) {
	_ = godotenv.Load()

	var cfg ManagerConfig

	cfg.BotToken = os.Getenv("BOT_TOKEN")
	if cfg.BotToken == "" {
		return ManagerConfig{}, errors.New("BOT_TOKEN required")
	}

	cfg.BotCommand = os.Getenv("BOT_COMMAND")
	if cfg.BotCommand == "" {
		cfg.BotCommand = "./predictbot"
	}

	return cfg, nil
}

// IsAdmin reports whether the given user ID is in the admin list
func (c Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func parseAdminIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.New("invalid ADMIN_USER_IDS: " + part + " is not an integer")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
