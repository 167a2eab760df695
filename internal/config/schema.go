package config

// Config is the top-level configuration.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Store    StoreConfig    `json:"store"`
}

// TelegramConfig holds the bot transport settings. The token normally comes
// from the TELEGRAM_BOT_TOKEN environment variable rather than the file.
type TelegramConfig struct {
	Token          string  `json:"token"`
	AllowedUserIDs []int64 `json:"allowedUserIds"`
	ChannelID      int64   `json:"channelId"`
}

// StoreConfig holds the posts database settings.
type StoreConfig struct {
	Path string `json:"path"`
}
