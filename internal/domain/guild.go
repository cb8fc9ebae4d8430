package domain

// GuildSettings maps a guild to the channel that receives its notifications.
type GuildSettings struct {
	ID        int64
	GuildID   string
	ChannelID string
}

// Guild is the bookkeeping row kept for every guild the bot has joined.
type Guild struct {
	ID        int64
	GuildID   string
	Name      string
	AvatarURL string
	Locale    string
}

// DefaultLocale is assigned to newly joined guilds.
const DefaultLocale = "ja"

// GuildConfig holds per-guild command restrictions.
type GuildConfig struct {
	GuildID    string
	Restricted bool
}
