package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/ykvlv/calendar-bot/internal/commands"
	"github.com/ykvlv/calendar-bot/internal/domain"
)

func option(t discordgo.ApplicationCommandOptionType, name string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        t,
		Name:        name,
		Description: commands.OptionDescriptions[name],
		Required:    required,
	}
}

func colorChoices() []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.Colors))
	for _, c := range domain.Colors {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: c.Label, Value: c.Value})
	}
	return out
}

func reminderChoices() []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.ReminderPresets))
	for _, p := range domain.ReminderPresets {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: domain.ReminderLabel(p), Value: p})
	}
	return out
}

func rangeChoices() []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(commands.RangeLabels))
	for _, r := range commands.RangeLabels {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: r.Label, Value: r.Value})
	}
	return out
}

func createOptions() []*discordgo.ApplicationCommandOption {
	str, integer := discordgo.ApplicationCommandOptionString, discordgo.ApplicationCommandOptionInteger

	// Discord requires required options first.
	opts := []*discordgo.ApplicationCommandOption{option(str, commands.OptName, true)}
	for _, name := range []string{
		commands.OptStartYear, commands.OptStartMonth, commands.OptStartDay, commands.OptStartHour, commands.OptStartMinute,
		commands.OptEndYear, commands.OptEndMonth, commands.OptEndDay, commands.OptEndHour, commands.OptEndMinute,
	} {
		opts = append(opts, option(integer, name, true))
	}
	opts = append(opts,
		option(str, commands.OptDescription, false),
		option(discordgo.ApplicationCommandOptionBoolean, commands.OptIsAllDay, false),
	)

	color := option(str, commands.OptColor, false)
	color.Choices = colorChoices()
	opts = append(opts, color)

	for _, name := range commands.NotifyOptions {
		o := option(str, name, false)
		o.Choices = reminderChoices()
		opts = append(opts, o)
	}
	return opts
}

// Definitions are the slash commands registered on Open.
func Definitions() []*discordgo.ApplicationCommand {
	guildOnly := false

	channel := option(discordgo.ApplicationCommandOptionChannel, commands.OptChannel, false)
	channel.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews}

	rng := option(discordgo.ApplicationCommandOptionString, commands.OptRange, false)
	rng.Choices = rangeChoices()

	minPage := 1.0
	page := option(discordgo.ApplicationCommandOptionInteger, commands.OptPage, false)
	page.MinValue = &minPage

	return []*discordgo.ApplicationCommand{
		{
			Name:         commands.CmdCreate,
			Description:  commands.Descriptions[commands.CmdCreate],
			DMPermission: &guildOnly,
			Options:      createOptions(),
		},
		{
			Name:         commands.CmdInit,
			Description:  commands.Descriptions[commands.CmdInit],
			DMPermission: &guildOnly,
			Options:      []*discordgo.ApplicationCommandOption{channel},
		},
		{
			Name:         commands.CmdList,
			Description:  commands.Descriptions[commands.CmdList],
			DMPermission: &guildOnly,
			Options:      []*discordgo.ApplicationCommandOption{rng, page},
		},
		{
			Name:         commands.CmdRestrict,
			Description:  commands.Descriptions[commands.CmdRestrict],
			DMPermission: &guildOnly,
		},
		{Name: commands.CmdHelp, Description: commands.Descriptions[commands.CmdHelp]},
		{Name: commands.CmdInvite, Description: commands.Descriptions[commands.CmdInvite]},
	}
}
