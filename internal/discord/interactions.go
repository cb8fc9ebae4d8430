package discord

import (
	"context"
	"errors"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/commands"
)

const textInternalError = "エラーが発生しました。しばらくしてから再度お試しください"

// managePermissions grant access to restricted commands.
const managePermissions = discordgo.PermissionAdministrator |
	discordgo.PermissionManageServer |
	discordgo.PermissionManageRoles |
	discordgo.PermissionManageMessages

func canManage(perms int64) bool {
	return perms&managePermissions != 0
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var (
		req      commands.Request
		respType = discordgo.InteractionResponseChannelMessageWithSource
	)
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		req = toRequest(i.Interaction)
	case discordgo.InteractionMessageComponent:
		var ok bool
		req, ok = toPagerRequest(i.Interaction)
		if !ok {
			return
		}
		respType = discordgo.InteractionResponseUpdateMessage
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	log := b.log.With(zap.String("command", req.Name), zap.String("guildID", req.GuildID), zap.String("userID", req.UserID))

	reply, err := b.registry.Dispatch(ctx, req)
	if err != nil {
		if errors.Is(err, commands.ErrUnknownCommand) {
			log.Warn("unknown command")
		} else {
			log.Error("command failed", zap.Error(err))
		}
		reply = commands.Reply{Content: textInternalError, Ephemeral: true}
	}

	resp := toResponse(reply)
	if !reply.Ephemeral {
		resp.Type = respType
	}
	if err := s.InteractionRespond(i.Interaction, resp, discordgo.WithContext(ctx)); err != nil {
		log.Error("InteractionRespond failed", zap.Error(err))
	}
}

// toRequest converts a slash command interaction.
func toRequest(i *discordgo.Interaction) commands.Request {
	data := i.ApplicationCommandData()
	req := commands.Request{
		Name:    data.Name,
		Options: make(map[string]string, len(data.Options)),
	}
	fillCaller(&req, i)
	for _, opt := range data.Options {
		req.Options[opt.Name] = optionString(opt)
	}
	return req
}

// toPagerRequest converts a click on a list page button.
func toPagerRequest(i *discordgo.Interaction) (commands.Request, bool) {
	req, ok := commands.ParsePagerID(i.MessageComponentData().CustomID)
	if !ok {
		return commands.Request{}, false
	}
	fillCaller(&req, i)
	return req, true
}

func fillCaller(req *commands.Request, i *discordgo.Interaction) {
	req.GuildID = i.GuildID
	req.ChannelID = i.ChannelID
	switch {
	case i.Member != nil:
		req.CanManage = canManage(i.Member.Permissions)
		if i.Member.User != nil {
			req.UserID = i.Member.User.ID
		}
	case i.User != nil:
		req.UserID = i.User.ID
	}
}

// optionString renders an option value; numbers arrive as float64.
func optionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	switch v := opt.Value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func toResponse(r commands.Reply) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Content: r.Content}
	if r.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{toEmbed(*r.Embed)}
	}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if r.Pager != nil && r.Pager.Pages > 1 {
		data.Components = []discordgo.MessageComponent{pagerRow(*r.Pager)}
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

func pagerRow(p commands.Pager) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "◀",
			Style:    discordgo.SecondaryButton,
			CustomID: p.ID(p.Page - 1),
			Disabled: !p.HasPrev(),
		},
		discordgo.Button{
			Label:    "▶",
			Style:    discordgo.SecondaryButton,
			CustomID: p.ID(p.Page + 1),
			Disabled: !p.HasNext(),
		},
	}}
}
