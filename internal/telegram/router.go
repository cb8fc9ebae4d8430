package telegram

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/calendar-bot/internal/commands"
	"github.com/ykvlv/calendar-bot/internal/domain"
)

// Router wires Telegram updates to the command registry.
type Router struct {
	bot      *tgbotapi.BotAPI
	log      *zap.Logger
	registry *commands.Registry
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, registry *commands.Registry) *Router {
	return &Router{bot: bot, log: log, registry: registry}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.MyChatMember != nil:
		r.handleMembership(ctx, upd.MyChatMember)
	case upd.CallbackQuery != nil:
		r.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		msg := upd.Message
		switch {
		case msg.NewChatTitle != "":
			r.emit(ctx, commands.GuildEvent{Kind: commands.EventGuildUpdate, Guild: toGuild(msg.Chat)})
		case msg.IsCommand():
			r.handleCommand(ctx, msg)
		}
	}
}

// handleMembership tracks the bot joining and leaving group chats.
func (r *Router) handleMembership(ctx context.Context, m *tgbotapi.ChatMemberUpdated) {
	if m.Chat.IsPrivate() || m.NewChatMember.User == nil || m.NewChatMember.User.ID != r.bot.Self.ID {
		return
	}
	g := toGuild(&m.Chat)
	switch {
	case m.NewChatMember.HasLeft() || m.NewChatMember.WasKicked():
		r.emit(ctx, commands.GuildEvent{Kind: commands.EventGuildDelete, Guild: g})
	case m.OldChatMember.HasLeft() || m.OldChatMember.WasKicked():
		r.emit(ctx, commands.GuildEvent{Kind: commands.EventGuildCreate, Guild: g})
	}
}

func (r *Router) emit(ctx context.Context, ev commands.GuildEvent) {
	if err := r.registry.Emit(ctx, ev); err != nil {
		r.log.Error("guild event failed", zap.String("kind", ev.Kind), zap.String("guildID", ev.Guild.GuildID), zap.Error(err))
	}
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	name := msg.Command()
	if name == "start" {
		reply := tgbotapi.NewMessage(chatID, startText)
		reply.ReplyMarkup = mainMenuKeyboard()
		r.send(reply)
		return
	}

	opts, err := parseArgs(name, msg.CommandArguments())
	if err != nil {
		r.sendText(chatID, argsErrorText)
		return
	}
	req := toRequest(msg, opts)
	if req.GuildID != "" && msg.From != nil {
		req.CanManage = r.canManage(chatID, msg.From.ID)
	}

	log := r.log.With(zap.String("command", req.Name), zap.String("guildID", req.GuildID))
	reply, err := r.registry.Dispatch(ctx, req)
	if errors.Is(err, commands.ErrUnknownCommand) {
		return
	}
	if err != nil {
		log.Error("command failed", zap.Error(err))
		r.sendText(chatID, internalError)
		return
	}

	out := tgbotapi.NewMessage(chatID, renderReply(reply))
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	if reply.Ephemeral {
		out.ReplyToMessageID = msg.MessageID
	}
	if reply.Pager != nil {
		if kb, ok := pagerKeyboard(*reply.Pager); ok {
			out.ReplyMarkup = kb
		}
	}
	r.send(out)
}

// handleCallback turns list page buttons into list requests and edits the message.
func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	defer func() {
		if err := r.answerCallback(cb.ID, ""); err != nil {
			r.log.Debug("answerCallback failed", zap.Error(err))
		}
	}()
	if cb.Message == nil {
		return
	}
	req, ok := commands.ParsePagerID(cb.Data)
	if !ok {
		// Unknown callback, ignored.
		return
	}
	chat := cb.Message.Chat
	req.GuildID = guildID(chat)
	req.ChannelID = strconv.FormatInt(chat.ID, 10)

	reply, err := r.registry.Dispatch(ctx, req)
	if err != nil {
		r.log.Error("list page failed", zap.Error(err))
		return
	}

	edit := tgbotapi.NewEditMessageText(chat.ID, cb.Message.MessageID, renderReply(reply))
	edit.ParseMode = tgbotapi.ModeHTML
	if reply.Pager != nil {
		if kb, ok := pagerKeyboard(*reply.Pager); ok {
			edit.ReplyMarkup = &kb
		}
	}
	r.send(edit)
}

// canManage reports whether the user administers the chat.
func (r *Router) canManage(chatID, userID int64) bool {
	m, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		r.log.Warn("GetChatMember failed", zap.Int64("chatID", chatID), zap.Error(err))
		return false
	}
	return isManager(m)
}

func isManager(m tgbotapi.ChatMember) bool {
	return m.IsCreator() || (m.IsAdministrator() && (m.CanManageChat || m.CanDeleteMessages || m.CanRestrictMembers))
}

// --- Generic helpers ---

func (r *Router) send(c tgbotapi.Chattable) {
	if _, err := r.bot.Send(c); err != nil {
		r.log.Warn("send failed", zap.Error(err))
	}
}

func (r *Router) sendText(chatID int64, text string) {
	r.send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// guildID is the chat id of group chats and empty for private chats.
func guildID(chat *tgbotapi.Chat) string {
	if chat == nil || !(chat.IsGroup() || chat.IsSuperGroup()) {
		return ""
	}
	return strconv.FormatInt(chat.ID, 10)
}

func toGuild(chat *tgbotapi.Chat) domain.Guild {
	return domain.Guild{GuildID: strconv.FormatInt(chat.ID, 10), Name: chat.Title}
}

func toRequest(msg *tgbotapi.Message, opts map[string]string) commands.Request {
	req := commands.Request{
		Name:      msg.Command(),
		GuildID:   guildID(msg.Chat),
		ChannelID: strconv.FormatInt(msg.Chat.ID, 10),
		Options:   opts,
	}
	if msg.Chat != nil {
		req.GuildName = msg.Chat.Title
	}
	if msg.From != nil {
		req.UserID = strconv.FormatInt(msg.From.ID, 10)
	}
	return req
}
