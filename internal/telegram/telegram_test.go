package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykvlv/calendar-bot/internal/commands"
	"github.com/ykvlv/calendar-bot/internal/delivery"
)

func TestRenderHTML_Escapes(t *testing.T) {
	got := renderHTML(delivery.Message{
		Author:      "以下の予定が開催されます",
		Title:       "<Release>",
		Description: "R&D",
		Fields:      []delivery.Field{{Name: "日時", Value: "2024/01/15 10:00 - 11:00"}},
		Footer:      "ページ 1/2",
	})

	assert.Equal(t, "🔔 以下の予定が開催されます\n\n<b>&lt;Release&gt;</b>\nR&amp;D\n\n<b>日時</b>: 2024/01/15 10:00 - 11:00\n\n<i>ページ 1/2</i>", got)
}

func TestRenderReply(t *testing.T) {
	got := renderReply(commands.Reply{Content: "a < b", Embed: &delivery.Message{Title: "t"}})

	assert.Equal(t, "a &lt; b\n\n<b>t</b>", got)
}

func TestPagerKeyboard(t *testing.T) {
	_, ok := pagerKeyboard(commands.Pager{Range: "all", Page: 1, Pages: 1})
	assert.False(t, ok)

	kb, ok := pagerKeyboard(commands.Pager{Range: "all", Page: 2, Pages: 3})
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	row := kb.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, "list:all:1", *row[0].CallbackData)
	assert.Equal(t, "list:all:3", *row[1].CallbackData)

	kb, _ = pagerKeyboard(commands.Pager{Range: "all", Page: 3, Pages: 3})
	require.Len(t, kb.InlineKeyboard[0], 1)
	assert.Equal(t, "◀", kb.InlineKeyboard[0][0].Text)
}

func TestToRequest(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: -100123, Type: "supergroup", Title: "Team"},
		Text:      "/list@calendar_bot past",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 18}},
	}

	req := toRequest(msg, map[string]string{"range": "past"})

	assert.Equal(t, commands.CmdList, req.Name)
	assert.Equal(t, "-100123", req.GuildID)
	assert.Equal(t, "-100123", req.ChannelID)
	assert.Equal(t, "Team", req.GuildName)
	assert.Equal(t, "42", req.UserID)
	assert.Equal(t, "past", req.Options["range"])
}

func TestGuildID_PrivateChat(t *testing.T) {
	assert.Empty(t, guildID(&tgbotapi.Chat{ID: 5, Type: "private"}))
	assert.Equal(t, "-5", guildID(&tgbotapi.Chat{ID: -5, Type: "group"}))
	assert.Empty(t, guildID(nil))
}

func TestIsManager(t *testing.T) {
	assert.True(t, isManager(tgbotapi.ChatMember{Status: "creator"}))
	assert.True(t, isManager(tgbotapi.ChatMember{Status: "administrator", CanDeleteMessages: true}))
	assert.False(t, isManager(tgbotapi.ChatMember{Status: "administrator"}))
	assert.False(t, isManager(tgbotapi.ChatMember{Status: "member"}))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(&tgbotapi.Error{Code: 403, Message: "Forbidden: bot was kicked"}), delivery.ErrForbidden)

	transient := classify(&tgbotapi.Error{Code: 429, Message: "Too Many Requests"})
	assert.False(t, errors.Is(transient, delivery.ErrForbidden))
	assert.Zero(t, apiCode(errors.New("dial tcp: timeout")))
}

func TestBotCommands(t *testing.T) {
	cmds := botCommands()

	require.Len(t, cmds, len(commands.Descriptions))
	assert.Equal(t, commands.CmdCreate, cmds[0].Command)
}
