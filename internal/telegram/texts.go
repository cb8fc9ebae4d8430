package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/calendar-bot/internal/commands"
	"github.com/ykvlv/calendar-bot/internal/delivery"
)

// UI texts in Japanese
const (
	startText = "👋 予定管理Botです。\n\n" +
		"グループで /init を実行すると予定の通知がこのチャットに届きます。\n" +
		"予定の作成: /create name=\"定例会\" start_year=2024 start_month=1 start_day=15 start_hour=10 start_minute=0 " +
		"end_year=2024 end_month=1 end_day=15 end_hour=11 end_minute=0 notify_1=30m\n" +
		"使い方は /help を参照してください。"
	argsErrorText = "引数は key=value 形式で指定してください (例: name=\"定例会\")"
	internalError = "エラーが発生しました。しばらくしてから再度お試しください"
)

// mainMenuKeyboard builds a reply keyboard with the read-only commands.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/list"),
			tgbotapi.NewKeyboardButton("/help"),
		),
	)
}

// pagerKeyboard builds ◀/▶ buttons for a list reply. It returns false when
// there is only one page.
func pagerKeyboard(p commands.Pager) (tgbotapi.InlineKeyboardMarkup, bool) {
	if p.Pages <= 1 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	var row []tgbotapi.InlineKeyboardButton
	if p.HasPrev() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("◀", p.ID(p.Page-1)))
	}
	if p.HasNext() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("▶", p.ID(p.Page+1)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

// renderHTML renders a rich message as Telegram HTML.
func renderHTML(m delivery.Message) string {
	var b strings.Builder
	if m.Author != "" {
		b.WriteString("🔔 " + escape(m.Author) + "\n\n")
	}
	if m.Title != "" {
		b.WriteString("<b>" + escape(m.Title) + "</b>\n")
	}
	if m.Description != "" {
		b.WriteString(escape(m.Description) + "\n")
	}
	for _, f := range m.Fields {
		b.WriteString("\n<b>" + escape(f.Name) + "</b>: " + escape(f.Value))
	}
	if m.Footer != "" {
		b.WriteString("\n\n<i>" + escape(m.Footer) + "</i>")
	}
	return strings.TrimSpace(b.String())
}

// renderReply renders a command reply as Telegram HTML.
func renderReply(r commands.Reply) string {
	parts := make([]string, 0, 2)
	if r.Content != "" {
		parts = append(parts, escape(r.Content))
	}
	if r.Embed != nil {
		parts = append(parts, renderHTML(*r.Embed))
	}
	return strings.Join(parts, "\n\n")
}
