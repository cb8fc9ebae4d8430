package commands

// Command descriptions shown by the platforms.
var Descriptions = map[string]string{
	CmdCreate:   "予定を新たに作成します",
	CmdInit:     "このBotの通知の送信先を設定します",
	CmdList:     "予定の一覧を表示します",
	CmdRestrict: "予定作成をサーバー管理者のみに制限するかを切り替えます",
	CmdHelp:     "このBotの使い方を表示します",
	CmdInvite:   "このBotの招待URLを表示します",
}

// Option names of the create command.
const (
	OptName        = "name"
	OptDescription = "description"
	OptStartYear   = "start_year"
	OptStartMonth  = "start_month"
	OptStartDay    = "start_day"
	OptStartHour   = "start_hour"
	OptStartMinute = "start_minute"
	OptEndYear     = "end_year"
	OptEndMonth    = "end_month"
	OptEndDay      = "end_day"
	OptEndHour     = "end_hour"
	OptEndMinute   = "end_minute"
	OptIsAllDay    = "is_all_day"
	OptColor       = "color"
)

// NotifyOptions are the reminder slots of the create command; slot i is offset key i.
var NotifyOptions = []string{"notify_1", "notify_2", "notify_3", "notify_4"}

// Option names of the other commands.
const (
	OptChannel = "channel"
	OptRange   = "range"
	OptPage    = "page"
)

// OptionDescriptions documents every option.
var OptionDescriptions = map[string]string{
	OptName:        "予定の名称",
	OptDescription: "予定の説明",
	OptStartYear:   "予定開始時間(年)",
	OptStartMonth:  "予定開始時間(月)",
	OptStartDay:    "予定開始時間(日)",
	OptStartHour:   "予定開始時間(時)",
	OptStartMinute: "予定開始時間(分)",
	OptEndYear:     "予定終了時間(年)",
	OptEndMonth:    "予定終了時間(月)",
	OptEndDay:      "予定終了時間(日)",
	OptEndHour:     "予定終了時間(時)",
	OptEndMinute:   "予定終了時間(分)",
	OptIsAllDay:    "終日行う予定か",
	OptColor:       "予定の配色",
	"notify_1":     "予定の事前通知",
	"notify_2":     "予定の事前通知",
	"notify_3":     "予定の事前通知",
	"notify_4":     "予定の事前通知",
	OptChannel:     "通知先のチャンネル(指定しない場合はこのコマンドを送信したチャンネルになります)",
	OptRange:       "表示する予定の範囲",
	OptPage:        "表示するページ",
}

// RangeLabels are the menu names of domain.Range values.
var RangeLabels = []struct{ Value, Label string }{
	{"past", "過去"},
	{"future", "未来"},
	{"all", "全て"},
}

const (
	textGuildOnly       = "このコマンドはサーバーでのみ実行可能です"
	textNeedManage      = "このコマンドを実行するためには「管理者」「サーバー管理」「ロールの管理」「メッセージの管理」のいずれかの権限が必要です"
	textMissingOption   = "必須項目が入力されていません: %s"
	textInvalidOption   = "入力値が不正です: %s"
	textInvalidStart    = "無効な開始日時です: %d/%d/%d %d:%d"
	textInvalidEnd      = "無効な終了日時です: %d/%d/%d %d:%d"
	textStartAfterEnd   = "開始時間が終了時間より後になっています"
	textNameTooLong     = "予定の名称は%d文字以内で入力してください"
	textDescTooLong     = "予定の説明は%d文字以内で入力してください"
	textUnknownColor    = "存在しない配色です: %s"
	textInvalidNotify   = "無効な事前通知です: %s"
	textCreated         = "正常に予定を作成しました"
	textNeedChannel     = "チャンネルを指定してください"
	textSettingsCreated = "イベント通知を有効にしました\n通知先: %s"
	textSettingsUpdated = "イベント通知先を変更しました\n通知先: %s → %s"
	textNoEvents        = "現在登録されている予定はありません"
	textRestrictOn      = "予定の作成をサーバー管理者のみに制限しました"
	textRestrictOff     = "予定の作成制限を解除しました"
	textNoInvitation    = "招待URLが設定されていません"

	fieldStart    = "開始時間"
	fieldEnd      = "終了時間"
	fieldNotify   = "通知"
	listTitle     = "予定一覧"
	listFieldFmt  = "`開始時刻`: %s\n`終了時刻`: %s\n`　通知　`: %s"
	listFooterFmt = "ページ %d/%d"
	noneText      = "なし"
	helpTitle     = "Calendar Bot - Help"
)

const helpText = `このBotはサーバー用の__予定管理Bot__です

__**🌟初期化🌟**__
　この操作を行わなくても予定の追加はできますが
追加した予定の開始時間になった際にチャンネルに
投稿するようにするには初期化処理が必要です！

　このBotからメッセージを受信したいチャンネルで
` + "```\n/init\n```" + `
　と入力してください

　受信チャンネルを変更したい際には再度別のチャンネルで
このコマンドを実行して下さい

__**🌟コマンド機能🌟**__
　予定の表示と作成が行えます！
　詳しくは` + "`/create`, `/list`" + `と打ってみてください！

__**🌟実行制限🌟**__
　` + "`/restrict`" + `で予定の作成を管理者のみに制限できます`

const helpInviteFmt = `

__**🌟他のサーバーにも導入する場合🌟**__
　[こちら](%s)より導入をお願いします！`
