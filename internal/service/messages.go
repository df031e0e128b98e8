package service

import "fmt"

// HelpText is the static usage summary
const HelpText = `📖 接龍助理使用說明
─────────────────
【工作認養排班模式】
直接將排班表貼到群組
→ Bot 自動解析並編號

+[編號] 你的名字  — 報名特定工作
+3 小明           — 報名第3項
+3               — 報名第3項（用LINE暱稱）
退出 [編號]       — 取消特定項目報名
列表              — 查看目前報名狀況
結束接龍          — 封存最終名單

─────────────────
【簡易接龍模式】
接龍 [名稱]  — 開始新的接龍
+1 [姓名] [項目] [備註] — 依序加入
列表         — 查看名單
退出         — 移除自己
結束接龍     — 封存最終名單`

// WelcomeText is sent when the bot is added to a group
const WelcomeText = `👋 大家好！我是接龍助理

📋 工作認養排班：
直接將排班表貼到群組，我會自動解析並編號，大家用 +編號 姓名 報名

📝 簡易接龍：
輸入「接龍 [名稱]」開始

輸入「說明」查看完整指令`

// FailureText is the reply when a command could not be completed
const FailureText = "⚠️ 系統忙碌中，請稍後再試。"

const (
	msgNoActiveList      = "目前沒有進行中的接龍。"
	msgNoActiveListHint  = "目前沒有進行中的接龍。\n請貼上排班表，或輸入「接龍 [名稱]」開始簡易接龍。"
	msgNoScheduleSlots   = "找不到日期資料，無法建立排班表。請確認格式如：3/1（日）活動名稱"
	msgScheduleJoinUsage = "格式：+[編號] 你的名字\n例：+3 小明\n（輸入「列表」查看可報名項目）"
	msgNotInList         = "✅ 你目前不在名單中，無需退出。"
	msgNoSlotSignups     = "✅ 你目前沒有報名任何工作項目。"
	separator            = "────────────────"
	anonymous            = "匿名"
	defaultOpener        = "開團者"
	defaultScheduleOwner = "負責人"
)

func msgAlreadyOpen(title string) string {
	return fmt.Sprintf("⚠️ 目前已有進行中的接龍「%s」。\n請先輸入「結束接龍」再開始新的接龍。", title)
}

func msgSlotNotFound(num int) string {
	return fmt.Sprintf("找不到第 %d 號工作項目。\n輸入「列表」查看可報名的項目。", num)
}

func msgSlotFull(num, required int) string {
	return fmt.Sprintf("❌ 第 %d 號已額滿（%d 人）！", num, required)
}

func msgSlotLeft(num int) string {
	return fmt.Sprintf("✅ 已取消第 %d 號工作的報名。", num)
}

func msgSlotNotJoined(num int) string {
	return fmt.Sprintf("✅ 你目前沒有報名第 %d 號工作。", num)
}
