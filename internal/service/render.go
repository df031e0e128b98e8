package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jielong-bot/internal/command"
	"jielong-bot/internal/domain"
)

// renderOptions controls the optional header lines of a roster
type renderOptions struct {
	updatedAt *time.Time
}

// renderEntries renders a simple list with its entries in sequence order
func renderEntries(list *domain.SignupList, entries []*domain.Entry, opts renderOptions) string {
	opener := list.OpenerName
	if opener == "" {
		opener = defaultOpener
	}

	lines := []string{"📋 " + list.Title, "（開團：" + opener + "）"}
	if !list.IsOpen() {
		lines = append(lines, "🔒 已結束")
	}
	if opts.updatedAt != nil {
		lines = append(lines, "🕖 更新時間："+opts.updatedAt.Format("2006/01/02 15:04"))
	}
	lines = append(lines, separator)

	if len(entries) == 0 {
		lines = append(lines, "（尚無人加入）")
	}
	for _, e := range entries {
		lines = append(lines, entryLine(e))
	}
	return strings.Join(lines, "\n")
}

// entryLine renders "{seq}. {name} {item} {note}" dropping empty fields
func entryLine(e *domain.Entry) string {
	name := e.DisplayName
	if name == "" {
		name = anonymous
	}
	parts := []string{strconv.Itoa(e.Seq) + ".", name}
	if e.Item != "" {
		parts = append(parts, e.Item)
	}
	if e.Note != "" {
		parts = append(parts, e.Note)
	}
	return strings.Join(parts, " ")
}

// renderSchedule renders a schedule list with the names signed up on each slot
func renderSchedule(list *domain.SignupList, slots []*domain.Slot, signups []*domain.SlotSignup, opts renderOptions) string {
	owner := list.OpenerName
	if owner == "" {
		owner = defaultScheduleOwner
	}

	lines := []string{"📋 " + list.Title, "（負責人：" + owner + "）"}
	if !list.IsOpen() {
		lines = append(lines, "🔒 已結束")
	}
	if opts.updatedAt != nil {
		lines = append(lines, "🕖 更新："+opts.updatedAt.Format("2006/01/02 15:04"))
	}
	lines = append(lines, separator)

	names := groupSignups(signups)
	for _, s := range slots {
		header := fmt.Sprintf("%d. %s", s.Num, slotLabel(s))
		if s.RequiredCount > 1 {
			header += fmt.Sprintf("（共%d人）", s.RequiredCount)
		}
		lines = append(lines, header)
		if taken := names[s.Num]; len(taken) > 0 {
			lines = append(lines, "   👤 "+strings.Join(taken, "、"))
		} else {
			lines = append(lines, "   👤 （尚無人報名）")
		}
	}
	return strings.Join(lines, "\n")
}

// renderScheduleCreated is the reply to a freshly parsed timetable
func renderScheduleCreated(title string, specs []command.SlotSpec, notice string) string {
	lines := []string{
		"✅ 排班表已建立！",
		"📋 " + title,
		fmt.Sprintf("共 %d 個工作項目", len(specs)),
		separator,
	}
	for _, s := range specs {
		label := fmt.Sprintf("%d. %s", s.Num, s.Label())
		if s.RequiredCount > 1 {
			label += fmt.Sprintf(" %d人", s.RequiredCount)
		}
		lines = append(lines, label)
	}
	lines = append(lines, "", "報名方式：", "+[編號] 你的名字", "例：+3 小明", "（或只輸入 +3，用LINE暱稱報名）")
	if notice != "" {
		lines = append(lines, "", "📌 名單"+notice+"自動公布")
	}
	return strings.Join(lines, "\n")
}

func renderOpened(title, notice string) string {
	var b strings.Builder
	b.WriteString("✅ 接龍已開始！\n")
	b.WriteString("📋 " + title + "\n\n")
	b.WriteString("群組成員直接輸入：\n+1 姓名 工作項目 備註\n（工作項目和備註可省略）\n\n")
	b.WriteString("例：+1 小明 早班 8:00-12:00\n\n")
	if notice != "" {
		b.WriteString("📌 名單" + notice + "自動公布\n")
	}
	b.WriteString("隨時輸入「列表」也可查看")
	return b.String()
}

func groupSignups(signups []*domain.SlotSignup) map[int][]string {
	names := make(map[int][]string)
	for _, s := range signups {
		name := s.DisplayName
		if name == "" {
			name = anonymous
		}
		names[s.SlotNum] = append(names[s.SlotNum], name)
	}
	return names
}

func slotLabel(s *domain.Slot) string {
	return command.SlotLabel(s.Date, s.Weekday, s.Activity, s.Session, s.TimeRange)
}
