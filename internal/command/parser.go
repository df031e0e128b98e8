package command

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Usage hints returned in Malformed
const (
	UsageOpen  = "格式：接龍 [名稱]\n例：接龍 草莓團購"
	UsageJoin  = "格式：+1 [姓名] [項目] [備註]\n例：+1 小明 早班"
	UsageLeave = "格式：退出 或 退出 [編號]"
)

var (
	openKeywords  = []string{"接龍", "開團", "open"}
	joinKeywords  = []string{"join"}
	listKeywords  = []string{"列表", "查看", "名單", "list"}
	leaveKeywords = []string{"退出", "取消", "leave"}
	closeKeywords = []string{"結束接龍", "結團", "關閉接龍", "close"}
	helpKeywords  = []string{"說明", "幫助", "help"}
)

// Normalize folds full-width ASCII and the ideographic space typed through
// a CJK input method to their narrow forms, then trims the text
func Normalize(text string) string {
	return strings.TrimSpace(width.Fold.String(text))
}

// Parse classifies one chat message
func Parse(text string) Command {
	text = Normalize(text)
	if text == "" {
		return Ignore{}
	}

	if strings.Contains(text, "\n") && IsSchedulePost(text) {
		return PostSchedule{Text: text}
	}

	if strings.HasPrefix(text, "+") {
		return parseJoin(text[1:])
	}

	keyword, args := splitKeyword(text)
	keyword = strings.ToLower(strings.TrimPrefix(keyword, "/"))

	switch {
	case matches(keyword, openKeywords):
		if args == "" {
			return Malformed{Usage: UsageOpen}
		}
		return Open{Title: strings.Join(strings.Fields(args), " ")}
	case matches(keyword, joinKeywords):
		return joinFromFields(1, strings.Fields(args))
	case matches(keyword, listKeywords) && args == "":
		return List{}
	case matches(keyword, closeKeywords) && args == "":
		return Close{}
	case matches(keyword, helpKeywords) && args == "":
		return Help{}
	case matches(keyword, leaveKeywords):
		return parseLeave(args)
	}
	return Ignore{}
}

// parseJoin handles the text after "+": a number, then name, item, note
func parseJoin(rest string) Command {
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return Ignore{}
	}
	// "+1abc" is chatter, not a command
	tail := rest[digits:]
	if tail != "" && !startsWithSpace(tail) {
		return Ignore{}
	}

	number, err := strconv.Atoi(rest[:digits])
	if err != nil || number <= 0 {
		return Ignore{}
	}
	return joinFromFields(number, strings.Fields(tail))
}

func joinFromFields(number int, fields []string) Join {
	join := Join{Number: number}
	if len(fields) > 0 {
		join.Name = fields[0]
	}
	if len(fields) > 1 {
		join.Item = fields[1]
	}
	if len(fields) > 2 {
		join.Note = strings.Join(fields[2:], " ")
	}
	return join
}

func parseLeave(args string) Command {
	if args == "" {
		return Leave{}
	}
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return Malformed{Usage: UsageLeave}
	}
	slot, err := strconv.Atoi(fields[0])
	if err != nil || slot <= 0 {
		return Malformed{Usage: UsageLeave}
	}
	return Leave{Slot: slot}
}

// splitKeyword separates the first token from the rest of the text
func splitKeyword(text string) (string, string) {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return text, ""
	}
	return text[:idx], strings.TrimSpace(text[idx:])
}

func matches(keyword string, keywords []string) bool {
	for _, k := range keywords {
		if keyword == k {
			return true
		}
	}
	return false
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
