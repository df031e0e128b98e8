package command

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultScheduleTitle is used when a pasted timetable has no heading line
const DefaultScheduleTitle = "工作認養排班"

var (
	dateRe    = regexp.MustCompile(`(\d{1,2}/\d{1,2})\s*[（(]([一二三四五六日ㄧ零][一二三四五六日ㄧ零]?)[）)]`)
	countRe   = regexp.MustCompile(`(\d+)\s*人`)
	timeRe    = regexp.MustCompile(`\d{1,2}:\d{2}(?:\s*[-–]\s*\d{1,2}:\d{2})?`)
	sessionRe = regexp.MustCompile(`^\s*(上午|下午)\s*[：:]`)
	titleTail = regexp.MustCompile(`[：:如下]+$`)
)

// Sessions a slot is split into when the timetable lists 上午/下午 lines
var sessions = []string{"上午", "下午"}

// SlotSpec is one numbered work item parsed from a timetable
type SlotSpec struct {
	Num           int
	Date          string
	Weekday       string
	Activity      string
	TimeRange     string
	Session       string
	RequiredCount int
	Note          string
}

// IsSchedulePost reports whether text carries at least two "M/D（X）" date lines
func IsSchedulePost(text string) bool {
	return len(dateRe.FindAllStringIndex(text, 2)) >= 2
}

// ParseSchedule extracts the title and numbered slots of a timetable.
//
// Each date line becomes one slot, or two (上午 and 下午) when any of the
// lines below it starts with a session label. "N人" sets the head count
// and an "H:MM-H:MM" range sets the time; lines up to the next blank or
// date line add to the note.
func ParseSchedule(text string) (string, []SlotSpec) {
	lines := strings.Split(text, "\n")
	var slots []SlotSpec
	num := 1

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		loc := dateRe.FindStringSubmatchIndex(line)
		if loc == nil {
			i++
			continue
		}

		spec := SlotSpec{
			Date:          line[loc[2]:loc[3]],
			Weekday:       line[loc[4]:loc[5]],
			RequiredCount: 1,
		}
		after := strings.TrimSpace(line[loc[1]:])

		if m := countRe.FindStringSubmatchIndex(after); m != nil {
			if n, err := strconv.Atoi(after[m[2]:m[3]]); err == nil && n > 0 {
				spec.RequiredCount = n
			}
			after = strings.TrimSpace(after[:m[0]] + after[m[1]:])
		}
		if m := timeRe.FindStringIndex(after); m != nil {
			spec.TimeRange = strings.TrimSpace(after[m[0]:m[1]])
			after = strings.TrimSpace(after[:m[0]] + after[m[1]:])
		}
		spec.Activity = after

		hasSessions := false
		var notes []string
		j := i + 1
		for j < len(lines) {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				j++
				break
			}
			if dateRe.MatchString(next) {
				break
			}
			switch {
			case sessionRe.MatchString(next):
				hasSessions = true
			case spec.TimeRange == "" && timeRe.MatchString(next):
				spec.TimeRange = next
			default:
				notes = append(notes, next)
			}
			j++
		}
		spec.Note = strings.TrimSpace(strings.Join(notes, " "))

		if hasSessions {
			for _, session := range sessions {
				s := spec
				s.Num = num
				s.Session = session
				slots = append(slots, s)
				num++
			}
		} else {
			spec.Num = num
			slots = append(slots, spec)
			num++
		}

		i = j
	}

	return scheduleTitle(lines), slots
}

func scheduleTitle(lines []string) string {
	if len(lines) == 0 {
		return DefaultScheduleTitle
	}
	first := strings.TrimSpace(lines[0])
	if first == "" || dateRe.MatchString(first) {
		return DefaultScheduleTitle
	}
	title := strings.TrimSpace(titleTail.ReplaceAllString(first, ""))
	if title == "" {
		return DefaultScheduleTitle
	}
	return title
}

// Label renders a slot heading such as "3/18（三）苓雅共修處值班 上午 9:00-12:00"
func (s SlotSpec) Label() string {
	return SlotLabel(s.Date, s.Weekday, s.Activity, s.Session, s.TimeRange)
}

// SlotLabel renders a slot heading from its parts
func SlotLabel(date, weekday, activity, session, timeRange string) string {
	var b strings.Builder
	b.WriteString(date)
	b.WriteString("（")
	b.WriteString(weekday)
	b.WriteString("）")
	b.WriteString(activity)
	if session != "" {
		b.WriteString(" ")
		b.WriteString(session)
	}
	if timeRange != "" {
		b.WriteString(" ")
		b.WriteString(timeRange)
	}
	return b.String()
}
