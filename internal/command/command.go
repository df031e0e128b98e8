// Package command turns chat text into bot commands.
//
// Parsing is whitespace based with no quoting: tokens past the last
// expected argument are folded into the final field, so a join note may
// contain spaces but a name or item may not.
package command

// Kind names a command variant, used for logging and metrics labels
type Kind string

const (
	KindOpen         Kind = "open"
	KindPostSchedule Kind = "post_schedule"
	KindJoin         Kind = "join"
	KindList         Kind = "list"
	KindLeave        Kind = "leave"
	KindClose        Kind = "close"
	KindHelp         Kind = "help"
	KindMalformed    Kind = "malformed"
	KindIgnore       Kind = "ignore"
)

// Command is one of the variants below. The set is closed.
type Command interface {
	Kind() Kind
	sealed()
}

// Open starts a simple sign-up list
type Open struct {
	Title string
}

// PostSchedule starts a numbered schedule list from a pasted timetable
type PostSchedule struct {
	Text string
}

// Join registers the sender. Number is the N of "+N": ignored by simple
// lists, the slot number for schedule lists. Empty Name means "use my
// display name".
type Join struct {
	Number int
	Name   string
	Item   string
	Note   string
}

// List shows the current roster
type List struct{}

// Leave removes the sender; Slot > 0 limits it to one schedule slot
type Leave struct {
	Slot int
}

// Close freezes the list and posts the final roster
type Close struct{}

// Help shows usage
type Help struct{}

// Malformed is a recognised keyword with unusable arguments
type Malformed struct {
	Usage string
}

// Ignore is any text that is not addressed to the bot
type Ignore struct{}

func (Open) Kind() Kind         { return KindOpen }
func (PostSchedule) Kind() Kind { return KindPostSchedule }
func (Join) Kind() Kind         { return KindJoin }
func (List) Kind() Kind         { return KindList }
func (Leave) Kind() Kind        { return KindLeave }
func (Close) Kind() Kind        { return KindClose }
func (Help) Kind() Kind         { return KindHelp }
func (Malformed) Kind() Kind    { return KindMalformed }
func (Ignore) Kind() Kind       { return KindIgnore }

func (Open) sealed()         {}
func (PostSchedule) sealed() {}
func (Join) sealed()         {}
func (List) sealed()         {}
func (Leave) sealed()        {}
func (Close) sealed()        {}
func (Help) sealed()         {}
func (Malformed) sealed()    {}
func (Ignore) sealed()       {}
