package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"jielong-bot/internal/command"
	"jielong-bot/internal/domain"
	"jielong-bot/internal/dto"
	"jielong-bot/internal/metrics"
	"jielong-bot/internal/repository"
)

// ErrListNotOpen is returned by RenderBroadcast when the list closed after it was enumerated
var ErrListNotOpen = errors.New("list is not open")

// SignupService defines the sign-up lifecycle of a conversation.
//
// Rejections (no open list, list already open, unknown slot) come back as
// reply text with a nil error; an error always means storage failed and
// nothing was written.
type SignupService interface {
	Open(ctx context.Context, req *dto.OpenListRequest) (string, error)
	PostSchedule(ctx context.Context, req *dto.PostScheduleRequest) (string, error)
	Join(ctx context.Context, req *dto.JoinRequest) (string, error)
	List(ctx context.Context, conversationID string) (string, error)
	Leave(ctx context.Context, req *dto.LeaveRequest) (string, error)
	Close(ctx context.Context, conversationID string) (string, error)
	Help() string

	OpenLists(ctx context.Context) ([]*domain.SignupList, error)
	RenderBroadcast(ctx context.Context, listID uint) (*dto.BroadcastMessage, error)
}

// Options tunes rendering
type Options struct {
	// Location is the time zone of the "updated at" header
	Location *time.Location
	// BroadcastNotice names when the daily broadcast runs, e.g. "每天 07:00"; empty hides the hint
	BroadcastNotice string
	Now             func() time.Time
}

// signupServiceImpl is the implementation of SignupService
type signupServiceImpl struct {
	uow     repository.UnitOfWork
	metrics *metrics.Metrics
	opts    Options
	logger  *zap.Logger
}

// NewSignupService creates a new instance of SignupService
func NewSignupService(uow repository.UnitOfWork, m *metrics.Metrics, opts Options, logger *zap.Logger) SignupService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &signupServiceImpl{
		uow:     uow,
		metrics: m,
		opts:    opts,
		logger:  logger,
	}
}

// Open starts a simple list unless one is already running
func (s *signupServiceImpl) Open(ctx context.Context, req *dto.OpenListRequest) (string, error) {
	var reply string
	var opened bool
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		active, err := findOpen(ctx, repos, req.ConversationID)
		if err != nil {
			return err
		}
		if active != nil {
			reply = msgAlreadyOpen(active.Title)
			return nil
		}

		list := &domain.SignupList{
			ConversationID: req.ConversationID,
			Title:          req.Title,
			OpenerID:       req.UserID,
			OpenerName:     req.DisplayName,
			Status:         domain.ListStatusOpen,
			Kind:           domain.ListKindSimple,
		}
		if err := repos.Lists.Create(ctx, list); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				reply = msgAlreadyOpen(req.Title)
				return nil
			}
			return fmt.Errorf("create list: %w", err)
		}

		s.logger.Info("List opened",
			zap.String("conversation_id", req.ConversationID),
			zap.Uint("list_id", list.ID),
			zap.String("title", list.Title),
		)
		reply = renderOpened(list.Title, s.opts.BroadcastNotice)
		opened = true
		return nil
	})
	if err == nil && opened {
		s.recordOpened(domain.ListKindSimple)
	}
	return reply, err
}

// PostSchedule parses a timetable and starts a schedule list
func (s *signupServiceImpl) PostSchedule(ctx context.Context, req *dto.PostScheduleRequest) (string, error) {
	title, specs := command.ParseSchedule(req.Text)
	if len(specs) == 0 {
		return msgNoScheduleSlots, nil
	}

	var reply string
	var opened bool
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		active, err := findOpen(ctx, repos, req.ConversationID)
		if err != nil {
			return err
		}
		if active != nil {
			reply = msgAlreadyOpen(active.Title)
			return nil
		}

		list := &domain.SignupList{
			ConversationID: req.ConversationID,
			Title:          title,
			OpenerID:       req.UserID,
			OpenerName:     req.DisplayName,
			Status:         domain.ListStatusOpen,
			Kind:           domain.ListKindSchedule,
		}
		if err := repos.Lists.Create(ctx, list); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				reply = msgAlreadyOpen(title)
				return nil
			}
			return fmt.Errorf("create schedule list: %w", err)
		}

		slots := make([]*domain.Slot, 0, len(specs))
		for _, spec := range specs {
			slots = append(slots, &domain.Slot{
				ListID:        list.ID,
				Num:           spec.Num,
				Date:          spec.Date,
				Weekday:       spec.Weekday,
				Activity:      spec.Activity,
				TimeRange:     spec.TimeRange,
				Session:       spec.Session,
				RequiredCount: spec.RequiredCount,
				Note:          spec.Note,
			})
		}
		if err := repos.Slots.CreateBatch(ctx, slots); err != nil {
			return fmt.Errorf("create slots: %w", err)
		}

		s.logger.Info("Schedule opened",
			zap.String("conversation_id", req.ConversationID),
			zap.Uint("list_id", list.ID),
			zap.Int("slots", len(slots)),
		)
		reply = renderScheduleCreated(title, specs, s.opts.BroadcastNotice)
		opened = true
		return nil
	})
	if err == nil && opened {
		s.recordOpened(domain.ListKindSchedule)
	}
	return reply, err
}

// Join upserts the sender's entry on the open list
func (s *signupServiceImpl) Join(ctx context.Context, req *dto.JoinRequest) (string, error) {
	var reply string
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		active, err := findOpen(ctx, repos, req.ConversationID)
		if err != nil {
			return err
		}
		if active == nil {
			reply = msgNoActiveListHint
			return nil
		}

		if active.Kind == domain.ListKindSchedule {
			reply, err = s.joinSlot(ctx, repos, active, req)
		} else {
			reply, err = s.joinSimple(ctx, repos, active, req)
		}
		return err
	})
	return reply, err
}

func (s *signupServiceImpl) joinSimple(ctx context.Context, repos *repository.Repositories, list *domain.SignupList, req *dto.JoinRequest) (string, error) {
	name := displayName(req.Name, req.DisplayName)

	existing, err := repos.Entries.FindByListAndUser(ctx, list.ID, req.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("find entry: %w", err)
	}

	if existing != nil {
		existing.DisplayName = name
		existing.Item = req.Item
		existing.Note = req.Note
		if err := repos.Entries.Update(ctx, existing); err != nil {
			return "", fmt.Errorf("update entry: %w", err)
		}
		return fmt.Sprintf("✏️ 已更新！（第 %d 號）", existing.Seq) + s.listHint(), nil
	}

	seq, err := repos.Lists.NextSeq(ctx, list.ID)
	if err != nil {
		return "", fmt.Errorf("reserve sequence: %w", err)
	}
	entry := &domain.Entry{
		ListID:      list.ID,
		UserID:      req.UserID,
		DisplayName: name,
		Item:        req.Item,
		Note:        req.Note,
		Seq:         seq,
	}
	if err := repos.Entries.Create(ctx, entry); err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}
	return fmt.Sprintf("✅ 已加入！你是第 %d 號", seq) + s.listHint(), nil
}

func (s *signupServiceImpl) joinSlot(ctx context.Context, repos *repository.Repositories, list *domain.SignupList, req *dto.JoinRequest) (string, error) {
	if req.Number <= 0 {
		return msgScheduleJoinUsage, nil
	}

	slot, err := repos.Slots.FindByListAndNum(ctx, list.ID, req.Number)
	if errors.Is(err, repository.ErrNotFound) {
		return msgSlotNotFound(req.Number), nil
	}
	if err != nil {
		return "", fmt.Errorf("find slot: %w", err)
	}

	name := displayName(joinedName(req), req.DisplayName)

	existing, err := repos.Slots.FindSignup(ctx, list.ID, slot.Num, req.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("find slot signup: %w", err)
	}
	if existing != nil {
		existing.DisplayName = name
		if err := repos.Slots.UpdateSignupName(ctx, existing); err != nil {
			return "", fmt.Errorf("update slot signup: %w", err)
		}
		return fmt.Sprintf("✏️ 已更新！\n%d. %s → %s", slot.Num, slotLabel(slot), name), nil
	}

	if slot.RequiredCount > 1 {
		taken, err := repos.Slots.CountSignups(ctx, list.ID, slot.Num)
		if err != nil {
			return "", fmt.Errorf("count slot signups: %w", err)
		}
		if taken >= int64(slot.RequiredCount) {
			return msgSlotFull(slot.Num, slot.RequiredCount), nil
		}
	}

	signup := &domain.SlotSignup{
		ListID:      list.ID,
		SlotNum:     slot.Num,
		UserID:      req.UserID,
		DisplayName: name,
	}
	if err := repos.Slots.CreateSignup(ctx, signup); err != nil {
		return "", fmt.Errorf("create slot signup: %w", err)
	}
	return fmt.Sprintf("✅ 報名成功！\n%d. %s → %s\n（輸入「列表」查看完整名單）", slot.Num, slotLabel(slot), name), nil
}

// List renders the latest list of the conversation, open or closed
func (s *signupServiceImpl) List(ctx context.Context, conversationID string) (string, error) {
	var reply string
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		latest, err := repos.Lists.FindLatestByConversation(ctx, conversationID)
		if errors.Is(err, repository.ErrNotFound) {
			reply = msgNoActiveList
			return nil
		}
		if err != nil {
			return fmt.Errorf("find latest list: %w", err)
		}

		reply, _, err = s.render(ctx, repos, latest, renderOptions{})
		return err
	})
	return reply, err
}

// Leave removes the sender's entry; removing an absent entry still succeeds
func (s *signupServiceImpl) Leave(ctx context.Context, req *dto.LeaveRequest) (string, error) {
	var reply string
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		active, err := findOpen(ctx, repos, req.ConversationID)
		if err != nil {
			return err
		}
		if active == nil {
			reply = msgNoActiveList
			return nil
		}

		if active.Kind == domain.ListKindSchedule {
			reply, err = s.leaveSlots(ctx, repos, active, req)
			return err
		}

		existing, err := repos.Entries.FindByListAndUser(ctx, active.ID, req.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			reply = msgNotInList
			return nil
		}
		if err != nil {
			return fmt.Errorf("find entry: %w", err)
		}
		if _, err := repos.Entries.Delete(ctx, active.ID, req.UserID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		reply = fmt.Sprintf("✅ 已將你（第 %d 號）從名單中移除。", existing.Seq)
		return nil
	})
	return reply, err
}

func (s *signupServiceImpl) leaveSlots(ctx context.Context, repos *repository.Repositories, list *domain.SignupList, req *dto.LeaveRequest) (string, error) {
	if req.Slot > 0 {
		removed, err := repos.Slots.DeleteSignup(ctx, list.ID, req.Slot, req.UserID)
		if err != nil {
			return "", fmt.Errorf("delete slot signup: %w", err)
		}
		if removed == 0 {
			return msgSlotNotJoined(req.Slot), nil
		}
		return msgSlotLeft(req.Slot), nil
	}

	signups, err := repos.Slots.FindSignupsByUser(ctx, list.ID, req.UserID)
	if err != nil {
		return "", fmt.Errorf("find slot signups: %w", err)
	}
	if len(signups) == 0 {
		return msgNoSlotSignups, nil
	}
	if _, err := repos.Slots.DeleteSignupsByUser(ctx, list.ID, req.UserID); err != nil {
		return "", fmt.Errorf("delete slot signups: %w", err)
	}

	nums := make([]string, 0, len(signups))
	for _, signup := range signups {
		nums = append(nums, fmt.Sprint(signup.SlotNum))
	}
	return fmt.Sprintf("✅ 已取消你在第 %s 號的報名。", strings.Join(nums, ", ")), nil
}

// Close freezes the open list and returns the final roster
func (s *signupServiceImpl) Close(ctx context.Context, conversationID string) (string, error) {
	var reply string
	var closed bool
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		active, err := findOpen(ctx, repos, conversationID)
		if err != nil {
			return err
		}
		if active == nil {
			reply = msgNoActiveList
			return nil
		}

		now := s.now()
		if err := repos.Lists.Close(ctx, active.ID, now); err != nil {
			return fmt.Errorf("close list: %w", err)
		}
		active.Status = domain.ListStatusClosed
		active.ClosedAt = &now

		body, count, err := s.render(ctx, repos, active, renderOptions{updatedAt: &now})
		if err != nil {
			return err
		}

		s.logger.Info("List closed",
			zap.String("conversation_id", conversationID),
			zap.Uint("list_id", active.ID),
			zap.Int("count", count),
		)
		banner := "🔒 接龍已結束，以下為最終名單："
		if active.Kind == domain.ListKindSchedule {
			banner = "🔒 工作認養已結束！"
		}
		reply = fmt.Sprintf("%s\n\n%s\n\n共 %d 人報名", banner, body, count)
		closed = true
		return nil
	})
	if err == nil && closed && s.metrics != nil {
		s.metrics.IncrementListClosed()
	}
	return reply, err
}

// Help returns the usage summary
func (s *signupServiceImpl) Help() string {
	return HelpText
}

// OpenLists enumerates every list the daily broadcast should visit
func (s *signupServiceImpl) OpenLists(ctx context.Context) ([]*domain.SignupList, error) {
	var lists []*domain.SignupList
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		lists, err = repos.Lists.FindAllOpen(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find open lists: %w", err)
	}
	return lists, nil
}

// RenderBroadcast renders one open list for the daily announcement in its own transaction
func (s *signupServiceImpl) RenderBroadcast(ctx context.Context, listID uint) (*dto.BroadcastMessage, error) {
	var msg *dto.BroadcastMessage
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		list, err := repos.Lists.FindByID(ctx, listID)
		if err != nil {
			return fmt.Errorf("find list: %w", err)
		}
		if !list.IsOpen() {
			return ErrListNotOpen
		}

		now := s.now()
		body, count, err := s.render(ctx, repos, list, renderOptions{updatedAt: &now})
		if err != nil {
			return err
		}
		msg = &dto.BroadcastMessage{
			ConversationID: list.ConversationID,
			Title:          list.Title,
			Text:           fmt.Sprintf("📣 每日名單公布（%s）\n\n%s", now.Format("2006/01/02"), body),
			Empty:          count == 0,
		}
		return nil
	})
	return msg, err
}

// render renders a list of either kind and reports how many people signed up
func (s *signupServiceImpl) render(ctx context.Context, repos *repository.Repositories, list *domain.SignupList, opts renderOptions) (string, int, error) {
	if list.Kind == domain.ListKindSchedule {
		slots, err := repos.Slots.FindByListID(ctx, list.ID)
		if err != nil {
			return "", 0, fmt.Errorf("find slots: %w", err)
		}
		signups, err := repos.Slots.FindSignups(ctx, list.ID)
		if err != nil {
			return "", 0, fmt.Errorf("find slot signups: %w", err)
		}
		return renderSchedule(list, slots, signups, opts), len(signups), nil
	}

	entries, err := repos.Entries.FindByListID(ctx, list.ID)
	if err != nil {
		return "", 0, fmt.Errorf("find entries: %w", err)
	}
	return renderEntries(list, entries, opts), len(entries), nil
}

func (s *signupServiceImpl) recordOpened(kind domain.ListKind) {
	if s.metrics != nil {
		s.metrics.IncrementListOpened(string(kind))
	}
}

func (s *signupServiceImpl) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *signupServiceImpl) listHint() string {
	if s.opts.BroadcastNotice == "" {
		return "\n（輸入「列表」隨時查看名單）"
	}
	return "\n（名單" + s.opts.BroadcastNotice + "公布，或輸入「列表」隨時查看）"
}

// findOpen returns the open list of a conversation, or nil when there is none
func findOpen(ctx context.Context, repos *repository.Repositories, conversationID string) (*domain.SignupList, error) {
	list, err := repos.Lists.FindOpenByConversation(ctx, conversationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open list: %w", err)
	}
	return list, nil
}

// joinedName rebuilds the free-text name of a slot join: "+3 王 小明" names "王 小明"
func joinedName(req *dto.JoinRequest) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{req.Name, req.Item, req.Note} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func displayName(given, fallback string) string {
	if given != "" {
		return given
	}
	if fallback != "" {
		return fallback
	}
	return anonymous
}
