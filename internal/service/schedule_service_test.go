package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"jielong-bot/internal/domain"
	"jielong-bot/internal/dto"
)

const scheduleText = `三月工作認養如下：
3/1（日）環境打掃 2人 8:00-10:00
3/8（日）活動支援
上午：布置
下午：收拾
3/15（日）值班 9:00-12:00`

func postSchedule(t *testing.T, svc SignupService) string {
	t.Helper()
	reply, err := svc.PostSchedule(context.Background(), &dto.PostScheduleRequest{
		Sender: sender("Uowner", "負責人小林"),
		Text:   scheduleText,
	})
	require.NoError(t, err)
	return reply
}

func joinSlot(t *testing.T, svc SignupService, userID, lineName string, num int, name string) string {
	t.Helper()
	reply, err := svc.Join(context.Background(), &dto.JoinRequest{
		Sender: sender(userID, lineName),
		Number: num,
		Name:   name,
	})
	require.NoError(t, err)
	return reply
}

func slotSignupsOf(t *testing.T, db *gorm.DB) []*domain.SlotSignup {
	t.Helper()
	var signups []*domain.SlotSignup
	require.NoError(t, db.Order("slot_num ASC, id ASC").Find(&signups).Error)
	return signups
}

func TestScheduleService_PostSchedule(t *testing.T) {
	svc, db, m := setupService(t)

	reply := postSchedule(t, svc)
	assert.Contains(t, reply, "排班表已建立")
	assert.Contains(t, reply, "📋 三月工作認養")
	assert.Contains(t, reply, "共 4 個工作項目")
	assert.Contains(t, reply, "1. 3/1（日）環境打掃 8:00-10:00 2人")
	assert.Contains(t, reply, "2. 3/8（日）活動支援 上午")
	assert.Contains(t, reply, "3. 3/8（日）活動支援 下午")
	assert.Contains(t, reply, "4. 3/15（日）值班 9:00-12:00")

	var list domain.SignupList
	require.NoError(t, db.First(&list).Error)
	assert.Equal(t, domain.ListKindSchedule, list.Kind)
	assert.Equal(t, "負責人小林", list.OpenerName)

	var slots []domain.Slot
	require.NoError(t, db.Order("num").Find(&slots).Error)
	require.Len(t, slots, 4)
	assert.Equal(t, 2, slots[0].RequiredCount)

	assert.Equal(t, 1.0, testCounter(t, m.ListsOpenedTotal.WithLabelValues("SCHEDULE")))
}

func TestScheduleService_PostScheduleRejections(t *testing.T) {
	t.Run("while a list is open", func(t *testing.T) {
		svc, _, _ := setupService(t)
		openList(t, svc, "草莓團購")

		reply := postSchedule(t, svc)
		assert.Equal(t, msgAlreadyOpen("草莓團購"), reply)
	})

	t.Run("without date lines", func(t *testing.T) {
		svc, _, _ := setupService(t)

		reply, err := svc.PostSchedule(context.Background(), &dto.PostScheduleRequest{
			Sender: sender("Uowner", ""),
			Text:   "大家好\n今天天氣不錯",
		})
		require.NoError(t, err)
		assert.Equal(t, msgNoScheduleSlots, reply)
	})
}

func TestScheduleService_JoinSlot(t *testing.T) {
	svc, db, _ := setupService(t)
	postSchedule(t, svc)

	reply := joinSlot(t, svc, "Uming", "LINE小明", 4, "小明")
	assert.Contains(t, reply, "報名成功")
	assert.Contains(t, reply, "4. 3/15（日）值班 9:00-12:00 → 小明")

	reply = joinSlot(t, svc, "Uming", "LINE小明", 4, "王小明")
	assert.Contains(t, reply, "已更新")
	assert.Contains(t, reply, "→ 王小明")

	reply = joinSlot(t, svc, "Uhua", "LINE小華", 2, "")
	assert.Contains(t, reply, "→ LINE小華")

	signups := slotSignupsOf(t, db)
	require.Len(t, signups, 2)
	assert.Equal(t, 2, signups[0].SlotNum)
	assert.Equal(t, "LINE小華", signups[0].DisplayName)
	assert.Equal(t, 4, signups[1].SlotNum)
	assert.Equal(t, "王小明", signups[1].DisplayName)
}

func TestScheduleService_JoinSlotRejections(t *testing.T) {
	svc, db, _ := setupService(t)
	postSchedule(t, svc)

	assert.Equal(t, msgSlotNotFound(9), joinSlot(t, svc, "Ua", "", 9, "阿明"))
	assert.Equal(t, msgScheduleJoinUsage, joinSlot(t, svc, "Ua", "", 0, "阿明"))

	// Slot 1 takes two people
	assert.Contains(t, joinSlot(t, svc, "Ua", "", 1, "阿明"), "報名成功")
	assert.Contains(t, joinSlot(t, svc, "Ub", "", 1, "阿華"), "報名成功")
	assert.Equal(t, msgSlotFull(1, 2), joinSlot(t, svc, "Uc", "", 1, "阿強"))

	// A signed-up user renaming is not blocked by capacity
	assert.Contains(t, joinSlot(t, svc, "Ub", "", 1, "華華"), "已更新")

	assert.Len(t, slotSignupsOf(t, db), 2)
}

func TestScheduleService_JoinSlotMultiWordName(t *testing.T) {
	svc, db, _ := setupService(t)
	postSchedule(t, svc)

	_, err := svc.Join(context.Background(), &dto.JoinRequest{
		Sender: sender("Ua", ""),
		Number: 4,
		Name:   "王",
		Item:   "小明",
		Note:   "與 小華",
	})
	require.NoError(t, err)

	signups := slotSignupsOf(t, db)
	require.Len(t, signups, 1)
	assert.Equal(t, "王 小明 與 小華", signups[0].DisplayName)
}

func TestScheduleService_Leave(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	postSchedule(t, svc)

	joinSlot(t, svc, "Ua", "", 1, "阿明")
	joinSlot(t, svc, "Ua", "", 3, "阿明")
	joinSlot(t, svc, "Ua", "", 4, "阿明")
	joinSlot(t, svc, "Ub", "", 4, "阿華")

	reply, err := svc.Leave(ctx, &dto.LeaveRequest{Sender: sender("Ua", ""), Slot: 3})
	require.NoError(t, err)
	assert.Equal(t, msgSlotLeft(3), reply)

	reply, err = svc.Leave(ctx, &dto.LeaveRequest{Sender: sender("Ua", ""), Slot: 3})
	require.NoError(t, err)
	assert.Equal(t, msgSlotNotJoined(3), reply)

	reply, err = svc.Leave(ctx, &dto.LeaveRequest{Sender: sender("Ua", "")})
	require.NoError(t, err)
	assert.Contains(t, reply, "第 1, 4 號")

	reply, err = svc.Leave(ctx, &dto.LeaveRequest{Sender: sender("Ua", "")})
	require.NoError(t, err)
	assert.Equal(t, msgNoSlotSignups, reply)

	signups := slotSignupsOf(t, db)
	require.Len(t, signups, 1)
	assert.Equal(t, "Ub", signups[0].UserID)
}

func TestScheduleService_ListAndClose(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	postSchedule(t, svc)

	joinSlot(t, svc, "Ua", "", 1, "阿明")
	joinSlot(t, svc, "Ub", "", 1, "阿華")
	joinSlot(t, svc, "Uc", "", 4, "阿強")

	reply, err := svc.List(ctx, testConversation)
	require.NoError(t, err)
	assert.Contains(t, reply, "（負責人：負責人小林）")
	assert.Contains(t, reply, "1. 3/1（日）環境打掃 8:00-10:00（共2人）\n   👤 阿明、阿華")
	assert.Contains(t, reply, "2. 3/8（日）活動支援 上午\n   👤 （尚無人報名）")
	assert.Contains(t, reply, "4. 3/15（日）值班 9:00-12:00\n   👤 阿強")

	reply, err = svc.Close(ctx, testConversation)
	require.NoError(t, err)
	assert.Contains(t, reply, "工作認養已結束")
	assert.Contains(t, reply, "共 3 人報名")

	reply = joinSlot(t, svc, "Ud", "", 2, "阿德")
	assert.Equal(t, msgNoActiveListHint, reply)
}
