package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Gopher0727/SocialHub/internal/models"
	"github.com/Gopher0727/SocialHub/internal/repositories"
	"github.com/Gopher0727/SocialHub/internal/storage"
	"github.com/Gopher0727/SocialHub/utils/snowflake"
)

var testDBSeq atomic.Int64

// setupTestDB creates an isolated in-memory database per call.
// Shared cache keeps all pooled connections on the same database;
// a single open connection avoids SQLite table locks under concurrency.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, storage.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func newTestIDGen(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

// recordingNotifier captures pushed events for assertions.
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []*models.Notification
	directMsgs    []*models.ChatMessage
	groupMsgs     []*models.ChatMessage
}

func (r *recordingNotifier) NotificationCreated(n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recordingNotifier) DirectMessageSent(m *models.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directMsgs = append(r.directMsgs, m)
}

func (r *recordingNotifier) GroupMessageCreated(m *models.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupMsgs = append(r.groupMsgs, m)
}

func (r *recordingNotifier) notificationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}

// fixture bundles the full service stack over one test database.
type fixture struct {
	db             *gorm.DB
	notifier       *recordingNotifier
	membershipSvc  *MembershipService
	messageSvc     *MessageService
	readSvc        *ReadService
	notifySvc      *NotificationService
	userRepo       *repositories.UserRepository
	membershipRepo *repositories.MembershipRepository
	messageRepo    *repositories.MessageRepository
	receiptRepo    *repositories.ReceiptRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	idgen := newTestIDGen(t)
	notifier := &recordingNotifier{}

	userRepo := repositories.NewUserRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	receiptRepo := repositories.NewReceiptRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	notifySvc := NewNotificationService(notificationRepo, idgen, notifier, nil)
	membershipSvc := NewMembershipService(membershipRepo)
	messageSvc := NewMessageService(messageRepo, membershipRepo, notifySvc, notifier, nil, nil, idgen, nil)
	readSvc := NewReadService(messageRepo, receiptRepo)

	return &fixture{
		db:             db,
		notifier:       notifier,
		membershipSvc:  membershipSvc,
		messageSvc:     messageSvc,
		readSvc:        readSvc,
		notifySvc:      notifySvc,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		messageRepo:    messageRepo,
		receiptRepo:    receiptRepo,
	}
}

// createUser persists a user and returns its ID.
func (f *fixture) createUser(t *testing.T, username, nickname string) uint {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Nickname:     nickname,
	}
	require.NoError(t, f.userRepo.Create(user))
	return user.ID
}

// createGroupWith creates a group owned by ownerID and adds the given members.
func (f *fixture) createGroupWith(t *testing.T, ownerID uint, memberIDs ...uint) uint {
	t.Helper()
	group, err := f.membershipSvc.CreateGroup(ownerID, &CreateGroupRequest{Name: "test group"})
	require.NoError(t, err)
	for _, id := range memberIDs {
		require.NoError(t, f.membershipSvc.AddMember(group.ID, id, models.RoleMember, ownerID))
	}
	return group.ID
}
