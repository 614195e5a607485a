package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sigra-edu/sigra-api/internal/dto"
	"github.com/sigra-edu/sigra-api/internal/models"
	"github.com/sigra-edu/sigra-api/internal/repository"
)

func newNotificationService(t *testing.T, name string) NotificationService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))

	repo := repository.NewNotificationRepository(db)
	return NewNotificationService(repo, nil, "", nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestNotificationPublishDeliversToSubscribers(t *testing.T) {
	svc := newNotificationService(t, "notification_publish")
	userRef := models.UserRef(models.RoleStudent, 1)

	events, cancel := svc.Subscribe(userRef)
	defer cancel()

	otherEvents, otherCancel := svc.Subscribe(models.UserRef(models.RoleStudent, 2))
	defer otherCancel()

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserRef: userRef,
		Kind:    models.NotificationKindGrade,
		Message: "New grade in Linear Algebra: Quiz 1",
		Payload: map[string]interface{}{"course_code": "MATH-201"},
	})
	require.NoError(t, err)
	require.NotZero(t, published.ID)
	require.False(t, published.Read)

	select {
	case received := <-events:
		require.Equal(t, published.ID, received.ID)
		require.Equal(t, "New grade in Linear Algebra: Quiz 1", received.Message)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the notification")
	}

	select {
	case unexpected := <-otherEvents:
		t.Fatalf("notification leaked to another user: %+v", unexpected)
	default:
	}

	listed, err := svc.List(context.Background(), userRef, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, published.ID, listed[0].ID)
}

func TestNotificationPublishSanitizesMessages(t *testing.T) {
	svc := newNotificationService(t, "notification_sanitize")
	userRef := models.UserRef(models.RoleStudent, 3)

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserRef: userRef,
		Kind:    models.NotificationKindResource,
		Message: "<b>New resource</b> in Mechanics",
	})
	require.NoError(t, err)
	require.Equal(t, "New resource in Mechanics", published.Message)

	_, err = svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserRef: userRef,
		Kind:    models.NotificationKindResource,
		Message: "<script>alert(1)</script>",
	})
	require.Error(t, err)

	_, err = svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserRef: userRef,
		Kind:    "newsletter",
		Message: "unsupported kind",
	})
	require.Error(t, err)
}

func TestNotificationMarkReadScopedToUser(t *testing.T) {
	svc := newNotificationService(t, "notification_mark_read")
	userRef := models.UserRef(models.RoleStudent, 4)

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserRef: userRef,
		Kind:    models.NotificationKindDeadline,
		Message: "Workshop 2 is due this week in Linear Algebra",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), published.ID, models.UserRef(models.RoleStudent, 99))
	require.Error(t, err)

	read, err := svc.MarkRead(context.Background(), published.ID, userRef)
	require.NoError(t, err)
	require.True(t, read.Read)

	again, err := svc.MarkRead(context.Background(), published.ID, userRef)
	require.NoError(t, err)
	require.True(t, again.Read)
}

func TestNotificationUnsubscribeClosesChannel(t *testing.T) {
	svc := newNotificationService(t, "notification_unsubscribe")
	userRef := models.UserRef(models.RoleStudent, 5)

	events, cancel := svc.Subscribe(userRef)
	cancel()

	_, open := <-events
	require.False(t, open)

	// Publishing after unsubscribe must not panic or block.
	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserRef: userRef,
		Kind:    models.NotificationKindAtRisk,
		Message: "Your average in Mechanics is 2.40, below the passing mark",
	})
	require.NoError(t, err)
}
