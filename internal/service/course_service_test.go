package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/pkg/access"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

func newCourseServiceWithMocks() (*CourseService, *MockCourseRepository, *MockNotificationRepository) {
	courses := new(MockCourseRepository)
	notifications := new(MockNotificationRepository)
	return NewCourseService(courses, NewNotificationService(notifications, nil)), courses, notifications
}

func TestCourseService_Create(t *testing.T) {
	ctx := context.Background()
	svc, courses, _ := newCourseServiceWithMocks()
	courses.On("Create", mock.Anything, mock.AnythingOfType("*entity.Course")).Return(nil)

	course, err := svc.Create(ctx, access.NewIdentity("lecturer", false, []string{access.PermCourseAdd}), " Алгебра ", "Основы")
	require.NoError(t, err)
	assert.Equal(t, "Алгебра", course.Title)
	assert.Equal(t, "lecturer", course.AuthorID)

	_, err = svc.Create(ctx, access.NewIdentity("student", false, nil), "Алгебра", "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCourseService_Join(t *testing.T) {
	ctx := context.Background()
	course := &entity.Course{ID: 1, Title: "Алгебра", AuthorID: "lecturer"}

	t.Run("self enrollment", func(t *testing.T) {
		svc, courses, notifications := newCourseServiceWithMocks()
		courses.On("AddStudent", mock.Anything, uint(1), "student").Return(true, nil)
		courses.On("GetByID", mock.Anything, uint(1)).Return(course, nil)

		require.NoError(t, svc.Join(ctx, access.NewIdentity("student", false, nil), 1, "student"))
		notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("already enrolled", func(t *testing.T) {
		svc, courses, _ := newCourseServiceWithMocks()
		courses.On("AddStudent", mock.Anything, uint(1), "student").Return(false, nil)
		courses.On("GetByID", mock.Anything, uint(1)).Return(course, nil)

		err := svc.Join(ctx, access.NewIdentity("student", false, nil), 1, "student")
		assert.ErrorIs(t, err, ErrAlreadyEnrolled)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("missing course", func(t *testing.T) {
		svc, courses, _ := newCourseServiceWithMocks()
		courses.On("AddStudent", mock.Anything, uint(2), "student").Return(false, nil)
		courses.On("GetByID", mock.Anything, uint(2)).Return(nil, apperrors.ErrNotFound)

		err := svc.Join(ctx, access.NewIdentity("student", false, nil), 2, "student")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("enrolling another user needs permission", func(t *testing.T) {
		svc, courses, _ := newCourseServiceWithMocks()

		err := svc.Join(ctx, access.NewIdentity("student", false, nil), 1, "friend")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		courses.AssertNotCalled(t, "AddStudent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin enrolls and notifies", func(t *testing.T) {
		svc, courses, notifications := newCourseServiceWithMocks()
		courses.On("AddStudent", mock.Anything, uint(1), "student").Return(true, nil)
		courses.On("GetByID", mock.Anything, uint(1)).Return(course, nil)
		notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
			return n.UserID == "student" && n.Type == entity.NotificationTypeAcademic
		})).Return(nil).Once()

		admin := access.NewIdentity("admin", false, []string{access.PermCourseUserAdd})
		require.NoError(t, svc.Join(ctx, admin, 1, "student"))
		notifications.AssertExpectations(t)
	})

	t.Run("empty target", func(t *testing.T) {
		svc, _, _ := newCourseServiceWithMocks()
		err := svc.Join(ctx, access.NewIdentity("student", false, nil), 1, "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCourseService_Leave(t *testing.T) {
	ctx := context.Background()
	course := &entity.Course{ID: 1, Title: "Алгебра", AuthorID: "lecturer"}
	svc, courses, _ := newCourseServiceWithMocks()
	courses.On("GetByID", mock.Anything, uint(1)).Return(course, nil)
	courses.On("RemoveStudent", mock.Anything, uint(1), "student").Return(nil)

	require.NoError(t, svc.Leave(ctx, access.NewIdentity("student", false, nil), 1, "student"))

	err := svc.Leave(ctx, access.NewIdentity("lecturer", false, nil), 1, "student")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCourseService_Delete_NotifiesStudents(t *testing.T) {
	ctx := context.Background()
	course := &entity.Course{ID: 1, Title: "Алгебра", AuthorID: "lecturer"}
	svc, courses, notifications := newCourseServiceWithMocks()
	courses.On("GetByID", mock.Anything, uint(1)).Return(course, nil)
	courses.On("StudentIDs", mock.Anything, uint(1)).Return([]string{"a", "b"}, nil)
	courses.On("SoftDelete", mock.Anything, uint(1)).Return(nil)
	notifications.On("Create", mock.Anything, mock.AnythingOfType("*entity.Notification")).Return(nil)

	err := svc.Delete(ctx, access.NewIdentity("student", false, nil), 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, access.NewIdentity("lecturer", false, nil), 1))
	notifications.AssertNumberOfCalls(t, "Create", 2)
}

func TestCourseService_Get_Deleted(t *testing.T) {
	ctx := context.Background()
	svc, courses, _ := newCourseServiceWithMocks()
	courses.On("GetByID", mock.Anything, uint(1)).Return(&entity.Course{ID: 1, IsDeleted: true}, nil)

	_, err := svc.Get(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCourseService_Students(t *testing.T) {
	ctx := context.Background()
	course := &entity.Course{ID: 1, Title: "Алгебра", AuthorID: "lecturer"}
	svc, courses, _ := newCourseServiceWithMocks()
	courses.On("GetByID", mock.Anything, uint(1)).Return(course, nil)
	courses.On("StudentIDs", mock.Anything, uint(1)).Return([]string{"a"}, nil)

	ids, err := svc.Students(ctx, access.NewIdentity("lecturer", false, nil), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	_, err = svc.Students(ctx, access.NewIdentity("a", false, nil), 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepository)
	publisher := new(MockNotificationPublisher)
	svc := NewNotificationService(repo, publisher)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool { return n.UserID == "a" })).Return(nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool { return n.UserID == "b" })).
		Return(errors.New("db down"))
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("*entity.Notification")).Return(errors.New("redis down"))

	// Ошибки сохранения и публикации не прерывают рассылку
	saved := svc.Notify(ctx, []string{"a", "b"}, entity.NotificationTypeSystem, "Заголовок", "Текст",
		map[string]interface{}{"course_id": 1})

	assert.Equal(t, 1, saved)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNotificationService_NilSafe(t *testing.T) {
	var svc *NotificationService
	assert.Equal(t, 0, svc.Notify(context.Background(), []string{"a"}, entity.NotificationTypeSystem, "t", "m", nil))
}

func TestNotificationService_ConfirmSent(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, nil)
	repo.On("MarkSent", mock.Anything, "a", []uint{1, 2}).Return(int64(2), nil)

	_, err := svc.ConfirmSent(ctx, "a", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	count, err := svc.ConfirmSent(ctx, "a", []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()
	courses := new(MockCourseRepository)
	tests := new(MockTestRepository)
	attempts := new(MockAttemptRepository)
	svc := NewUserService(courses, tests, attempts)

	courses.On("ListByStudent", mock.Anything, "student").Return([]entity.Course{{ID: 1}}, nil)
	tests.On("ListActiveByStudent", mock.Anything, "student").Return([]entity.Test{{ID: 2}}, nil)
	attempts.On("GradesByUser", mock.Anything, "student").Return([]entity.Grade{{TestID: 2, Score: 3}}, nil)

	profile, err := svc.GetProfile(ctx, access.NewIdentity("student", false, nil), "student", ProfileSections{})
	require.NoError(t, err)
	assert.Len(t, profile.Courses, 1)
	assert.Len(t, profile.Tests, 1)
	assert.Len(t, profile.Grades, 1)

	// Только оценки
	profile, err = svc.GetProfile(ctx, access.NewIdentity("dean", false, []string{access.PermUserDataRead}), "student", ProfileSections{Grades: true})
	require.NoError(t, err)
	assert.Nil(t, profile.Courses)
	assert.Len(t, profile.Grades, 1)

	_, err = svc.GetProfile(ctx, access.NewIdentity("other", false, nil), "student", ProfileSections{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
