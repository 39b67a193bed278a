package service

import (
	"context"
	"testing"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCourseCreate(t *testing.T) {
	svc := NewCourseService(newMockCourses(), nil, nopLog)
	artist := principal(domain.RoleArtist)

	c, err := svc.Create(context.Background(), artist, CourseInput{
		Title:    "Ink Drawing",
		Category: "drawing",
		Price:    30,
		Lessons:  []LessonInput{{Title: "Pens", VideoURL: "https://videos.example.com/pens", DurationSeconds: 300}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CourseStatusPending, c.Status)
	assert.Equal(t, domain.CourseLevelBeginner, c.Level)
	assert.Equal(t, 300, c.TotalDuration())

	_, err = svc.Create(context.Background(), artist, CourseInput{Title: "x", Category: "y", Level: "expert"})
	assert.EqualError(t, err, "level must be one of: beginner, intermediate, advanced")

	_, err = svc.Create(context.Background(), artist, CourseInput{
		Title: "x", Category: "y",
		Lessons: []LessonInput{{Title: "a"}},
	})
	assert.EqualError(t, err, "video_url is required")

	_, err = svc.Create(context.Background(), principal(domain.RoleBuyer), CourseInput{Title: "x", Category: "y"})
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCourseGet_RedactsLessons(t *testing.T) {
	instructor := principal(domain.RoleArtist)
	student := principal(domain.RoleBuyer)
	c := approvedCourse(instructor.UserID, 10)
	c.Students = []primitive.ObjectID{student.UserID}
	svc := NewCourseService(newMockCourses(c), nil, nopLog)
	ctx := context.Background()

	got, err := svc.Get(ctx, Principal{}, c.ID.Hex())
	require.NoError(t, err)
	assert.NotEmpty(t, got.Lessons[0].VideoURL, "preview lessons stay visible")
	assert.Empty(t, got.Lessons[1].VideoURL)

	for _, p := range []Principal{instructor, student, principal(domain.RoleAdmin)} {
		got, err = svc.Get(ctx, p, c.ID.Hex())
		require.NoError(t, err)
		assert.NotEmpty(t, got.Lessons[1].VideoURL)
	}

	list, _, err := svc.List(ctx, CourseQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Lessons[1].VideoURL)
}

func TestCourseGet_Unlisted(t *testing.T) {
	instructor := principal(domain.RoleArtist)
	c := approvedCourse(instructor.UserID, 10)
	c.Status = domain.CourseStatusPending
	svc := NewCourseService(newMockCourses(c), nil, nopLog)

	_, err := svc.Get(context.Background(), principal(domain.RoleBuyer), c.ID.Hex())
	assert.Equal(t, KindNotFound, KindOf(err))
	_, err = svc.Get(context.Background(), instructor, c.ID.Hex())
	assert.NoError(t, err)
}

func TestCourseEnroll(t *testing.T) {
	instructor := principal(domain.RoleArtist)
	free := approvedCourse(instructor.UserID, 0)
	paid := approvedCourse(instructor.UserID, 25)
	repo := newMockCourses(free, paid)
	pub := &recordingPublisher{}
	svc := NewCourseService(repo, pub, nopLog)
	student := principal(domain.RoleBuyer)
	ctx := context.Background()

	got, err := svc.Enroll(ctx, student, free.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, got.StudentCount)
	assert.True(t, repo.get(free.ID).IsEnrolled(student.UserID))
	assert.Equal(t, []primitive.ObjectID{instructor.UserID}, pub.recipients(events.CourseEnrolled))

	_, err = svc.Enroll(ctx, student, free.ID.Hex())
	assert.EqualError(t, err, "you are already enrolled in this course")

	_, err = svc.Enroll(ctx, student, paid.ID.Hex())
	assert.EqualError(t, err, "this course must be purchased")

	_, err = svc.Enroll(ctx, instructor, free.ID.Hex())
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestCourseUpdateAndDelete(t *testing.T) {
	instructor := principal(domain.RoleArtist)
	withStudents := approvedCourse(instructor.UserID, 10)
	withStudents.Students = []primitive.ObjectID{primitive.NewObjectID()}
	empty := approvedCourse(instructor.UserID, 10)
	repo := newMockCourses(withStudents, empty)
	svc := NewCourseService(repo, nil, nopLog)
	ctx := context.Background()

	level := "advanced"
	got, err := svc.Update(ctx, instructor, empty.ID.Hex(), CourseUpdate{Level: &level})
	require.NoError(t, err)
	assert.Equal(t, domain.CourseLevelAdvanced, got.Level)
	assert.Equal(t, domain.CourseStatusPending, got.Status)

	_, err = svc.Update(ctx, principal(domain.RoleArtist), empty.ID.Hex(), CourseUpdate{Level: &level})
	assert.Equal(t, KindForbidden, KindOf(err))

	archived, err := svc.Delete(ctx, instructor, withStudents.ID.Hex())
	require.NoError(t, err)
	assert.True(t, archived)
	assert.Equal(t, domain.CourseStatusArchived, repo.get(withStudents.ID).Status)

	archived, err = svc.Delete(ctx, instructor, empty.ID.Hex())
	require.NoError(t, err)
	assert.False(t, archived)
	assert.Nil(t, repo.get(empty.ID))

	_, err = svc.Review(ctx, principal(domain.RoleAdmin), withStudents.ID.Hex(), ReviewInput{Status: "approved"})
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCourseReview(t *testing.T) {
	instructor := primitive.NewObjectID()
	c := approvedCourse(instructor, 10)
	c.Status = domain.CourseStatusPending
	pub := &recordingPublisher{}
	svc := NewCourseService(newMockCourses(c), pub, nopLog)

	got, err := svc.Review(context.Background(), principal(domain.RoleAdmin), c.ID.Hex(), ReviewInput{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, domain.CourseStatusApproved, got.Status)
	assert.Equal(t, []primitive.ObjectID{instructor}, pub.recipients(events.CourseReviewed))
}
