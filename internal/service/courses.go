package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/events"
	"github.com/fjod/artverse/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type LessonInput struct {
	Title           string `json:"title" validate:"required,max=120"`
	VideoURL        string `json:"video_url" validate:"required,url"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	Preview         bool   `json:"preview"`
}

type CourseInput struct {
	Title       string        `json:"title" validate:"required,max=120"`
	Description string        `json:"description" validate:"max=10000"`
	Category    string        `json:"category" validate:"required,max=60"`
	Level       string        `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       float64       `json:"price" validate:"gte=0"`
	Thumbnail   string        `json:"thumbnail" validate:"omitempty,url"`
	Lessons     []LessonInput `json:"lessons" validate:"max=200,dive"`
}

type CourseUpdate struct {
	Title       *string       `json:"title" validate:"omitempty,min=1,max=120"`
	Description *string       `json:"description" validate:"omitempty,max=10000"`
	Category    *string       `json:"category" validate:"omitempty,min=1,max=60"`
	Level       *string       `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       *float64      `json:"price" validate:"omitempty,gte=0"`
	Thumbnail   *string       `json:"thumbnail" validate:"omitempty,url"`
	Lessons     []LessonInput `json:"lessons" validate:"omitempty,max=200,dive"`
}

type CourseQuery struct {
	Category     string
	Level        string
	InstructorID string
	Search       string
	Sort         string
	repository.Page
}

type CourseService struct {
	courses repository.CourseRepository
	events  events.Publisher
	log     *zap.Logger
}

func NewCourseService(courses repository.CourseRepository, pub events.Publisher, log *zap.Logger) *CourseService {
	return &CourseService{courses: courses, events: pub, log: log}
}

func lessonsFrom(in []LessonInput) []domain.CourseLesson {
	out := make([]domain.CourseLesson, 0, len(in))
	for _, l := range in {
		out = append(out, domain.CourseLesson{
			Title:           clean(l.Title),
			VideoURL:        l.VideoURL,
			DurationSeconds: l.DurationSeconds,
			Preview:         l.Preview,
		})
	}
	return out
}

func (s *CourseService) Create(ctx context.Context, p Principal, in CourseInput) (*domain.Course, error) {
	if err := requireRole(p, domain.RoleArtist, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	level := domain.CourseLevelBeginner
	if in.Level != "" {
		level = domain.CourseLevel(in.Level)
	}
	c := &domain.Course{
		InstructorID: p.UserID,
		Title:        clean(in.Title),
		Description:  clean(in.Description),
		Category:     clean(in.Category),
		Level:        level,
		Price:        in.Price,
		Thumbnail:    in.Thumbnail,
		Lessons:      lessonsFrom(in.Lessons),
		Status:       domain.CourseStatusPending,
	}
	if c.Title == "" {
		return nil, invalid("title is required")
	}
	if err := s.courses.Create(ctx, c); err != nil {
		s.log.Error("repo create course error", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *CourseService) load(ctx context.Context, id string) (*domain.Course, error) {
	cid, err := parseID(id, "course")
	if err != nil {
		return nil, err
	}
	c, err := s.courses.GetByID(ctx, cid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("course not found")
	}
	if err != nil {
		s.log.Error("repo get course error", zap.Error(err))
		return nil, err
	}
	return c, nil
}

// Get returns an approved course to anyone. Lesson videos are only shown to
// enrolled students, the instructor and admins; others see preview lessons.
func (s *CourseService) Get(ctx context.Context, p Principal, id string) (*domain.Course, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	owner := p.Owns(c.InstructorID)
	if c.Status != domain.CourseStatusApproved && !owner {
		return nil, notFound("course not found")
	}
	if !owner && !(p.Authenticated() && c.IsEnrolled(p.UserID)) {
		redactLessons(c)
	}
	return c, nil
}

func redactLessons(c *domain.Course) {
	for i := range c.Lessons {
		if !c.Lessons[i].Preview {
			c.Lessons[i].VideoURL = ""
		}
	}
}

func (s *CourseService) List(ctx context.Context, q CourseQuery) ([]domain.Course, int64, error) {
	filter := repository.CourseFilter{
		Status:   domain.CourseStatusApproved,
		Category: q.Category,
		Search:   q.Search,
		Sort:     q.Sort,
		Page:     q.Page,
	}
	if q.Level != "" {
		lvl := domain.CourseLevel(q.Level)
		if !lvl.Valid() {
			return nil, 0, invalid("unknown course level %q", q.Level)
		}
		filter.Level = lvl
	}
	if q.InstructorID != "" {
		id, err := parseID(q.InstructorID, "instructor")
		if err != nil {
			return nil, 0, err
		}
		filter.InstructorID = &id
	}
	return s.list(ctx, filter, true)
}

func (s *CourseService) ListMine(ctx context.Context, p Principal, status string, page repository.Page) ([]domain.Course, int64, error) {
	if err := requireRole(p, domain.RoleArtist, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	filter := repository.CourseFilter{InstructorID: &p.UserID, Page: page}
	if status != "" {
		st := domain.CourseStatus(status)
		if !st.Valid() {
			return nil, 0, invalid("unknown course status %q", status)
		}
		filter.Status = st
	}
	return s.list(ctx, filter, false)
}

// ListEnrolled lists the courses the caller is a student of.
func (s *CourseService) ListEnrolled(ctx context.Context, p Principal, page repository.Page) ([]domain.Course, int64, error) {
	if err := requireAuth(p); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repository.CourseFilter{StudentID: &p.UserID, Page: page}, false)
}

func (s *CourseService) list(ctx context.Context, filter repository.CourseFilter, public bool) ([]domain.Course, int64, error) {
	list, total, err := s.courses.List(ctx, filter)
	if err != nil {
		s.log.Error("repo list courses error", zap.Error(err))
		return nil, 0, err
	}
	if public {
		for i := range list {
			redactLessons(&list[i])
		}
	}
	return list, total, nil
}

func (s *CourseService) Update(ctx context.Context, p Principal, id string, in CourseUpdate) (*domain.Course, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Owns(c.InstructorID) {
		return nil, ErrForbidden
	}

	if in.Title != nil {
		if c.Title = clean(*in.Title); c.Title == "" {
			return nil, invalid("title is required")
		}
	}
	if in.Description != nil {
		c.Description = clean(*in.Description)
	}
	if in.Category != nil {
		c.Category = clean(*in.Category)
	}
	if in.Level != nil {
		c.Level = domain.CourseLevel(*in.Level)
	}
	if in.Price != nil {
		c.Price = *in.Price
	}
	if in.Thumbnail != nil {
		c.Thumbnail = *in.Thumbnail
	}
	if in.Lessons != nil {
		c.Lessons = lessonsFrom(in.Lessons)
	}
	if p.UserID == c.InstructorID && (c.Status == domain.CourseStatusApproved || c.Status == domain.CourseStatusRejected) {
		c.Status = domain.CourseStatusPending
		c.ReviewNote = ""
	}

	if err := s.courses.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("course not found")
		}
		s.log.Error("repo update course error", zap.Error(err))
		return nil, err
	}
	return c, nil
}

// Delete removes a course without students. Courses with students are
// archived instead so enrolled users keep access.
func (s *CourseService) Delete(ctx context.Context, p Principal, id string) (archived bool, err error) {
	if err := requireAuth(p); err != nil {
		return false, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if !p.Owns(c.InstructorID) {
		return false, ErrForbidden
	}
	if len(c.Students) > 0 {
		if err := s.courses.SetStatus(ctx, c.ID, domain.CourseStatusArchived, c.ReviewNote); err != nil {
			s.log.Error("repo archive course error", zap.Error(err))
			return false, err
		}
		return true, nil
	}
	if err := s.courses.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, notFound("course not found")
		}
		s.log.Error("repo delete course error", zap.Error(err))
		return false, err
	}
	return false, nil
}

// Enroll signs the caller up for a free course. Paid courses are enrolled
// through orders.
func (s *CourseService) Enroll(ctx context.Context, p Principal, id string) (*domain.Course, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.CourseStatusApproved {
		return nil, notFound("course not found")
	}
	if c.InstructorID == p.UserID {
		return nil, invalid("you cannot enroll in your own course")
	}
	if c.IsEnrolled(p.UserID) {
		return nil, invalid("you are already enrolled in this course")
	}
	if !c.Free() {
		return nil, invalid("this course must be purchased")
	}
	if err := s.enroll(ctx, c, p.UserID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CourseService) enroll(ctx context.Context, c *domain.Course, userID primitive.ObjectID) error {
	if err := s.courses.Enroll(ctx, c.ID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("course not found")
		}
		s.log.Error("repo enroll error", zap.Error(err))
		return err
	}
	c.Students = append(c.Students, userID)
	c.StudentCount = len(c.Students)
	publish(ctx, s.events, s.log, events.New(events.CourseEnrolled, c.InstructorID,
		fmt.Sprintf("A new student enrolled in \"%s\"", c.Title), "/courses/"+c.ID.Hex()))
	return nil
}

func (s *CourseService) Review(ctx context.Context, p Principal, id string, in ReviewInput) (*domain.Course, error) {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CourseStatusArchived {
		return nil, conflict("archived courses cannot be reviewed")
	}
	status := domain.CourseStatus(in.Status)
	note := clean(in.Note)
	if err := s.courses.SetStatus(ctx, c.ID, status, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("course not found")
		}
		s.log.Error("repo set course status error", zap.Error(err))
		return nil, err
	}
	c.Status = status
	c.ReviewNote = note

	msg := fmt.Sprintf("Your course \"%s\" was approved and is now listed", c.Title)
	if status == domain.CourseStatusRejected {
		msg = fmt.Sprintf("Your course \"%s\" was rejected", c.Title)
		if note != "" {
			msg += ": " + note
		}
	}
	publish(ctx, s.events, s.log, events.New(events.CourseReviewed, c.InstructorID, msg, "/courses/"+c.ID.Hex()))
	return c, nil
}
