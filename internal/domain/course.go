package domain

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CourseStatus string

const (
	CourseStatusPending  CourseStatus = "pending"
	CourseStatusApproved CourseStatus = "approved"
	CourseStatusRejected CourseStatus = "rejected"
	CourseStatusArchived CourseStatus = "archived"
)

func (s CourseStatus) Valid() bool {
	switch s {
	case CourseStatusPending, CourseStatusApproved, CourseStatusRejected, CourseStatusArchived:
		return true
	}
	return false
}

type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

func (l CourseLevel) Valid() bool {
	return l == CourseLevelBeginner || l == CourseLevelIntermediate || l == CourseLevelAdvanced
}

type CourseLesson struct {
	Title           string `bson:"title" json:"title"`
	VideoURL        string `bson:"video_url" json:"video_url"`
	DurationSeconds int    `bson:"duration_seconds" json:"duration_seconds"`
	Preview         bool   `bson:"preview" json:"preview"`
}

type Course struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	InstructorID primitive.ObjectID   `bson:"instructor_id" json:"instructor_id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	Category     string               `bson:"category" json:"category"`
	Level        CourseLevel          `bson:"level" json:"level"`
	Price        float64              `bson:"price" json:"price"`
	Thumbnail    string               `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Lessons      []CourseLesson       `bson:"lessons" json:"lessons"`
	Students     []primitive.ObjectID `bson:"students" json:"-"`
	StudentCount int                  `bson:"-" json:"student_count"`
	Status       CourseStatus         `bson:"status" json:"status"`
	ReviewNote   string               `bson:"review_note,omitempty" json:"review_note,omitempty"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

func (c Course) IsEnrolled(userID primitive.ObjectID) bool {
	return slices.Contains(c.Students, userID)
}

func (c Course) Purchasable() bool {
	return c.Status == CourseStatusApproved
}

func (c Course) Free() bool {
	return c.Price == 0
}

// TotalDuration sums lesson durations in seconds.
func (c Course) TotalDuration() int {
	total := 0
	for _, l := range c.Lessons {
		total += l.DurationSeconds
	}
	return total
}
