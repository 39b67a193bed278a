package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type courseRepository struct {
	collection *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) CourseRepository {
	return &courseRepository{collection: db.Collection("courses")}
}

func (r *courseRepository) Create(ctx context.Context, c *domain.Course) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Students == nil {
		c.Students = []primitive.ObjectID{}
	}
	if c.Lessons == nil {
		c.Lessons = []domain.CourseLesson{}
	}

	res, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	var c domain.Course
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	c.StudentCount = len(c.Students)
	return &c, nil
}

func (r *courseRepository) List(ctx context.Context, f CourseFilter) ([]domain.Course, int64, error) {
	filter := bson.M{}
	if f.InstructorID != nil {
		filter["instructor_id"] = *f.InstructorID
	}
	if f.StudentID != nil {
		filter["students"] = *f.StudentID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Level != "" {
		filter["level"] = f.Level
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter["$or"] = bson.A{bson.M{"title": pattern}, bson.M{"description": pattern}}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	skip, limit := f.Page.bounds()
	opts := options.Find().SetSort(listSort(f.Sort)).SetSkip(skip).SetLimit(limit)
	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	courses := make([]domain.Course, 0)
	if err := cur.All(ctx, &courses); err != nil {
		return nil, 0, fmt.Errorf("failed to decode courses: %w", err)
	}
	for i := range courses {
		courses[i].StudentCount = len(courses[i].Students)
	}
	return courses, total, nil
}

func (r *courseRepository) Update(ctx context.Context, c *domain.Course) error {
	c.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":       c.Title,
		"description": c.Description,
		"category":    c.Category,
		"level":       c.Level,
		"price":       c.Price,
		"thumbnail":   c.Thumbnail,
		"lessons":     c.Lessons,
		"status":      c.Status,
		"updated_at":  c.UpdatedAt,
	}}
	res, err := r.collection.UpdateByID(ctx, c.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *courseRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.CourseStatus, note string) error {
	update := bson.M{"$set": bson.M{
		"status":      status,
		"review_note": note,
		"updated_at":  time.Now().UTC(),
	}}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to set course status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *courseRepository) Enroll(ctx context.Context, courseID, userID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"students": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.collection.UpdateByID(ctx, courseID, update)
	if err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *courseRepository) CountByStatus(ctx context.Context, instructorID *primitive.ObjectID) (map[domain.CourseStatus]int64, error) {
	filter := bson.M{}
	if instructorID != nil {
		filter["instructor_id"] = *instructorID
	}
	out := map[domain.CourseStatus]int64{}
	err := countBy(ctx, r.collection, filter, "$status", func(key string, n int64) {
		out[domain.CourseStatus(key)] = n
	})
	return out, err
}
