package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/shared"
)

// CourseRepository is the in-memory course.Repository.
type CourseRepository struct {
	store *Store
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(store *Store) *CourseRepository {
	return &CourseRepository{store: store}
}

// Create stores a new course. Titles are unique case-insensitively.
func (r *CourseRepository) Create(_ context.Context, c *course.Course) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	title := strings.ToLower(c.Title)
	for _, existing := range r.store.courses {
		if strings.ToLower(existing.Title) == title {
			return shared.ErrCourseAlreadyExists
		}
	}

	r.store.courses[c.ID] = cloneCourse(c)
	return nil
}

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(_ context.Context, id string) (*course.Course, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

// Update persists a modified course.
func (r *CourseRepository) Update(_ context.Context, c *course.Course) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.courses[c.ID]; !ok {
		return shared.ErrCourseNotFound
	}
	r.store.courses[c.ID] = cloneCourse(c)
	return nil
}

// GetAll returns courses from the catalog.
func (r *CourseRepository) GetAll(_ context.Context, opts course.ListOptions) ([]*course.Course, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*course.Course
	for _, c := range r.store.courses {
		if opts.Category != "" && c.Category != opts.Category {
			continue
		}
		if opts.ActiveOnly && !c.IsActive {
			continue
		}
		result = append(result, cloneCourse(c))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Title < result[j].Title
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return nil, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// Exists reports whether a course exists.
func (r *CourseRepository) Exists(_ context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.courses[id]
	return ok, nil
}
