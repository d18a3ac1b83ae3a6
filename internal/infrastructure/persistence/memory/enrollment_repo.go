package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
)

// EnrollmentRepository is the in-memory enrollment.Repository.
type EnrollmentRepository struct {
	store *Store
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(store *Store) *EnrollmentRepository {
	return &EnrollmentRepository{store: store}
}

// Create stores a new enrollment.
func (r *EnrollmentRepository) Create(_ context.Context, e *enrollment.Enrollment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.enrollments[e.ID]; exists {
		return shared.ErrDuplicateEnrollment
	}
	for _, existing := range r.store.enrollments {
		if existing.StudentID == e.StudentID &&
			existing.CourseID == e.CourseID &&
			existing.Status.OccupiesSeat() {
			return shared.ErrDuplicateEnrollment
		}
	}

	r.store.enrollments[e.ID] = cloneEnrollment(e)
	return nil
}

// GetByID returns an enrollment by ID.
func (r *EnrollmentRepository) GetByID(_ context.Context, id string) (*enrollment.Enrollment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.enrollments[id]
	if !ok {
		return nil, shared.ErrEnrollmentNotFound
	}
	return cloneEnrollment(e), nil
}

// Update persists a modified enrollment.
func (r *EnrollmentRepository) Update(_ context.Context, e *enrollment.Enrollment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.enrollments[e.ID]; !ok {
		return shared.ErrEnrollmentNotFound
	}
	r.store.enrollments[e.ID] = cloneEnrollment(e)
	return nil
}

// CountSeatsTaken counts enrollments in seat-occupying statuses.
func (r *EnrollmentRepository) CountSeatsTaken(_ context.Context, courseID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, e := range r.store.enrollments {
		if e.CourseID == courseID && e.Status.OccupiesSeat() {
			count++
		}
	}
	return count, nil
}

// ExistsActivePair reports whether the student has a live enrollment in the course.
func (r *EnrollmentRepository) ExistsActivePair(_ context.Context, studentID, courseID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && e.Status.OccupiesSeat() {
			return true, nil
		}
	}
	return false, nil
}

// GetByCourse returns enrollments of one course.
func (r *EnrollmentRepository) GetByCourse(_ context.Context, courseID string, opts enrollment.ListOptions) ([]*enrollment.Enrollment, error) {
	return r.list(func(e *enrollment.Enrollment) bool {
		return e.CourseID == courseID
	}, opts), nil
}

// GetByStudent returns enrollments of one student.
func (r *EnrollmentRepository) GetByStudent(_ context.Context, studentID string, opts enrollment.ListOptions) ([]*enrollment.Enrollment, error) {
	return r.list(func(e *enrollment.Enrollment) bool {
		return e.StudentID == studentID
	}, opts), nil
}

// GetAll returns all enrollments.
func (r *EnrollmentRepository) GetAll(_ context.Context, opts enrollment.ListOptions) ([]*enrollment.Enrollment, error) {
	return r.list(func(*enrollment.Enrollment) bool { return true }, opts), nil
}

// CountByStatus returns per-status enrollment counts for one course.
func (r *EnrollmentRepository) CountByStatus(_ context.Context, courseID string) (map[enrollment.Status]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	counts := make(map[enrollment.Status]int, len(enrollment.AllStatuses()))
	for _, s := range enrollment.AllStatuses() {
		counts[s] = 0
	}
	for _, e := range r.store.enrollments {
		if e.CourseID == courseID {
			counts[e.Status]++
		}
	}
	return counts, nil
}

// FindOverduePending returns pending enrollments whose deadline has passed.
func (r *EnrollmentRepository) FindOverduePending(_ context.Context, before time.Time) ([]*enrollment.Enrollment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*enrollment.Enrollment
	for _, e := range r.store.enrollments {
		if e.Status == enrollment.StatusPending && e.ExpectedCompletionAt.Before(before) {
			result = append(result, cloneEnrollment(e))
		}
	}
	sortEnrollments(result)
	return result, nil
}

// list filters, sorts and paginates under the read lock.
func (r *EnrollmentRepository) list(match func(*enrollment.Enrollment) bool, opts enrollment.ListOptions) []*enrollment.Enrollment {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*enrollment.Enrollment
	for _, e := range r.store.enrollments {
		if !match(e) {
			continue
		}
		if opts.Status != "" && e.Status != opts.Status {
			continue
		}
		result = append(result, cloneEnrollment(e))
	}
	sortEnrollments(result)

	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// sortEnrollments keeps listing order deterministic across calls, which the
// restartable export cursor depends on.
func sortEnrollments(list []*enrollment.Enrollment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].EnrolledAt.Equal(list[j].EnrolledAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].EnrolledAt.Before(list[j].EnrolledAt)
	})
}
