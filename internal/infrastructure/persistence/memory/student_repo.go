package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/domain/student"
)

// StudentRepository is the in-memory student.Repository.
type StudentRepository struct {
	store *Store
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(store *Store) *StudentRepository {
	return &StudentRepository{store: store}
}

// Create stores a new student. Emails are unique.
func (r *StudentRepository) Create(_ context.Context, s *student.Student) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.students {
		if existing.Email == s.Email {
			return shared.ErrStudentAlreadyExists
		}
	}

	r.store.students[s.ID] = cloneStudent(s)
	return nil
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(_ context.Context, id string) (*student.Student, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return cloneStudent(s), nil
}

// GetByEmail returns a student by email address.
func (r *StudentRepository) GetByEmail(_ context.Context, email student.Email) (*student.Student, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, s := range r.store.students {
		if s.Email == email {
			return cloneStudent(s), nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

// Update persists a modified student.
func (r *StudentRepository) Update(_ context.Context, s *student.Student) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.store.students[s.ID] = cloneStudent(s)
	return nil
}

// GetAll returns students with pagination.
func (r *StudentRepository) GetAll(_ context.Context, opts student.ListOptions) ([]*student.Student, error) {
	return r.list(func(*student.Student) bool { return true }, opts), nil
}

// Search returns students whose name or email contains the query.
func (r *StudentRepository) Search(_ context.Context, query string, opts student.ListOptions) ([]*student.Student, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return r.list(func(s *student.Student) bool {
		return strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Email.String()), q)
	}, opts), nil
}

// Exists reports whether a student exists.
func (r *StudentRepository) Exists(_ context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.students[id]
	return ok, nil
}

func (r *StudentRepository) list(match func(*student.Student) bool, opts student.ListOptions) []*student.Student {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*student.Student
	for _, s := range r.store.students {
		if !match(s) {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		result = append(result, cloneStudent(s))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

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
