// Package memory provides in-memory repository implementations.
// They back the default CLI mode and the test suite. The store keeps
// deep copies on both write and read, so entities held by callers never
// alias stored state: a mutation becomes visible only through Update.
package memory

import (
	"context"
	"sync"

	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/student"
	"github.com/Hbini/training-management-system/internal/infrastructure/audit"
)

// Store holds all in-memory state behind one mutex.
type Store struct {
	mu sync.RWMutex

	students     map[string]*student.Student
	courses      map[string]*course.Course
	enrollments  map[string]*enrollment.Enrollment
	certificates map[string]*certificate.Certificate
	certSeq      int64
	auditEntries []audit.Entry

	courseLocksMu sync.Mutex
	courseLocks   map[string]*sync.Mutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		students:     make(map[string]*student.Student),
		courses:      make(map[string]*course.Course),
		enrollments:  make(map[string]*enrollment.Enrollment),
		certificates: make(map[string]*certificate.Certificate),
		courseLocks:  make(map[string]*sync.Mutex),
	}
}

// courseLock returns the serialization mutex for one course.
func (s *Store) courseLock(courseID string) *sync.Mutex {
	s.courseLocksMu.Lock()
	defer s.courseLocksMu.Unlock()

	lock, ok := s.courseLocks[courseID]
	if !ok {
		lock = &sync.Mutex{}
		s.courseLocks[courseID] = lock
	}
	return lock
}

// WithinCourse executes fn while holding the course lock, so concurrent
// two-step sequences on the same course serialize. If fn returns an error,
// all enrollment and certificate changes for that course are rolled back.
// Operations on other courses proceed untouched.
func (s *Store) WithinCourse(ctx context.Context, courseID string, fn func(ctx context.Context) error) error {
	lock := s.courseLock(courseID)
	lock.Lock()
	defer lock.Unlock()

	snapshot := s.snapshotCourse(courseID)

	if err := fn(ctx); err != nil {
		s.restoreCourse(courseID, snapshot)
		return err
	}
	return nil
}

// courseSnapshot captures the pre-transaction state of one course.
type courseSnapshot struct {
	enrollments  map[string]*enrollment.Enrollment
	certificates map[string]*certificate.Certificate
	certSeq      int64
}

func (s *Store) snapshotCourse(courseID string) courseSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := courseSnapshot{
		enrollments:  make(map[string]*enrollment.Enrollment),
		certificates: make(map[string]*certificate.Certificate),
		certSeq:      s.certSeq,
	}
	for id, enr := range s.enrollments {
		if enr.CourseID == courseID {
			snap.enrollments[id] = cloneEnrollment(enr)
		}
	}
	for id, cert := range s.certificates {
		if enr, ok := s.enrollments[cert.EnrollmentID]; ok && enr.CourseID == courseID {
			snap.certificates[id] = cloneCertificate(cert)
		}
	}
	return snap
}

func (s *Store) restoreCourse(courseID string, snap courseSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Certificates first: they reference enrollments of this course.
	courseEnrollments := make(map[string]bool)
	for id, enr := range s.enrollments {
		if enr.CourseID == courseID {
			courseEnrollments[id] = true
		}
	}
	for id, cert := range s.certificates {
		if courseEnrollments[cert.EnrollmentID] {
			delete(s.certificates, id)
		}
	}
	for id, enr := range s.enrollments {
		if enr.CourseID == courseID {
			delete(s.enrollments, id)
		}
	}
	for id, enr := range snap.enrollments {
		s.enrollments[id] = enr
	}
	for id, cert := range snap.certificates {
		s.certificates[id] = cert
	}
	s.certSeq = snap.certSeq
}

// ══════════════════════════════════════════════════════════════════════════════
// CLONE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func cloneEnrollment(e *enrollment.Enrollment) *enrollment.Enrollment {
	c := *e
	if e.CompletedAt != nil {
		completedAt := *e.CompletedAt
		c.CompletedAt = &completedAt
	}
	c.Attendance = make([]enrollment.AttendanceRecord, len(e.Attendance))
	copy(c.Attendance, e.Attendance)
	c.Grades = make([]enrollment.GradeRecord, len(e.Grades))
	copy(c.Grades, e.Grades)
	return &c
}

func cloneCertificate(cert *certificate.Certificate) *certificate.Certificate {
	c := *cert
	if cert.RevokedAt != nil {
		revokedAt := *cert.RevokedAt
		c.RevokedAt = &revokedAt
	}
	return &c
}

func cloneStudent(s *student.Student) *student.Student {
	c := *s
	if s.BirthDate != nil {
		birthDate := *s.BirthDate
		c.BirthDate = &birthDate
	}
	return &c
}

func cloneCourse(crs *course.Course) *course.Course {
	c := *crs
	return &c
}
