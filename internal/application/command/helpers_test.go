package command

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/memory"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// nopPublisher discards events; command tests assert on state, not on
// the audit trail.
type nopPublisher struct{}

func (nopPublisher) Publish(shared.Event) error { return nil }

// fixture wires every command handler over a fresh in-memory store.
type fixture struct {
	store *memory.Store

	students     *memory.StudentRepository
	courses      *memory.CourseRepository
	enrollments  *memory.EnrollmentRepository
	certificates *memory.CertificateRepository

	register   *RegisterStudentHandler
	course     *CreateCourseHandler
	enroll     *EnrollStudentHandler
	transition *TransitionEnrollmentHandler
	attendance *RecordAttendanceHandler
	grade      *RecordGradeHandler
	progress   *UpdateProgressHandler
	complete   *CompleteEnrollmentHandler
	issue      *IssueCertificateHandler
	revoke     *RevokeCertificateHandler
	expire     *ExpirePendingHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
	store := memory.NewStore()
	pub := nopPublisher{}

	f := &fixture{
		store:        store,
		students:     memory.NewStudentRepository(store),
		courses:      memory.NewCourseRepository(store),
		enrollments:  memory.NewEnrollmentRepository(store),
		certificates: memory.NewCertificateRepository(store),
	}

	f.register = NewRegisterStudentHandler(f.students, pub, log)
	f.course = NewCreateCourseHandler(f.courses, pub, log)
	f.enroll = NewEnrollStudentHandler(f.enrollments, f.courses, f.students, store, pub, log)
	f.transition = NewTransitionEnrollmentHandler(f.enrollments, store, pub, log)
	f.attendance = NewRecordAttendanceHandler(f.enrollments, store, pub, log)
	f.grade = NewRecordGradeHandler(f.enrollments, store, pub, log)
	f.complete = NewCompleteEnrollmentHandler(f.enrollments, f.certificates, store, pub, log)
	f.progress = NewUpdateProgressHandler(f.enrollments, store, pub, log, false, f.complete)
	f.issue = NewIssueCertificateHandler(f.enrollments, f.certificates, pub, log)
	f.revoke = NewRevokeCertificateHandler(f.certificates, nil, log)
	f.expire = NewExpirePendingHandler(f.enrollments, pub, log)

	return f
}

func (f *fixture) newStudent(t *testing.T, email string) string {
	t.Helper()
	result, err := f.register.Handle(context.Background(), RegisterStudentCommand{
		Name:  "Test Student",
		Email: email,
	})
	require.NoError(t, err)
	return result.StudentID
}

func (f *fixture) newCourse(t *testing.T, title string, maxSeats int) string {
	t.Helper()
	result, err := f.course.Handle(context.Background(), CreateCourseCommand{
		Title:         title,
		DurationHours: 40,
		Category:      "technology",
		Instructor:    "Ana",
		MaxSeats:      maxSeats,
	})
	require.NoError(t, err)
	return result.CourseID
}

func (f *fixture) newEnrollment(t *testing.T, studentID, courseID string) string {
	t.Helper()
	result, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: studentID,
		CourseID:  courseID,
	})
	require.NoError(t, err)
	return result.EnrollmentID
}

// newActiveEnrollment enrolls and confirms in one step.
func (f *fixture) newActiveEnrollment(t *testing.T, studentID, courseID string) string {
	t.Helper()
	id := f.newEnrollment(t, studentID, courseID)
	_, err := f.transition.Handle(context.Background(), TransitionEnrollmentCommand{
		EnrollmentID: id,
		Action:       ActionConfirm,
	})
	require.NoError(t, err)
	return id
}

// newCompletedEnrollment drives an enrollment all the way to Completed
// with its certificate issued.
func (f *fixture) newCompletedEnrollment(t *testing.T, studentID, courseID string) (enrollmentID string, result *CompleteEnrollmentResult) {
	t.Helper()
	id := f.newActiveEnrollment(t, studentID, courseID)
	_, err := f.progress.Handle(context.Background(), UpdateProgressCommand{
		EnrollmentID: id,
		NewPercent:   100,
	})
	require.NoError(t, err)

	res, err := f.complete.Handle(context.Background(), CompleteEnrollmentCommand{EnrollmentID: id})
	require.NoError(t, err)
	return id, res
}
