package query

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/application/command"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/memory"
	"github.com/Hbini/training-management-system/pkg/logger"
)

type nopPublisher struct{}

func (nopPublisher) Publish(shared.Event) error { return nil }

// fixture seeds an in-memory store through the command layer and wires
// every query handler over it.
type fixture struct {
	store        *memory.Store
	students     *memory.StudentRepository
	courses      *memory.CourseRepository
	enrollments  *memory.EnrollmentRepository
	certificates *memory.CertificateRepository

	register   *command.RegisterStudentHandler
	course     *command.CreateCourseHandler
	enroll     *command.EnrollStudentHandler
	transition *command.TransitionEnrollmentHandler
	progress   *command.UpdateProgressHandler
	grade      *command.RecordGradeHandler
	complete   *command.CompleteEnrollmentHandler
	revoke     *command.RevokeCertificateHandler

	list   *ListEnrollmentsHandler
	stats  *GetCourseStatsHandler
	verify *VerifyCertificateHandler
	export *ExportEnrollmentsHandler
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

	f.register = command.NewRegisterStudentHandler(f.students, pub, log)
	f.course = command.NewCreateCourseHandler(f.courses, pub, log)
	f.enroll = command.NewEnrollStudentHandler(f.enrollments, f.courses, f.students, store, pub, log)
	f.transition = command.NewTransitionEnrollmentHandler(f.enrollments, store, pub, log)
	f.grade = command.NewRecordGradeHandler(f.enrollments, store, pub, log)
	f.complete = command.NewCompleteEnrollmentHandler(f.enrollments, f.certificates, store, pub, log)
	f.progress = command.NewUpdateProgressHandler(f.enrollments, store, pub, log, false, f.complete)
	f.revoke = command.NewRevokeCertificateHandler(f.certificates, nil, log)

	f.list = NewListEnrollmentsHandler(f.enrollments, log)
	f.stats = NewGetCourseStatsHandler(f.courses, f.enrollments, nil, log)
	f.verify = NewVerifyCertificateHandler(f.certificates, nil, log)
	f.export = NewExportEnrollmentsHandler(f.enrollments, f.certificates, log)

	return f
}

func (f *fixture) newStudent(t *testing.T, email string) string {
	t.Helper()
	result, err := f.register.Handle(context.Background(), command.RegisterStudentCommand{
		Name:  "Test Student",
		Email: email,
	})
	require.NoError(t, err)
	return result.StudentID
}

func (f *fixture) newCourse(t *testing.T, title string, maxSeats int) string {
	t.Helper()
	result, err := f.course.Handle(context.Background(), command.CreateCourseCommand{
		Title:         title,
		DurationHours: 40,
		Category:      "technology",
		Instructor:    "Ana",
		MaxSeats:      maxSeats,
	})
	require.NoError(t, err)
	return result.CourseID
}

func (f *fixture) newActiveEnrollment(t *testing.T, studentID, courseID string) string {
	t.Helper()
	enrolled, err := f.enroll.Handle(context.Background(), command.EnrollStudentCommand{
		StudentID: studentID,
		CourseID:  courseID,
	})
	require.NoError(t, err)
	_, err = f.transition.Handle(context.Background(), command.TransitionEnrollmentCommand{
		EnrollmentID: enrolled.EnrollmentID,
		Action:       command.ActionConfirm,
	})
	require.NoError(t, err)
	return enrolled.EnrollmentID
}

func (f *fixture) completeEnrollment(t *testing.T, enrollmentID string) *command.CompleteEnrollmentResult {
	t.Helper()
	_, err := f.progress.Handle(context.Background(), command.UpdateProgressCommand{
		EnrollmentID: enrollmentID,
		NewPercent:   100,
	})
	require.NoError(t, err)
	result, err := f.complete.Handle(context.Background(), command.CompleteEnrollmentCommand{
		EnrollmentID: enrollmentID,
	})
	require.NoError(t, err)
	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE STATS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetCourseStats(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 10)

	// One completed with a grade, one active with a grade, one pending.
	completedID := f.newActiveEnrollment(t, f.newStudent(t, "a@example.com"), courseID)
	_, err := f.grade.Handle(context.Background(), command.RecordGradeCommand{
		EnrollmentID: completedID,
		Assessment:   "final",
		Score:        90,
	})
	require.NoError(t, err)
	f.completeEnrollment(t, completedID)

	activeID := f.newActiveEnrollment(t, f.newStudent(t, "b@example.com"), courseID)
	_, err = f.progress.Handle(context.Background(), command.UpdateProgressCommand{
		EnrollmentID: activeID,
		NewPercent:   50,
	})
	require.NoError(t, err)
	_, err = f.grade.Handle(context.Background(), command.RecordGradeCommand{
		EnrollmentID: activeID,
		Assessment:   "midterm",
		Score:        80,
	})
	require.NoError(t, err)

	_, err = f.enroll.Handle(context.Background(), command.EnrollStudentCommand{
		StudentID: f.newStudent(t, "c@example.com"),
		CourseID:  courseID,
	})
	require.NoError(t, err)

	stats, err := f.stats.Handle(context.Background(), GetCourseStatsQuery{CourseID: courseID})
	require.NoError(t, err)

	assert.Equal(t, "Golang", stats.Title)
	assert.Equal(t, 3, stats.TotalEnrollments)
	// Completed does not occupy a seat; active and pending do.
	assert.Equal(t, 2, stats.SeatsTaken)
	assert.Equal(t, 8, stats.AvailableSeats)
	assert.InDelta(t, 0.2, stats.Utilization, 1e-9)
	assert.Equal(t, 1, stats.StatusCounts["completed"])
	assert.Equal(t, 1, stats.StatusCounts["active"])
	assert.Equal(t, 1, stats.StatusCounts["pending"])
	assert.InDelta(t, 1.0, stats.CompletionRate, 1e-9)
	assert.InDelta(t, 50.0, stats.AverageProgress, 1e-9)
	// Only grades on completed enrollments count; the active one is excluded.
	assert.InDelta(t, 90.0, stats.AverageGrade, 1e-9)
}

func TestGetCourseStats_EmptyCourse(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Empty", 5)

	stats, err := f.stats.Handle(context.Background(), GetCourseStatsQuery{CourseID: courseID})
	require.NoError(t, err)

	assert.Zero(t, stats.TotalEnrollments)
	assert.Zero(t, stats.SeatsTaken)
	assert.Equal(t, 5, stats.AvailableSeats)
	assert.Zero(t, stats.CompletionRate)
	assert.Zero(t, stats.AverageGrade)
}

func TestGetCourseStats_UnknownCourse(t *testing.T) {
	f := newFixture(t)

	_, err := f.stats.Handle(context.Background(), GetCourseStatsQuery{
		CourseID: "00000000-0000-0000-0000-000000000000",
	})
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST ENROLLMENTS
// ══════════════════════════════════════════════════════════════════════════════

func TestListEnrollments(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 10)
	otherCourse := f.newCourse(t, "SQL", 10)
	studentID := f.newStudent(t, "a@example.com")

	f.newActiveEnrollment(t, studentID, courseID)
	f.newActiveEnrollment(t, f.newStudent(t, "b@example.com"), courseID)
	f.newActiveEnrollment(t, studentID, otherCourse)

	result, err := f.list.Handle(context.Background(), ListEnrollmentsQuery{CourseID: courseID})
	require.NoError(t, err)
	assert.Len(t, result.Enrollments, 2)

	result, err = f.list.Handle(context.Background(), ListEnrollmentsQuery{StudentID: studentID})
	require.NoError(t, err)
	assert.Len(t, result.Enrollments, 2)

	result, err = f.list.Handle(context.Background(), ListEnrollmentsQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Empty(t, result.Enrollments)

	_, err = f.list.Handle(context.Background(), ListEnrollmentsQuery{Status: "bogus"})
	assert.Error(t, err)
}

func TestListEnrollments_Pagination(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 30)
	for i := 0; i < 5; i++ {
		email := string(rune('a'+i)) + "@example.com"
		f.newActiveEnrollment(t, f.newStudent(t, email), courseID)
	}

	page1, err := f.list.Handle(context.Background(), ListEnrollmentsQuery{
		CourseID: courseID,
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, page1.Enrollments, 2)

	page3, err := f.list.Handle(context.Background(), ListEnrollmentsQuery{
		CourseID: courseID,
		Page:     3,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, page3.Enrollments, 1)

	// Pages never overlap.
	assert.NotEqual(t, page1.Enrollments[0].ID, page3.Enrollments[0].ID)
}

// ══════════════════════════════════════════════════════════════════════════════
// VERIFY CERTIFICATE
// ══════════════════════════════════════════════════════════════════════════════

func TestVerifyCertificate(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 10)
	enrollmentID := f.newActiveEnrollment(t, f.newStudent(t, "a@example.com"), courseID)
	completed := f.completeEnrollment(t, enrollmentID)

	result, err := f.verify.Handle(context.Background(), VerifyCertificateQuery{
		Code: completed.VerificationCode.String(),
	})
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.True(t, result.Valid)
	assert.False(t, result.Revoked)
	assert.Equal(t, completed.CertificateNumber, result.Number)
	assert.Equal(t, enrollmentID, result.EnrollmentID)
	require.NotNil(t, result.IssuedAt)

	// Input is trimmed and uppercased before the lookup.
	result, err = f.verify.Handle(context.Background(), VerifyCertificateQuery{
		Code: "  " + strings.ToLower(completed.VerificationCode.String()) + " ",
	})
	require.NoError(t, err)
	assert.True(t, result.Found)
}

func TestVerifyCertificate_Revoked(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 10)
	enrollmentID := f.newActiveEnrollment(t, f.newStudent(t, "a@example.com"), courseID)
	completed := f.completeEnrollment(t, enrollmentID)

	err := f.revoke.Handle(context.Background(), command.RevokeCertificateCommand{
		CertificateID: completed.CertificateID,
		Reason:        "academic misconduct",
	})
	require.NoError(t, err)

	result, err := f.verify.Handle(context.Background(), VerifyCertificateQuery{
		Code: completed.VerificationCode.String(),
	})
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.False(t, result.Valid)
	assert.True(t, result.Revoked)
	assert.Equal(t, "academic misconduct", result.RevokedReason)
}

func TestVerifyCertificate_NotFound(t *testing.T) {
	f := newFixture(t)

	// A well-formed code with no match and a malformed code are
	// indistinguishable in the response.
	result, err := f.verify.Handle(context.Background(), VerifyCertificateQuery{
		Code: "AAAAAAAAAAAAAAAAAAAAAAAAAA",
	})
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.False(t, result.Valid)

	result, err = f.verify.Handle(context.Background(), VerifyCertificateQuery{Code: "???"})
	require.NoError(t, err)
	assert.False(t, result.Found)
}

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT CURSOR
// ══════════════════════════════════════════════════════════════════════════════

func TestExportEnrollments(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 30)
	for i := 0; i < 5; i++ {
		email := string(rune('a'+i)) + "@example.com"
		f.newActiveEnrollment(t, f.newStudent(t, email), courseID)
	}

	cursor, err := f.export.Handle(context.Background(), ExportEnrollmentsQuery{
		CourseID:  courseID,
		BatchSize: 2,
	})
	require.NoError(t, err)

	var total int
	var batches int
	seen := make(map[string]bool)
	for {
		batch, err := cursor.Next(context.Background())
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		batches++
		for _, e := range batch {
			assert.False(t, seen[e.ID], "row %s exported twice", e.ID)
			seen[e.ID] = true
			total++
		}
	}

	assert.Equal(t, 5, total)
	assert.Equal(t, 3, batches)

	// An exhausted cursor keeps returning empty batches.
	batch, err := cursor.Next(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestExportEnrollments_Resume(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 30)
	for i := 0; i < 5; i++ {
		email := string(rune('a'+i)) + "@example.com"
		f.newActiveEnrollment(t, f.newStudent(t, email), courseID)
	}

	first, err := f.export.Handle(context.Background(), ExportEnrollmentsQuery{
		CourseID:  courseID,
		BatchSize: 2,
	})
	require.NoError(t, err)

	batch, err := first.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 2)

	// A new cursor picks up where the interrupted one stopped.
	resumed, err := f.export.Handle(context.Background(), ExportEnrollmentsQuery{
		CourseID:   courseID,
		BatchSize:  2,
		ResumeFrom: first.Offset(),
	})
	require.NoError(t, err)

	var rest int
	for {
		batch, err := resumed.Next(context.Background())
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		rest += len(batch)
	}
	assert.Equal(t, 3, rest)
}

func TestExportEnrollments_StatusFilter(t *testing.T) {
	f := newFixture(t)

	_, err := f.export.Handle(context.Background(), ExportEnrollmentsQuery{Status: "bogus"})
	assert.Error(t, err)
}

func TestExportEnrollments_CertificateStatus(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 30)

	certifiedID := f.newActiveEnrollment(t, f.newStudent(t, "a@example.com"), courseID)
	f.completeEnrollment(t, certifiedID)

	revokedID := f.newActiveEnrollment(t, f.newStudent(t, "b@example.com"), courseID)
	revoked := f.completeEnrollment(t, revokedID)
	err := f.revoke.Handle(context.Background(), command.RevokeCertificateCommand{
		CertificateID: revoked.CertificateID,
		Reason:        "issued by mistake",
	})
	require.NoError(t, err)

	activeID := f.newActiveEnrollment(t, f.newStudent(t, "c@example.com"), courseID)

	cursor, err := f.export.Handle(context.Background(), ExportEnrollmentsQuery{CourseID: courseID})
	require.NoError(t, err)

	statuses := make(map[string]string)
	for {
		batch, err := cursor.Next(context.Background())
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		for _, e := range batch {
			statuses[e.ID] = e.CertificateStatus
		}
	}

	assert.Equal(t, "valid", statuses[certifiedID])
	assert.Equal(t, "revoked", statuses[revokedID])
	assert.Equal(t, "", statuses[activeID])
}
