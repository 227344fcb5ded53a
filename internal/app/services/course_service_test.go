package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/pkg/apperrors"
	dbtest "github.com/yigit/lms/internal/testutil"
)

func TestGetCourseStudents(t *testing.T) {
	ctx := context.Background()
	database := dbtest.NewDatabase(t)
	dbtest.InsertFixtures(t, database)
	bob := dbtest.AddStudent(t, database, "Bob", "bob@example.com")

	svcs := NewServices(repositories.NewRepositories(database), nil)

	students, err := svcs.CourseService.GetCourseStudents(ctx, dbtest.JavaBasicsID)
	if err != nil {
		t.Fatalf("GetCourseStudents() error = %v", err)
	}
	if students == nil || len(students) != 0 {
		t.Fatalf("students before enroll = %v, want empty", students)
	}

	// Bob enrolls before Alice even though Alice has the lower id
	for _, sid := range []int64{bob, dbtest.AliceID} {
		if _, err := svcs.EnrollmentService.Enroll(ctx, sid, dbtest.JavaBasicsID); err != nil {
			t.Fatal(err)
		}
	}

	students, err = svcs.CourseService.GetCourseStudents(ctx, dbtest.JavaBasicsID)
	if err != nil {
		t.Fatal(err)
	}
	if len(students) != 2 || students[0].ID != bob || students[1].Email != dbtest.AliceEmail {
		t.Fatalf("students = %+v", students)
	}

	_, err = svcs.CourseService.GetCourseStudents(ctx, 404)
	if entity, ok := apperrors.NotFoundEntity(err); !ok || entity != apperrors.EntityCourse {
		t.Fatalf("unknown course error = %v", err)
	}
}

func TestUserServiceEnrollments(t *testing.T) {
	ctx := context.Background()
	database := dbtest.NewDatabase(t)
	dbtest.InsertFixtures(t, database)
	repos := repositories.NewRepositories(database)
	enrollments := NewEnrollmentService(repos.UserRepository, repos.CourseRepository, repos.EnrollmentRepository, nil, zerolog.Nop())
	users := NewUserService(repos.UserRepository, enrollments)

	if _, err := enrollments.Enroll(ctx, dbtest.AliceID, dbtest.SpringBootID); err != nil {
		t.Fatal(err)
	}

	list, err := users.GetUserEnrollments(ctx, dbtest.AliceID)
	if err != nil || len(list) != 1 || list[0].CourseID != dbtest.SpringBootID {
		t.Fatalf("GetUserEnrollments() = %+v, %v", list, err)
	}

	_, err = users.GetUserEnrollments(ctx, 77)
	if entity, ok := apperrors.NotFoundEntity(err); !ok || entity != apperrors.EntityUser {
		t.Fatalf("unknown user error = %v", err)
	}
	if got := err.Error(); got != "User not found: 77" {
		t.Errorf("message = %q", got)
	}

	all, err := users.GetAllUsers(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("GetAllUsers() = %d, %v", len(all), err)
	}
}
