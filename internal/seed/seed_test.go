package seed

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	appRepos "github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/testutil"
)

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestLoadEmbeddedData(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDatabase(t)

	source, err := SourceFS("")
	if err != nil {
		t.Fatal(err)
	}
	result, err := NewLoader(database, zerolog.Nop()).Load(ctx, source, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Skipped || result.UsersInserted != 5 || result.CoursesInserted != 3 || result.EnrollmentsCreated != 3 {
		t.Fatalf("result = %+v", result)
	}

	repos := appRepos.NewRepositories(database)
	alice, err := repos.UserRepository.GetUserByID(ctx, 3)
	if err != nil || alice.Email != "alice@example.com" {
		t.Fatalf("alice = %+v, %v", alice, err)
	}
	java, err := repos.CourseRepository.GetCourseByID(ctx, 1)
	if err != nil || java.Title != "Java Basics" || java.Description == nil {
		t.Fatalf("course 1 = %+v, %v", java, err)
	}
	if ok, _ := repos.EnrollmentRepository.Exists(ctx, 3, 1); ok {
		t.Fatal("alice must start without enrollments")
	}

	// Rows inserted later continue after the seeded ids
	id := testutil.AddStudent(t, database, "Dave", "dave@example.com")
	if id != 6 {
		t.Errorf("next user id = %d, want 6", id)
	}
}

func TestLoadSkipsPopulatedDatabase(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDatabase(t)
	testutil.InsertFixtures(t, database)

	source, _ := SourceFS("")
	result, err := NewLoader(database, zerolog.Nop()).Load(ctx, source, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !result.Skipped || result.UsersInserted != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestLoadIsRepeatable(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDatabase(t)
	loader := NewLoader(database, zerolog.Nop())
	source, _ := SourceFS("")

	if _, err := loader.Load(ctx, source, false); err != nil {
		t.Fatal(err)
	}
	again, err := loader.Load(ctx, source, false)
	if err != nil || !again.Skipped {
		t.Fatalf("second Load() = %+v, %v", again, err)
	}
}

func TestLoadResetRestoresEnrollments(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDatabase(t)
	loader := NewLoader(database, zerolog.Nop())
	source, _ := SourceFS("")

	if _, err := loader.Load(ctx, source, false); err != nil {
		t.Fatal(err)
	}

	enrollments := appRepos.NewEnrollmentRepository(database)
	if _, err := enrollments.Create(ctx, 3, 1); err != nil {
		t.Fatal(err)
	}

	result, err := loader.Load(ctx, source, true)
	if err != nil {
		t.Fatalf("Load(reset) error = %v", err)
	}
	if result.Skipped || result.UsersInserted != 0 || result.EnrollmentsCleared != 4 || result.EnrollmentsCreated != 3 {
		t.Fatalf("result = %+v", result)
	}
	if ok, _ := enrollments.Exists(ctx, 3, 1); ok {
		t.Fatal("reset kept an enrollment that is not in the seed files")
	}
}

func TestLoadSkipsBadEnrollmentRows(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDatabase(t)

	fsys := mapFS(map[string]string{
		UsersFile: "id,first_name,last_name,email,status,role\n" +
			"1, Ann ,Lee,ann@example.com,active,student\n" +
			"\n" +
			"2,Ben,Ray,ben@example.com,ACTIVE,TEACHER\n",
		CoursesFile: "id,title,description,teacher_id\n" +
			"10,Go,,2\n",
		EnrollmentsFile: "student_id,course_id\n" +
			"1,10\n" +
			"1,10\n" +
			"7,10\n" +
			"1,99\n",
	})

	result, err := NewLoader(database, zerolog.Nop()).Load(ctx, fsys, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.UsersInserted != 2 || result.CoursesInserted != 1 || result.EnrollmentsCreated != 1 || result.EnrollmentsSkipped != 3 {
		t.Fatalf("result = %+v", result)
	}

	repos := appRepos.NewRepositories(database)
	ann, err := repos.UserRepository.GetUserByID(ctx, 1)
	if err != nil || ann.FirstName != "Ann" || ann.Status != "ACTIVE" || ann.Role != "STUDENT" {
		t.Fatalf("ann = %+v, %v", ann, err)
	}
	course, err := repos.CourseRepository.GetCourseByID(ctx, 10)
	if err != nil || course.Description != nil {
		t.Fatalf("course = %+v, %v", course, err)
	}
}

func TestLoadMissingEnrollmentsFile(t *testing.T) {
	database := testutil.NewDatabase(t)
	fsys := mapFS(map[string]string{
		UsersFile:   "id,first_name,last_name,email,status,role\n1,Ann,Lee,ann@example.com,ACTIVE,STUDENT\n",
		CoursesFile: "id,title\n1,Go\n",
	})

	result, err := NewLoader(database, zerolog.Nop()).Load(context.Background(), fsys, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.UsersInserted != 1 || result.CoursesInserted != 1 || result.EnrollmentsCreated != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestLoadRejectsInvalidUsersAndRollsBack(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDatabase(t)

	tests := map[string]string{
		"bad id":    "id,first_name,last_name,email,status,role\nx,Ann,Lee,ann@example.com,ACTIVE,STUDENT\n",
		"bad email": "id,first_name,last_name,email,status,role\n1,Ann,Lee,not-an-email,ACTIVE,STUDENT\n",
		"bad role":  "id,first_name,last_name,email,status,role\n1,Ann,Lee,ann@example.com,ACTIVE,JANITOR\n",
		"dup email": "id,first_name,last_name,email,status,role\n1,Ann,Lee,ann@example.com,ACTIVE,STUDENT\n2,Ann,Lee,ann@example.com,ACTIVE,STUDENT\n",
	}

	for name, users := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader(database, zerolog.Nop()).Load(ctx, mapFS(map[string]string{UsersFile: users}), false)
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if !strings.Contains(err.Error(), "line 2") && !strings.Contains(err.Error(), "line 3") {
				t.Errorf("error %q does not name the line", err)
			}

			count, err := appRepos.NewUserRepository(database).CountUsers(ctx)
			if err != nil || count != 0 {
				t.Fatalf("users after failed seed = %d, %v", count, err)
			}
		})
	}
}

func TestReadCSV(t *testing.T) {
	records, err := readCSV(strings.NewReader("a,b\n 1 , 2\n,\n\"3\",4,extra\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].field(0) != "1" || records[0].field(1) != "2" || records[0].line != 2 {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].field(2) != "extra" || records[1].field(5) != "" || records[1].line != 4 {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestSourceFS(t *testing.T) {
	if _, err := SourceFS(t.TempDir()); err != nil {
		t.Fatalf("SourceFS(dir) error = %v", err)
	}
	if _, err := SourceFS("/definitely/not/here"); err == nil {
		t.Fatal("SourceFS(missing) error = nil")
	}
}
