package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// record is one data line of a seed file
type record struct {
	line   int
	fields []string
}

func (r record) field(i int) string {
	if i < len(r.fields) {
		return r.fields[i]
	}
	return ""
}

// readCSV returns the data rows of a CSV file. The header line is dropped, blank lines
// are ignored and every field is trimmed.
func readCSV(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var records []record
	header := true
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}

		line, _ := reader.FieldPos(0)
		blank := true
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
			if fields[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		records = append(records, record{line: line, fields: fields})
	}
	return records, nil
}

type userRow struct {
	ID        int64  `validate:"gt=0"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
	Status    string `validate:"oneof=ACTIVE INACTIVE BLOCKED"`
	Role      string `validate:"oneof=STUDENT TEACHER ADMIN"`
}

type courseRow struct {
	ID          int64  `validate:"gt=0"`
	Title       string `validate:"required"`
	Description string
}

type enrollmentRow struct {
	StudentID int64 `validate:"gt=0"`
	CourseID  int64 `validate:"gt=0"`
}

func parseUser(rec record) (*userRow, error) {
	id, err := parseID(rec, 0, "id")
	if err != nil {
		return nil, err
	}
	return &userRow{
		ID:        id,
		FirstName: rec.field(1),
		LastName:  rec.field(2),
		Email:     rec.field(3),
		Status:    strings.ToUpper(rec.field(4)),
		Role:      strings.ToUpper(rec.field(5)),
	}, nil
}

// parseCourse ignores the optional teacher_id column
func parseCourse(rec record) (*courseRow, error) {
	id, err := parseID(rec, 0, "id")
	if err != nil {
		return nil, err
	}
	return &courseRow{ID: id, Title: rec.field(1), Description: rec.field(2)}, nil
}

func parseEnrollment(rec record) (*enrollmentRow, error) {
	studentID, err := parseID(rec, 0, "student_id")
	if err != nil {
		return nil, err
	}
	courseID, err := parseID(rec, 1, "course_id")
	if err != nil {
		return nil, err
	}
	return &enrollmentRow{StudentID: studentID, CourseID: courseID}, nil
}

func parseID(rec record, i int, column string) (int64, error) {
	v, err := strconv.ParseInt(rec.field(i), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q", rec.line, column, rec.field(i))
	}
	return v, nil
}
