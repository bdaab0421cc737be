package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/apperr"
	"academy/internal/store"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "Present", want: Present},
		{in: "present", want: Present},
		{in: " ABSENT ", want: Absent},
		{in: "late", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, Absent, Present.Flip())
	assert.Equal(t, Present, Absent.Flip())
}

func TestEncodeDecodeBatch(t *testing.T) {
	b := Batch{
		Name:       "Evening Guitar",
		Timing:     time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC),
		CourseID:   "c1",
		StudentIDs: []string{"s1", "s2"},
		TeacherIDs: []string{"t1"},
	}
	doc, err := Encode(b)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01T18:00:00Z", doc["timing"])
	assert.Equal(t, "c1", doc["courseId"])
	assert.NotContains(t, doc, "ID")

	var got Batch
	require.NoError(t, Decode(store.Record{ID: "b1", Doc: doc}, &got))
	b.ID = "b1"
	assert.Equal(t, b, got)
	assert.True(t, got.HasStudent("s2"))
	assert.False(t, got.HasStudent("s3"))
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  store.Document
		into any
	}{
		{name: "batch without name", doc: store.Document{"courseId": "c1", "timing": "2025-04-01T18:00:00Z"}, into: &Batch{}},
		{name: "course negative fee", doc: store.Document{"courseName": "Drums", "courseFee": -5}, into: &Course{}},
		{name: "teacher too young", doc: store.Document{"name": "Kid", "age": 12}, into: &Teacher{}},
		{name: "status not a string", doc: store.Document{"studentId": "s1", "month": "March 2025", "attendance": map[string]any{"2025-03-01": 1}}, into: &MonthlyAttendance{}},
		{name: "wrong type", doc: store.Document{"courseName": 42}, into: &Course{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decode(store.Record{ID: "x1", Doc: tt.doc}, tt.into)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
}

func TestDecodeNormalisesStatusCase(t *testing.T) {
	doc := store.Document{
		"batchId": "b1",
		"date":    "2025-03-05",
		"records": map[string]any{"s1": "present", "s2": "absent"},
	}
	var d DailyAttendance
	require.NoError(t, Decode(store.Record{ID: "b1_2025-03-05", Doc: doc}, &d))
	assert.Equal(t, "b1_2025-03-05", d.ID)
	assert.Equal(t, map[string]Status{"s1": Present, "s2": Absent}, d.Records)
}

func TestDecodeKeepsUnknownStatus(t *testing.T) {
	doc := store.Document{
		"studentId":  "s1",
		"month":      "March 2025",
		"attendance": map[string]any{"2025-03-02": "Late", "2025-03-03": "PRESENT"},
	}
	var m MonthlyAttendance
	require.NoError(t, Decode(store.Record{ID: "s1_March 2025", Doc: doc}, &m))
	assert.Equal(t, Status("Late"), m.Attendance["2025-03-02"])
	assert.False(t, m.Attendance["2025-03-02"].Known())
	assert.Equal(t, Present, m.Attendance["2025-03-03"])
	assert.True(t, m.Attendance["2025-03-03"].Known())
}

func TestDecodeAll(t *testing.T) {
	recs := []store.Record{
		{ID: "c1", Doc: store.Document{"courseName": "Guitar", "courseFee": 1200}},
		{ID: "c2", Doc: store.Document{"courseName": "Piano", "courseFee": 1500}},
	}
	courses := DecodeAll[Course](recs, nil)
	assert.Equal(t, []Course{{ID: "c1", Name: "Guitar", Fee: 1200}, {ID: "c2", Name: "Piano", Fee: 1500}}, courses)

	recs = append(recs, store.Record{ID: "c3", Doc: store.Document{}})
	var skipped []string
	courses = DecodeAll[Course](recs, func(rec store.Record, err error) {
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		skipped = append(skipped, rec.ID)
	})
	assert.Len(t, courses, 2)
	assert.Equal(t, []string{"c3"}, skipped)
}
