// Package summary keeps present/absent counts of saved attendance records in
// Redis hashes, one per record key.
package summary

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"academy/internal/apperr"
	"academy/internal/attendance"
	"academy/internal/model"
	"academy/internal/store"
)

// Record is the stored summary of one attendance record.
type Record struct {
	Key       string    `json:"key"`
	Mode      string    `json:"mode"`
	Owner     string    `json:"owner"`
	Period    string    `json:"period"`
	Present   int       `json:"present"`
	Absent    int       `json:"absent"`
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reader looks summaries up by record key.
type Reader interface {
	Get(ctx context.Context, key string) (Record, error)
}

// HashKey is the redis hash holding the summary of key.
func HashKey(key string) string {
	return "academy:summary:" + key
}

// FromRecord counts the marks of a stored attendance record of either mode.
func FromRecord(rec store.Record, at time.Time) (Record, error) {
	owner, period, mode, err := attendance.SplitKey(rec.ID)
	if err != nil {
		return Record{}, err
	}
	var marks map[string]model.Status
	switch mode {
	case attendance.MonthlyByStudent:
		var m model.MonthlyAttendance
		if err := model.Decode(rec, &m); err != nil {
			return Record{}, err
		}
		marks = m.Attendance
	case attendance.DailyByBatch:
		var d model.DailyAttendance
		if err := model.Decode(rec, &d); err != nil {
			return Record{}, err
		}
		marks = d.Records
	}
	sum := attendance.Summarize(marks)
	return Record{
		Key:       rec.ID,
		Mode:      string(mode),
		Owner:     owner,
		Period:    period,
		Present:   sum.Present,
		Absent:    sum.Absent,
		Total:     sum.Total,
		UpdatedAt: at.UTC(),
	}, nil
}

// Redis stores summaries as hashes.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps a client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Put overwrites the hash of rec.Key.
func (r *Redis) Put(ctx context.Context, rec Record) error {
	err := r.client.HSet(ctx, HashKey(rec.Key),
		"mode", rec.Mode,
		"owner", rec.Owner,
		"period", rec.Period,
		"present", rec.Present,
		"absent", rec.Absent,
		"total", rec.Total,
		"updated_at", rec.UpdatedAt.Format(time.RFC3339),
	).Err()
	if err != nil {
		return apperr.Unavailable("summary put", err)
	}
	return nil
}

// Get reads the summary of key. A missing hash is NotFound.
func (r *Redis) Get(ctx context.Context, key string) (Record, error) {
	fields, err := r.client.HGetAll(ctx, HashKey(key)).Result()
	if err != nil {
		return Record{}, apperr.Unavailable("summary get", err)
	}
	if len(fields) == 0 {
		return Record{}, apperr.NotFound("summaries", key)
	}
	return parse(key, fields)
}

func parse(key string, fields map[string]string) (Record, error) {
	mode, err := attendance.ParseMode(fields["mode"])
	if err != nil {
		return Record{}, apperr.Invalid("summary %s: %v", key, err)
	}
	rec := Record{Key: key, Mode: string(mode), Owner: fields["owner"], Period: fields["period"]}
	for name, dst := range map[string]*int{"present": &rec.Present, "absent": &rec.Absent, "total": &rec.Total} {
		n, err := strconv.Atoi(fields[name])
		if err != nil {
			return Record{}, apperr.Invalid("summary %s: bad %s %q", key, name, fields[name])
		}
		*dst = n
	}
	if ts := fields["updated_at"]; ts != "" {
		at, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return Record{}, apperr.Invalid("summary %s: bad updated_at %q", key, ts)
		}
		rec.UpdatedAt = at
	}
	return rec, nil
}
