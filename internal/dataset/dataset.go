// Package dataset loads engagement metric dumps into the metrics
// database. Dumps arrive as JSON exports of videos with nested
// snapshots, or as flat parquet snapshot files.
package dataset

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// DumpTime parses the timestamp shapes seen in exported dumps. Exports
// from different tools disagree on layout, so unmarshalling tries each
// known one in order.
type DumpTime struct {
	time.Time
}

var dumpTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *DumpTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range dumpTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

func (t DumpTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

type Video struct {
	ID             int64      `json:"id"`
	CreatorID      int64      `json:"creator_id"`
	VideoCreatedAt DumpTime   `json:"video_created_at"`
	ViewsCount     int64      `json:"views_count"`
	LikesCount     int64      `json:"likes_count"`
	CommentsCount  int64      `json:"comments_count"`
	ReportsCount   int64      `json:"reports_count"`
	CreatedAt      DumpTime   `json:"created_at"`
	UpdatedAt      DumpTime   `json:"updated_at"`
	Snapshots      []Snapshot `json:"snapshots"`
}

type Snapshot struct {
	VideoID            int64    `json:"video_id"`
	ViewsCount         int64    `json:"views_count"`
	LikesCount         int64    `json:"likes_count"`
	CommentsCount      int64    `json:"comments_count"`
	ReportsCount       int64    `json:"reports_count"`
	DeltaViewsCount    int64    `json:"delta_views_count"`
	DeltaLikesCount    int64    `json:"delta_likes_count"`
	DeltaCommentsCount int64    `json:"delta_comments_count"`
	DeltaReportsCount  int64    `json:"delta_reports_count"`
	CreatedAt          DumpTime `json:"created_at"`
	UpdatedAt          DumpTime `json:"updated_at"`
}
