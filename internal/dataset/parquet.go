package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
)

type parquetSnapshot struct {
	VideoID            int64 `parquet:"video_id"`
	ViewsCount         int64 `parquet:"views_count"`
	LikesCount         int64 `parquet:"likes_count"`
	CommentsCount      int64 `parquet:"comments_count"`
	ReportsCount       int64 `parquet:"reports_count"`
	DeltaViewsCount    int64 `parquet:"delta_views_count"`
	DeltaLikesCount    int64 `parquet:"delta_likes_count"`
	DeltaCommentsCount int64 `parquet:"delta_comments_count"`
	DeltaReportsCount  int64 `parquet:"delta_reports_count"`
	CreatedAtUnixMs    int64 `parquet:"created_at_unix_ms"`
}

// ParseParquet decodes a flat parquet snapshot dump. Parquet dumps
// carry no video rows, so they can only extend history for videos
// already present in the database.
func ParseParquet(data []byte) ([]Snapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("parquet dump is empty")
	}

	reader := parquet.NewGenericReader[parquetSnapshot](bytes.NewReader(data))
	defer func() { _ = reader.Close() }()

	snapshots := make([]Snapshot, 0, reader.NumRows())
	buffer := make([]parquetSnapshot, 256)
	for {
		count, err := reader.Read(buffer)
		for _, row := range buffer[:count] {
			createdAt := time.UnixMilli(row.CreatedAtUnixMs).UTC()
			snapshots = append(snapshots, Snapshot{
				VideoID:            row.VideoID,
				ViewsCount:         row.ViewsCount,
				LikesCount:         row.LikesCount,
				CommentsCount:      row.CommentsCount,
				ReportsCount:       row.ReportsCount,
				DeltaViewsCount:    row.DeltaViewsCount,
				DeltaLikesCount:    row.DeltaLikesCount,
				DeltaCommentsCount: row.DeltaCommentsCount,
				DeltaReportsCount:  row.DeltaReportsCount,
				CreatedAt:          DumpTime{Time: createdAt},
				UpdatedAt:          DumpTime{Time: createdAt},
			})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	return snapshots, nil
}

// EncodeParquet writes snapshots in the flat dump layout. Used by the
// loader tests and by operators exporting fixtures.
func EncodeParquet(snapshots []Snapshot) ([]byte, error) {
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("snapshots are required")
	}

	rows := make([]parquetSnapshot, 0, len(snapshots))
	for _, snapshot := range snapshots {
		rows = append(rows, parquetSnapshot{
			VideoID:            snapshot.VideoID,
			ViewsCount:         snapshot.ViewsCount,
			LikesCount:         snapshot.LikesCount,
			CommentsCount:      snapshot.CommentsCount,
			ReportsCount:       snapshot.ReportsCount,
			DeltaViewsCount:    snapshot.DeltaViewsCount,
			DeltaLikesCount:    snapshot.DeltaLikesCount,
			DeltaCommentsCount: snapshot.DeltaCommentsCount,
			DeltaReportsCount:  snapshot.DeltaReportsCount,
			CreatedAtUnixMs:    snapshot.CreatedAt.UnixMilli(),
		})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetSnapshot](buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
