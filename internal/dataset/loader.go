package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const upsertVideoSQL = `
INSERT INTO videos (id, creator_id, video_created_at, views_count, likes_count, comments_count, reports_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	views_count = EXCLUDED.views_count,
	likes_count = EXCLUDED.likes_count,
	comments_count = EXCLUDED.comments_count,
	reports_count = EXCLUDED.reports_count,
	updated_at = EXCLUDED.updated_at`

const insertSnapshotSQL = `
INSERT INTO video_snapshots (video_id, views_count, likes_count, comments_count, reports_count, delta_views_count, delta_likes_count, delta_comments_count, delta_reports_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT DO NOTHING`

type LoadStats struct {
	Videos    int
	Snapshots int
}

// Loader writes parsed dumps into the metrics database in batched
// transactions. Re-running a load is safe: video rows are upserted on
// id and snapshot inserts skip conflicts.
type Loader struct {
	db        *sql.DB
	logger    *slog.Logger
	batchSize int
}

func NewLoader(db *sql.DB, logger *slog.Logger, batchSize int) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Loader{db: db, logger: logger, batchSize: batchSize}
}

func (l *Loader) LoadVideos(ctx context.Context, videos []Video) (LoadStats, error) {
	stats := LoadStats{}
	for start := 0; start < len(videos); start += l.batchSize {
		end := min(start+l.batchSize, len(videos))
		batch := videos[start:end]

		if err := l.loadVideoBatch(ctx, batch, &stats); err != nil {
			return stats, err
		}
		l.logger.InfoContext(ctx, "video batch loaded",
			slog.Int("videos", stats.Videos),
			slog.Int("snapshots", stats.Snapshots),
		)
	}
	return stats, nil
}

func (l *Loader) loadVideoBatch(ctx context.Context, batch []Video, stats *LoadStats) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, video := range batch {
		createdAt := timestampOrNow(video.CreatedAt)
		updatedAt := timestampOrNow(video.UpdatedAt)
		if _, err := tx.ExecContext(ctx, upsertVideoSQL,
			video.ID, video.CreatorID, video.VideoCreatedAt.Time,
			video.ViewsCount, video.LikesCount, video.CommentsCount, video.ReportsCount,
			createdAt, updatedAt,
		); err != nil {
			return fmt.Errorf("upsert video %d: %w", video.ID, err)
		}
		stats.Videos++

		for _, snapshot := range video.Snapshots {
			if err := insertSnapshot(ctx, tx, snapshot); err != nil {
				return err
			}
			stats.Snapshots++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// LoadSnapshots appends snapshot-only dumps, such as parsed parquet
// files, for videos that already exist.
func (l *Loader) LoadSnapshots(ctx context.Context, snapshots []Snapshot) (LoadStats, error) {
	stats := LoadStats{}
	for start := 0; start < len(snapshots); start += l.batchSize {
		end := min(start+l.batchSize, len(snapshots))
		batch := snapshots[start:end]

		tx, err := l.db.BeginTx(ctx, nil)
		if err != nil {
			return stats, fmt.Errorf("begin tx: %w", err)
		}
		for _, snapshot := range batch {
			if err := insertSnapshot(ctx, tx, snapshot); err != nil {
				_ = tx.Rollback()
				return stats, err
			}
			stats.Snapshots++
		}
		if err := tx.Commit(); err != nil {
			return stats, fmt.Errorf("commit batch: %w", err)
		}
		l.logger.InfoContext(ctx, "snapshot batch loaded", slog.Int("snapshots", stats.Snapshots))
	}
	return stats, nil
}

func insertSnapshot(ctx context.Context, tx *sql.Tx, snapshot Snapshot) error {
	if snapshot.VideoID == 0 {
		return fmt.Errorf("snapshot has no video id")
	}
	if _, err := tx.ExecContext(ctx, insertSnapshotSQL,
		snapshot.VideoID,
		snapshot.ViewsCount, snapshot.LikesCount, snapshot.CommentsCount, snapshot.ReportsCount,
		snapshot.DeltaViewsCount, snapshot.DeltaLikesCount, snapshot.DeltaCommentsCount, snapshot.DeltaReportsCount,
		timestampOrNow(snapshot.CreatedAt), timestampOrNow(snapshot.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert snapshot for video %d: %w", snapshot.VideoID, err)
	}
	return nil
}

func timestampOrNow(t DumpTime) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.Time
}
