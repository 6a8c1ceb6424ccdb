package dataset

import (
	"encoding/json"
	"fmt"
)

// ParseJSON decodes a JSON dump of videos with nested snapshots.
// Snapshot video ids are filled from the parent, and missing snapshot
// timestamps fall back to the parent's creation time so ordering
// queries stay meaningful.
func ParseJSON(data []byte) ([]Video, error) {
	var videos []Video
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, fmt.Errorf("decode video dump: %w", err)
	}

	for i := range videos {
		video := &videos[i]
		if video.ID == 0 {
			return nil, fmt.Errorf("video at index %d has no id", i)
		}
		if video.CreatedAt.IsZero() {
			video.CreatedAt = video.VideoCreatedAt
		}
		if video.UpdatedAt.IsZero() {
			video.UpdatedAt = video.CreatedAt
		}
		for j := range video.Snapshots {
			snapshot := &video.Snapshots[j]
			snapshot.VideoID = video.ID
			if snapshot.CreatedAt.IsZero() {
				snapshot.CreatedAt = video.VideoCreatedAt
			}
			if snapshot.UpdatedAt.IsZero() {
				snapshot.UpdatedAt = snapshot.CreatedAt
			}
		}
	}
	return videos, nil
}
