package schema

import (
	"strings"
	"testing"
)

func TestTablesCoverBothReadTables(t *testing.T) {
	tables := Tables()
	if len(tables) != 2 {
		t.Fatalf("len(Tables()) = %d", len(tables))
	}
	if tables[0].Name != "videos" || tables[1].Name != "video_snapshots" {
		t.Fatalf("table names = %q, %q", tables[0].Name, tables[1].Name)
	}
	for _, table := range tables {
		if len(table.Columns) == 0 {
			t.Fatalf("table %s has no columns", table.Name)
		}
	}
}

func TestPromptMentionsSchemaAndRules(t *testing.T) {
	prompt := Prompt()
	for _, fragment := range []string{
		"videos",
		"video_snapshots",
		"delta_views_count",
		"SELECT COUNT(*) FROM videos;",
		"Never use DROP",
		"Return ONLY the SQL query",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt is missing %q", fragment)
		}
	}
}
