package schema

import "strings"

// Column documents one column of the analytics schema.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Doc  string `json:"doc"`
}

// Table documents one of the two read tables the translator may query.
type Table struct {
	Name    string   `json:"name"`
	Doc     string   `json:"doc"`
	Columns []Column `json:"columns"`
}

// Tables returns the fixed analytics schema: final per-video counters and
// the hourly snapshot rows linked to them.
func Tables() []Table {
	return []Table{
		{
			Name: "videos",
			Doc:  "Final statistics for every tracked video.",
			Columns: []Column{
				{Name: "id", Type: "BIGINT PRIMARY KEY", Doc: "video identifier"},
				{Name: "creator_id", Type: "BIGINT NOT NULL", Doc: "creator identifier"},
				{Name: "video_created_at", Type: "TIMESTAMP NOT NULL", Doc: "when the video was published"},
				{Name: "views_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "final view count"},
				{Name: "likes_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "final like count"},
				{Name: "comments_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "final comment count"},
				{Name: "reports_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "final report count"},
				{Name: "created_at", Type: "TIMESTAMP NOT NULL", Doc: "bookkeeping timestamp"},
				{Name: "updated_at", Type: "TIMESTAMP NOT NULL", Doc: "bookkeeping timestamp"},
			},
		},
		{
			Name: "video_snapshots",
			Doc:  "Hourly measurements for every video, with per-hour deltas.",
			Columns: []Column{
				{Name: "id", Type: "BIGINT PRIMARY KEY", Doc: "snapshot identifier"},
				{Name: "video_id", Type: "BIGINT NOT NULL REFERENCES videos(id)", Doc: "video the measurement belongs to"},
				{Name: "views_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "view count at measurement time"},
				{Name: "likes_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "like count at measurement time"},
				{Name: "comments_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "comment count at measurement time"},
				{Name: "reports_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "report count at measurement time"},
				{Name: "delta_views_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "views gained since the previous measurement"},
				{Name: "delta_likes_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "likes gained since the previous measurement"},
				{Name: "delta_comments_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "comments gained since the previous measurement"},
				{Name: "delta_reports_count", Type: "BIGINT NOT NULL DEFAULT 0", Doc: "reports gained since the previous measurement"},
				{Name: "created_at", Type: "TIMESTAMP NOT NULL", Doc: "measurement time, hourly"},
				{Name: "updated_at", Type: "TIMESTAMP NOT NULL", Doc: "bookkeeping timestamp"},
			},
		},
	}
}

type example struct {
	question string
	sql      string
}

var examples = []example{
	{
		question: "How many videos are there in total?",
		sql:      "SELECT COUNT(*) FROM videos;",
	},
	{
		question: "How many videos did creator 123 publish between 1 November 2025 and 5 November 2025 inclusive?",
		sql:      "SELECT COUNT(*) FROM videos WHERE creator_id = 123 AND video_created_at BETWEEN DATE '2025-11-01' AND DATE '2025-11-05';",
	},
	{
		question: "How many videos passed 100000 views all time?",
		sql:      "SELECT COUNT(*) FROM videos WHERE views_count > 100000;",
	},
	{
		question: "By how many views did all videos grow on 28 November 2025?",
		sql:      "SELECT COALESCE(SUM(delta_views_count), 0) FROM video_snapshots WHERE DATE(created_at) = DATE '2025-11-28';",
	},
	{
		question: "How many distinct videos gained new views on 27 November 2025?",
		sql:      "SELECT COUNT(DISTINCT video_id) FROM video_snapshots WHERE DATE(created_at) = DATE '2025-11-27' AND delta_views_count > 0;",
	},
}

// Prompt renders the fixed system prompt for the SQL translator: the table
// docs, the query rules and a handful of worked examples. Questions may
// arrive in Russian; date interpretation is the translator's job.
func Prompt() string {
	var b strings.Builder
	b.WriteString("You are a PostgreSQL expert. Convert the user's analytics question into a single SQL query.\n")
	b.WriteString("Questions may be written in Russian or English.\n\n")
	b.WriteString("## Database schema\n")
	for _, table := range Tables() {
		b.WriteString("\n### Table: ")
		b.WriteString(table.Name)
		b.WriteString("\n")
		b.WriteString(table.Doc)
		b.WriteString("\n\nColumns:\n")
		for _, column := range table.Columns {
			b.WriteString("- ")
			b.WriteString(column.Name)
			b.WriteString(" (")
			b.WriteString(column.Type)
			b.WriteString(") - ")
			b.WriteString(column.Doc)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n## Rules\n")
	b.WriteString("1. The query must return ONE number (an aggregate such as COUNT or SUM).\n")
	b.WriteString("2. Use SELECT statements only. Never use DROP, DELETE, UPDATE, INSERT, ALTER, TRUNCATE or CREATE.\n")
	b.WriteString("3. Convert natural-language dates to SQL dates, e.g. \"28 ноября 2025\" -> DATE '2025-11-28' and \"с 1 по 5 ноября 2025\" -> BETWEEN DATE '2025-11-01' AND DATE '2025-11-05'.\n")
	b.WriteString("4. Russian month names map to numbers: январь=01, февраль=02, март=03, апрель=04, май=05, июнь=06, июль=07, август=08, сентябрь=09, октябрь=10, ноябрь=11, декабрь=12.\n")
	b.WriteString("5. For \"how many videos\" questions use COUNT(*) or COUNT(DISTINCT ...).\n")
	b.WriteString("6. For totals of views/likes/comments/reports use SUM().\n")
	b.WriteString("7. For growth over a period use SUM(delta_...) from video_snapshots.\n")
	b.WriteString("8. For a specific day compare with the DATE() function.\n")
	b.WriteString("\n## Examples\n")
	for _, ex := range examples {
		b.WriteString("\nQuestion: \"")
		b.WriteString(ex.question)
		b.WriteString("\"\nSQL: ")
		b.WriteString(ex.sql)
		b.WriteString("\n")
	}
	b.WriteString("\nReturn ONLY the SQL query, with no explanation.\n")
	return b.String()
}
