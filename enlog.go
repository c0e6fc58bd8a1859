package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// EngagementRow is one observation of a parent message's engagement at
// collection time. A message observed by several collect ticks appears
// once per tick; the latest row is the most accurate.
type EngagementRow struct {
	LoggedAt       time.Time
	RunID          string
	MessageTS      string
	ChannelID      string
	UserID         string
	ReactionCount  int
	ReplyCount     int
	ReplyUserCount int
}

var logHeader = []string{
	"timestamp", "run_id", "message_ts", "channel_id", "user_id",
	"reaction_count", "reply_count", "unique_reply_users_count",
}

// EngagementLog is the dated, append-only CSV sink the hourly collect
// mode writes through. The ranking core never reads it back within a
// single computation; only the digest mode consumes it.
type EngagementLog struct {
	dir string
}

// NewEngagementLog points the log at a directory, created on first
// append.
func NewEngagementLog(dir string) *EngagementLog {
	return &EngagementLog{dir: dir}
}

func (l *EngagementLog) path(day time.Time) string {
	return filepath.Join(l.dir, fmt.Sprintf("engagement_log_%s.csv", day.Format("2006-01-02")))
}

// Append writes the rows to today's log file, creating it (and the
// header) when absent.
func (l *EngagementLog) Append(rows []EngagementRow) error {
	if len(rows) == 0 {
		return nil
	}

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := l.path(time.Now())
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if isNew {
		if err := writer.Write(logHeader); err != nil {
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}

	for _, row := range rows {
		record := []string{
			row.LoggedAt.UTC().Format(time.RFC3339),
			row.RunID,
			row.MessageTS,
			row.ChannelID,
			row.UserID,
			strconv.Itoa(row.ReactionCount),
			strconv.Itoa(row.ReplyCount),
			strconv.Itoa(row.ReplyUserCount),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write log row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}

	log.Debug().Str("path", path).Int("rows", len(rows)).Msg("Engagement rows appended")
	return nil
}

// Load parses the given day's log into one row per message, the latest
// observation winning. A missing file surfaces as an os.IsNotExist
// error so callers can skip the digest quietly.
func (l *EngagementLog) Load(day time.Time) (map[string]EngagementRow, error) {
	file, err := os.Open(l.path(day))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse log file: %w", err)
	}

	rows := make(map[string]EngagementRow)
	for i, record := range records {
		if i == 0 || len(record) < len(logHeader) {
			continue
		}

		loggedAt, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			log.Warn().Str("timestamp", record[0]).Msg("Skipping log row with bad timestamp")
			continue
		}

		row := EngagementRow{
			LoggedAt:       loggedAt,
			RunID:          record[1],
			MessageTS:      record[2],
			ChannelID:      record[3],
			UserID:         record[4],
			ReactionCount:  atoiOrZero(record[5]),
			ReplyCount:     atoiOrZero(record[6]),
			ReplyUserCount: atoiOrZero(record[7]),
		}
		rows[row.MessageTS] = row
	}

	return rows, nil
}

// MarkProcessed renames the day's log so the next digest run does not
// rank it again.
func (l *EngagementLog) MarkProcessed(day time.Time) error {
	path := l.path(day)
	return os.Rename(path, path+".processed")
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
