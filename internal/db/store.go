package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jwulff/finvoice/internal/conversation"
	_ "modernc.org/sqlite"
)

// Store reads and writes archived exchanges.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "Finvoice", "finvoice.sqlite")
}

// Open opens (creating if needed) the database with WAL and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveExchange archives e. Saving an id twice keeps the first copy.
func (s *Store) SaveExchange(e conversation.Exchange) error {
	insights := e.Insights
	if insights == nil {
		insights = []conversation.Insight{}
	}
	data, err := json.Marshal(insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO exchanges (id, origin, channel, content, insights, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, int64(e.ID), e.Origin.String(), e.Channel.String(), e.Content, string(data), e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert exchange %d: %w", e.ID, err)
	}
	return nil
}

// RecentExchanges returns up to limit of the newest exchanges, oldest first.
func (s *Store) RecentExchanges(limit int) ([]conversation.Exchange, error) {
	rows, err := s.db.Query(`
		SELECT id, origin, channel, content, insights, createdAt
		FROM exchanges
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var out []conversation.Exchange
	for rows.Next() {
		var (
			id               int64
			origin, channel  string
			content, payload string
			createdAt        int64
		)
		if err := rows.Scan(&id, &origin, &channel, &content, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}

		e := conversation.Exchange{ID: uint64(id), Content: content, CreatedAt: time.Unix(0, createdAt)}
		if e.Origin, err = conversation.ParseOrigin(origin); err != nil {
			return nil, fmt.Errorf("exchange %d: %w", id, err)
		}
		if e.Channel, err = conversation.ParseChannel(channel); err != nil {
			return nil, fmt.Errorf("exchange %d: %w", id, err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Insights); err != nil {
			return nil, fmt.Errorf("exchange %d insights: %w", id, err)
		}
		if len(e.Insights) == 0 {
			e.Insights = nil
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// RestoreExchanges returns the newest complete turns for reloading into a
// log: up to limit rows, trimmed so every assistant exchange follows its
// user exchange on the same channel.
func (s *Store) RestoreExchanges(limit int) ([]conversation.Exchange, error) {
	recent, err := s.RecentExchanges(limit)
	if err != nil {
		return nil, err
	}
	return conversation.AnsweredPairs(recent), nil
}

// Count returns the number of archived exchanges.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM exchanges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count exchanges: %w", err)
	}
	return n, nil
}
