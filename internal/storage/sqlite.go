// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Rahulcodess/macro-factor/internal/models"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS meals (
        id TEXT PRIMARY KEY,
        description TEXT NOT NULL,
        grams REAL NOT NULL DEFAULT 0,
        calories INTEGER NOT NULL,
        protein_g REAL NOT NULL,
        carbs_g REAL NOT NULL,
        fat_g REAL NOT NULL,
        confidence_range TEXT NOT NULL,
        source TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_meals_timestamp ON meals(timestamp);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) SaveMeal(meal *models.Meal) error {
	query := `
        INSERT INTO meals (id, description, grams, calories, protein_g, carbs_g, fat_g,
                           confidence_range, source, timestamp, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.Exec(query,
		meal.ID, meal.Description, meal.Grams,
		meal.Estimate.Calories, meal.Estimate.ProteinG, meal.Estimate.CarbsG, meal.Estimate.FatG,
		meal.Estimate.ConfidenceRange, meal.Estimate.Source,
		meal.Timestamp.Format(time.RFC3339), meal.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) GetMeals(startDate, endDate string, limit int) ([]*models.Meal, error) {
	query := `
        SELECT id, description, grams, calories, protein_g, carbs_g, fat_g,
               confidence_range, source, timestamp, created_at
        FROM meals
        WHERE 1=1
    `
	args := []interface{}{}

	if startDate != "" {
		query += " AND DATE(timestamp) >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND DATE(timestamp) <= ?"
		args = append(args, endDate)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []*models.Meal
	for rows.Next() {
		meal := &models.Meal{}
		var timestampStr, createdAtStr string

		err := rows.Scan(
			&meal.ID, &meal.Description, &meal.Grams,
			&meal.Estimate.Calories, &meal.Estimate.ProteinG, &meal.Estimate.CarbsG, &meal.Estimate.FatG,
			&meal.Estimate.ConfidenceRange, &meal.Estimate.Source,
			&timestampStr, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}

		if meal.Timestamp, err = time.Parse(time.RFC3339, timestampStr); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		if meal.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		meals = append(meals, meal)
	}

	return meals, rows.Err()
}
