package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Alias1177/PredictionMetrics/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ParamsFromConfig maps the configured database settings to connection parameters.
func ParamsFromConfig(cfg models.DBConfig) ConnectionParams {
	return ConnectionParams{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
	}
}

// DSN renders the lib/pq connection string.
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// New creates a new database connection and makes sure the schema exists
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS forecast_observations (
			symbol TEXT NOT NULL,
			method TEXT NOT NULL,
			observed_at TIMESTAMP NOT NULL,
			predicted DOUBLE PRECISION,
			actual DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, method, observed_at)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS accuracy_reports (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			method TEXT NOT NULL,
			candle_interval TEXT NOT NULL,
			samples INTEGER NOT NULL,
			mae DOUBLE PRECISION NOT NULL,
			rmse DOUBLE PRECISION NOT NULL,
			mape DOUBLE PRECISION NOT NULL,
			direction_accuracy DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// SaveObservations upserts every observation of the series under the given method.
func (db *DB) SaveObservations(ctx context.Context, series models.Series, method string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecast_observations (symbol, method, observed_at, predicted, actual)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, method, observed_at)
		DO UPDATE SET
			predicted = EXCLUDED.predicted,
			actual = EXCLUDED.actual
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range series.Observations {
		if _, err := stmt.ExecContext(ctx, series.Symbol, method, o.Date, toNullFloat(o.Predicted), o.Actual); err != nil {
			return fmt.Errorf("insert observation %s %s: %w", series.Symbol, o.Date.Format("2006-01-02 15:04"), err)
		}
	}

	return tx.Commit()
}

// LoadSeries reads back the stored observations of a symbol, oldest first.
// It returns nil when nothing is stored.
func (db *DB) LoadSeries(ctx context.Context, symbol, method string) (*models.Series, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT observed_at, predicted, actual
		FROM forecast_observations
		WHERE symbol = $1 AND method = $2
		ORDER BY observed_at
	`, symbol, method)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := &models.Series{Symbol: symbol}
	for rows.Next() {
		var o models.Observation
		var predicted sql.NullFloat64
		if err := rows.Scan(&o.Date, &predicted, &o.Actual); err != nil {
			return nil, err
		}
		o.Predicted = fromNullFloat(predicted)
		series.Observations = append(series.Observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(series.Observations) == 0 {
		return nil, nil
	}
	return series, nil
}

// SaveReport stores an accuracy report and returns its id
func (db *DB) SaveReport(ctx context.Context, r models.AccuracyReport) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO accuracy_reports (
			symbol, method, candle_interval, samples, mae, rmse, mape, direction_accuracy, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		r.Symbol, r.Method, r.Interval, r.Samples, r.MAE, r.RMSE, r.MAPE, r.DirectionAccuracy, r.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LatestReports returns the most recent reports, newest first
func (db *DB) LatestReports(ctx context.Context, limit int) ([]models.AccuracyReport, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, symbol, method, candle_interval, samples, mae, rmse, mape, direction_accuracy, created_at
		FROM accuracy_reports
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.AccuracyReport
	for rows.Next() {
		var r models.AccuracyReport
		if err := rows.Scan(
			&r.ID, &r.Symbol, &r.Method, &r.Interval, &r.Samples,
			&r.MAE, &r.RMSE, &r.MAPE, &r.DirectionAccuracy, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetReport retrieves a single report by id
func (db *DB) GetReport(ctx context.Context, id int64) (*models.AccuracyReport, error) {
	var r models.AccuracyReport
	err := db.QueryRowContext(ctx, `
		SELECT id, symbol, method, candle_interval, samples, mae, rmse, mape, direction_accuracy, created_at
		FROM accuracy_reports
		WHERE id = $1
	`, id).Scan(
		&r.ID, &r.Symbol, &r.Method, &r.Interval, &r.Samples,
		&r.MAE, &r.RMSE, &r.MAPE, &r.DirectionAccuracy, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No report found
		}
		return nil, err
	}
	return &r, nil
}

func toNullFloat(p models.Prediction) sql.NullFloat64 {
	return sql.NullFloat64{Float64: p.Value, Valid: p.Valid}
}

func fromNullFloat(n sql.NullFloat64) models.Prediction {
	if !n.Valid {
		return models.NoPrediction()
	}
	return models.Predicted(n.Float64)
}
