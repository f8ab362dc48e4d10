// Package db persists cleaned trip records and training runs in SQLite so a
// dataset ingested once can feed many training jobs.
package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"farecast/trip"
)

var database *sql.DB

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS trips (
        id INTEGER PRIMARY KEY,
        pickup_datetime DATETIME,
        dropoff_datetime DATETIME,
        pickup_location_id INTEGER,
        dropoff_location_id INTEGER,
        trip_distance REAL,
        fare_amount REAL,
        passenger_count INTEGER,
        rate_code VARCHAR(32),
        payment_type VARCHAR(32),
        UNIQUE(pickup_datetime, dropoff_datetime, pickup_location_id, dropoff_location_id, trip_distance)
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY,
        target VARCHAR(20),
        model_type VARCHAR(20),
        mae REAL,
        rmse REAL,
        trained_at DATETIME,
        data_points INTEGER
    );
    `

	_, err = database.Exec(query)
	return err
}

// CloseDB closes the database handle.
func CloseDB() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveTrips inserts cleaned trips in one transaction. Duplicate rows (same
// times, locations and distance) are ignored, matching the drop-duplicates
// step of the source preprocessing.
func SaveTrips(records []trip.CleanedTripRecord) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := database.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
        INSERT OR IGNORE INTO trips (
            pickup_datetime, dropoff_datetime, pickup_location_id, dropoff_location_id,
            trip_distance, fare_amount, passenger_count, rate_code, payment_type
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			rec.PickupTime, rec.DropoffTime, rec.PickupLocationID, rec.DropoffLocationID,
			rec.TripDistance, rec.FareAmount, rec.PassengerCount, rec.RateCode, rec.PaymentType,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadTrips returns all stored cleaned trips ordered by pickup time.
func LoadTrips() ([]trip.CleanedTripRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT pickup_datetime, dropoff_datetime, pickup_location_id, dropoff_location_id,
               trip_distance, fare_amount, passenger_count, rate_code, payment_type
        FROM trips
        ORDER BY pickup_datetime`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []trip.CleanedTripRecord
	for rows.Next() {
		var rec trip.CleanedTripRecord
		err := rows.Scan(
			&rec.PickupTime, &rec.DropoffTime, &rec.PickupLocationID, &rec.DropoffLocationID,
			&rec.TripDistance, &rec.FareAmount, &rec.PassengerCount, &rec.RateCode, &rec.PaymentType,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TrainingLog is one row of training history.
type TrainingLog struct {
	Target     string    `json:"target"`
	ModelType  string    `json:"model_type"`
	MAE        float64   `json:"mae"`
	RMSE       float64   `json:"rmse"`
	TrainedAt  time.Time `json:"trained_at"`
	DataPoints int       `json:"data_points"`
}

// SaveTrainingLog records one completed training run.
func SaveTrainingLog(entry TrainingLog) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (target, model_type, mae, rmse, trained_at, data_points)
        VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Target, entry.ModelType, entry.MAE, entry.RMSE, entry.TrainedAt, entry.DataPoints,
	)
	return err
}

// LoadTrainingLog returns training history, newest first.
func LoadTrainingLog() ([]TrainingLog, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT target, model_type, mae, rmse, trained_at, data_points
        FROM training_log
        ORDER BY trained_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var entry TrainingLog
		if err := rows.Scan(&entry.Target, &entry.ModelType, &entry.MAE, &entry.RMSE, &entry.TrainedAt, &entry.DataPoints); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
