package storage

import "house-dashboard/models"

// HouseWriter is the interface any dataset snapshot backend must satisfy.
type HouseWriter interface {
	Write(houses []models.House) error
	Close() error
}

// HouseReader loads a previously stored dataset.
type HouseReader interface {
	FetchAll() ([]models.House, error)
	Close() error
}

// TableWriter persists tabular exports such as the startup aggregates.
type TableWriter interface {
	WriteRows(rows [][]string) error
	Close() error
}

var (
	_ HouseWriter = (*PostgresStore)(nil)
	_ HouseReader = (*PostgresStore)(nil)
	_ TableWriter = (*CSVWriter)(nil)
)
