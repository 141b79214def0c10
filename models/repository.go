package models

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainertrack/monitoring"
)

var ErrNotFound = errors.New("record not found")

// Repository is the persistence port for clients and their measurements.
// Inserts are conflict-tolerant: writing an entity whose id already exists
// is a no-op, not an error. Deleting a client removes its measurements.
type Repository interface {
	ListClients(ctx context.Context) ([]Client, error)
	GetClientByID(ctx context.Context, id uint) (*Client, error)
	CreateClient(ctx context.Context, client *Client) error
	UpdateClient(ctx context.Context, client *Client) error
	DeleteClient(ctx context.Context, id uint) error

	ListClientMeasurements(ctx context.Context, clientID uint) ([]Measurement, error)
	GetMeasurementByID(ctx context.Context, id uint) (*Measurement, error)
	CreateMeasurement(ctx context.Context, m *Measurement) error
	UpdateMeasurement(ctx context.Context, m *Measurement) error
	DeleteMeasurement(ctx context.Context, id uint) error

	Close() error
}

type PostgresRepository struct {
	db *gorm.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository() (*PostgresRepository, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Client{}, &Measurement{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) ListClients(ctx context.Context) ([]Client, error) {
	monitoring.DatabaseQueries.Inc()
	var clients []Client
	if err := r.db.WithContext(ctx).Order("id").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *PostgresRepository) GetClientByID(ctx context.Context, id uint) (*Client, error) {
	monitoring.DatabaseQueries.Inc()
	var client Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *PostgresRepository) CreateClient(ctx context.Context, client *Client) error {
	monitoring.DatabaseQueries.Inc()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(client).Error
}

func (r *PostgresRepository) UpdateClient(ctx context.Context, client *Client) error {
	monitoring.DatabaseQueries.Inc()
	return r.db.WithContext(ctx).Save(client).Error
}

// DeleteClient removes the client and every measurement referencing it in
// one transaction. Missing clients report ErrNotFound.
func (r *PostgresRepository) DeleteClient(ctx context.Context, id uint) error {
	monitoring.DatabaseQueries.Inc()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Client{}, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&Measurement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Client{}, id).Error
	})
}

func (r *PostgresRepository) ListClientMeasurements(ctx context.Context, clientID uint) ([]Measurement, error) {
	monitoring.DatabaseQueries.Inc()
	var measurements []Measurement
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id").
		Find(&measurements).Error
	if err != nil {
		return nil, err
	}
	return measurements, nil
}

func (r *PostgresRepository) GetMeasurementByID(ctx context.Context, id uint) (*Measurement, error) {
	monitoring.DatabaseQueries.Inc()
	var m Measurement
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) CreateMeasurement(ctx context.Context, m *Measurement) error {
	monitoring.DatabaseQueries.Inc()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m).Error
}

func (r *PostgresRepository) UpdateMeasurement(ctx context.Context, m *Measurement) error {
	monitoring.DatabaseQueries.Inc()
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *PostgresRepository) DeleteMeasurement(ctx context.Context, id uint) error {
	monitoring.DatabaseQueries.Inc()
	res := r.db.WithContext(ctx).Delete(&Measurement{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
