// Package repository is the persistence layer for the mobile invoice
// endpoints. It owns the GORM connection, schema migration, seed data and
// every document operation the endpoint handlers delegate to.
package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/amrbasha900/mobile-endpoints/repository/models"
)

// PostgreSQL error codes as constants
const (
	// Class 23 — Integrity Constraint Violation
	PgErrForeignKeyViolation = "23503" // foreign_key_violation
	PgErrUniqueViolation     = "23505" // unique_violation
	PgErrCheckViolation      = "23514" // check_violation
	PgErrNotNullViolation    = "23502" // not_null_violation

	// Class 22 — Data Exception
	PgErrNumericValueOutOfRange = "22003" // numeric_value_out_of_range
	PgErrInvalidDatetimeFormat  = "22007" // invalid_datetime_format

	// Class 08 — Connection Exception
	PgErrConnectionException = "08000" // connection_exception
	PgErrConnectionFailure   = "08006" // connection_failure
)

// Repository-level error codes, used by handlers to pick HTTP statuses.
const (
	ErrCodeEntityNotFound = "ENTITY_NOT_FOUND"
	ErrCodeDatabaseError  = "DATABASE_ERROR"
	ErrCodeInvalidState   = "INVALID_STATE"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeUpdateFailed   = "UPDATE_FAILED"
	ErrCodeInsertFailed   = "INSERT_FAILED"
	ErrCodeDeleteFailed   = "DELETE_FAILED"
	ErrCodeCommitFailed   = "COMMIT_FAILED"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
)

// RepositoryError represents an error in the repository layer.
type RepositoryError struct {
	Code    string
	Message string
	Detail  string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// wrapDBError converts a GORM/driver error into a RepositoryError,
// surfacing PostgreSQL error codes when the driver provides them.
func wrapDBError(err error, fallbackCode string) *RepositoryError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &RepositoryError{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Detail:  pgErr.Detail,
		}
	}
	return &RepositoryError{
		Code:    fallbackCode,
		Message: "Database error occurred",
		Detail:  err.Error(),
	}
}

type Repository struct {
	db     *gorm.DB
	idNode *snowflake.Node
	logger zerolog.Logger
}

func NewRepository(logger zerolog.Logger) (*Repository, error) {
	// Node 1; single-writer deployment. The node ID only matters if
	// several instances generate names concurrently.
	idNode, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("creating snowflake node: %w", err)
	}
	return &Repository{
		idNode: idNode,
		logger: logger,
	}, nil
}

// ConnectDB connects to PostgreSQL, retrying while the database comes up.
func (r *Repository) ConnectDB(dsn string) error {
	var lastErr error
	for i := 0; i < 10; i++ {
		db, err := gorm.Open(postgres.Open(dsn))
		if err != nil {
			lastErr = err
			r.logger.Warn().Err(err).Int("attempt", i+1).Msg("database connection failed")
			time.Sleep(2 * time.Second)
			continue
		}
		r.db = db
		r.logger.Info().Msg("connected to Postgres")
		return nil
	}
	return fmt.Errorf("connecting to database: %w", lastErr)
}

// UseDB injects an already-open GORM handle. Used by tests.
func (r *Repository) UseDB(db *gorm.DB) {
	r.db = db
}

// Ping verifies the underlying connection is alive.
func (r *Repository) Ping() error {
	if r.db == nil {
		return errors.New("database not connected")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Migrate creates or updates the schema for all document models.
func (r *Repository) Migrate() error {
	err := r.db.AutoMigrate(
		&models.Supplier{},
		&models.Customer{},
		&models.Item{},
		&models.InvoiceForm{},
		&models.InvoiceItem{},
		&models.InvoiceCommission{},
		&models.User{},
		&models.Role{},
		&models.RolePermission{},
	)
	if err != nil {
		return fmt.Errorf("running migration: %w", err)
	}
	r.logger.Info().Msg("database migration completed")
	return nil
}

// Seed loads initial lookup data and a default API user. It is a no-op
// when suppliers already exist.
func (r *Repository) Seed() error {
	var supplierCount int64
	r.db.Model(&models.Supplier{}).Count(&supplierCount)
	if supplierCount > 0 {
		r.logger.Info().Msg("seed data already exists, skipping")
		return nil
	}

	r.logger.Info().Msg("seeding database with initial data")

	suppliers := []models.Supplier{
		{Name: "SUP-0001", SupplierName: "Green Valley Farm", IsFarmer: true},
		{Name: "SUP-0002", SupplierName: "Alwadi Produce", IsFarmer: true},
		{Name: "SUP-0003", SupplierName: "Riverside Orchards", IsFarmer: true},
		{Name: "SUP-0004", SupplierName: "Packline Supplies Co.", IsFarmer: false},
	}
	for _, supplier := range suppliers {
		if err := r.db.Create(&supplier).Error; err != nil {
			r.logger.Error().Err(err).Str("supplier", supplier.Name).Msg("seeding supplier failed")
		}
	}

	customers := []models.Customer{
		{Name: "CUST-0001", CustomerName: "Central Market"},
		{Name: "CUST-0002", CustomerName: "Abu Saeed Trading"},
		{Name: "CUST-0003", CustomerName: "Fresh Basket Retail"},
	}
	for _, customer := range customers {
		if err := r.db.Create(&customer).Error; err != nil {
			r.logger.Error().Err(err).Str("customer", customer.Name).Msg("seeding customer failed")
		}
	}

	items := []models.Item{
		{Name: "ITEM-0001", ItemCode: "TOMATO", ItemName: "Tomato"},
		{Name: "ITEM-0002", ItemCode: "CUCUMBER", ItemName: "Cucumber"},
		{Name: "ITEM-0003", ItemCode: "EGGPLANT", ItemName: "Eggplant"},
		{Name: "ITEM-0004", ItemCode: "PEPPER", ItemName: "Bell Pepper"},
	}
	for _, item := range items {
		if err := r.db.Create(&item).Error; err != nil {
			r.logger.Error().Err(err).Str("item", item.Name).Msg("seeding item failed")
		}
	}

	grants := []models.RolePermission{
		{Role: "Invoice User", Doctype: "Invoice Form", CanRead: true, CanWrite: true, CanCreate: true, CanSubmit: true, CanDelete: true},
		{Role: "Invoice User", Doctype: "Supplier", CanRead: true},
		{Role: "Invoice User", Doctype: "Customer", CanRead: true},
		{Role: "Invoice User", Doctype: "Item", CanRead: true},
	}
	role := models.Role{Name: "Invoice User", Permissions: grants}
	if err := r.db.Create(&role).Error; err != nil {
		r.logger.Error().Err(err).Msg("seeding role failed")
	}

	user := models.User{
		Email:          "mobile@example.com",
		FullName:       "Mobile App User",
		APIKey:         "dev-api-key",
		DefaultCompany: "Alwadi Farms Co.",
		Enabled:        true,
		Roles:          []models.Role{role},
	}
	if err := r.db.Create(&user).Error; err != nil {
		r.logger.Error().Err(err).Msg("seeding user failed")
	}

	r.logger.Info().Msg("database seeding completed")
	return nil
}

// GetUserByAPIKey resolves an API key to an enabled user with their role
// grants preloaded. Returns ENTITY_NOT_FOUND for unknown or disabled keys.
func (r *Repository) GetUserByAPIKey(apiKey string) (*models.User, *RepositoryError) {
	var user models.User
	err := r.db.Preload("Roles.Permissions").
		Where("api_key = ? AND enabled = ?", apiKey, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RepositoryError{
				Code:    ErrCodeEntityNotFound,
				Message: "Unknown API key",
				Detail:  "no enabled user matches the provided API key",
			}
		}
		return nil, wrapDBError(err, ErrCodeDatabaseError)
	}
	return &user, nil
}

// newDocName mints a document name with the given prefix.
func (r *Repository) newDocName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, r.idNode.Generate().String())
}
