package database

import (
	"database/sql"
	"fmt"

	"construction-backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DB is the raw database/sql fallback store. It covers the scalar subset of
// the flat inventory; ledger entries (payments, extra work, documents) need
// the GORM store and are nil-guarded at wiring time.
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the inventory tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS flats (
		id VARCHAR(36) PRIMARY KEY,
		project_id VARCHAR(36) NOT NULL,
		block VARCHAR(100) NOT NULL,
		floor VARCHAR(10) NOT NULL,
		flat_number VARCHAR(10) NOT NULL,
		type VARCHAR(20) NOT NULL DEFAULT '1BHK',
		area DECIMAL(10, 2),
		rate DECIMAL(15, 2),
		status VARCHAR(20) NOT NULL DEFAULT 'Available',
		buyer_name VARCHAR(200),
		buyer_address TEXT,
		buyer_mobile VARCHAR(20),
		total_amount DECIMAL(15, 2) NOT NULL DEFAULT 0,
		paid_amount DECIMAL(15, 2) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS delete_logs (
		id SERIAL PRIMARY KEY,
		flat_id VARCHAR(36) NOT NULL,
		block VARCHAR(100),
		floor VARCHAR(10),
		flat_number VARCHAR(10),
		scope VARCHAR(20) NOT NULL,
		reason VARCHAR(50) NOT NULL,
		deleted_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS change_logs (
		id SERIAL PRIMARY KEY,
		flat_id VARCHAR(36) NOT NULL,
		change_type VARCHAR(50) NOT NULL,
		old_value TEXT,
		new_value TEXT,
		amount DECIMAL(15, 2),
		detected_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_flats_project ON flats(project_id);
	CREATE INDEX IF NOT EXISTS idx_flats_block_floor ON flats(block, floor);
	CREATE INDEX IF NOT EXISTS idx_flats_status ON flats(status);
	`
	_, err := db.conn.Exec(query)
	return err
}

const flatColumns = `id, project_id, block, floor, flat_number, type, area, rate,
		status, buyer_name, buyer_address, buyer_mobile, total_amount, paid_amount,
		created_at, updated_at`

func scanFlat(row interface{ Scan(...interface{}) error }) (*models.Flat, error) {
	var f models.Flat
	var area, rate decimal.NullDecimal
	var buyerName, buyerAddress, buyerMobile sql.NullString

	err := row.Scan(
		&f.ID, &f.ProjectID, &f.Block, &f.Floor, &f.FlatNumber, &f.Type, &area, &rate,
		&f.Status, &buyerName, &buyerAddress, &buyerMobile, &f.TotalAmount, &f.PaidAmount,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if area.Valid {
		f.Area = &area.Decimal
	}
	if rate.Valid {
		f.Rate = &rate.Decimal
	}
	f.BuyerName = buyerName.String
	f.BuyerAddress = buyerAddress.String
	f.BuyerMobile = buyerMobile.String
	return &f, nil
}

// ListFlats retrieves all flats for a project. Ledger entries are not loaded
// on this backend.
func (db *DB) ListFlats(projectID string) ([]models.Flat, error) {
	query := fmt.Sprintf(`SELECT %s FROM flats WHERE project_id = $1 ORDER BY created_at ASC`, flatColumns)

	rows, err := db.conn.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flats []models.Flat
	for rows.Next() {
		f, err := scanFlat(rows)
		if err != nil {
			return nil, err
		}
		flats = append(flats, *f)
	}

	return flats, rows.Err()
}

// GetFlat retrieves a flat by ID
func (db *DB) GetFlat(id string) (*models.Flat, error) {
	query := fmt.Sprintf(`SELECT %s FROM flats WHERE id = $1`, flatColumns)
	return scanFlat(db.conn.QueryRow(query, id))
}

// CreateFlat persists a new flat, assigning its identifier if unset.
func (db *DB) CreateFlat(f *models.Flat) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = models.FlatStatusAvailable
	}

	query := `
	INSERT INTO flats (
		id, project_id, block, floor, flat_number, type, area, rate,
		status, buyer_name, buyer_address, buyer_mobile, total_amount, paid_amount
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := db.conn.Exec(query,
		f.ID, f.ProjectID, f.Block, f.Floor, f.FlatNumber, f.Type, f.Area, f.Rate,
		f.Status, f.BuyerName, f.BuyerAddress, f.BuyerMobile, f.TotalAmount, f.PaidAmount)
	return err
}

// UpdateFlat saves the flat's scalar fields. Appended ledger entries are not
// supported on this backend.
func (db *DB) UpdateFlat(f *models.Flat) error {
	query := `
	UPDATE flats SET
		type = $2, area = $3, rate = $4, status = $5,
		buyer_name = $6, buyer_address = $7, buyer_mobile = $8,
		total_amount = $9, paid_amount = $10, updated_at = NOW()
	WHERE id = $1
	`
	_, err := db.conn.Exec(query,
		f.ID, f.Type, f.Area, f.Rate, f.Status,
		f.BuyerName, f.BuyerAddress, f.BuyerMobile, f.TotalAmount, f.PaidAmount)
	return err
}

// DeleteFlat removes a single flat, logging the deletion.
func (db *DB) DeleteFlat(id string) error {
	f, err := db.GetFlat(id)
	if err != nil {
		return err
	}
	_, err = db.deleteWithLogs([]models.Flat{*f}, models.DeleteScopeFlat, models.DeleteReasonManual)
	return err
}

// DeleteFlats removes the given flats in one transaction with a DeleteLog row
// per flat.
func (db *DB) DeleteFlats(ids []string, scope, reason string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM flats WHERE id = ANY($1)`, flatColumns)
	rows, err := db.conn.Query(query, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var flats []models.Flat
	for rows.Next() {
		f, err := scanFlat(rows)
		if err != nil {
			return 0, err
		}
		flats = append(flats, *f)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return db.deleteWithLogs(flats, scope, reason)
}

func (db *DB) deleteWithLogs(flats []models.Flat, scope, reason string) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(flats))
	for _, f := range flats {
		ids = append(ids, f.ID)
		_, err := tx.Exec(
			`INSERT INTO delete_logs (flat_id, block, floor, flat_number, scope, reason)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			f.ID, f.Block, f.Floor, f.FlatNumber, scope, reason)
		if err != nil {
			return 0, err
		}
	}

	if len(ids) > 0 {
		if _, err := tx.Exec(`DELETE FROM flats WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(flats), nil
}

// AppendChangeLog records one audit entry.
func (db *DB) AppendChangeLog(c *models.ChangeLog) error {
	var amount decimal.NullDecimal
	if c.Amount != nil {
		amount = decimal.NullDecimal{Decimal: *c.Amount, Valid: true}
	}
	_, err := db.conn.Exec(
		`INSERT INTO change_logs (flat_id, change_type, old_value, new_value, amount)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.FlatID, c.ChangeType, c.OldValue, c.NewValue, amount)
	return err
}

// RecentChangeLogs returns the latest audit entries.
func (db *DB) RecentChangeLogs(limit int) ([]models.ChangeLog, error) {
	rows, err := db.conn.Query(
		`SELECT id, flat_id, change_type, old_value, new_value, amount, detected_at
		 FROM change_logs ORDER BY detected_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ChangeLog
	for rows.Next() {
		var c models.ChangeLog
		var oldVal, newVal sql.NullString
		var amount decimal.NullDecimal
		if err := rows.Scan(&c.ID, &c.FlatID, &c.ChangeType, &oldVal, &newVal, &amount, &c.DetectedAt); err != nil {
			return nil, err
		}
		c.OldValue = oldVal.String
		c.NewValue = newVal.String
		if amount.Valid {
			c.Amount = &amount.Decimal
		}
		logs = append(logs, c)
	}
	return logs, rows.Err()
}

// RecentDeleteLogs returns the latest deletion audit entries.
func (db *DB) RecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	rows, err := db.conn.Query(
		`SELECT id, flat_id, block, floor, flat_number, scope, reason, deleted_at
		 FROM delete_logs ORDER BY deleted_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.DeleteLog
	for rows.Next() {
		var l models.DeleteLog
		if err := rows.Scan(&l.ID, &l.FlatID, &l.Block, &l.Floor, &l.FlatNumber, &l.Scope, &l.Reason, &l.DeletedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
