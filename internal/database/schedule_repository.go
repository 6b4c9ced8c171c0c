package database

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/tawidapp/tawid-backend/internal/models"
)

// ScheduleRepository is the only component permitted to write to the
// schedules collection. It stamps ownership on create and server-side
// timestamps on create and update; callers never supply those.
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a new schedule, assigning id, the creator's user id and
// server timestamps. Returns the stored record.
func (r *ScheduleRepository) Create(draft *models.ScheduleDraft, userID string) (*models.ScheduleRecord, error) {
	query := `
		INSERT INTO schedules (
			id, boat_name, origin, destination, price, capacity,
			departure_time, boat_type, status, weekly_schedule, note, user_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	record := &models.ScheduleRecord{
		ID:             uuid.New().String(),
		BoatName:       draft.BoatName,
		From:           draft.From,
		To:             draft.To,
		Price:          draft.Price,
		Capacity:       draft.Capacity,
		Time:           draft.Time,
		BoatType:       draft.BoatType,
		Status:         draft.Status,
		WeeklySchedule: models.WeekdayArray(draft.WeeklySchedule),
		Note:           draft.Note,
		UserID:         userID,
	}

	err := r.db.QueryRow(
		query,
		record.ID, record.BoatName, record.From, record.To, record.Price, record.Capacity,
		record.Time, record.BoatType, record.Status, record.WeeklySchedule, record.Note, record.UserID,
	).Scan(&record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		return nil, &models.WriteError{Op: "create schedule", Err: err}
	}

	return record, nil
}

// Update overwrites every draft field of an existing schedule and refreshes
// updated_at. This is a positional overwrite, not a merge; id, user_id and
// created_at are never touched.
func (r *ScheduleRepository) Update(id string, draft *models.ScheduleDraft) error {
	query := `
		UPDATE schedules
		SET boat_name = $1, origin = $2, destination = $3, price = $4,
		    capacity = $5, departure_time = $6, boat_type = $7, status = $8,
		    weekly_schedule = $9, note = $10, updated_at = NOW()
		WHERE id = $11
	`

	result, err := r.db.Exec(
		query,
		draft.BoatName, draft.From, draft.To, draft.Price,
		draft.Capacity, draft.Time, draft.BoatType, draft.Status,
		models.WeekdayArray(draft.WeeklySchedule), draft.Note, id,
	)
	if err != nil {
		return &models.WriteError{Op: "update schedule", Err: err}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return &models.WriteError{Op: "update schedule", Err: err}
	}
	if rowsAffected == 0 {
		return &models.WriteError{Op: "update schedule", NotFound: true, Err: sql.ErrNoRows}
	}

	return nil
}

// Delete removes a schedule by id. Deleting an id that no longer exists is
// a no-op success, so retried deletes stay safe.
func (r *ScheduleRepository) Delete(id string) error {
	query := `DELETE FROM schedules WHERE id = $1`
	_, err := r.db.Exec(query, id)
	if err != nil {
		return &models.WriteError{Op: "delete schedule", Err: err}
	}
	return nil
}

// GetByID retrieves a single schedule
func (r *ScheduleRepository) GetByID(id string) (*models.ScheduleRecord, error) {
	query := `
		SELECT id, boat_name, origin, destination, price, capacity,
		       departure_time, boat_type, status, weekly_schedule, note,
		       user_id, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`

	record := &models.ScheduleRecord{}
	var note sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&record.ID, &record.BoatName, &record.From, &record.To, &record.Price, &record.Capacity,
		&record.Time, &record.BoatType, &record.Status, &record.WeeklySchedule, &note,
		&record.UserID, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if note.Valid {
		record.Note = &note.String
	}

	return record, nil
}

// Snapshot retrieves the complete current schedule collection in creation
// order. The mirror calls this on every change notification.
func (r *ScheduleRepository) Snapshot() ([]models.ScheduleRecord, error) {
	query := `
		SELECT id, boat_name, origin, destination, price, capacity,
		       departure_time, boat_type, status, weekly_schedule, note,
		       user_id, created_at, updated_at
		FROM schedules
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.ScheduleRecord{}
	for rows.Next() {
		var record models.ScheduleRecord
		var note sql.NullString

		err := rows.Scan(
			&record.ID, &record.BoatName, &record.From, &record.To, &record.Price, &record.Capacity,
			&record.Time, &record.BoatType, &record.Status, &record.WeeklySchedule, &note,
			&record.UserID, &record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if note.Valid {
			record.Note = &note.String
		}

		records = append(records, record)
	}

	return records, rows.Err()
}
