package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mopshyai/carebowapp-sub005/internal/security"
	"github.com/mopshyai/carebowapp-sub005/pkg/model"
	"go.uber.org/zap"
)

// ContactRepository manages emergency contacts. Phone numbers are
// encrypted at rest.
type ContactRepository struct {
	db        *pgxpool.Pool
	encryptor *security.Encryptor
	logger    *zap.Logger
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *pgxpool.Pool, encryptor *security.Encryptor, logger *zap.Logger) *ContactRepository {
	return &ContactRepository{
		db:        db,
		encryptor: encryptor,
		logger:    logger,
	}
}

// Create inserts a new emergency contact
func (r *ContactRepository) Create(ctx context.Context, contact *model.EmergencyContact) error {
	phone, err := r.encryptor.Encrypt(contact.Phone)
	if err != nil {
		return fmt.Errorf("failed to encrypt contact phone: %w", err)
	}

	query := `
		INSERT INTO emergency_contacts (
			id, user_id, name, phone, relationship,
			notify_on_sos, notify_on_missed_check_in,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	_, err = r.db.Exec(ctx, query,
		contact.ID,
		contact.UserID,
		contact.Name,
		phone,
		contact.Relationship,
		contact.NotifyOnSOS,
		contact.NotifyOnMissedCheckIn,
	)

	if err != nil {
		r.logger.Error("failed to create emergency contact", zap.Error(err), zap.String("contact_id", contact.ID))
		return fmt.Errorf("failed to create emergency contact: %w", err)
	}

	return nil
}

// Update rewrites an emergency contact
func (r *ContactRepository) Update(ctx context.Context, contact *model.EmergencyContact) error {
	phone, err := r.encryptor.Encrypt(contact.Phone)
	if err != nil {
		return fmt.Errorf("failed to encrypt contact phone: %w", err)
	}

	query := `
		UPDATE emergency_contacts
		SET name = $1, phone = $2, relationship = $3,
		    notify_on_sos = $4, notify_on_missed_check_in = $5,
		    updated_at = NOW()
		WHERE id = $6 AND user_id = $7
	`

	result, err := r.db.Exec(ctx, query,
		contact.Name,
		phone,
		contact.Relationship,
		contact.NotifyOnSOS,
		contact.NotifyOnMissedCheckIn,
		contact.ID,
		contact.UserID,
	)

	if err != nil {
		r.logger.Error("failed to update emergency contact", zap.Error(err), zap.String("contact_id", contact.ID))
		return fmt.Errorf("failed to update emergency contact: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("emergency contact %s: %w", contact.ID, ErrNotFound)
	}

	return nil
}

// Delete removes an emergency contact
func (r *ContactRepository) Delete(ctx context.Context, userID, contactID string) error {
	query := `DELETE FROM emergency_contacts WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, contactID, userID)
	if err != nil {
		r.logger.Error("failed to delete emergency contact", zap.Error(err), zap.String("contact_id", contactID))
		return fmt.Errorf("failed to delete emergency contact: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("emergency contact %s: %w", contactID, ErrNotFound)
	}

	return nil
}

// ListByUser retrieves all emergency contacts for a user
func (r *ContactRepository) ListByUser(ctx context.Context, userID string) ([]model.EmergencyContact, error) {
	query := `
		SELECT id, user_id, name, phone, relationship,
		       notify_on_sos, notify_on_missed_check_in,
		       created_at, updated_at
		FROM emergency_contacts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to list emergency contacts", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to list emergency contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.EmergencyContact
	for rows.Next() {
		var contact model.EmergencyContact
		var encryptedPhone string
		err := rows.Scan(
			&contact.ID,
			&contact.UserID,
			&contact.Name,
			&encryptedPhone,
			&contact.Relationship,
			&contact.NotifyOnSOS,
			&contact.NotifyOnMissedCheckIn,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan emergency contact", zap.Error(err))
			continue
		}

		contact.Phone, err = r.encryptor.Decrypt(encryptedPhone)
		if err != nil {
			r.logger.Error("failed to decrypt contact phone", zap.Error(err), zap.String("contact_id", contact.ID))
			continue
		}

		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating emergency contacts", zap.Error(err))
		return nil, fmt.Errorf("error iterating emergency contacts: %w", err)
	}

	return contacts, nil
}

// Get retrieves a single emergency contact
func (r *ContactRepository) Get(ctx context.Context, userID, contactID string) (*model.EmergencyContact, error) {
	query := `
		SELECT id, user_id, name, phone, relationship,
		       notify_on_sos, notify_on_missed_check_in,
		       created_at, updated_at
		FROM emergency_contacts
		WHERE id = $1 AND user_id = $2
	`

	var contact model.EmergencyContact
	var encryptedPhone string
	err := r.db.QueryRow(ctx, query, contactID, userID).Scan(
		&contact.ID,
		&contact.UserID,
		&contact.Name,
		&encryptedPhone,
		&contact.Relationship,
		&contact.NotifyOnSOS,
		&contact.NotifyOnMissedCheckIn,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("emergency contact %s: %w", contactID, ErrNotFound)
		}
		r.logger.Error("failed to get emergency contact", zap.Error(err), zap.String("contact_id", contactID))
		return nil, fmt.Errorf("failed to get emergency contact: %w", err)
	}

	contact.Phone, err = r.encryptor.Decrypt(encryptedPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt contact phone: %w", err)
	}

	return &contact, nil
}
