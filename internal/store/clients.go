package store

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"billing-backend/internal/apperr"
	"billing-backend/internal/models"
)

type ClientInput struct {
	Name  string
	Email string
	Phone string
}

func (in ClientInput) normalize() (ClientInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	if in.Name == "" {
		return in, apperr.Validation("Name is required")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return in, apperr.Validation("invalid email %q", in.Email)
		}
	}
	return in, nil
}

func (s *Store) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	client := models.Client{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := s.DB.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, apperr.Storage("Failed to add client", err)
	}
	return &client, nil
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := s.DB.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, storageError(err, "client not found", "Failed to retrieve client")
	}
	return &client, nil
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	if err := s.DB.WithContext(ctx).Order("name").Find(&clients).Error; err != nil {
		return nil, apperr.Storage("Failed to retrieve clients", err)
	}
	return clients, nil
}

// UpdateClient always accepts new contact details. The name is frozen once
// a treatment references the client.
func (s *Store) UpdateClient(ctx context.Context, id uuid.UUID, in ClientInput) (*models.Client, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var client *models.Client
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockClient(tx, id)
		if err != nil {
			return err
		}

		if in.Name != locked.Name {
			referenced, err := clientReferenced(tx, id)
			if err != nil {
				return err
			}
			if referenced {
				return apperr.Conflict("name of client %q cannot change once treatments are registered", locked.Name)
			}
		}

		locked.Name = in.Name
		locked.Email = in.Email
		locked.Phone = in.Phone
		if err := tx.Save(locked).Error; err != nil {
			return apperr.Storage("Failed to update client", err)
		}
		client = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient removes a client nothing refers to. The reference check and
// the delete share a transaction holding the client row, so a treatment
// registered concurrently either sees the client or fails with not found.
func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := lockClient(tx, id)
		if err != nil {
			return err
		}

		referenced, err := clientReferenced(tx, id)
		if err != nil {
			return err
		}
		if referenced {
			return apperr.Conflict("client %q has treatments or invoices and cannot be deleted", client.Name)
		}

		if err := tx.Delete(&models.Client{}, "id = ?", id).Error; err != nil {
			return apperr.Storage("Failed to delete client", err)
		}
		return nil
	})
}

// lockClient loads the client row for update. SQLite ignores the row lock
// and serializes writers on its single connection instead.
func lockClient(tx *gorm.DB, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&client, "id = ?", id).Error; err != nil {
		return nil, storageError(err, "client not found", "Failed to retrieve client")
	}
	return &client, nil
}

func clientReferenced(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var treatments int64
	if err := tx.Model(&models.Treatment{}).Where("client_id = ?", id).Count(&treatments).Error; err != nil {
		return false, apperr.Storage("Failed to check client references", err)
	}
	if treatments > 0 {
		return true, nil
	}

	var invoices int64
	if err := tx.Model(&models.Invoice{}).Where("client_id = ?", id).Count(&invoices).Error; err != nil {
		return false, apperr.Storage("Failed to check client references", err)
	}
	return invoices > 0, nil
}

func (s *Store) clientsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Client, error) {
	result := make(map[uuid.UUID]models.Client, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var clients []models.Client
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&clients).Error; err != nil {
		return nil, apperr.Storage("Failed to retrieve clients", err)
	}
	for _, client := range clients {
		result[client.ID] = client
	}
	return result, nil
}
