package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/pkg/apperr"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// AddressInput is one delivery address on a client profile.
type AddressInput struct {
	Street       string `json:"street"       validate:"required"`
	Number       string `json:"number"       validate:"required"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"         validate:"required"`
	State        string `json:"state"        validate:"required,size=2"`
	ZipCode      string `json:"zip_code"     validate:"required"`
}

// CreateClientInput carries a new client profile for the calling user.
type CreateClientInput struct {
	Name      string         `json:"name"  validate:"required,min=2,max=120"`
	Phone     string         `json:"phone" validate:"required"`
	CPF       string         `json:"cpf"   validate:"required"`
	Addresses []AddressInput `json:"addresses"`
}

// UpdateClientInput carries a partial profile update.
type UpdateClientInput struct {
	Name      *string        `json:"name"  validate:"nullable,min=2,max=120"`
	Phone     *string        `json:"phone"`
	Addresses []AddressInput `json:"addresses"`
}

// ClientsService manages client profiles, the bridge between an
// authenticated user and the shopping domain (carts, orders).
type ClientsService struct {
	db      *gorm.DB
	clients *repositories.ClientRepository
}

func NewClientsService(db *gorm.DB) *ClientsService {
	return &ClientsService{db: db, clients: repositories.NewClientRepository(db)}
}

// Create attaches a client profile to the calling user. A user can hold at
// most one profile.
func (s *ClientsService) Create(ctx context.Context, userID uint, in CreateClientInput) (*models.Client, error) {
	clients := s.clients.WithTx(s.db.WithContext(ctx))

	if _, err := clients.FindByUserID(userID); err == nil {
		return nil, apperr.Conflict("Client already exists for this user")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client := &models.Client{
		UserID:    userID,
		Name:      in.Name,
		Phone:     in.Phone,
		CPF:       in.CPF,
		Addresses: addressModels(0, in.Addresses),
	}
	if err := clients.Create(client); err != nil {
		return nil, err
	}
	return client, nil
}

// Resolve returns the client profile that belongs to the calling user, which
// every cart and order operation requires first.
func (s *ClientsService) Resolve(ctx context.Context, userID uint) (*models.Client, error) {
	client, err := s.clients.WithTx(s.db.WithContext(ctx)).FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Client not found")
		}
		return nil, err
	}
	return client, nil
}

// GetByID returns any client. Non-admin callers may only read their own.
func (s *ClientsService) GetByID(ctx context.Context, id uint, ident Identity) (*models.Client, error) {
	client, err := s.clients.WithTx(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Client not found")
		}
		return nil, err
	}
	if !ident.IsAdmin() && client.UserID != ident.UserID {
		return nil, apperr.Unauthorized("You are not allowed to access other clients")
	}
	return client, nil
}

// Update applies a partial update to the caller's own profile. Replacing the
// address list swaps it wholesale.
func (s *ClientsService) Update(ctx context.Context, userID uint, in UpdateClientInput) (*models.Client, error) {
	client, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		client.Name = *in.Name
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.Addresses != nil {
		client.Addresses = addressModels(client.ID, in.Addresses)
	}

	if err := s.clients.WithTx(s.db.WithContext(ctx)).Update(client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetAll is the admin listing.
func (s *ClientsService) GetAll(ctx context.Context, page, limit int) ([]models.Client, orm.Pagination, error) {
	return s.clients.WithTx(s.db.WithContext(ctx)).All(page, limit)
}

// addressModels converts address inputs; the first one becomes the active
// delivery address.
func addressModels(clientID uint, in []AddressInput) []models.Address {
	out := make([]models.Address, 0, len(in))
	for i, a := range in {
		out = append(out, models.Address{
			ClientID:     clientID,
			Street:       a.Street,
			Number:       a.Number,
			Complement:   a.Complement,
			Neighborhood: a.Neighborhood,
			City:         a.City,
			State:        a.State,
			ZipCode:      a.ZipCode,
			Active:       i == 0,
		})
	}
	return out
}
