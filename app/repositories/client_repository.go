package repositories

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// ClientRepository handles database operations for Client and Address.
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// FindByUserID resolves the client profile owned by a user account.
// WithTx returns a repository bound to the given transaction.
func (r *ClientRepository) WithTx(tx *gorm.DB) *ClientRepository {
	return &ClientRepository{db: tx}
}

func (r *ClientRepository) FindByUserID(userID uint) (*models.Client, error) {
	var client models.Client
	err := r.db.Preload("Addresses").Where("user_id = ?", userID).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByID looks up a client by primary key.
func (r *ClientRepository) FindByID(id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.Preload("Addresses").First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// Create persists a client together with its addresses.
func (r *ClientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

// Update persists changes to a client (addresses included).
func (r *ClientRepository) Update(client *models.Client) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(client).Error
}

// All returns one page of clients.
func (r *ClientRepository) All(page, limit int) ([]models.Client, orm.Pagination, error) {
	var clients []models.Client
	query := r.db.Model(&models.Client{}).Preload("Addresses")
	pagination, err := orm.Paginate(query, page, limit, &clients)
	return clients, pagination, err
}
