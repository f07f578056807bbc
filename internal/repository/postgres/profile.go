package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// ClientRepository implements repository.ClientRepository using PostgreSQL.
// Rows are keyed by the external auth uid.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create adds a new client profile.
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `INSERT INTO clients (id, name, email, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, client.ID, client.Name, client.Email, client.CreatedAt)
	return err
}

// GetByID retrieves a client profile by uid.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(email, ''), created_at FROM clients WHERE id = $1`

	var client domain.Client
	err := r.db.QueryRowContext(ctx, query, id).Scan(&client.ID, &client.Name, &client.Email, &client.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// OwnerRepository implements repository.OwnerRepository using PostgreSQL.
type OwnerRepository struct {
	db *sql.DB
}

// NewOwnerRepository creates a new OwnerRepository.
func NewOwnerRepository(db *sql.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// Create adds a new owner profile.
func (r *OwnerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	query := `INSERT INTO owners (id, name, email, company_id, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, owner.ID, owner.Name, owner.Email, owner.CompanyID, owner.CreatedAt)
	return err
}

// GetByID retrieves an owner profile by uid.
func (r *OwnerRepository) GetByID(ctx context.Context, id string) (*domain.Owner, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(email, ''), company_id, created_at FROM owners WHERE id = $1`

	var owner domain.Owner
	err := r.db.QueryRowContext(ctx, query, id).Scan(&owner.ID, &owner.Name, &owner.Email, &owner.CompanyID, &owner.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// CompanyRepository implements repository.CompanyRepository using PostgreSQL.
type CompanyRepository struct {
	db *sql.DB
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create adds a new company.
func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	query := `INSERT INTO companies (id, name) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, company.ID, company.Name)
	return err
}

// GetByID retrieves a company by ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := `SELECT id, name FROM companies WHERE id = $1`

	var company domain.Company
	err := r.db.QueryRowContext(ctx, query, id).Scan(&company.ID, &company.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetAll retrieves all companies.
func (r *CompanyRepository) GetAll(ctx context.Context) ([]*domain.Company, error) {
	query := `SELECT id, name FROM companies ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		var company domain.Company
		if err := rows.Scan(&company.ID, &company.Name); err != nil {
			return nil, err
		}
		companies = append(companies, &company)
	}
	return companies, rows.Err()
}
