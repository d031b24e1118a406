package accounts

import "context"

type Repository interface {
	// FindOrCreateCompany devuelve la company con ese nombre, creándola si no existe.
	FindOrCreateCompany(ctx context.Context, name string) (Company, error)
	// CreateUser asigna ID. Email duplicado => apperr Conflict.
	CreateUser(ctx context.Context, u User) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}
