package accounts

import "time"

// Company es el tenant: toda entidad propia cuelga de un company_id.
type Company struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// User es un login. Email es el subject de los session tokens.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CompanyID    int64
	CreatedAt    time.Time
}

// Profile es lo que devuelve /auth/me.
type Profile struct {
	Email     string
	CompanyID int64
}
