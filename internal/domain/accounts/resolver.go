package accounts

import "context"

// Resolver implementa session.SubjectResolver sobre el repo de usuarios:
// el tenant vigente de un subject es el company_id actual del usuario.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

func (r *Resolver) TenantOf(ctx context.Context, subject string) (int64, error) {
	u, err := r.repo.GetUserByEmail(ctx, normalizeEmail(subject))
	if err != nil {
		return 0, err
	}
	return u.CompanyID, nil
}
