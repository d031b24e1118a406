package auth

// Principal es la identidad autenticada de un request (subject + tenant).
// No se persiste: se reconstruye en cada request a partir del session token.
type Principal struct {
	SubjectID string
	TenantID  int64
}

func (p Principal) Valid() bool {
	return p.SubjectID != "" && p.TenantID > 0
}
