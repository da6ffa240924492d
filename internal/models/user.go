package models

// UserRole kimlik sağlayıcının user_metadata.role alanından gelir.
// Kullanıcılar bu serviste tutulmaz.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
)

// ParseRole: bilinmeyen ya da boş rol staff sayılır
func ParseRole(s string) UserRole {
	if UserRole(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleStaff
}
