package constants

import "fmt"

const (
	RoleStaff = "staff"
	RoleHod   = "hod"
	RoleAdmin = "admin"
)

var (
	AllRoles      = []string{RoleStaff, RoleHod, RoleAdmin}
	ApproverRoles = []string{RoleHod, RoleAdmin}
)

const (
	ErrOnlyStaffCanAccess = "Only staff may access %s."
	ErrOnlyHodCanAccess   = "Only the HOD may access %s."
	ErrOnlyAdminCanAccess = "Only admins may access %s."
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorHod(feature string) string {
	return fmt.Sprintf(ErrOnlyHodCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminCanAccess, feature)
}
