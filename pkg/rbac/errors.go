package rbac

import "errors"

// Sentinel errors for use with errors.Is().
var (
	ErrDenied            = errors.New("authorization denied")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrRoleDenied        = errors.New("role denied")
	ErrInvalidQuery      = errors.New("invalid access query")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidPermission = errors.New("invalid permission")
)

const (
	errConfigRolesEmpty               = "rbac config: roles must not be empty"
	errConfigPermissionsEmpty         = "rbac config: permissions must not be empty"
	errConfigRoleNameEmpty            = "rbac config: role name must not be empty"
	errConfigDuplicateRoleNameFmt     = "rbac config: duplicate role name: %s"
	errConfigDuplicateRoleLevelFmt    = "rbac config: duplicate role level %d (roles %s and %s)"
	errConfigPermissionEmpty          = "rbac config: permission must not be empty"
	errConfigDuplicatePermissionFmt   = "rbac config: duplicate permission: %s"
	errConfigRoleUnknownPermissionFmt = "rbac config: role %s grants unknown permission: %s"
	errMustNewPanicFmt                = "rbac.MustNew: %v"
	errInvalidRoleFmt                 = "%w: %s"
	errInvalidPermissionFmt           = "%w: %s"
	detailUnauthenticated             = "subject is not authenticated"
	detailPermissionMissingFmt        = "missing permission '%s'"
	detailRoleNotInFmt                = "role '%s' is not one of %v"
	detailFlagFailedFmt               = "role '%s' does not satisfy %s"
	detailUnknownFlagFmt              = "unknown legacy flag '%s'"
	detailUnknownQueryFmt             = "unrecognized query %T"
	detailNilQuery                    = "query is nil"
	errDecisionFmt                    = "%w: %w: %s"
)
