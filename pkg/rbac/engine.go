package rbac

import "fmt"

// Reason names the rule that denied a decision.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonPermissionDenied Reason = "permission_denied"
	ReasonRoleDenied       Reason = "role_denied"
	ReasonInvalidQuery     Reason = "invalid_query"
)

// Decision is the result of evaluating a query against a subject.
// Reason and Detail are for the caller's logging only.
type Decision struct {
	Allowed bool
	Reason  Reason
	Detail  string
}

// Err returns nil for an allowed decision, otherwise an error wrapping
// ErrDenied and the sentinel for the failed rule.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf(errDecisionFmt, ErrDenied, reasonError(d.Reason), d.Detail)
}

func reasonError(r Reason) error {
	switch r {
	case ReasonUnauthenticated:
		return ErrUnauthenticated
	case ReasonPermissionDenied:
		return ErrPermissionDenied
	case ReasonRoleDenied:
		return ErrRoleDenied
	default:
		return ErrInvalidQuery
	}
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason, detail string) Decision {
	return Decision{Reason: reason, Detail: detail}
}

// Evaluate decides whether subject may exercise query. In ModeRoute an
// unauthenticated subject is denied before any other rule is looked at.
// Evaluate has no side effects and never panics; unrecognized queries deny.
func Evaluate(mode Mode, subject AuthSubject, query Query) Decision {
	if mode == ModeRoute && !subject.Authenticated {
		return deny(ReasonUnauthenticated, detailUnauthenticated)
	}
	return evaluate(subject, query)
}

func evaluate(subject AuthSubject, query Query) Decision {
	switch q := query.(type) {
	case nil:
		return deny(ReasonInvalidQuery, detailNilQuery)
	case RequirePermission:
		if q.Name != "" && subject.Permissions.Has(q.Name) {
			return allow()
		}
		return deny(ReasonPermissionDenied, fmt.Sprintf(detailPermissionMissingFmt, q.Name))
	case AnyOfRoles:
		for _, r := range q.Roles {
			if r == subject.Role {
				return allow()
			}
		}
		return deny(ReasonRoleDenied, fmt.Sprintf(detailRoleNotInFmt, subject.Role, q.Roles))
	case LegacyFlag:
		return evaluateFlag(subject.Role, q.Flag)
	case AllOf:
		for _, sub := range q {
			if d := evaluate(subject, sub); !d.Allowed {
				return d
			}
		}
		return allow()
	default:
		return deny(ReasonInvalidQuery, fmt.Sprintf(detailUnknownQueryFmt, query))
	}
}

func evaluateFlag(role Role, flag Flag) Decision {
	var ok bool
	switch flag {
	case FlagAdminOnly:
		ok = role == RoleAdmin || role == RoleSuperAdmin
	case FlagSuperAdminOnly:
		ok = role == RoleSuperAdmin
	case FlagAlumniOnly:
		ok = role == RoleAlumni
	case FlagStudentOnly:
		ok = role == RoleStudent
	default:
		return deny(ReasonInvalidQuery, fmt.Sprintf(detailUnknownFlagFmt, flag))
	}
	if !ok {
		return deny(ReasonRoleDenied, fmt.Sprintf(detailFlagFailedFmt, role, flag))
	}
	return allow()
}
