package domain

type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteAuthenticated
	RouteAdminOnly
)

func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RouteAuthenticated:
		return "authenticated"
	case RouteAdminOnly:
		return "admin-only"
	default:
		return "unknown"
	}
}

// CanAccess decides whether the given session may use a route of class c.
// present is false for an anonymous visitor.
func CanAccess(sess Session, present bool, c RouteClass) bool {
	switch c {
	case RoutePublic:
		return true
	case RouteAuthenticated:
		return present
	case RouteAdminOnly:
		return present && sess.Role == RoleAdmin
	default:
		return false
	}
}
