package session

import "strings"

// Route paths the guard knows about
const (
	LoginPath   = "/login"
	LogoutPath  = "/logout"
	CompanyPath = "/company"
	SearchPath  = "/customers/search"
)

// Stage is where a browser is in the login, company, app sequence.
type Stage int

const (
	// StageNotReady means the session could not be read; nothing may render.
	StageNotReady Stage = iota
	StageUnauthenticated
	StageNoCompany
	StageReady
)

func (s Stage) String() string {
	switch s {
	case StageUnauthenticated:
		return "unauthenticated"
	case StageNoCompany:
		return "authenticated_no_company"
	case StageReady:
		return "authenticated_with_company"
	default:
		return "not_ready"
	}
}

// StageOf classifies a loaded session. loadErr is the error from reading the
// store, if any.
func StageOf(state State, loadErr error) Stage {
	switch {
	case loadErr != nil:
		return StageNotReady
	case !state.Authenticated():
		return StageUnauthenticated
	case !state.HasCompany():
		return StageNoCompany
	default:
		return StageReady
	}
}

// Decision is the guard's verdict for one request.
type Decision struct {
	// Blank renders an empty response
	Blank bool
	// Redirect is the path to send the browser to, if any
	Redirect string
	// Shell renders the page inside the navigation shell
	Shell bool
}

// Allowed reports whether the requested page may render
func (d Decision) Allowed() bool {
	return !d.Blank && d.Redirect == ""
}

// Decide applies the route rules to path for a browser at stage.
//
//	not ready          -> render nothing
//	unauthenticated    -> /login, except /login itself
//	no company         -> /company, except /login, /company and /customers/search
//	company selected   -> page inside the shell
//
// Logout is always allowed once the session is readable.
func Decide(stage Stage, path string) Decision {
	path = normalize(path)
	switch stage {
	case StageNotReady:
		return Decision{Blank: true}
	case StageUnauthenticated:
		if path == LoginPath || path == LogoutPath {
			return Decision{}
		}
		return Decision{Redirect: LoginPath}
	case StageNoCompany:
		switch path {
		case LoginPath, LogoutPath, CompanyPath, SearchPath:
			return Decision{Shell: path == SearchPath}
		}
		return Decision{Redirect: CompanyPath}
	default:
		return Decision{Shell: path != LoginPath}
	}
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
