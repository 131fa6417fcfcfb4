package auth

// Routes the guard and the facade redirect to
const (
	SignInPath    = "/auth/signin"
	HomePath      = "/"
	AdminHomePath = "/admin/dashboard"
)

type Verdict int

const (
	Render Verdict = iota
	ConfigError
	Loading
	RedirectSignIn
	RedirectHome
)

func (v Verdict) String() string {
	switch v {
	case Render:
		return "render"
	case ConfigError:
		return "config_error"
	case Loading:
		return "loading"
	case RedirectSignIn:
		return "redirect_signin"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Location is the redirect target of a redirect verdict, "" otherwise.
func (v Verdict) Location() string {
	switch v {
	case RedirectSignIn:
		return SignInPath
	case RedirectHome:
		return HomePath
	default:
		return ""
	}
}

// Evaluate decides what a protected route does for state. A missing provider
// configuration wins over everything else.
func Evaluate(state State, requireAdmin bool) Verdict {
	switch {
	case !state.Configured:
		return ConfigError
	case state.Loading:
		return Loading
	case !state.Authenticated():
		return RedirectSignIn
	case requireAdmin && !state.IsAdmin:
		return RedirectHome
	default:
		return Render
	}
}

// DestinationAfterSignIn is where a freshly signed-in visitor goes.
func DestinationAfterSignIn(isAdmin bool) string {
	if isAdmin {
		return AdminHomePath
	}
	return HomePath
}
