package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/auth"
	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/events"
	"github.com/mrlokans/wordbook/internal/notebooks"
	"github.com/mrlokans/wordbook/internal/selection"
	"github.com/mrlokans/wordbook/internal/view"
	"github.com/mrlokans/wordbook/internal/wordentry"
	"github.com/mrlokans/wordbook/internal/wordlist"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Client-side state, shared by every request
	Notebooks *notebooks.Store
	Entry     *wordentry.Workflow
	Words     *wordlist.List
	Selection *selection.Engine
	Shell     *view.Shell
	Bus       *events.Bus

	// Backend passthrough
	Transfer Transfer
	Search   WordSearcher
	Backend  BackendPinger

	// Local state
	Database DatabasePinger
	Activity ActivityLog
	Covers   CoverSource

	// BackendURL resolves cover links when no cover cache is configured
	BackendURL string

	// Authentication
	Sessions   *auth.SessionManager
	AuthConfig config.Auth
	CSRFSecret []byte

	// UI paths
	TemplatesPath string
	StaticPath    string

	Version string
	Logger  *zap.Logger
}
