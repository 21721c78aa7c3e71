// Package dashboard wires the location, form, analysis and chat components
// into per-browser sessions and exposes them over HTTP.
package dashboard

import (
	"context"
	"time"

	"github.com/solix-energy/solix/internal/analysis"
	"github.com/solix-energy/solix/internal/chat"
	"github.com/solix-energy/solix/internal/form"
	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/location"
)

// Deps are shared by every session.
type Deps struct {
	Geocoder        location.Searcher
	Classifier      location.DistrictClassifier
	Locator         location.DeviceLocator
	Analyzer        analysis.Analyzer
	Replier         chat.Replier
	Rules           form.Rules
	DefaultPoint    geo.Point
	ClassifyTimeout time.Duration
}

// Session is one user's dashboard.
type Session struct {
	ID       string
	Store    *location.Store
	Resolver *location.Resolver
	Form     *form.Form
	Analysis *analysis.Controller
	Chat     *chat.Session
}

func NewSession(id string, deps Deps) *Session {
	store := location.NewStore(deps.DefaultPoint, deps.Rules.DefaultDistrict)
	f := form.New(deps.Rules)
	return &Session{
		ID:    id,
		Store: store,
		Resolver: location.NewResolver(store, location.Deps{
			Geocoder:        deps.Geocoder,
			Classifier:      deps.Classifier,
			Locator:         deps.Locator,
			Errors:          f,
			ClassifyTimeout: deps.ClassifyTimeout,
		}),
		Form:     f,
		Analysis: analysis.NewController(deps.Analyzer),
		Chat:     chat.NewSession(deps.Replier),
	}
}

// Submit validates the form against the current location and, if it passes,
// runs the analysis.
func (s *Session) Submit(ctx context.Context) (*analysis.Result, error) {
	return s.Analysis.Submit(ctx, func() (form.AnalysisRequest, error) {
		return s.Form.Build(s.Store.Snapshot())
	})
}

// View is the whole dashboard state in one document.
type View struct {
	Location location.State    `json:"location"`
	Form     form.Fields       `json:"form"`
	Analysis analysis.Snapshot `json:"analysis"`
	Chat     ChatView          `json:"chat"`
}

type ChatView struct {
	Messages      []chat.Message `json:"messages"`
	AwaitingReply bool           `json:"awaiting_reply"`
}

func (s *Session) View() View {
	return View{
		Location: s.Store.Snapshot(),
		Form:     s.Form.Fields(),
		Analysis: s.Analysis.Snapshot(),
		Chat:     s.chatView(),
	}
}

func (s *Session) chatView() ChatView {
	return ChatView{Messages: s.Chat.Messages(), AwaitingReply: s.Chat.IsAwaitingReply()}
}
