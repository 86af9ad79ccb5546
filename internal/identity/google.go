package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"portfolio/internal/session"
)

const userInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Google runs the OAuth code flow against Google and signs the account in through Repo.
type Google struct {
	conf     *oauth2.Config
	repo     *Repo
	states   *cache.Cache
	results  *cache.Cache
	userInfo string
}

// NewGoogle returns nil when no client id is configured.
func NewGoogle(repo *Repo, clientID, clientSecret, redirectURL string) *Google {
	if clientID == "" {
		return nil
	}
	return &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
		repo:     repo,
		states:   cache.New(10*time.Minute, time.Minute),
		results:  cache.New(2*time.Minute, time.Minute),
		userInfo: userInfoURL,
	}
}

// Start returns the consent URL and its state. The state is remembered for ten minutes.
func (g *Google) Start() (url, state string, err error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	state = hex.EncodeToString(b)
	g.states.SetDefault(state, true)
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// Result hands the session of a completed callback to the client that started the flow.
// It can be taken once, within two minutes.
func (g *Google) Result(state string) (Session, bool) {
	v, ok := g.results.Get(state)
	if !ok {
		return Session{}, false
	}
	g.results.Delete(state)
	return v.(Session), true
}

// Callback exchanges code, reads the verified email and signs its account in.
func (g *Google) Callback(ctx context.Context, state, code string) (Session, error) {
	if _, ok := g.states.Get(state); !ok {
		return Session{}, fmt.Errorf("%w: unknown state", session.ErrFederatedFailed)
	}
	g.states.Delete(state)

	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", session.ErrFederatedFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfo, nil)
	if err != nil {
		return Session{}, err
	}
	resp, err := g.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", session.ErrFederatedFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("%w: userinfo status %d", session.ErrFederatedFailed, resp.StatusCode)
	}
	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Session{}, fmt.Errorf("%w: %v", session.ErrFederatedFailed, err)
	}
	if !info.EmailVerified {
		return Session{}, fmt.Errorf("%w: email not verified", session.ErrFederatedFailed)
	}
	sess, err := g.repo.SignInExternal(ctx, ProviderGoogle, info.Email)
	if err != nil {
		return Session{}, err
	}
	g.results.SetDefault(state, sess)
	return sess, nil
}
