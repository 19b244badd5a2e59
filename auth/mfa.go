// Package auth establishes tenant sessions: the interactive MFA
// challenge/advance handshake, the OAuth2 client-credential exchange, and
// a keyring-backed session cache. It is a thin caller of the tenant's auth
// endpoints; no protocol is implemented locally.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/denisbrodbeck/machineid"
	"github.com/skratchdot/open-golang/open"

	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
)

// Authentication endpoints.
const (
	startAuthEndpoint   = "/Security/StartAuthentication"
	advanceAuthEndpoint = "/Security/AdvanceAuthentication"
)

// Prompter answers MFA challenges. The survey-backed implementation is the
// default; tests substitute a scripted one.
type Prompter interface {
	// SelectMechanism picks one mechanism by index from the offered names.
	SelectMechanism(names []string) (int, error)
	// Answer collects one challenge answer; secret answers are not echoed.
	Answer(prompt string, secret bool) (string, error)
}

// SurveyPrompter implements Prompter with interactive terminal prompts.
type SurveyPrompter struct{}

// SelectMechanism picks one mechanism by index from the offered names.
func (SurveyPrompter) SelectMechanism(names []string) (int, error) {
	if len(names) == 1 {
		return 0, nil
	}
	var choice string
	prompt := &survey.Select{
		Message: "Choose authentication mechanism:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return 0, err
	}
	for i, n := range names {
		if n == choice {
			return i, nil
		}
	}
	return 0, fmt.Errorf("mechanism %q not offered", choice)
}

// Answer collects one challenge answer.
func (SurveyPrompter) Answer(promptText string, secret bool) (string, error) {
	var answer string
	var err error
	if secret {
		err = survey.AskOne(&survey.Password{Message: promptText}, &answer)
	} else {
		err = survey.AskOne(&survey.Input{Message: promptText}, &answer)
	}
	return answer, err
}

// Authenticator drives the interactive MFA handshake against one tenant.
type Authenticator struct {
	// Tenant is the full https tenant URL.
	Tenant string
	// Prompter answers challenges; defaults to SurveyPrompter.
	Prompter Prompter

	httpc *http.Client
}

// NewAuthenticator creates an Authenticator for the tenant.
func NewAuthenticator(tenant string) *Authenticator {
	return &Authenticator{
		Tenant:   tenant,
		Prompter: SurveyPrompter{},
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

// wire shapes of the auth endpoints.
type mechanism struct {
	MechanismID      string `json:"MechanismId"`
	Name             string `json:"Name"`
	PromptSelectMech string `json:"PromptSelectMech"`
	AnswerType       string `json:"AnswerType"`
}

type challenge struct {
	Mechanisms []mechanism `json:"Mechanisms"`
}

type authResult struct {
	SessionID  string      `json:"SessionId"`
	Summary    string      `json:"Summary"`
	Challenges []challenge `json:"Challenges"`
	Auth       string      `json:"Auth"`
	User       string      `json:"User"`
}

// Login runs the challenge/advance loop until the tenant reports success
// and returns an established cookie session.
func (a *Authenticator) Login(ctx context.Context, user string) (*api.Session, error) {
	start, err := a.post(ctx, startAuthEndpoint, map[string]string{
		"User":     user,
		"Version":  "1.0",
		"DeviceID": deviceID(),
	})
	if err != nil {
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.ErrCodeAuthStartFailed, err.Error(),
				platformerrors.GetSuggestion(platformerrors.ErrCodeAuthStartFailed), err),
			"user", user)
	}

	state := start
	for {
		if state.Summary == "LoginSuccess" {
			return &api.Session{
				Tenant:      a.Tenant,
				User:        user,
				Cookie:      state.Auth,
				Established: time.Now().UTC(),
			}, nil
		}
		if len(state.Challenges) == 0 {
			return nil, platformerrors.New(platformerrors.ErrCodeAuthMFAFailed,
				fmt.Sprintf("handshake stalled with summary %q", state.Summary),
				platformerrors.GetSuggestion(platformerrors.ErrCodeAuthMFAFailed), nil)
		}

		mech, err := a.pickMechanism(state.Challenges[0])
		if err != nil {
			return nil, err
		}
		answer, err := a.Prompter.Answer(answerPrompt(mech), mech.AnswerType != "Text")
		if err != nil {
			return nil, err
		}

		next, err := a.post(ctx, advanceAuthEndpoint, map[string]string{
			"SessionId":   state.SessionID,
			"MechanismId": mech.MechanismID,
			"Action":      "Answer",
			"Answer":      answer,
		})
		if err != nil {
			return nil, platformerrors.WithContext(
				platformerrors.New(platformerrors.ErrCodeAuthMFAFailed, err.Error(),
					platformerrors.GetSuggestion(platformerrors.ErrCodeAuthMFAFailed), err),
				"mechanism", mech.Name)
		}
		next.SessionID = state.SessionID
		state = next
	}
}

func (a *Authenticator) pickMechanism(c challenge) (mechanism, error) {
	if len(c.Mechanisms) == 0 {
		return mechanism{}, fmt.Errorf("challenge offered no mechanisms")
	}
	names := make([]string, 0, len(c.Mechanisms))
	for _, m := range c.Mechanisms {
		name := m.PromptSelectMech
		if name == "" {
			name = m.Name
		}
		names = append(names, name)
	}
	i, err := a.Prompter.SelectMechanism(names)
	if err != nil {
		return mechanism{}, err
	}
	return c.Mechanisms[i], nil
}

func answerPrompt(m mechanism) string {
	if m.PromptSelectMech != "" {
		return m.PromptSelectMech + ":"
	}
	return m.Name + ":"
}

// post performs one unauthenticated auth-endpoint exchange. The auth
// endpoints share the standard envelope but are called before any session
// exists, so this does not go through api.Client.
func (a *Authenticator) post(ctx context.Context, endpoint string, body map[string]string) (authResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return authResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Tenant+endpoint, bytes.NewReader(payload))
	if err != nil {
		return authResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CENTRIFY-NATIVE-CLIENT", "true")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return authResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return authResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return authResult{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env struct {
		Success bool            `json:"success"`
		Result  json.RawMessage `json:"Result"`
		Message string          `json:"Message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return authResult{}, err
	}
	if !env.Success {
		return authResult{}, fmt.Errorf("%s", env.Message)
	}

	var result authResult
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return authResult{}, err
	}
	return result, nil
}

// deviceID returns an app-scoped machine identifier bound into the MFA
// start request, or "" when the platform provides none.
func deviceID() string {
	id, err := machineid.ProtectedID("pasmigrate")
	if err != nil {
		return ""
	}
	return id
}

// OpenFederatedLogin opens the tenant login page in the default browser
// for IdP-federated users, whose handshake completes outside this tool.
func OpenFederatedLogin(tenant string) error {
	return open.Run(tenant + "/login")
}
