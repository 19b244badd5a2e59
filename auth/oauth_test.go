package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	platformerrors "github.com/byteness/pasmigrate/errors"
)

func TestClientCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token/migrator" {
			t.Errorf("path = %q, want /oauth2/token/migrator", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("client_id") != "svc" || r.PostForm.Get("client_secret") != "shh" {
			t.Errorf("credentials = (%q, %q)", r.PostForm.Get("client_id"), r.PostForm.Get("client_secret"))
		}
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	session, err := ClientCredentials(context.Background(), srv.URL, "migrator", "svc", "shh", "")
	if err != nil {
		t.Fatalf("ClientCredentials() error = %v", err)
	}
	if session.BearerToken != "tok-123" {
		t.Errorf("BearerToken = %q", session.BearerToken)
	}
	if session.User != "svc" || session.Tenant != srv.URL {
		t.Errorf("session = %+v", session)
	}
	if !session.Connected() {
		t.Error("Connected() = false")
	}
}

func TestClientCredentials_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_client","error_description":"unknown client"}`))
	}))
	defer srv.Close()

	_, err := ClientCredentials(context.Background(), srv.URL, "migrator", "svc", "bad", "")
	if err == nil {
		t.Fatal("ClientCredentials() with rejected credentials returned nil error")
	}
	if code := platformerrors.GetCode(err); code != platformerrors.ErrCodeAuthTokenRejected {
		t.Errorf("error code = %q, want %q", code, platformerrors.ErrCodeAuthTokenRejected)
	}
}

func TestPromptClientSecret_Env(t *testing.T) {
	t.Setenv("PASMIGRATE_CLIENT_SECRET", "from-env")

	secret, err := PromptClientSecret()
	if err != nil {
		t.Fatalf("PromptClientSecret() error = %v", err)
	}
	if secret != "from-env" {
		t.Errorf("secret = %q, want from-env", secret)
	}
}
