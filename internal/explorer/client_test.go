package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func tempStore(t *testing.T) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func signedInClient(t *testing.T, baseURL string) (*Client, *CredentialStore) {
	t.Helper()
	store := tempStore(t)
	if err := store.Save(Credentials{Token: "tok-123", User: Profile{Username: "ash"}}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	client, err := NewClient(baseURL, store, discardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, store
}

func TestClientLoadsStoredSession(t *testing.T) {
	client, _ := signedInClient(t, "http://localhost:0")
	if !client.SignedIn() {
		t.Fatal("stored session not loaded")
	}
}

func TestUploadRejectsNonCSVBeforeNetwork(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client, _ := signedInClient(t, server.URL)

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	if err := os.WriteFile(path, []byte("not a csv"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := client.UploadCSV(context.Background(), path)
	if !errors.Is(err, ErrNotCSV) {
		t.Fatalf("err = %v, want ErrNotCSV", err)
	}
	if requests.Load() != 0 {
		t.Fatalf("rejection reached the server %d times", requests.Load())
	}
}

func TestUploadSendsMultipartCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pokemon/upload_from_csv/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "catalog.csv" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int{"count": 2})
	}))
	defer server.Close()

	client, _ := signedInClient(t, server.URL)

	path := filepath.Join(t.TempDir(), "catalog.csv")
	content := "Pokemon,Lat,Long,Type\nPikachu,34.05,-118.24,Electric\nEevee,34.07,-118.44,Normal\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	count, err := client.UploadCSV(context.Background(), path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestUnauthorizedResponseClearsStoredSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token revoked", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, store := signedInClient(t, server.URL)

	_, err := client.Get(context.Background(), "25")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if client.SignedIn() {
		t.Fatal("client still signed in after 401")
	}
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	if creds.Token != "" {
		t.Fatal("stored token survived the 401")
	}
}

func TestLogoutClearsLocalStateDespiteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, store := signedInClient(t, server.URL)

	if err := client.Logout(context.Background()); err == nil {
		t.Fatal("expected the server failure to be reported")
	}
	if client.SignedIn() {
		t.Fatal("client still signed in after logout")
	}
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	if creds.Token != "" {
		t.Fatal("stored session survived logout")
	}
}

func TestLoginPersistsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/login/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "fresh-token",
			"user":  map[string]string{"id": "u1", "username": "misty"},
		})
	}))
	defer server.Close()

	store := tempStore(t)
	client, err := NewClient(server.URL, store, discardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	profile, err := client.Login(context.Background(), "misty", "starmie")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if profile.Username != "misty" {
		t.Fatalf("profile = %+v", profile)
	}
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	if creds.Token != "fresh-token" || creds.User.Username != "misty" {
		t.Fatalf("stored credentials = %+v", creds)
	}
}

func TestChannelURLCarriesTokenAndScheme(t *testing.T) {
	client, _ := signedInClient(t, "https://maps.example.com")

	endpoint, err := client.ChannelURL("25")
	if err != nil {
		t.Fatalf("channel url: %v", err)
	}
	want := "wss://maps.example.com/ws/pokemon/25/energy/?token=tok-123"
	if endpoint != want {
		t.Fatalf("endpoint = %q, want %q", endpoint, want)
	}

	store := tempStore(t)
	anon, err := NewClient("http://maps.example.com", store, discardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := anon.ChannelURL("25"); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}
}

func TestFetchPagePassesSourceAndPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("source"); got != "API" {
			t.Errorf("source = %q", got)
		}
		if got := r.URL.Query().Get("page"); got != "3" {
			t.Errorf("page = %q", got)
		}
		json.NewEncoder(w).Encode(Page{Count: 45, Number: 3, Results: []Entity{{ID: "e1"}}})
	}))
	defer server.Close()

	client, _ := signedInClient(t, server.URL)

	page, err := client.FetchPage(context.Background(), ProvenanceAPI, 3)
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if page.Count != 45 || page.Number != 3 || len(page.Results) != 1 {
		t.Fatalf("page = %+v", page)
	}
}
