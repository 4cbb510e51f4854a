package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Client-side validation and session errors.
var (
	ErrNotCSV       = errors.New("explorer: file must have a .csv extension")
	ErrUnauthorized = errors.New("explorer: session expired or invalid")
	ErrNotSignedIn  = errors.New("explorer: not signed in")
)

// Client talks to the catalog backend. All entity endpoints attach the
// stored session token as `Authorization: Token <token>`.
type Client struct {
	baseURL string
	http    *http.Client
	store   *CredentialStore
	logger  *log.Logger

	token string
}

// NewClient constructs a client. Any stored session is loaded eagerly so a
// restarted process stays signed in.
func NewClient(baseURL string, store *CredentialStore, logger *log.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("explorer: base url required")
	}
	if store == nil {
		return nil, errors.New("explorer: nil credential store")
	}
	if logger == nil {
		logger = log.Default()
	}
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   store,
		logger:  logger,
	}
	creds, err := store.Load()
	if err != nil {
		return nil, err
	}
	client.token = creds.Token
	return client, nil
}

// SignedIn reports whether a session token is held.
func (c *Client) SignedIn() bool {
	return c.token != ""
}

type session struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Login exchanges credentials for a session token and persists it.
func (c *Client) Login(ctx context.Context, username, password string) (Profile, error) {
	var sess session
	payload := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/login/", payload, &sess, false); err != nil {
		return Profile{}, err
	}
	c.token = sess.Token
	if err := c.store.Save(Credentials{Token: sess.Token, User: sess.User}); err != nil {
		return Profile{}, err
	}
	return sess.User, nil
}

// RegisterInput carries the fields for account creation.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Register creates an account and signs in with the returned session.
func (c *Client) Register(ctx context.Context, input RegisterInput) (Profile, error) {
	var sess session
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/register/", input, &sess, false); err != nil {
		return Profile{}, err
	}
	c.token = sess.Token
	if err := c.store.Save(Credentials{Token: sess.Token, User: sess.User}); err != nil {
		return Profile{}, err
	}
	return sess.User, nil
}

// Logout revokes the session server-side. Local state is cleared regardless
// of the outcome so a failed call never leaves the user stuck signed in.
func (c *Client) Logout(ctx context.Context) error {
	var requestErr error
	if c.token != "" {
		requestErr = c.doJSON(ctx, http.MethodPost, "/api/users/logout/", nil, nil, true)
	}
	c.token = ""
	if err := c.store.Clear(); err != nil {
		c.logger.Printf("clear stored session: %v", err)
	}
	return requestErr
}

// Page is one page of the entity listing.
type Page struct {
	Count   int      `json:"count"`
	Number  int      `json:"page"`
	Results []Entity `json:"results"`
}

// FetchPage loads one page of a provenance-filtered listing.
func (c *Client) FetchPage(ctx context.Context, provenance Provenance, page int) (Page, error) {
	query := url.Values{}
	if provenance != "" {
		query.Set("source", string(provenance))
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	var result Page
	if err := c.doJSON(ctx, http.MethodGet, "/api/pokemon/?"+query.Encode(), nil, &result, true); err != nil {
		return Page{}, err
	}
	return result, nil
}

// Search runs a server-side substring search over name, types and category.
func (c *Client) Search(ctx context.Context, text string) ([]Entity, error) {
	query := url.Values{}
	query.Set("search", text)
	var result Page
	if err := c.doJSON(ctx, http.MethodGet, "/api/pokemon/?"+query.Encode(), nil, &result, true); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// All loads the full unpaginated catalog for map marker derivation by paging
// through the listing.
func (c *Client) All(ctx context.Context) ([]Entity, error) {
	var entities []Entity
	for page := 1; ; page++ {
		result, err := c.FetchPage(ctx, "", page)
		if err != nil {
			return nil, err
		}
		entities = append(entities, result.Results...)
		if len(entities) >= result.Count || len(result.Results) == 0 {
			return entities, nil
		}
	}
}

// Get loads one entity by id.
func (c *Client) Get(ctx context.Context, id string) (*Entity, error) {
	var entity Entity
	if err := c.doJSON(ctx, http.MethodGet, "/api/pokemon/"+url.PathEscape(id)+"/", nil, &entity, true); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Delete removes an entity.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/pokemon/"+url.PathEscape(id)+"/", nil, nil, true)
}

// ToggleFavorite flips the favorite flag and returns the updated entity.
func (c *Client) ToggleFavorite(ctx context.Context, id string) (*Entity, error) {
	var entity Entity
	if err := c.doJSON(ctx, http.MethodPost, "/api/pokemon/"+url.PathEscape(id)+"/favorite/", nil, &entity, true); err != nil {
		return nil, err
	}
	return &entity, nil
}

// FetchFromAPI asks the backend to ingest from the upstream catalog.
func (c *Client) FetchFromAPI(ctx context.Context, limit int) (int, error) {
	path := "/api/pokemon/fetch_from_api/"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &result, true); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// UploadCSV bulk-imports entities from a local CSV file. The extension is
// validated before any network call is made.
func (c *Client) UploadCSV(ctx context.Context, path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return 0, ErrNotCSV
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return 0, err
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pokemon/upload_from_csv/", &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := c.authorize(req); err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return 0, err
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// ExportCatalog downloads the full catalog in the given format, "csv" or
// "xlsx". The CSV layout matches what UploadCSV accepts.
func (c *Client) ExportCatalog(ctx context.Context, format string) ([]byte, error) {
	switch format {
	case "csv", "xlsx":
	default:
		return nil, fmt.Errorf("explorer: unsupported export format %q", format)
	}
	return c.download(ctx, "/api/pokemon/export/"+format)
}

// EntityCardPDF downloads a printable card for one entity.
func (c *Client) EntityCardPDF(ctx context.Context, id string) ([]byte, error) {
	return c.download(ctx, "/api/pokemon/"+url.PathEscape(id)+"/card.pdf")
}

func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// ChannelURL builds the per-entity energy channel endpoint, carrying the
// session token as a query parameter since websocket dials cannot set the
// Authorization header from every environment.
func (c *Client) ChannelURL(id string) (string, error) {
	if c.token == "" {
		return "", ErrNotSignedIn
	}
	endpoint := c.baseURL + "/ws/pokemon/" + url.PathEscape(id) + "/energy/"
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	}
	return endpoint + "?token=" + url.QueryEscape(c.token), nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.token == "" {
		return ErrNotSignedIn
	}
	req.Header.Set("Authorization", "Token "+c.token)
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any, authed bool) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if err := c.authorize(req); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus maps error statuses. A 401 clears the stored session so the
// user falls back to signed-out rather than retrying a dead token.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.token = ""
		if err := c.store.Clear(); err != nil {
			c.logger.Printf("clear stored session: %v", err)
		}
		return ErrUnauthorized
	}
	message, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	text := strings.TrimSpace(string(message))
	if text == "" {
		text = resp.Status
	}
	return fmt.Errorf("explorer: server returned %d: %s", resp.StatusCode, text)
}
