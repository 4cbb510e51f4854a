package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultBaseURL is the public upstream catalog.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Client is a minimal PokeAPI REST client.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a PokeAPI client.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Species is one upstream catalog record, flattened.
type Species struct {
	Name          string
	TypePrimary   string
	TypeSecondary string
	Sprite        string
	Category      string
	Abilities     []string
	Stats         map[string]int
	Moves         []string
	Height        float64
	Weight        float64
}

// Fetch loads one species by its upstream ordinal.
func (c *Client) Fetch(ctx context.Context, ordinal int) (*Species, error) {
	if c == nil {
		return nil, errors.New("pokeapi: nil client")
	}
	if ordinal < 1 {
		return nil, errors.New("pokeapi: ordinal must be positive")
	}

	var resp pokemonResponse
	if err := c.doJSON(ctx, fmt.Sprintf("/pokemon/%d", ordinal), &resp); err != nil {
		return nil, err
	}

	species := &Species{
		Name:     capitalize(resp.Name),
		Sprite:   resp.Sprites.FrontDefault,
		Category: resp.Species.Name,
		Height:   resp.Height,
		Weight:   resp.Weight,
		Stats:    make(map[string]int, len(resp.Stats)),
		Moves:    movesAtLevel(resp.Moves, 60, 4),
	}
	if len(resp.Types) > 0 {
		species.TypePrimary = resp.Types[0].Type.Name
	}
	if len(resp.Types) > 1 {
		species.TypeSecondary = resp.Types[1].Type.Name
	}
	for _, ability := range resp.Abilities {
		species.Abilities = append(species.Abilities, ability.Ability.Name)
	}
	for _, stat := range resp.Stats {
		species.Stats[stat.Stat.Name] = stat.BaseStat
	}
	return species, nil
}

// movesAtLevel picks the highest-level moves learned at or below level,
// capped at limit.
func movesAtLevel(moves []moveEntry, level, limit int) []string {
	type learned struct {
		name  string
		level int
	}
	var candidates []learned
	for _, move := range moves {
		best := -1
		for _, detail := range move.VersionGroupDetails {
			if detail.LevelLearnedAt <= level && detail.LevelLearnedAt > best {
				best = detail.LevelLearnedAt
			}
		}
		if best >= 0 {
			candidates = append(candidates, learned{name: move.Move.Name, level: best})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].level > candidates[j].level
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		result = append(result, candidate.name)
	}
	return result
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

type pokemonResponse struct {
	Name    string  `json:"name"`
	Height  float64 `json:"height"`
	Weight  float64 `json:"weight"`
	Types   []struct {
		Type namedResource `json:"type"`
	} `json:"types"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Species   namedResource `json:"species"`
	Abilities []struct {
		Ability namedResource `json:"ability"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Moves []moveEntry `json:"moves"`
}

type namedResource struct {
	Name string `json:"name"`
}

type moveEntry struct {
	Move                namedResource `json:"move"`
	VersionGroupDetails []struct {
		LevelLearnedAt int `json:"level_learned_at"`
	} `json:"version_group_details"`
}

var errNotFound = errors.New("pokeapi: not found")

// IsNotFound reports whether err is the upstream 404 sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func (c *Client) doJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pokeapi: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
