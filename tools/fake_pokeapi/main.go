// Command fake_pokeapi serves a small canned slice of the upstream catalog
// so the fetch path can be exercised offline. Point POKEAPI_BASE_URL at it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

type namedResource struct {
	Name string `json:"name"`
}

type moveDetail struct {
	LevelLearnedAt int `json:"level_learned_at"`
}

type move struct {
	Move                namedResource `json:"move"`
	VersionGroupDetails []moveDetail  `json:"version_group_details"`
}

type pokemonPayload struct {
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
	Moves []move `json:"moves"`
}

var roster = []struct {
	name      string
	kind      string
	abilities []string
	moves     []string
}{
	{"bulbasaur", "grass", []string{"overgrow"}, []string{"tackle", "vine-whip", "razor-leaf", "solar-beam"}},
	{"charmander", "fire", []string{"blaze"}, []string{"scratch", "ember", "flamethrower", "fire-spin"}},
	{"squirtle", "water", []string{"torrent"}, []string{"tackle", "water-gun", "bubble", "hydro-pump"}},
	{"pikachu", "electric", []string{"static"}, []string{"thunder-shock", "quick-attack", "thunderbolt", "thunder"}},
	{"jigglypuff", "fairy", []string{"cute-charm"}, []string{"sing", "pound", "double-slap", "body-slam"}},
	{"meowth", "normal", []string{"pickup"}, []string{"scratch", "bite", "pay-day", "slash"}},
	{"psyduck", "water", []string{"damp"}, []string{"scratch", "water-gun", "confusion", "hydro-pump"}},
	{"machop", "fighting", []string{"guts"}, []string{"karate-chop", "low-kick", "seismic-toss", "submission"}},
	{"geodude", "rock", []string{"sturdy"}, []string{"tackle", "rock-throw", "self-destruct", "earthquake"}},
	{"gastly", "ghost", []string{"levitate"}, []string{"lick", "confuse-ray", "night-shade", "dream-eater"}},
}

func buildPayload(ordinal int) pokemonPayload {
	entry := roster[(ordinal-1)%len(roster)]

	var payload pokemonPayload
	payload.Name = entry.name
	payload.Height = 7
	payload.Weight = 69
	payload.Sprites.FrontDefault = fmt.Sprintf(
		"https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png", ordinal)
	payload.Species = namedResource{Name: "seed"}
	payload.Types = append(payload.Types, struct {
		Type namedResource `json:"type"`
	}{Type: namedResource{Name: entry.kind}})
	for _, ability := range entry.abilities {
		payload.Abilities = append(payload.Abilities, struct {
			Ability namedResource `json:"ability"`
		}{Ability: namedResource{Name: ability}})
	}
	for i, stat := range []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"} {
		payload.Stats = append(payload.Stats, struct {
			BaseStat int           `json:"base_stat"`
			Stat     namedResource `json:"stat"`
		}{BaseStat: 40 + 5*i + ordinal%20, Stat: namedResource{Name: stat}})
	}
	for i, name := range entry.moves {
		payload.Moves = append(payload.Moves, move{
			Move:                namedResource{Name: name},
			VersionGroupDetails: []moveDetail{{LevelLearnedAt: 10 * (i + 1)}},
		})
	}
	return payload
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	max := flag.Int("max", 151, "highest ordinal served")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/pokemon/", func(w http.ResponseWriter, r *http.Request) {
		raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v2/pokemon/"), "/")
		ordinal, err := strconv.Atoi(raw)
		if err != nil || ordinal < 1 || ordinal > *max {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(buildPayload(ordinal))
	})

	log.Printf("fake pokeapi listening on %s (ordinals 1..%d)", *addr, *max)
	log.Fatal(http.ListenAndServe(*addr, mux))
}
