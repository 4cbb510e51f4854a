package domain

import (
	"errors"
	"testing"
)

func TestPageTotalPages(t *testing.T) {
	cases := []struct {
		name     string
		count    int
		pageSize int
		want     int
	}{
		{"empty", 0, 20, 0},
		{"exact", 40, 20, 2},
		{"remainder", 41, 20, 3},
		{"single", 1, 20, 1},
		{"zero page size", 10, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := Page{Count: tc.count, PageSize: tc.pageSize}
			if got := page.TotalPages(); got != tc.want {
				t.Fatalf("TotalPages() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPageValidateNumber(t *testing.T) {
	cases := []struct {
		name    string
		page    Page
		wantErr bool
	}{
		{"first page of empty collection", Page{Number: 1, Count: 0, PageSize: 20}, false},
		{"second page of empty collection", Page{Number: 2, Count: 0, PageSize: 20}, true},
		{"page zero", Page{Number: 0, Count: 10, PageSize: 20}, true},
		{"last page", Page{Number: 3, Count: 41, PageSize: 20}, false},
		{"past last page", Page{Number: 4, Count: 41, PageSize: 20}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.page.ValidateNumber()
			if tc.wantErr && !errors.Is(err, ErrInvalidPage) {
				t.Fatalf("expected ErrInvalidPage, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPokemonMappable(t *testing.T) {
	coord := &Coordinate{Latitude: 34.07, Longitude: -118.44}
	cases := []struct {
		name string
		p    Pokemon
		want bool
	}{
		{"coords and sprite", Pokemon{Coordinate: coord, Sprite: "http://img/7.png"}, true},
		{"missing sprite", Pokemon{Coordinate: coord}, false},
		{"missing coords", Pokemon{Sprite: "http://img/7.png"}, false},
		{"neither", Pokemon{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.p.Mappable(); got != tc.want {
				t.Fatalf("Mappable() = %v, want %v", got, tc.want)
			}
		})
	}
}
