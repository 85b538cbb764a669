package fbref

import (
	"fmt"
	"sort"
	"strings"
)

// League identifies a supported competition and its numeric id on the
// source site
type League struct {
	Key     string // selector used on the command line
	ID      int    // competition id in fixture page URLs
	Name    string
	Country string
}

// Competition ids on the source site for the supported leagues
var leagues = map[string]League{
	"premier":      {Key: "premier", ID: 9, Name: "Premier League", Country: "England"},
	"championship": {Key: "championship", ID: 10, Name: "Championship", Country: "England"},
	"seriea":       {Key: "seriea", ID: 11, Name: "Serie A", Country: "Italy"},
	"laliga":       {Key: "laliga", ID: 12, Name: "La Liga", Country: "Spain"},
	"ligue1":       {Key: "ligue1", ID: 13, Name: "Ligue 1", Country: "France"},
	"bundesliga":   {Key: "bundesliga", ID: 20, Name: "Bundesliga", Country: "Germany"},
	"portugal":     {Key: "portugal", ID: 32, Name: "Primeira Liga", Country: "Portugal"},
}

// LookupLeague resolves a command line league selector to its competition
func LookupLeague(key string) (League, error) {
	l, ok := leagues[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return League{}, fmt.Errorf("unsupported league %q (supported: %s)", key, strings.Join(LeagueKeys(), ", "))
	}
	return l, nil
}

// LeagueKeys returns the supported selectors in stable order
func LeagueKeys() []string {
	keys := make([]string, 0, len(leagues))
	for k := range leagues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
