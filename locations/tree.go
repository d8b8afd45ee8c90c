package locations

import (
	"context"
)

type LocationNeighborhood struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type LocationCity struct {
	ID            uint                   `json:"id"`
	Name          string                 `json:"name"`
	ImageURL      *string                `json:"image_url"`
	Neighborhoods []LocationNeighborhood `json:"neighborhoods"`
}

type LocationState struct {
	ID           uint           `json:"id"`
	Name         string         `json:"name"`
	Abbreviation string         `json:"abbreviation"`
	Cities       []LocationCity `json:"cities"`
}

type locationRow struct {
	StateID           uint
	StateName         string
	StateAbbreviation string
	CityID            *uint
	CityName          *string
	CityImageURL      *string
	NeighborhoodID    *uint
	NeighborhoodName  *string
}

// ListLocations monta a árvore estado → cidades → bairros a partir de uma única
// consulta com LEFT JOIN. Listas sem filhos saem como [] e não null.
func (s *Service) ListLocations(ctx context.Context) ([]LocationState, error) {
	var rows []locationRow
	err := s.db.WithContext(ctx).Table("states").
		Select(`states.id AS state_id, states.name AS state_name, states.abbreviation AS state_abbreviation,
			cities.id AS city_id, cities.name AS city_name, cities.image_url AS city_image_url,
			neighborhoods.id AS neighborhood_id, neighborhoods.name AS neighborhood_name`).
		Joins("LEFT JOIN cities ON cities.state_id = states.id").
		Joins("LEFT JOIN neighborhoods ON neighborhoods.city_id = cities.id").
		Order("states.name, cities.name, neighborhoods.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return groupLocations(rows), nil
}

func groupLocations(rows []locationRow) []LocationState {
	states := []LocationState{}
	stateIdx := map[uint]int{}
	cityIdx := map[uint]int{}

	for _, r := range rows {
		si, ok := stateIdx[r.StateID]
		if !ok {
			states = append(states, LocationState{
				ID:           r.StateID,
				Name:         r.StateName,
				Abbreviation: r.StateAbbreviation,
				Cities:       []LocationCity{},
			})
			si = len(states) - 1
			stateIdx[r.StateID] = si
		}

		if r.CityID == nil {
			continue
		}
		state := &states[si]
		ci, ok := cityIdx[*r.CityID]
		if !ok {
			city := LocationCity{
				ID:            *r.CityID,
				ImageURL:      r.CityImageURL,
				Neighborhoods: []LocationNeighborhood{},
			}
			if r.CityName != nil {
				city.Name = *r.CityName
			}
			state.Cities = append(state.Cities, city)
			ci = len(state.Cities) - 1
			cityIdx[*r.CityID] = ci
		}

		if r.NeighborhoodID == nil {
			continue
		}
		n := LocationNeighborhood{ID: *r.NeighborhoodID}
		if r.NeighborhoodName != nil {
			n.Name = *r.NeighborhoodName
		}
		state.Cities[ci].Neighborhoods = append(state.Cities[ci].Neighborhoods, n)
	}

	return states
}

// PublicCities lista as cidades com a quantidade de imóveis. Imóveis antigos sem
// city_id entram pela comparação do texto livre com o nome da cidade.
func (s *Service) PublicCities(ctx context.Context) ([]PublicCity, error) {
	cities := []PublicCity{}
	err := s.db.WithContext(ctx).Table("cities").
		Select(`cities.id, cities.name, cities.image_url, cities.state_id,
			states.name AS state_name, states.abbreviation AS state_abbreviation,
			(SELECT COUNT(*) FROM properties
				WHERE properties.city_id = cities.id
				   OR (properties.city_id IS NULL AND properties.city = cities.name)) AS property_count`).
		Joins("JOIN states ON states.id = cities.state_id").
		Order("cities.name").
		Scan(&cities).Error
	return cities, err
}
