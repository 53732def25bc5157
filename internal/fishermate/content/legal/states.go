package legal

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/states.yaml
var builtinStates []byte

// ErrUnknownState is returned for a state with no regulations on file.
var ErrUnknownState = errors.New("legal: unknown state")

// Bounds is a coarse latitude/longitude box.
type Bounds struct {
	MinLat float64 `yaml:"min_lat" json:"min_lat"`
	MaxLat float64 `yaml:"max_lat" json:"max_lat"`
	MinLon float64 `yaml:"min_lon" json:"min_lon"`
	MaxLon float64 `yaml:"max_lon" json:"max_lon"`
}

// Contains reports whether lat/lon falls inside b, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Ban is a state's seasonal fishing ban.
type Ban struct {
	Period  string `yaml:"period" json:"period"`
	Reason  string `yaml:"reason" json:"reason"`
	Penalty string `yaml:"penalty" json:"penalty"`
}

// Restriction limits a fishing method.
type Restriction struct {
	Method   string `yaml:"method" json:"method"`
	Distance string `yaml:"distance,omitempty" json:"distance,omitempty"`
	Time     string `yaml:"time,omitempty" json:"time,omitempty"`
	Reason   string `yaml:"reason" json:"reason"`
}

// Licensing lists registration and licence rules.
type Licensing struct {
	MotorizedBoats string   `yaml:"motorized_boats" json:"motorized_boats"`
	FishingLicense string   `yaml:"fishing_license" json:"fishing_license"`
	Validity       string   `yaml:"validity" json:"validity"`
	Documents      []string `yaml:"documents" json:"documents"`
}

// Contact is the state fisheries department.
type Contact struct {
	Department string `yaml:"department" json:"department"`
	Helpline   string `yaml:"helpline" json:"helpline"`
	Website    string `yaml:"website" json:"website"`
}

// State holds one state's fishing regulations.
type State struct {
	Name         string        `yaml:"name" json:"name"`
	Keywords     []string      `yaml:"keywords" json:"-"`
	Bounds       Bounds        `yaml:"bounds" json:"-"`
	Ban          Ban           `yaml:"seasonal_ban" json:"seasonal_ban"`
	Restrictions []Restriction `yaml:"restricted_fishing" json:"restricted_fishing"`
	Licensing    Licensing     `yaml:"licensing" json:"licensing"`
	Safety       []string      `yaml:"safety_requirements" json:"safety_requirements"`
	Contact      Contact       `yaml:"contact_info" json:"contact_info"`
}

// LoadStates parses a states document.
func LoadStates(raw []byte) ([]State, error) {
	var doc struct {
		States []State `yaml:"states"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("legal: parse states: %w", err)
	}
	if len(doc.States) == 0 {
		return nil, fmt.Errorf("legal: no states defined")
	}
	seen := make(map[string]bool, len(doc.States))
	for _, s := range doc.States {
		if s.Name == "" {
			return nil, fmt.Errorf("legal: state without a name")
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("legal: duplicate state %q", s.Name)
		}
		seen[s.Name] = true
	}
	return doc.States, nil
}
