package pets

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, other
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// ParseSpecies normaliza; ok=false si no es una especie conocida.
func ParseSpecies(s string) (Species, bool) {
	switch Species(s) {
	case SpeciesDog, SpeciesCat, SpeciesOther:
		return Species(s), true
	default:
		return "", false
	}
}

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func parseSex(s string) (Sex, bool) {
	switch Sex(s) {
	case "":
		return SexUnknown, true
	case SexMale, SexFemale, SexUnknown:
		return Sex(s), true
	default:
		return "", false
	}
}

// Pet es la entidad Pet de la plataforma (perfil básico de la mascota).
type Pet struct {
	ID          string `json:"id,omitempty"`
	OwnerUserID string `json:"owner_id"`

	Name    string  `json:"name"`
	Species Species `json:"species"`
	Breed   string  `json:"breed,omitempty"`
	Sex     Sex     `json:"sex,omitempty"`

	BirthDate string  `json:"birth_date,omitempty"` // YYYY-MM-DD
	WeightKg  float64 `json:"weight_kg,omitempty"`
	Microchip string  `json:"microchip,omitempty"`
	PhotoURL  string  `json:"photo_url,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
