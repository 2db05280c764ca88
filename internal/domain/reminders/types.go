package reminders

import "strings"

// Kind es la variante cerrada de tipos de recordatorio.
// Valores desconocidos se normalizan a KindOther.
type Kind string

const (
	KindConsulta    Kind = "consulta"
	KindVacina      Kind = "vacina"
	KindMedicamento Kind = "medicamento"
	KindOther       Kind = "other"
)

// KindInfo es la metadata de presentación asociada a cada Kind.
type KindInfo struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// kindInfo debe cubrir todos los Kind; agregar un tipo nuevo es editar esta tabla.
var kindInfo = map[Kind]KindInfo{
	KindConsulta:    {Label: "Consulta", Icon: "stethoscope", Color: "blue"},
	KindVacina:      {Label: "Vacina", Icon: "syringe", Color: "green"},
	KindMedicamento: {Label: "Medicamento", Icon: "pill", Color: "purple"},
	KindOther:       {Label: "Lembrete", Icon: "bell", Color: "gray"},
}

// Kinds devuelve los tipos en orden estable.
func Kinds() []Kind {
	return []Kind{KindConsulta, KindVacina, KindMedicamento, KindOther}
}

func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kindInfo[k]; ok {
		return k
	}
	return KindOther
}

func (k Kind) Info() KindInfo {
	if info, ok := kindInfo[k]; ok {
		return info
	}
	return kindInfo[KindOther]
}

func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDismissed Status = "dismissed"
)

// Source indica dónde vive el recordatorio.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)
