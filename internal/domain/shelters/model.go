package shelters

import "time"

// ManagementSoftware es el sistema de gestión que usa el shelter.
// @Enum ShelterLuv, ShelterManager
type ManagementSoftware string

const (
	SoftwareShelterLuv     ManagementSoftware = "ShelterLuv"
	SoftwareShelterManager ManagementSoftware = "ShelterManager"
)

// Provider devuelve el nombre del roster.Source que sincroniza este software.
func (m ManagementSoftware) Provider() string {
	switch m {
	case SoftwareShelterLuv:
		return "shelterluv"
	case SoftwareShelterManager:
		return "asm"
	default:
		return ""
	}
}

// SoftwareForProvider es la inversa de Provider.
func SoftwareForProvider(provider string) (ManagementSoftware, bool) {
	switch provider {
	case "shelterluv":
		return SoftwareShelterLuv, true
	case "asm":
		return SoftwareShelterManager, true
	default:
		return "", false
	}
}

// Settings guarda credenciales y preferencias de sync del shelter.
type Settings struct {
	APIKey      string `json:"apiKey"`
	ASMUsername string `json:"asmUsername"`
	ASMPassword string `json:"asmPassword"`
	ASMAccount  string `json:"asmAccountNumber"`

	OnlyPrimaryPhoto bool `json:"onlyIncludePrimaryPhotoFromShelterLuv"`
}

// DefaultSettings aplica cuando el shelter no existe o no tiene settings.
func DefaultSettings() Settings {
	return Settings{OnlyPrimaryPhoto: true}
}

// HasCredentials indica si hay credenciales suficientes para el software dado.
func (s Settings) HasCredentials(m ManagementSoftware) bool {
	switch m {
	case SoftwareShelterLuv:
		return s.APIKey != ""
	case SoftwareShelterManager:
		return s.ASMUsername != "" && s.ASMPassword != "" && s.ASMAccount != ""
	default:
		return false
	}
}

// SyncChanges resume los ids que tocó el último sync.
type SyncChanges struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
}

// Ledger es el registro del último sync exitoso.
type Ledger struct {
	LastSync        *time.Time  `json:"lastSync,omitempty"`
	LastCatSync     *time.Time  `json:"lastCatSync,omitempty"`
	LastDogSync     *time.Time  `json:"lastDogSync,omitempty"`
	LastSyncChanges SyncChanges `json:"lastSyncChanges"`
}

type Shelter struct {
	ID                 string
	Name               string
	ManagementSoftware ManagementSoftware
	Settings           Settings
	Ledger             Ledger

	CreatedAt time.Time
	UpdatedAt time.Time
}
