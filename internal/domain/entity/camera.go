package entity

import "fmt"

// CameraID идентификатор слота камеры (0 — основная, 1 — дополнительная)
type CameraID int

const (
	PrimaryCamera   CameraID = 0
	SecondaryCamera CameraID = 1
)

// CameraIDs перечисляет все поддерживаемые слоты камер по порядку.
var CameraIDs = []CameraID{PrimaryCamera, SecondaryCamera}

// Valid сообщает, существует ли такой слот.
func (id CameraID) Valid() bool {
	return id == PrimaryCamera || id == SecondaryCamera
}

// Name возвращает человекочитаемое имя камеры для логов.
func (id CameraID) Name() string {
	if id == PrimaryCamera {
		return "Primary camera"
	}
	return "Secondary camera"
}

// Label возвращает короткую подпись камеры для сводок.
func (id CameraID) Label() string {
	if id == PrimaryCamera {
		return "Primary"
	}
	return "Secondary"
}

// Key возвращает ключ камеры в JSON-настройках масок.
func (id CameraID) Key() string {
	return fmt.Sprintf("%d", int(id))
}

// CameraSlot описывает настроенную камеру
type CameraSlot struct {
	ID          CameraID `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Enabled     bool     `json:"enabled"`
	AspectRatio string   `json:"aspect_ratio,omitempty"`
}
