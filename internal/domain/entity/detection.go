package entity

import "image"

// Box прямоугольник обнаруженного объекта в пикселях кадра
type Box struct {
	X int `json:"x"` // координата X левого верхнего угла
	Y int `json:"y"` // координата Y левого верхнего угла
	W int `json:"w"` // ширина области в пикселях
	H int `json:"h"` // высота области в пикселях
}

// Center возвращает координаты центра области
func (b Box) Center() (x, y int) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Rect переводит область в image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// RawDetection сырой результат детектора до фильтрации по категориям
type RawDetection struct {
	Box        Box
	Confidence float64 // уверенность 0..1
	ClassID    int     // индекс класса модели
}

// Detection обнаружение, прошедшее порог своей категории
type Detection struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
	Label      string  `json:"label"`
	Triggered  bool    `json:"triggered"` // прошло порог срабатывания
}
