package entity

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Settings пользовательская конфигурация мониторинга. Сохраняется в JSON без потерь:
// неизвестные ключи верхнего уровня хранятся в Extra и записываются обратно.
type Settings struct {
	Cameras             []CameraSlot              `json:"cameras"`
	CameraCount         int                       `json:"camera_count"`
	MoonrakerURL        string                    `json:"moonraker_url"`
	CheckIntervalMs     int                       `json:"check_interval"`
	ConsecutiveFailures int                       `json:"consecutive_failures"`
	OnFailure           FailureAction             `json:"on_failure"`
	InferEveryNLoops    int                       `json:"infer_every_n_loops"`
	NotifyMobileraker   bool                      `json:"notify_mobileraker"`
	SendSummary         bool                      `json:"send_summary"`
	UITheme             string                    `json:"ui_theme"`
	CustomTheme         map[string]any            `json:"custom_theme"`
	Masks               map[string][]MaskZone     `json:"masks"`
	Categories          map[string]CategoryConfig `json:"ai_categories"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownSettingsKeys = map[string]bool{
	"cameras": true, "camera_count": true, "moonraker_url": true, "check_interval": true,
	"consecutive_failures": true, "on_failure": true, "infer_every_n_loops": true,
	"notify_mobileraker": true, "send_summary": true, "ui_theme": true,
	"custom_theme": true, "masks": true, "ai_categories": true,
}

// DefaultSettings конфигурация по умолчанию: одна камера, пауза после трёх подряд срабатываний.
func DefaultSettings() *Settings {
	categories := map[string]CategoryConfig{}
	for _, key := range CategoryKeys() {
		categories[key] = NewCategoryConfig(true, key == "spaghetti")
	}

	return &Settings{
		Cameras: []CameraSlot{
			{ID: PrimaryCamera, Name: "Primary", URL: "http://127.0.0.1/webcam/?action=snapshot", Enabled: true, AspectRatio: "4:3"},
			{ID: SecondaryCamera, Name: "Secondary", URL: "", Enabled: false, AspectRatio: "4:3"},
		},
		CameraCount:         1,
		MoonrakerURL:        "http://127.0.0.1:7125",
		CheckIntervalMs:     500,
		ConsecutiveFailures: 3,
		OnFailure:           ActionPause,
		InferEveryNLoops:    1,
		NotifyMobileraker:   false,
		SendSummary:         true,
		UITheme:             "dark",
		CustomTheme:         map[string]any{},
		Masks:               map[string][]MaskZone{"0": {}, "1": {}},
		Categories:          categories,
	}
}

type settingsAlias Settings

// UnmarshalJSON разбирает известные поля и сохраняет остальные в Extra.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var alias settingsAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key, raw := range all {
		if knownSettingsKeys[key] {
			continue
		}
		if alias.Extra == nil {
			alias.Extra = make(map[string]json.RawMessage)
		}
		alias.Extra[key] = raw
	}

	*s = Settings(alias)
	s.fillNilMaps()
	return nil
}

// MarshalJSON пишет известные поля и неизвестные ключи из Extra.
func (s Settings) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(settingsAlias(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return data, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for key, raw := range s.Extra {
		if _, ok := fields[key]; !ok {
			fields[key] = raw
		}
	}
	return json.Marshal(fields)
}

// MergeSettings заменяет ключи верхнего уровня base значениями из patch (JSON-объект).
func MergeSettings(base *Settings, patch []byte) (*Settings, error) {
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(patch, &incoming); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	current, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(current, &merged); err != nil {
		return nil, err
	}
	for key, raw := range incoming {
		merged[key] = raw
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	out := &Settings{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return out, nil
}

func (s *Settings) fillNilMaps() {
	if s.CustomTheme == nil {
		s.CustomTheme = map[string]any{}
	}
	if s.Masks == nil {
		s.Masks = map[string][]MaskZone{}
	}
	if s.Categories == nil {
		s.Categories = map[string]CategoryConfig{}
	}
}

// Clone возвращает глубокую копию настроек.
func (s *Settings) Clone() *Settings {
	out := *s
	out.Cameras = append([]CameraSlot(nil), s.Cameras...)

	out.CustomTheme = make(map[string]any, len(s.CustomTheme))
	for k, v := range s.CustomTheme {
		out.CustomTheme[k] = v
	}

	out.Masks = make(map[string][]MaskZone, len(s.Masks))
	for k, zones := range s.Masks {
		out.Masks[k] = append([]MaskZone(nil), zones...)
	}

	out.Categories = make(map[string]CategoryConfig, len(s.Categories))
	for k, c := range s.Categories {
		out.Categories[k] = c.Clone()
	}

	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &out
}

// Validate проверяет значения, без которых цикл мониторинга не может работать.
func (s *Settings) Validate() error {
	if s.CheckIntervalMs <= 0 {
		return fmt.Errorf("%w: check_interval must be positive", ErrInvalidSettings)
	}
	if s.ConsecutiveFailures < 1 {
		return fmt.Errorf("%w: consecutive_failures must be at least 1", ErrInvalidSettings)
	}
	if s.InferEveryNLoops < 1 {
		return fmt.Errorf("%w: infer_every_n_loops must be at least 1", ErrInvalidSettings)
	}
	if !s.OnFailure.Valid() {
		return fmt.Errorf("%w: unknown on_failure action %q", ErrInvalidSettings, s.OnFailure)
	}
	if s.CameraCount < 0 || s.CameraCount > len(CameraIDs) {
		return fmt.Errorf("%w: camera_count must be within [0, %d]", ErrInvalidSettings, len(CameraIDs))
	}

	seen := make(map[CameraID]bool)
	for _, cam := range s.Cameras {
		if !cam.ID.Valid() {
			return fmt.Errorf("%w: %w %d", ErrInvalidSettings, ErrInvalidCamera, cam.ID)
		}
		if seen[cam.ID] {
			return fmt.Errorf("%w: duplicate camera %d", ErrInvalidSettings, cam.ID)
		}
		seen[cam.ID] = true
	}

	for _, key := range SortedCategoryKeys(s.Categories) {
		if err := s.Categories[key].Validate(); err != nil {
			return fmt.Errorf("%w: category %s: %v", ErrInvalidSettings, key, err)
		}
	}
	return nil
}

// Warnings перечисляет подозрительные, но допустимые значения.
func (s *Settings) Warnings() []string {
	var out []string
	for _, key := range SortedCategoryKeys(s.Categories) {
		for _, cam := range s.Categories[key].InvertedCameras() {
			out = append(out, fmt.Sprintf("category %s: detect threshold is above trigger threshold on %s", key, cam.Name()))
		}
	}

	camKeys := make([]string, 0, len(s.Masks))
	for k := range s.Masks {
		camKeys = append(camKeys, k)
	}
	sort.Strings(camKeys)
	for _, k := range camKeys {
		invalid := 0
		for _, z := range s.Masks[k] {
			if !z.Valid() {
				invalid++
			}
		}
		if invalid > 0 {
			out = append(out, fmt.Sprintf("camera %s: %d mask zone(s) are malformed and will be ignored", k, invalid))
		}
	}
	return out
}

// Camera возвращает слот камеры по идентификатору.
func (s *Settings) Camera(id CameraID) (CameraSlot, bool) {
	for _, cam := range s.Cameras {
		if cam.ID == id {
			return cam, true
		}
	}
	return CameraSlot{}, false
}

// CameraEnabled сообщает, включена ли камера.
func (s *Settings) CameraEnabled(id CameraID) bool {
	cam, ok := s.Camera(id)
	return ok && cam.Enabled
}

// Zones возвращает зоны маски камеры.
func (s *Settings) Zones(id CameraID) []MaskZone {
	return s.Masks[id.Key()]
}

// Category возвращает включённую категорию по ключу.
func (s *Settings) Category(key string) (CategoryConfig, bool) {
	if key == UnrecognizedCategory {
		return CategoryConfig{}, false
	}
	c, ok := s.Categories[key]
	if !ok || !c.Enabled {
		return CategoryConfig{}, false
	}
	return c, true
}

// ResolveThresholds возвращает пороги категории для камеры. Для отсутствующей
// категории используются значения по умолчанию.
func (s *Settings) ResolveThresholds(key string, cam CameraID) Thresholds {
	c, ok := s.Categories[key]
	if !ok {
		return Thresholds{Detect: DefaultDetectThreshold, Trigger: DefaultTriggerThreshold}
	}
	return c.Thresholds(cam)
}

// MinDetectThreshold наименьший порог обнаружения среди включённых категорий камеры.
func (s *Settings) MinDetectThreshold(cam CameraID) float64 {
	found := false
	min := DefaultDetectThreshold
	for _, c := range s.Categories {
		if !c.Enabled {
			continue
		}
		t := c.Thresholds(cam).Detect
		if !found || t < min {
			min = t
			found = true
		}
	}
	return min
}

// StatsKeys ключи статистики: таблица классов плюс все настроенные категории.
func (s *Settings) StatsKeys() []string {
	keys := CategoryKeys()
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range SortedCategoryKeys(s.Categories) {
		if !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	return keys
}

// Interval период опроса.
func (s *Settings) Interval() time.Duration {
	if s.CheckIntervalMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(s.CheckIntervalMs) * time.Millisecond
}

// InferEvery период запуска детектора в тиках, не меньше 1.
func (s *Settings) InferEvery() int {
	if s.InferEveryNLoops < 1 {
		return 1
	}
	return s.InferEveryNLoops
}
