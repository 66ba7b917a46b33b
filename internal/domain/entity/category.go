package entity

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultDetectThreshold  = 0.30
	DefaultTriggerThreshold = 0.70

	// UnrecognizedCategory ключ для классов, которых нет в таблице модели. Никогда не включён.
	UnrecognizedCategory = "fail"
)

// ClassNames таблица классов модели в порядке их индексов.
var ClassNames = []string{"Spaghetti", "Blob", "Warping", "Crack"}

// CategoryKeyForClass переводит индекс класса детектора в ключ категории.
func CategoryKeyForClass(classID int) string {
	if classID < 0 || classID >= len(ClassNames) {
		return UnrecognizedCategory
	}
	return strings.ToLower(ClassNames[classID])
}

// ClassLabelForClass возвращает подпись класса для отрисовки.
func ClassLabelForClass(classID int) string {
	if classID < 0 || classID >= len(ClassNames) {
		return strings.ToUpper(UnrecognizedCategory)
	}
	return ClassNames[classID]
}

// CategoryKeys ключи всех категорий из таблицы классов.
func CategoryKeys() []string {
	keys := make([]string, 0, len(ClassNames))
	for i := range ClassNames {
		keys = append(keys, CategoryKeyForClass(i))
	}
	return keys
}

// CategoryLabel делает из ключа категории подпись с заглавной буквы.
func CategoryLabel(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// Thresholds пороги категории для конкретной камеры
type Thresholds struct {
	Detect  float64
	Trigger float64
}

// CategoryConfig настройки одной категории дефектов.
// DetectThreshold и TriggerThreshold устарели и используются, только если нет значения для камеры.
type CategoryConfig struct {
	Enabled          bool
	Trigger          bool
	DetectThreshold  *float64
	TriggerThreshold *float64
	CameraDetect     map[CameraID]float64
	CameraTrigger    map[CameraID]float64

	// Extra неизвестные ключи категории, записываются обратно без изменений.
	Extra map[string]json.RawMessage
}

// NewCategoryConfig создаёт категорию с порогами по умолчанию для всех камер.
func NewCategoryConfig(enabled, trigger bool) CategoryConfig {
	detect, triggerThr := DefaultDetectThreshold, DefaultTriggerThreshold
	c := CategoryConfig{
		Enabled:          enabled,
		Trigger:          trigger,
		DetectThreshold:  &detect,
		TriggerThreshold: &triggerThr,
		CameraDetect:     make(map[CameraID]float64),
		CameraTrigger:    make(map[CameraID]float64),
	}
	for _, id := range CameraIDs {
		c.CameraDetect[id] = DefaultDetectThreshold
		c.CameraTrigger[id] = DefaultTriggerThreshold
	}
	return c
}

// Thresholds разрешает пороги: значение камеры → устаревшее общее значение → значение по умолчанию.
func (c CategoryConfig) Thresholds(cam CameraID) Thresholds {
	t := Thresholds{Detect: DefaultDetectThreshold, Trigger: DefaultTriggerThreshold}

	if v, ok := c.CameraDetect[cam]; ok {
		t.Detect = v
	} else if c.DetectThreshold != nil {
		t.Detect = *c.DetectThreshold
	}

	if v, ok := c.CameraTrigger[cam]; ok {
		t.Trigger = v
	} else if c.TriggerThreshold != nil {
		t.Trigger = *c.TriggerThreshold
	}

	return t
}

// Clone возвращает глубокую копию.
func (c CategoryConfig) Clone() CategoryConfig {
	out := c
	if c.DetectThreshold != nil {
		v := *c.DetectThreshold
		out.DetectThreshold = &v
	}
	if c.TriggerThreshold != nil {
		v := *c.TriggerThreshold
		out.TriggerThreshold = &v
	}
	out.CameraDetect = make(map[CameraID]float64, len(c.CameraDetect))
	for k, v := range c.CameraDetect {
		out.CameraDetect[k] = v
	}
	out.CameraTrigger = make(map[CameraID]float64, len(c.CameraTrigger))
	for k, v := range c.CameraTrigger {
		out.CameraTrigger[k] = v
	}
	if c.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// Validate проверяет диапазоны порогов.
func (c CategoryConfig) Validate() error {
	check := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
		}
		return nil
	}
	if c.DetectThreshold != nil {
		if err := check("detect_threshold", *c.DetectThreshold); err != nil {
			return err
		}
	}
	if c.TriggerThreshold != nil {
		if err := check("trigger_threshold", *c.TriggerThreshold); err != nil {
			return err
		}
	}
	for cam, v := range c.CameraDetect {
		if err := check(cameraThresholdKey(cam, "detect"), v); err != nil {
			return err
		}
	}
	for cam, v := range c.CameraTrigger {
		if err := check(cameraThresholdKey(cam, "trigger"), v); err != nil {
			return err
		}
	}
	return nil
}

// InvertedCameras возвращает камеры, для которых порог обнаружения выше порога срабатывания.
func (c CategoryConfig) InvertedCameras() []CameraID {
	var out []CameraID
	for _, cam := range CameraIDs {
		t := c.Thresholds(cam)
		if t.Detect > t.Trigger {
			out = append(out, cam)
		}
	}
	return out
}

var cameraThresholdPattern = regexp.MustCompile(`^cam(\d+)_(detect|trigger)_threshold$`)

func cameraThresholdKey(cam CameraID, kind string) string {
	return fmt.Sprintf("cam%d_%s_threshold", int(cam), kind)
}

// UnmarshalJSON читает формат настроек с ключами camN_detect_threshold / camN_trigger_threshold.
func (c *CategoryConfig) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := CategoryConfig{
		Enabled:       true,
		CameraDetect:  make(map[CameraID]float64),
		CameraTrigger: make(map[CameraID]float64),
	}

	for key, raw := range fields {
		switch key {
		case "enabled":
			if err := json.Unmarshal(raw, &out.Enabled); err != nil {
				return fmt.Errorf("category enabled: %w", err)
			}
		case "trigger":
			if err := json.Unmarshal(raw, &out.Trigger); err != nil {
				return fmt.Errorf("category trigger: %w", err)
			}
		case "detect_threshold":
			v, err := decodeThreshold(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			out.DetectThreshold = &v
		case "trigger_threshold":
			v, err := decodeThreshold(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			out.TriggerThreshold = &v
		default:
			m := cameraThresholdPattern.FindStringSubmatch(key)
			var cam CameraID
			if m != nil {
				id, err := strconv.Atoi(m[1])
				cam = CameraID(id)
				if err != nil || !cam.Valid() {
					m = nil
				}
			}
			if m == nil {
				if out.Extra == nil {
					out.Extra = make(map[string]json.RawMessage)
				}
				out.Extra[key] = append(json.RawMessage(nil), raw...)
				continue
			}
			v, err := decodeThreshold(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if m[2] == "detect" {
				out.CameraDetect[cam] = v
			} else {
				out.CameraTrigger[cam] = v
			}
		}
	}

	*c = out
	return nil
}

// MarshalJSON пишет категорию в том же плоском формате, что и читает.
func (c CategoryConfig) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		fields[k] = v
	}
	for k, v := range map[string]any{
		"enabled": c.Enabled,
		"trigger": c.Trigger,
	} {
		fields[k] = v
	}
	if c.DetectThreshold != nil {
		fields["detect_threshold"] = *c.DetectThreshold
	}
	if c.TriggerThreshold != nil {
		fields["trigger_threshold"] = *c.TriggerThreshold
	}
	for cam, v := range c.CameraDetect {
		fields[cameraThresholdKey(cam, "detect")] = v
	}
	for cam, v := range c.CameraTrigger {
		fields[cameraThresholdKey(cam, "trigger")] = v
	}
	return json.Marshal(fields)
}

func decodeThreshold(raw json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("threshold must be a number")
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// SortedCategoryKeys возвращает ключи карты категорий в стабильном порядке:
// сначала таблица классов, затем остальные по алфавиту.
func SortedCategoryKeys(categories map[string]CategoryConfig) []string {
	seen := make(map[string]bool, len(categories))
	keys := make([]string, 0, len(categories))
	for _, key := range CategoryKeys() {
		if _, ok := categories[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range categories {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
