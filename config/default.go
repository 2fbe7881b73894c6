// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/reelnotes/reelnotes/color"
	"github.com/reelnotes/reelnotes/constant"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Reelnotes + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case float64:
		return "float64"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.ServiceBaseURL, "https://api.reelnotes.app", "Base URL of the video-notes service API")
	register(key.ServiceTimeout, 30, "Timeout in seconds for video-notes service requests")

	register(key.FeedSearchLimit, 50, "Limit of feed search results to show")
	register(key.FeedShowQuerySuggestions, true, "Show query suggestions when searching the feed")

	register(key.HistorySaveOnWatch, true, "Save playback progress to the watch history")
	register(key.HistoryCompletionPercentage, 80, "Percentage required to mark a note as watched (1-100)")

	register(key.GestureHorizontalThreshold, 60.0, "Minimum horizontal displacement (px) to read a drag as a navigate or exit swipe")
	register(key.GestureVerticalUpThreshold, 40.0, "Minimum upward displacement (px) to read a drag as the reveal-details swipe")
	register(key.GestureVerticalDownThreshold, 50.0, "Minimum downward displacement (px) to read a drag as the exit swipe")
	register(key.GestureDiagonalThreshold, 45.0, "Minimum displacement (px) on both axes to read a drag as the diagonal exit swipe")
	register(key.GestureMinExitVelocity, 0.3, "Minimum release velocity (px/ms) required by the vertical and diagonal exit swipes")
	register(key.GestureTapMaxMs, 250, "Maximum duration (ms) of an interaction classified as a tap")
	register(key.GestureTapMaxDisplacement, 10.0, "Maximum total displacement (px) of an interaction classified as a tap")
	register(key.GestureLongPressDelayMs, 400, "Hold delay (ms) before a stationary press becomes the speed hold")
	register(key.GestureJitterThreshold, 8.0, "Movement (px) tolerated before a pending long press is cancelled")
	register(key.GestureProgressZoneFraction, 0.08, "Fraction of the viewport height, from the bottom, owned by the progress scrub zone")

	register(key.Player, "mpv", "Media player backend to use (mpv)")
	register(key.PlayerStartMuted, true, "Start each playback session muted until the user unmutes once")
	register(key.PlayerHoldSpeed, 2.0, "Playback rate applied while the speed hold gesture is active")
	register(key.PlayerTapRightMutes, false, "Map taps on the right half of the player to mute toggle instead of play/pause")
	register(key.PlayerProgressAutoHideMs, 2000, "Idle delay (ms) before the progress bar hides itself")
	register(key.PlayerTimeUpdateHz, 4, "Maximum rate of position updates forwarded from the media surface")

	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")

	register(key.TUIItemSpacing, 1, "Spacing between items in the TUI")
	register(key.TUISearchPromptString, "> ", "Search prompt string to use")

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")

	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
