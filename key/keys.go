// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 30

// Video Service - these keys configure the connection to the video-notes backend.
const (
	ServiceBaseURL = "service.base_url"
	ServiceTimeout = "service.timeout_sec"
)

// Feed - these keys define the UI/UX parameters for feed discovery.
const (
	FeedSearchLimit          = "feed.search_limit"
	FeedShowQuerySuggestions = "feed.show_query_suggestions"
)

// History Tracking - these keys configure the persistence of playback progress.
const (
	HistorySaveOnWatch          = "history.save_on_watch"
	HistoryCompletionPercentage = "history.completion_percentage"
)

// Gesture Classification - tunable thresholds for the player's gesture classifier.
// Displacements are in pixels (terminal cells for the TUI host), velocities in px/ms.
const (
	GestureHorizontalThreshold   = "gesture.horizontal_threshold"
	GestureVerticalUpThreshold   = "gesture.vertical_up_threshold"
	GestureVerticalDownThreshold = "gesture.vertical_down_threshold"
	GestureDiagonalThreshold     = "gesture.diagonal_threshold"
	GestureMinExitVelocity       = "gesture.min_exit_velocity"
	GestureTapMaxMs              = "gesture.tap_max_ms"
	GestureTapMaxDisplacement    = "gesture.tap_max_displacement"
	GestureLongPressDelayMs      = "gesture.long_press_delay_ms"
	GestureJitterThreshold       = "gesture.jitter_threshold"
	GestureProgressZoneFraction  = "gesture.progress_zone_fraction"
)

// Media Playback - these keys maintain the state and configuration for the media surface.
const (
	Player                   = "player.default"
	PlayerStartMuted         = "player.start_muted"
	PlayerHoldSpeed          = "player.hold_speed"
	PlayerTapRightMutes      = "player.tap_right_mutes"
	PlayerProgressAutoHideMs = "player.progress_autohide_ms"
	PlayerTimeUpdateHz       = "player.time_update_hz"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI) - these keys define the primary interactive environment's styling and logic.
const (
	TUIItemSpacing        = "tui.item_spacing"
	TUISearchPromptString = "tui.search_prompt"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
