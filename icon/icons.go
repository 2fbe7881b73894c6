package icon

// Icon identifies a UI symbol in the global registry.
type Icon int

const (
	Search Icon = iota + 1
	Progress
	Fail
	Mark
	Link
	Play
	Pause
	Mute
	Sound
	Speed
	Note
	Tag

	Success = Mark
)

// icons is the global registry mapping each Icon to its per-variant representations.
var icons = map[Icon]*iconDef{
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   ">",
		kaomoji: "(o・・o)",
		squares: "▣",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "*",
		kaomoji: "(￣ω￣;)",
		squares: "▤",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "",
		plain:   "x",
		kaomoji: "(╯°□°)╯",
		squares: "▨",
	},
	Mark: {
		emoji:   "✅",
		nerd:    "",
		plain:   "+",
		kaomoji: "(￣ー￣)b",
		squares: "▣",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "",
		plain:   "~",
		kaomoji: "(串)",
		squares: "▢",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(/・・)ノ",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(-_-)zzz",
		squares: "▮▮",
	},
	Mute: {
		emoji:   "🔇",
		nerd:    "",
		plain:   "mX",
		kaomoji: "(x_x)",
		squares: "▥",
	},
	Sound: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "m<",
		kaomoji: "(^o^)",
		squares: "▦",
	},
	Speed: {
		emoji:   "⏩",
		nerd:    "",
		plain:   ">>",
		kaomoji: "ε=ε=┌(;・∀・)┘",
		squares: "▶▶",
	},
	Note: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "#",
		kaomoji: "(・ω・)ノ",
		squares: "▧",
	},
	Tag: {
		emoji:   "🏷️",
		nerd:    "",
		plain:   "@",
		kaomoji: "(ё)",
		squares: "▩",
	},
}
