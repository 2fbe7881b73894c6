package playback

import (
	"github.com/metafates/gache"
	"github.com/reelnotes/reelnotes/filesystem"
	"github.com/reelnotes/reelnotes/where"
)

type stickyPrefs struct {
	HasUserUnmuted bool `json:"has_user_unmuted"`
}

// Preferences carries the sticky playback preferences that outlive a session.
// Sessions never read it directly; the controller seeds each new session from
// it at construction.
type Preferences struct {
	cacher *gache.Cache[*stickyPrefs]
}

// NewPreferences returns the persistent preferences store.
func NewPreferences() *Preferences {
	return &Preferences{
		cacher: gache.New[*stickyPrefs](&gache.Options{
			Path:       where.Preferences(),
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// HasUserUnmuted reports whether the user unmuted playback in any session.
func (p *Preferences) HasUserUnmuted() bool {
	cached, _, err := p.cacher.Get()
	if err != nil || cached == nil {
		return false
	}
	return cached.HasUserUnmuted
}

// MarkUserUnmuted records the first user unmute. It never unsets.
func (p *Preferences) MarkUserUnmuted() error {
	return p.cacher.Set(&stickyPrefs{HasUserUnmuted: true})
}
