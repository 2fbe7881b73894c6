package media

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/reelnotes/reelnotes/constant"
	"github.com/reelnotes/reelnotes/key"
	"github.com/reelnotes/reelnotes/log"
	"github.com/spf13/viper"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV implements Surface using mpv's JSON-IPC protocol.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits
	mu         sync.Mutex    // protects socket writes

	listener *eventListener
	throttle *timeThrottle

	subMu       sync.Mutex
	subscribers []func(Event)
	closed      bool
}

// NewMPV creates a new mpv surface (does not start the engine).
func NewMPV() *MPV {
	m := &MPV{
		throttle: newTimeThrottle(viper.GetInt(key.PlayerTimeUpdateHz)),
	}
	m.exited = make(chan struct{})
	close(m.exited) // nothing running yet
	return m
}

// Load starts mpv (if needed) and initializes the given URL.
func (m *MPV) Load(rawURL string, title string, headers map[string]string) error {
	// Sanitize the URL so an untrusted playback URL cannot inject flags
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	safeTitle := sanitizeTitle(title)

	var headerString string
	if len(headers) > 0 {
		var hBuilder strings.Builder
		for k, v := range headers {
			if hBuilder.Len() > 0 {
				hBuilder.WriteString(",")
			}
			val := strings.ReplaceAll(v, ",", "%2C")
			hBuilder.WriteString(fmt.Sprintf("%s: %s", k, val))
		}
		headerString = hBuilder.String()
	}

	if m.running() {
		// Engine already up: swap the file over IPC instead of spawning another process
		_, err := m.sendCommand([]interface{}{"loadfile", safeURL, "replace"})
		if err != nil {
			return fmt.Errorf("loadfile: %w", err)
		}
		if err := m.Set("force-media-title", safeTitle); err != nil {
			log.Warnf("set media title: %v", err)
		}
		return nil
	}

	// Random socket path under os.TempDir() for cross-platform support
	// (macOS $TMPDIR is /var/folders/... not /tmp/)
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Reelnotes, randomBytes))
	}

	// Pass only the socket, title and URL. The user's mpv.conf owns
	// --vo, --profile and --hwdec.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--force-media-title=%s", safeTitle),
		fmt.Sprintf("--title=%s", safeTitle), // some mpv builds only respect --title
		"--force-window=yes",
		"--idle=yes",
		"--pause=yes", // the controller decides when playback starts
	}

	if headerString != "" {
		args = append(args, fmt.Sprintf("--http-header-fields=%s", headerString))
	}

	args = append(args, safeURL)

	m.cmd = exec.Command("mpv", args...)

	// Detach from the parent process group so a shell panic cannot cascade
	m.cmd.SysProcAttr = sysProcAttr()

	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Reap the process to prevent zombies
	m.exited = make(chan struct{})
	go func(exited chan struct{}) {
		_ = m.cmd.Wait()
		close(exited)
	}(m.exited)

	if err := m.waitForSocket(); err != nil {
		// Socket never became ready, kill the orphaned process
		if m.cmd.Process != nil {
			select {
			case <-m.exited:
			default:
				log.Warnf("killing mpv: socket never became ready")
				_ = m.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newEventListener(m.socketPath, m.dispatch)
	if err := m.listener.start(); err != nil {
		return fmt.Errorf("event listener: %w", err)
	}

	return nil
}

// Done returns a channel that is closed when the mpv process exits.
func (m *MPV) Done() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// Play resumes playback.
func (m *MPV) Play() error {
	return m.Set("pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause() error {
	return m.Set("pause", true)
}

// SeekTo moves playback to the given absolute position in seconds.
func (m *MPV) SeekTo(seconds float64) error {
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

// SetMuted sets the audio mute state.
func (m *MPV) SetMuted(muted bool) error {
	return m.Set("mute", muted)
}

// SetRate sets the playback speed multiplier.
func (m *MPV) SetRate(rate float64) error {
	return m.Set("speed", rate)
}

// Position returns the current playback position in seconds.
func (m *MPV) Position() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// Duration returns the total duration of the current media in seconds.
func (m *MPV) Duration() (float64, error) {
	return m.getFloatProperty("duration")
}

// Subscribe registers a callback for surface events.
func (m *MPV) Subscribe(fn func(Event)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// running reports whether mpv is responding to IPC commands.
func (m *MPV) running() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.sendCommand([]interface{}{"get_property", "pid"})
	return err == nil
}

// Close shuts down the mpv process and cleans up resources.
// Repeated calls are no-ops.
func (m *MPV) Close() error {
	m.subMu.Lock()
	if m.closed {
		m.subMu.Unlock()
		return nil
	}
	m.closed = true
	m.subMu.Unlock()

	if m.listener != nil {
		m.listener.stop()
	}

	if m.socketPath == "" {
		return nil
	}

	// Graceful quit first
	_, _ = m.sendCommand([]interface{}{"quit"})

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)

	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// Set sets an mpv property.
func (m *MPV) Set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// dispatch translates raw mpv property notifications into surface events.
func (m *MPV) dispatch(property string, data interface{}) {
	now := time.Now()

	switch property {
	case "time-pos":
		pos, ok := data.(float64)
		if !ok {
			return
		}
		if e, emit := m.throttle.onPosition(pos, now); emit {
			m.publish(e)
		}
	case "duration":
		dur, ok := data.(float64)
		if !ok {
			return
		}
		if e, emit := m.throttle.onDuration(dur, now); emit {
			m.publish(e)
		}
	case "pause":
		paused, ok := data.(bool)
		if !ok {
			return
		}
		if paused {
			m.publish(Event{Kind: EventPaused})
		} else {
			m.publish(Event{Kind: EventPlaying})
		}
	case "eof-reached":
		if reached, ok := data.(bool); ok && reached {
			m.publish(Event{Kind: EventEnded})
		}
	case "file-loaded":
		m.publish(Event{Kind: EventLoaded})
	case "end-file":
		m.dispatchEndFile(data)
	}
}

// dispatchEndFile distinguishes error terminations from ordinary end of file.
func (m *MPV) dispatchEndFile(data interface{}) {
	event, ok := data.(map[string]interface{})
	if !ok {
		return
	}

	reason, _ := event["reason"].(string)
	switch reason {
	case "error":
		msg, _ := event["file_error"].(string)
		if msg == "" {
			msg = "playback failed"
		}
		m.publish(Event{Kind: EventError, Err: fmt.Errorf("mpv: %s", msg)})
	case "eof":
		m.publish(Event{Kind: EventEnded})
	}
}

func (m *MPV) publish(e Event) {
	m.subMu.Lock()
	subs := make([]func(Event), len(m.subscribers))
	copy(subs, m.subscribers)
	closed := m.closed
	m.subMu.Unlock()

	if closed {
		return
	}
	for _, fn := range subs {
		fn(e)
	}
}

// getFloatProperty retrieves a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
// Playback URLs come from a remote service and must not read as flags.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}

// sanitizeTitle cleans up the title before it is handed to mpv.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
