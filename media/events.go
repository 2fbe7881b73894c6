package media

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/reelnotes/reelnotes/log"
)

// propertyCallback is the function signature for raw mpv property notifications.
type propertyCallback func(property string, data interface{})

// eventListener provides real-time mpv event monitoring via observe_property.
type eventListener struct {
	socketPath string
	conn       net.Conn
	callback   propertyCallback
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

func newEventListener(socketPath string, callback propertyCallback) *eventListener {
	return &eventListener{
		socketPath: socketPath,
		callback:   callback,
		stopCh:     make(chan struct{}),
	}
}

// start subscribes to the property set the controller needs and begins the read loop.
func (el *eventListener) start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	properties := []struct {
		id   int
		name string
	}{
		{1, "time-pos"},
		{2, "duration"},
		{3, "pause"},
		{4, "eof-reached"},
	}

	for _, prop := range properties {
		_, err := doSendCommand(el.socketPath, []interface{}{"observe_property", prop.id, prop.name})
		if err != nil {
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}

	// Persistent connection for the event read loop
	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.Infof("mpv event listener started on %s (observing: time-pos, duration, pause, eof-reached)", el.socketPath)
	return nil
}

func (el *eventListener) stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop continuously reads newline-delimited JSON events from the
// persistent mpv connection.
func (el *eventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
				continue // timeout is normal, keep listening
			}
			log.Warnf("event listener read error: %v", err)
			return
		}

		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Last incomplete line goes to remainder for next read
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			el.processEvent(line)
		}
	}
}

// processEvent parses and dispatches a single mpv event JSON line.
func (el *eventListener) processEvent(line string) {
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return // skip unparseable lines
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return
	}

	switch eventType {
	case "property-change":
		name, _ := event["name"].(string)
		data := event["data"]
		if name != "" && el.callback != nil {
			el.callback(name, data)
		}
	default:
		// Forward lifecycle events ("end-file", "file-loaded", "playback-restart")
		if el.callback != nil {
			el.callback(eventType, event)
		}
	}
}

// timeThrottle rate-limits position updates without ever dropping a duration change.
type timeThrottle struct {
	mu       sync.Mutex
	interval time.Duration
	lastEmit time.Time
	position float64
	duration float64
}

func newTimeThrottle(hz int) *timeThrottle {
	if hz <= 0 {
		hz = 4
	}
	return &timeThrottle{interval: time.Second / time.Duration(hz)}
}

// onPosition records a position update and reports whether it should be emitted now.
func (t *timeThrottle) onPosition(pos float64, now time.Time) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.position = pos
	if now.Sub(t.lastEmit) < t.interval {
		return Event{}, false
	}
	t.lastEmit = now
	return Event{Kind: EventTime, Position: t.position, Duration: t.duration}, true
}

// onDuration records a duration change. Duration changes bypass the rate limit.
func (t *timeThrottle) onDuration(dur float64, now time.Time) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.duration = dur
	t.lastEmit = now
	return Event{Kind: EventTime, Position: t.position, Duration: t.duration}, true
}
