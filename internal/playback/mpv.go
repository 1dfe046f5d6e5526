package playback

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/podly-fm/podly/internal/resolve"
)

// mpv property observer ids.
const (
	obsTimePos = 1 + iota
	obsDuration
	obsEOF
	obsCacheStall
)

const ipcTimeout = 5 * time.Second

// MPVDevice drives a single idle mpv process over its JSON IPC socket and
// translates property changes into the normalized event stream. Embedded
// data: payloads are decoded to a temp file first; mpv plays files and
// URLs, not data URLs.
type MPVDevice struct {
	logger *slog.Logger

	cmd       *exec.Cmd
	conn      net.Conn
	socketDir string
	events    chan Event

	mu        sync.Mutex
	trackID   string
	metaSent  bool
	endedSent bool
	disposed  bool
	reqID     int
	pending   map[int]chan mpvMessage
	tmpFiles  []string

	readerDone chan struct{}
}

type mpvMessage struct {
	Event     string `json:"event"`
	Name      string `json:"name"`
	ID        int    `json:"id"`
	Data      any    `json:"data"`
	RequestID int    `json:"request_id"`
	Error     string `json:"error"`
	Reason    string `json:"reason"`
}

// NewMPVDevice spawns mpv in idle mode and connects to its IPC socket.
// The binary argument overrides the mpv path; empty means "mpv" from PATH.
func NewMPVDevice(binary string, logger *slog.Logger) (*MPVDevice, error) {
	if binary == "" {
		binary = "mpv"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("mpv not found: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Randomized socket path prevents symlink attacks.
	socketDir, err := os.MkdirTemp("", "podly-mpv-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	socketPath := filepath.Join(socketDir, "socket")

	cmd := exec.Command(binary,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--pause=yes",
		"--input-ipc-server="+socketPath,
	)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(socketDir)
		return nil, fmt.Errorf("starting mpv: %w", err)
	}

	conn, err := dialSocket(socketPath)
	if err != nil {
		_ = cmd.Process.Kill()
		os.RemoveAll(socketDir)
		return nil, err
	}

	d := &MPVDevice{
		logger:     logger,
		cmd:        cmd,
		conn:       conn,
		socketDir:  socketDir,
		events:     make(chan Event, 128),
		pending:    make(map[int]chan mpvMessage),
		readerDone: make(chan struct{}),
	}
	go d.readLoop()

	for id, prop := range map[int]string{
		obsTimePos:    "time-pos",
		obsDuration:   "duration",
		obsEOF:        "eof-reached",
		obsCacheStall: "paused-for-cache",
	} {
		if err := d.request("observe_property", id, prop); err != nil {
			d.Dispose()
			return nil, fmt.Errorf("observing %s: %w", prop, err)
		}
	}

	return d, nil
}

// dialSocket waits for the IPC socket to appear, then connects.
func dialSocket(path string) (net.Conn, error) {
	deadline := time.Now().Add(ipcTimeout)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("unix", path); err == nil {
			return conn, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil, fmt.Errorf("mpv IPC socket did not appear at %s", path)
}

// Load assigns a new source. The file is loaded paused; Play flips the
// pause flag once the session asks for playback.
func (d *MPVDevice) Load(trackID, sourceURL string) {
	d.mu.Lock()
	d.trackID = trackID
	d.metaSent = false
	d.endedSent = false
	d.mu.Unlock()

	target := sourceURL
	if resolve.IsEmbedded(sourceURL) {
		path, err := d.materializeEmbedded(sourceURL)
		if err != nil {
			d.emit(Event{TrackID: trackID, Kind: EventError, Err: err})
			return
		}
		target = path
	}

	if err := d.request("set_property", "pause", true); err != nil {
		d.emit(Event{TrackID: trackID, Kind: EventError, Err: err})
		return
	}
	if err := d.request("loadfile", target, "replace"); err != nil {
		d.emit(Event{TrackID: trackID, Kind: EventError, Err: err})
	}
}

// Play requests playback. The returned channel delivers the deferred
// outcome: nil once mpv acknowledges, or the refusal error.
func (d *MPVDevice) Play() <-chan error {
	result := make(chan error, 1)
	go func() {
		result <- d.request("set_property", "pause", false)
	}()
	return result
}

// Pause suspends playback. Best effort; failures surface via events.
func (d *MPVDevice) Pause() {
	if err := d.request("set_property", "pause", true); err != nil {
		d.logger.Debug("mpv pause failed", "error", err)
	}
}

// Seek moves the playhead to an absolute position in seconds.
func (d *MPVDevice) Seek(seconds float64) {
	if err := d.request("seek", seconds, "absolute"); err != nil {
		d.logger.Debug("mpv seek failed", "error", err)
	}
}

// SetVolume sets the volume. The session works in [0,1]; mpv in [0,100].
func (d *MPVDevice) SetVolume(v float64) {
	if err := d.request("set_property", "volume", v*100); err != nil {
		d.logger.Debug("mpv volume failed", "error", err)
	}
}

// SetMuted sets the mute flag.
func (d *MPVDevice) SetMuted(muted bool) {
	if err := d.request("set_property", "mute", muted); err != nil {
		d.logger.Debug("mpv mute failed", "error", err)
	}
}

// SetRate sets the playback speed.
func (d *MPVDevice) SetRate(rate float64) {
	if err := d.request("set_property", "speed", rate); err != nil {
		d.logger.Debug("mpv speed failed", "error", err)
	}
}

// Events returns the outbound event stream.
func (d *MPVDevice) Events() <-chan Event {
	return d.events
}

// Dispose kills mpv and releases the socket and any decoded payload files.
// Idempotent.
func (d *MPVDevice) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	tmpFiles := d.tmpFiles
	d.tmpFiles = nil
	d.mu.Unlock()

	_ = d.conn.Close()
	_ = d.cmd.Process.Kill()
	_ = d.cmd.Wait()
	<-d.readerDone
	close(d.events)

	for _, f := range tmpFiles {
		_ = os.Remove(f)
	}
	_ = os.RemoveAll(d.socketDir)
}

// materializeEmbedded decodes a data: payload into a temp file.
func (d *MPVDevice) materializeEmbedded(sourceURL string) (string, error) {
	header, payload, ok := strings.Cut(sourceURL, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", fmt.Errorf("malformed embedded audio payload")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decoding embedded audio: %w", err)
	}

	ext := ".mp3"
	if strings.Contains(header, "audio/wav") {
		ext = ".wav"
	} else if strings.Contains(header, "audio/ogg") {
		ext = ".ogg"
	}

	f, err := os.CreateTemp(d.socketDir, "embedded-*"+ext)
	if err != nil {
		return "", fmt.Errorf("writing embedded audio: %w", err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return "", fmt.Errorf("writing embedded audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	d.mu.Lock()
	d.tmpFiles = append(d.tmpFiles, f.Name())
	d.mu.Unlock()
	return f.Name(), nil
}

// request sends one IPC command and waits for its acknowledgement.
func (d *MPVDevice) request(cmd ...any) error {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return fmt.Errorf("mpv device disposed")
	}
	d.reqID++
	id := d.reqID
	reply := make(chan mpvMessage, 1)
	d.pending[id] = reply
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.pending, id)
		d.mu.Unlock()
	}()

	payload := map[string]any{"command": cmd, "request_id": id}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := d.conn.Write(data); err != nil {
		return fmt.Errorf("mpv IPC write: %w", err)
	}

	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return fmt.Errorf("mpv: %s", msg.Error)
		}
		return nil
	case <-time.After(ipcTimeout):
		return fmt.Errorf("mpv IPC timeout")
	}
}

// readLoop parses IPC lines into responses and events until the socket
// closes.
func (d *MPVDevice) readLoop() {
	defer close(d.readerDone)

	scanner := bufio.NewScanner(d.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		if msg.RequestID != 0 {
			d.mu.Lock()
			reply, ok := d.pending[msg.RequestID]
			d.mu.Unlock()
			if ok {
				reply <- msg
			}
			continue
		}

		d.handleIPCEvent(msg)
	}

	// Socket gone. If we were not disposed, the process died underneath us.
	d.mu.Lock()
	disposed := d.disposed
	trackID := d.trackID
	d.mu.Unlock()
	if !disposed && trackID != "" {
		d.emit(Event{TrackID: trackID, Kind: EventError, Err: fmt.Errorf("mpv exited unexpectedly")})
	}
}

func (d *MPVDevice) handleIPCEvent(msg mpvMessage) {
	d.mu.Lock()
	trackID := d.trackID
	d.mu.Unlock()
	if trackID == "" {
		return
	}

	switch msg.Event {
	case "property-change":
		d.handlePropertyChange(trackID, msg)
	case "end-file":
		if msg.Reason == "error" {
			d.emit(Event{TrackID: trackID, Kind: EventError, Err: fmt.Errorf("mpv failed to play source")})
		}
	}
}

func (d *MPVDevice) handlePropertyChange(trackID string, msg mpvMessage) {
	switch msg.ID {
	case obsTimePos:
		if pos, ok := msg.Data.(float64); ok {
			d.emit(Event{TrackID: trackID, Kind: EventProgress, Position: pos})
		}
	case obsDuration:
		dur, ok := msg.Data.(float64)
		if !ok || dur <= 0 {
			return
		}
		d.mu.Lock()
		first := !d.metaSent
		d.metaSent = true
		d.mu.Unlock()
		if first {
			d.emit(Event{TrackID: trackID, Kind: EventMetadataReady, Duration: dur})
		}
	case obsEOF:
		reached, ok := msg.Data.(bool)
		if !ok || !reached {
			return
		}
		d.mu.Lock()
		first := !d.endedSent
		d.endedSent = true
		d.mu.Unlock()
		if first {
			d.emit(Event{TrackID: trackID, Kind: EventEnded})
		}
	case obsCacheStall:
		if stalled, ok := msg.Data.(bool); ok {
			kind := EventBufferingEnd
			if stalled {
				kind = EventBufferingStart
			}
			d.emit(Event{TrackID: trackID, Kind: kind})
		}
	}
}

func (d *MPVDevice) emit(ev Event) {
	select {
	case d.events <- ev:
	default:
		// Consumer stalled; drop rather than block the IPC reader.
		d.logger.Debug("dropping device event", "kind", ev.Kind)
	}
}

// Ensure MPVDevice implements Device.
var _ Device = (*MPVDevice)(nil)
