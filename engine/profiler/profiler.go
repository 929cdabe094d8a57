//go:build profile

package profiler

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Init allocates the scope ring. capacity is the number of open/close marks
// kept; older marks are overwritten.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	marks.init(capacity)
}

// Start opens a named scope and returns the func that closes it.
func Start(name string) func() {
	if !marks.ready.Load() {
		return func() {}
	}
	id := intern(name)
	at := time.Now().UnixNano()
	marks.push(mark{at: at, scope: id, open: true})
	return func() {
		end := time.Now().UnixNano()
		if end < at {
			end = at
		}
		marks.push(mark{at: end, scope: id})
	}
}

// Dump writes the captured scopes as a speedscope evented profile. An empty
// path writes into the temp dir. It returns the file written.
func Dump(path string) (string, error) {
	ms := marks.snapshot()
	if len(ms) == 0 {
		return "", errors.New("profiler: nothing captured")
	}
	if path == "" {
		path = filepath.Join(os.TempDir(), "handmade.speedscope.json")
	}
	return path, writeSpeedscope(ms, path)
}

type mark struct {
	at    int64
	scope int
	open  bool
}

type ring struct {
	ready atomic.Bool
	size  uint64
	next  atomic.Uint64
	buf   []mark
}

func (r *ring) init(capacity int) {
	r.size = uint64(capacity)
	r.buf = make([]mark, r.size)
	r.next.Store(0)
	r.ready.Store(true)
}

func (r *ring) push(m mark) {
	i := r.next.Add(1) - 1
	r.buf[i%r.size] = m
}

// snapshot returns marks in write order.
func (r *ring) snapshot() []mark {
	n := r.next.Load()
	if n == 0 {
		return nil
	}
	var first uint64
	if n > r.size {
		first = n - r.size
	}
	out := make([]mark, 0, n-first)
	for k := first; k < n; k++ {
		out = append(out, r.buf[k%r.size])
	}
	return out
}

var marks ring

var (
	namesMu sync.Mutex
	names   []string
	nameIDs = map[string]int{}
)

func intern(name string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	if id, ok := nameIDs[name]; ok {
		return id
	}
	id := len(names)
	nameIDs[name] = id
	names = append(names, name)
	return id
}

type ssFile struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
	Name     string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"`
	At    int64  `json:"at"`
	Frame int    `json:"frame"`
}

func writeSpeedscope(ms []mark, path string) error {
	namesMu.Lock()
	frames := make([]ssFrame, len(names))
	for i, n := range names {
		frames[i] = ssFrame{Name: n}
	}
	namesMu.Unlock()

	base := ms[0].at
	var (
		events = make([]ssEvent, 0, len(ms))
		open   []int
		last   int64
	)
	for _, m := range ms {
		at := (m.at - base) / 1000
		if at < last {
			at = last
		}
		if m.open {
			events = append(events, ssEvent{Type: "O", At: at, Frame: m.scope})
			open = append(open, m.scope)
		} else {
			// the ring may have dropped the matching open
			if len(open) == 0 || open[len(open)-1] != m.scope {
				continue
			}
			open = open[:len(open)-1]
			events = append(events, ssEvent{Type: "C", At: at, Frame: m.scope})
		}
		last = at
	}
	for i := len(open) - 1; i >= 0; i-- {
		events = append(events, ssEvent{Type: "C", At: last, Frame: open[i]})
	}

	doc := ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "main loop",
			Unit:     "microseconds",
			EndValue: last,
			Events:   events,
		}},
		Exporter: "handmade-profiler",
		Name:     "handmade capture",
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
