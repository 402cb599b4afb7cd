// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package exabayes

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OffsetRe matches the progress lines
// written by the consensus program,
// one per processed tree.
var offsetRe = regexp.MustCompile(`tree at offset (\d+)`)

// LastOffset scans a log stream
// and returns the offset
// (the cumulative number of processed trees)
// of the last progress line found.
func LastOffset(r io.Reader) (int, bool) {
	offset := 0
	found := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		m := offsetRe.FindAllStringSubmatch(sc.Text(), -1)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[len(m)-1][1])
		if err != nil {
			continue
		}
		offset = v
		found = true
	}
	return offset, found
}

// WindowSize is the number of progress samples
// kept for the rate estimation.
const windowSize = 3

// A Window is a sliding window
// with the most recent progress samples
// of the consensus program,
// used to estimate an average processing rate.
type Window struct {
	offset [windowSize]int
	at     [windowSize]time.Time
	n      int
}

// Push adds a progress sample to the window,
// evicting the oldest sample if it is full.
// A sample is accepted only if its offset
// is different from the newest stored offset,
// so repeated readings of an unchanged log
// do not flatten the rate.
// It reports whether the sample was accepted.
func (w *Window) Push(offset int, at time.Time) bool {
	if w.n > 0 && offset == w.offset[w.n-1] {
		return false
	}
	if w.n == windowSize {
		copy(w.offset[:], w.offset[1:])
		copy(w.at[:], w.at[1:])
		w.n--
	}
	w.offset[w.n] = offset
	w.at[w.n] = at
	w.n++
	return true
}

// Newest returns the most recent offset
// stored in the window.
func (w *Window) Newest() (offset int, ok bool) {
	if w.n == 0 {
		return 0, false
	}
	return w.offset[w.n-1], true
}

// Rate returns the average number
// of trees processed per second
// over the window.
// It fails if there are less than two samples,
// or the time interval is zero.
func (w *Window) Rate() (float64, bool) {
	if w.n < 2 {
		return 0, false
	}
	dt := w.at[w.n-1].Sub(w.at[0]).Seconds()
	if dt <= 0 {
		return 0, false
	}
	return float64(w.offset[w.n-1]-w.offset[0]) / dt, true
}

// ETA returns a human readable form
// of a remaining time in seconds,
// as day, hour, minute and second fields.
// Leading zero valued fields are omitted,
// minutes are always included
// once a larger field is present,
// and seconds are always included;
// the seconds field is rounded
// to the nearest integer.
func ETA(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := math.Floor(seconds / 86400)
	seconds -= d * 86400
	h := math.Floor(seconds / 3600)
	seconds -= h * 3600
	m := math.Floor(seconds / 60)
	seconds -= m * 60
	s := math.Round(seconds)

	var sb strings.Builder
	if d > 0 {
		fmt.Fprintf(&sb, "%.0fd ", d)
	}
	if d > 0 || h > 0 {
		fmt.Fprintf(&sb, "%.0fh ", h)
	}
	if d > 0 || h > 0 || m > 0 {
		fmt.Fprintf(&sb, "%.0fm ", m)
	}
	fmt.Fprintf(&sb, "%.0fs", s)
	return sb.String()
}

// TailSize is the maximum number of bytes
// read from the end of the log file
// on each polling cycle.
const tailSize = 64 * 1024

// A Monitor polls the log file of a job
// and reports its progress
// with an estimation of the remaining time.
type Monitor struct {
	log      string
	total    int
	out      io.Writer
	interval time.Duration
	w        Window
}

// NewMonitor creates a monitor
// for a job that writes its log
// to the indicated file
// and must process the given total of trees.
// Progress lines are written to out.
func NewMonitor(log string, total int, out io.Writer) *Monitor {
	return &Monitor{
		log:      log,
		total:    total,
		out:      out,
		interval: 60 * time.Second,
	}
}

// Poll reads the tail of the log file
// and returns a progress line
// for the given time.
// It reports false if there is nothing new to report:
// the log is still unreadable,
// no progress line was found,
// the offset has not changed,
// or a rate can not be estimated yet.
func (m *Monitor) Poll(now time.Time) (string, bool) {
	offset, ok := m.lastOffset()
	if !ok {
		return "", false
	}
	if !m.w.Push(offset, now) {
		return "", false
	}
	rate, ok := m.w.Rate()
	if !ok {
		return "", false
	}

	left := float64(m.total-offset) / rate
	line := fmt.Sprintf("%s - %d / %d trees. ETA: %s", now.Format(time.DateTime), offset, m.total, ETA(left))
	return line, true
}

func (m *Monitor) lastOffset() (int, bool) {
	f, err := os.Open(m.log)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, false
	}
	if sz := fi.Size(); sz > tailSize {
		if _, err := f.Seek(sz-tailSize, io.SeekStart); err != nil {
			return 0, false
		}
	}
	return LastOffset(f)
}

// Run polls the log file of the job
// on every interval,
// writing a progress line
// each time there is a new estimation.
// It returns when the job finishes;
// the job is never terminated by the monitor.
func (m *Monitor) Run(j *Job) {
	tick := time.NewTicker(m.interval)
	defer tick.Stop()

	for {
		select {
		case <-j.Done():
			return
		case now := <-tick.C:
			line, ok := m.Poll(now)
			if !ok {
				continue
			}
			fmt.Fprintf(m.out, "%s\n", line)
		}
	}
}
