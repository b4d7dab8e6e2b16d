package output

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tanq16/resumer/internal/events"
)

type DownloadOutput struct {
	URL         string
	Path        string
	Status      string
	Message     string
	StreamLine  string
	Percent     float64
	Downloaded  int64
	Total       int64
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Index       int
}

// Manager renders session events as a live terminal view. It implements
// events.Sink and never returns an error from Emit.
type Manager struct {
	out         io.Writer
	outputs     map[string]*DownloadOutput
	mutex       sync.RWMutex
	numLines    int
	count       int
	doneCh      chan struct{}
	displayTick time.Duration
	displayWg   sync.WaitGroup
	barWidth    int
}

func NewManagerWithWriter(w io.Writer) *Manager {
	return &Manager{
		out:         w,
		outputs:     make(map[string]*DownloadOutput),
		doneCh:      make(chan struct{}),
		displayTick: 300 * time.Millisecond,
		barWidth:    barWidth(),
	}
}

func (m *Manager) Emit(e events.Event) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	info, exists := m.outputs[e.URL]
	if !exists {
		m.count++
		info = &DownloadOutput{URL: e.URL, Status: "pending", StartTime: time.Now(), Index: m.count}
		m.outputs[e.URL] = info
	}
	info.LastUpdated = time.Now()
	name := filepath.Base(info.Path)
	switch e.Kind {
	case events.Started:
		info.Path = e.Path
		info.Total = e.ContentLength
		info.Status = "pending"
		info.Complete = false
		info.StartTime = time.Now()
		info.Message = fmt.Sprintf("Downloading %s", filepath.Base(e.Path))
	case events.Progress:
		info.Percent = e.ProgressPercentage
		info.Downloaded = e.DownloadedBytes
		info.StreamLine = progressLine(e.ProgressPercentage, e.DownloadedBytes, info.Total, e.DownloadSpeed, e.ETA, m.barWidth)
	case events.Paused:
		info.Status = "warning"
		info.Complete = true
		info.StreamLine = ""
		info.Message = fmt.Sprintf("Paused %s at %.1f%% (run again to resume)", name, info.Percent)
	case events.Completed:
		info.Status = "success"
		info.Complete = true
		info.Percent = 100
		info.StreamLine = ""
		info.Message = fmt.Sprintf("Completed %s", name)
	case events.Aborted:
		info.Status = "error"
		info.Complete = true
		info.StreamLine = ""
		info.Message = fmt.Sprintf("Aborted %s, partial file removed", name)
	case events.RateLimitExceeded:
		info.Status = "warning"
		info.Message = fmt.Sprintf("Rate limited by server for %s", e.URL)
	}
	return nil
}

// ReportError marks a session that ended without a lifecycle event.
func (m *Manager) ReportError(url string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	info, exists := m.outputs[url]
	if !exists {
		m.count++
		info = &DownloadOutput{URL: url, StartTime: time.Now(), Index: m.count}
		m.outputs[url] = info
	}
	info.Status = "error"
	info.Complete = true
	info.StreamLine = ""
	info.Message = fmt.Sprintf("Failed: %v", err)
	info.LastUpdated = time.Now()
}

func (m *Manager) GetStatus(url string) string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if info, exists := m.outputs[url]; exists {
		return info.Status
	}
	return "unknown"
}

func (m *Manager) GetStatusIndicator(status string) string {
	switch status {
	case "success":
		return successStyle.Render(StyleSymbols["pass"])
	case "error":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func styleMessage(status, message string) string {
	switch status {
	case "success":
		return successStyle.Render(message)
	case "error":
		return errorStyle.Render(message)
	case "warning":
		return warningStyle.Render(message)
	default:
		return pendingStyle.Render(message)
	}
}

func (m *Manager) sorted() []*DownloadOutput {
	var all []*DownloadOutput
	for _, info := range m.outputs {
		all = append(all, info)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all
}

func (m *Manager) updateDisplay() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.numLines > 0 {
		fmt.Fprintf(m.out, "\033[%dA\033[J", m.numLines)
	}
	lineCount := 0
	for _, info := range m.sorted() {
		elapsed := time.Since(info.StartTime).Round(time.Second)
		if info.Complete {
			elapsed = info.LastUpdated.Sub(info.StartTime).Round(time.Second)
		}
		fmt.Fprintf(m.out, "%s%s %s %s\n", strings.Repeat(" ", 2), m.GetStatusIndicator(info.Status), debugStyle.Render(elapsed.String()), styleMessage(info.Status, info.Message))
		lineCount++
		if info.StreamLine != "" {
			fmt.Fprintf(m.out, "%s%s\n", strings.Repeat(" ", 2+4), streamStyle.Render(info.StreamLine))
			lineCount++
		}
	}
	m.numLines = lineCount
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.updateDisplay()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var success, paused, failures int
	for _, info := range m.outputs {
		switch info.Status {
		case "success":
			success++
		case "warning":
			paused++
		case "error":
			failures++
		}
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, strings.Repeat(" ", 2)+successStyle.Render(fmt.Sprintf("Completed %d of %d", success, len(m.outputs))))
	if paused > 0 {
		fmt.Fprintln(m.out, strings.Repeat(" ", 2)+warningStyle.Render(fmt.Sprintf("Paused %d of %d", paused, len(m.outputs))))
	}
	if failures > 0 {
		fmt.Fprintln(m.out, strings.Repeat(" ", 2)+errorStyle.Render(fmt.Sprintf("Failed or aborted %d of %d", failures, len(m.outputs))))
	}
	fmt.Fprintln(m.out)
}
